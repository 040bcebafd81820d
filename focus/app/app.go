package app

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/hatcher/voyage/focus/classifier"
	"github.com/hatcher/voyage/focus/conversation"
	"github.com/hatcher/voyage/focus/heartbeat"
	"github.com/hatcher/voyage/focus/intervene"
	"github.com/hatcher/voyage/focus/live"
	"github.com/hatcher/voyage/focus/monitor"
	"github.com/hatcher/voyage/focus/service"
	"github.com/hatcher/voyage/focus/speech"
	"github.com/hatcher/voyage/focus/store"
	"github.com/hatcher/voyage/focus/web"
	"github.com/hatcher/voyage/pkg/hertzx"
	"github.com/hatcher/voyage/pkg/jwtx"
	"github.com/hatcher/voyage/pkg/logs"
	"github.com/hatcher/voyage/pkg/ormx"
	"github.com/hatcher/voyage/pkg/redisx"
	"github.com/hatcher/voyage/pkg/schedule"
	"github.com/pkg/errors"
)

// Config 全量配置
type Config struct {
	Log          logs.LogConfig      `json:"log" yaml:"log" mapstructure:"log"`
	Web          hertzx.WebConfig    `json:"web" yaml:"web" mapstructure:"web"`
	DB           ormx.DBConfig       `json:"db" yaml:"db" mapstructure:"db"`
	Redis        redisx.RedisConfig  `json:"redis" yaml:"redis" mapstructure:"redis"`
	Auth         jwtx.Config         `json:"auth" yaml:"auth" mapstructure:"auth"`
	Heartbeat    heartbeat.Config    `json:"heartbeat" yaml:"heartbeat" mapstructure:"heartbeat"`
	Monitor      monitor.Config      `json:"monitor" yaml:"monitor" mapstructure:"monitor"`
	Classifier   classifier.Config   `json:"classifier" yaml:"classifier" mapstructure:"classifier"`
	Conversation conversation.Config `json:"conversation" yaml:"conversation" mapstructure:"conversation"`
	Speech       speech.Config       `json:"speech" yaml:"speech" mapstructure:"speech"`
}

func (cfg *Config) Prepare() {
	cfg.Web.Prepare()
	cfg.Auth.Prepare()
	cfg.Heartbeat.Prepare()
	cfg.Monitor.Prepare()
	cfg.Classifier.Prepare()
	cfg.Conversation.Prepare()
	cfg.Speech.Prepare()
}

// App 组装全部组件并持有运行期资源
type App struct {
	cfg    Config
	Store  *store.Store
	Hub    *live.Hub
	Hertz  *server.Hertz
	worker *schedule.Scheduler
}

// New 按配置组装应用：存储、直播通道、心跳处理器、清扫器和HTTP路由
func New(ctx context.Context, cfg Config) (*App, error) {
	cfg.Prepare()

	db, err := ormx.NewDBClient(cfg.DB)
	if err != nil {
		return nil, errors.WithMessagef(err, "初始化数据库失败")
	}
	st := store.New(db)
	if err := st.AutoMigrate(); err != nil {
		return nil, errors.WithMessagef(err, "数据库迁移失败")
	}

	rds, err := redisx.NewRedis(cfg.Redis)
	if err != nil {
		return nil, errors.WithMessagef(err, "初始化redis失败")
	}

	hub := live.NewHub()
	gateway := classifier.New(cfg.Classifier)
	texts := conversation.New(cfg.Conversation)
	voices := speech.New(cfg.Speech)

	processor := heartbeat.NewProcessor(cfg.Heartbeat, st, gateway)
	dispatcher := intervene.NewDispatcher(st, texts, voices, hub)

	worker := schedule.NewScheduler()
	drift := monitor.New(cfg.Monitor, st, dispatcher, rds)
	drift.Register(worker)

	sessions := service.NewSessionService(st, cfg.Monitor.StreakWindow)
	tasks := service.NewTaskService(st)

	hertz := hertzx.WebEngine(cfg.Web)
	handler := web.NewHandler(sessions, tasks, processor, hub, st)
	web.RegisterRoutes(hertz, handler, cfg.Auth)

	logs.CtxInfof(ctx, "应用组装完成, port:%d, 心跳间隔:%ds, 清扫间隔:%ds",
		cfg.Web.Port, cfg.Heartbeat.IntervalSeconds, cfg.Monitor.SweepSeconds)
	return &App{
		cfg:    cfg,
		Store:  st,
		Hub:    hub,
		Hertz:  hertz,
		worker: worker,
	}, nil
}

// Run 启动HTTP服务，阻塞到进程退出
func (a *App) Run() {
	hertzx.StartWebServer(a.Hertz)
}

// Shutdown 停止定时任务并关闭直播通道
func (a *App) Shutdown() {
	a.worker.Stop()
	a.Hub.Shutdown()
}
