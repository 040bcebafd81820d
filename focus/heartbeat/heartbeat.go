package heartbeat

import (
	"context"
	"github.com/hatcher/voyage/focus/classifier"
	"github.com/hatcher/voyage/focus/entity"
	"github.com/hatcher/voyage/focus/store"
	"github.com/hatcher/voyage/pkg/logs"
	"github.com/pkg/errors"
)

// 请求级错误，由接入层映射为 400
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionEnded    = errors.New("session already ended")
	ErrNoSensorData    = errors.New("no sensor data")
)

type Config struct {
	// 心跳间隔秒数。计秒不量墙钟，客户端节拍必须与该常量一致
	IntervalSeconds int64 `json:"intervalSeconds" yaml:"interval-seconds" mapstructure:"interval-seconds"`
}

func (cfg *Config) Prepare() {
	if cfg.IntervalSeconds == 0 {
		cfg.IntervalSeconds = 30
	}
}

// Store 心跳处理所需的数据访问
type Store interface {
	GetSessionByID(ctx context.Context, id int64) (*entity.Session, error)
	SaveSession(ctx context.Context, session *entity.Session) error
	GetUserByID(ctx context.Context, id int64) (*entity.User, error)
	GetTaskByID(ctx context.Context, id int64) (*entity.Task, error)
	LatestDriftEvents(ctx context.Context, sessionID int64, limit int) ([]*entity.DriftEvent, error)
	AppendDriftEvent(ctx context.Context, event *entity.DriftEvent) error
}

// Classifier 分神判定网关。实现保证永不失败，失败在其内部折算为降级Verdict
type Classifier interface {
	Classify(ctx context.Context, sc classifier.SessionContext, frames []classifier.Frame) classifier.Verdict
}

// TickRequest 一次心跳采样，图像为解码后的原始字节
type TickRequest struct {
	SessionID   int64
	CameraImage []byte
	ScreenImage []byte
}

type TickResult struct {
	Event   *entity.DriftEvent `json:"event"`
	Verdict classifier.Verdict `json:"verdict"`
}

// Processor 心跳处理器。每次调用处理一个会话的一个采样tick，不保留内存状态
type Processor struct {
	cfg     Config
	store   Store
	gateway Classifier
}

func NewProcessor(cfg Config, s Store, gateway Classifier) *Processor {
	cfg.Prepare()
	return &Processor{
		cfg:     cfg,
		store:   s,
		gateway: gateway,
	}
}

// Process 处理一次心跳：校验、判定、追加事件、更新计数。
// 分类失败不会上抛，只有输入错误和存储错误会返回
func (p *Processor) Process(ctx context.Context, req TickRequest) (*TickResult, error) {
	session, err := p.store.GetSessionByID(ctx, req.SessionID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrSessionNotFound
		}
		return nil, errors.WithMessagef(err, "查询会话失败, session:%d", req.SessionID)
	}
	if session.Ended() {
		return nil, ErrSessionEnded
	}
	frames := buildFrames(req)
	if len(frames) == 0 {
		return nil, ErrNoSensorData
	}

	sc, err := p.loadSessionContext(ctx, session)
	if err != nil {
		return nil, err
	}

	// 追加事件前先取上一条，用于识别新streak的起点
	prior, err := p.store.LatestDriftEvents(ctx, session.ID, 1)
	if err != nil {
		return nil, errors.WithMessagef(err, "查询历史事件失败, session:%d", session.ID)
	}

	verdict := p.gateway.Classify(ctx, sc, frames)

	event := &entity.DriftEvent{
		SessionID:             session.ID,
		UserID:                session.UserID,
		IsDrifting:            verdict.IsDrifting,
		ActualTask:            verdict.ActualTask,
		Reasons:               verdict.Reasons,
		Mood:                  verdict.Mood,
		MoodReason:            verdict.MoodReason,
		InterventionTriggered: false,
	}
	if err := p.store.AppendDriftEvent(ctx, event); err != nil {
		return nil, errors.WithMessagef(err, "写入事件失败, session:%d", session.ID)
	}

	p.applyCounters(session, verdict.IsDrifting, prior)
	if err := p.store.SaveSession(ctx, session); err != nil {
		return nil, errors.WithMessagef(err, "更新会话计数失败, session:%d", session.ID)
	}

	logs.CtxInfof(ctx, "心跳处理完成, session:%d, drifting:%v, degraded:%v",
		session.ID, verdict.IsDrifting, verdict.Degraded)
	return &TickResult{Event: event, Verdict: verdict}, nil
}

// loadSessionContext 组装用户目标和任务信息。任务缺失只降级，不拦截心跳
func (p *Processor) loadSessionContext(ctx context.Context, session *entity.Session) (classifier.SessionContext, error) {
	var sc classifier.SessionContext
	user, err := p.store.GetUserByID(ctx, session.UserID)
	if err != nil {
		return sc, errors.WithMessagef(err, "查询用户失败, user:%d", session.UserID)
	}
	sc.Goal = user.Goal
	if session.TaskID != nil {
		task, err := p.store.GetTaskByID(ctx, *session.TaskID)
		if err != nil {
			logs.CtxWarnf(ctx, "查询任务失败，忽略任务上下文, task:%d, err:%v", *session.TaskID, err)
		} else {
			sc.TaskTitle = task.Title
			sc.TaskDescription = task.Description
		}
	}
	return sc, nil
}

// applyCounters 更新冗余统计：分神秒数每次分神tick都累加，
// drift_count 只在专注->分神的转折处加一
func (p *Processor) applyCounters(session *entity.Session, drifting bool, prior []*entity.DriftEvent) {
	if !drifting {
		session.FocusSeconds += p.cfg.IntervalSeconds
		return
	}
	session.DriftSeconds += p.cfg.IntervalSeconds
	if len(prior) == 0 || !prior[0].IsDrifting {
		session.DriftCount++
	}
}

func buildFrames(req TickRequest) []classifier.Frame {
	var frames []classifier.Frame
	if len(req.CameraImage) > 0 {
		frames = append(frames, classifier.Frame{
			Kind: classifier.FrameCamera,
			Data: req.CameraImage,
		})
	}
	if len(req.ScreenImage) > 0 {
		frames = append(frames, classifier.Frame{
			Kind: classifier.FrameScreen,
			Data: req.ScreenImage,
		})
	}
	return frames
}
