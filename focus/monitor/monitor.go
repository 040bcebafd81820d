package monitor

import (
	"context"
	"fmt"
	"github.com/hatcher/voyage/focus/entity"
	"github.com/hatcher/voyage/focus/intervene"
	"github.com/hatcher/voyage/pkg/logs"
	"github.com/hatcher/voyage/pkg/redisx"
	"github.com/hatcher/voyage/pkg/safego"
	"github.com/hatcher/voyage/pkg/schedule"
	"time"
)

const lockKey = "voyage:drift-monitor:sweep"

type Config struct {
	SweepSeconds int64 `json:"sweepSeconds" yaml:"sweep-seconds" mapstructure:"sweep-seconds"`
	// 连续分神达到该阈值即升级
	StreakThreshold int `json:"streakThreshold" yaml:"streak-threshold" mapstructure:"streak-threshold"`
	// 每次清扫回看的事件条数
	StreakWindow int `json:"streakWindow" yaml:"streak-window" mapstructure:"streak-window"`
}

func (cfg *Config) Prepare() {
	if cfg.SweepSeconds == 0 {
		cfg.SweepSeconds = 15
	}
	if cfg.StreakThreshold == 0 {
		cfg.StreakThreshold = 5
	}
	if cfg.StreakWindow == 0 {
		cfg.StreakWindow = cfg.StreakThreshold
	}
}

// Store 清扫所需的数据访问
type Store interface {
	ListActiveSessions(ctx context.Context) ([]*entity.Session, error)
	LatestDriftEvents(ctx context.Context, sessionID int64, limit int) ([]*entity.DriftEvent, error)
	MarkInterventionTriggered(ctx context.Context, eventID int64) (bool, error)
	ClearInterventionTriggered(ctx context.Context, eventID int64) error
}

// Dispatcher 干预派发
type Dispatcher interface {
	Dispatch(ctx context.Context, esc intervene.Escalation) error
}

// Monitor 分神清扫。定时触发、无内存状态，每次从存储重新取数
type Monitor struct {
	cfg        Config
	store      Store
	dispatcher Dispatcher
	rds        redisx.Redis
}

func New(cfg Config, s Store, dispatcher Dispatcher, rds redisx.Redis) *Monitor {
	cfg.Prepare()
	return &Monitor{
		cfg:        cfg,
		store:      s,
		dispatcher: dispatcher,
		rds:        rds,
	}
}

// Register 注册定时清扫任务
func (m *Monitor) Register(worker *schedule.Scheduler) {
	worker.AddScheduledTask("drift-monitor", schedule.ScheduledConfig{
		Enabled: true,
		Type:    "fixed_delay",
		Value:   fmt.Sprintf("%d", m.cfg.SweepSeconds),
	}, m.run)
}

// run 一次定时触发：拿锁清扫，拿不到说明别的实例在扫
func (m *Monitor) run() {
	ctx := context.Background()
	defer safego.Recovery(ctx)

	expiration := time.Duration(m.cfg.SweepSeconds*2) * time.Second
	lock := redisx.NewDistributedLock(m.rds, lockKey, "", &expiration)
	acquired, err := lock.TryLock(ctx)
	if err != nil {
		logs.Errorf("清扫加锁失败: %v", err)
		return
	}
	if !acquired {
		logs.Debugf("清扫锁被占用，跳过本次触发")
		return
	}
	defer func() {
		if err := lock.Unlock(ctx); err != nil {
			logs.Warnf("清扫解锁失败: %v", err)
		}
	}()

	if _, err := m.Sweep(ctx); err != nil {
		logs.Errorf("清扫失败: %v", err)
	}
}

// Sweep 扫描所有未结束会话，重算streak并决定升级。
// 单个会话的失败只记录，不中断其余会话。返回本次派发的干预数
func (m *Monitor) Sweep(ctx context.Context) (int, error) {
	sessions, err := m.store.ListActiveSessions(ctx)
	if err != nil {
		return 0, err
	}

	dispatched := 0
	for _, session := range sessions {
		if m.sweepSession(ctx, session) {
			dispatched++
		}
	}
	if dispatched > 0 {
		logs.CtxInfof(ctx, "清扫完成, 会话:%d, 派发干预:%d", len(sessions), dispatched)
	}
	return dispatched, nil
}

// sweepSession 处理单个会话，返回是否派发了干预
func (m *Monitor) sweepSession(ctx context.Context, session *entity.Session) bool {
	defer safego.Recovery(ctx)

	events, err := m.store.LatestDriftEvents(ctx, session.ID, m.cfg.StreakWindow)
	if err != nil {
		logs.CtxErrorf(ctx, "查询事件失败, session:%d, err:%v", session.ID, err)
		return false
	}
	streak := Streak(events)
	if streak < m.cfg.StreakThreshold {
		return false
	}
	newest := events[0]
	if newest.InterventionTriggered {
		// 本轮streak已经干预过
		return false
	}

	// 条件翻转抢占升级权，并发清扫下只有一个赢家
	won, err := m.store.MarkInterventionTriggered(ctx, newest.ID)
	if err != nil {
		logs.CtxErrorf(ctx, "翻转干预标记失败, session:%d, err:%v", session.ID, err)
		return false
	}
	if !won {
		return false
	}

	esc := intervene.Escalation{
		Session: session,
		Event:   newest,
		Streak:  streak,
	}
	if err := m.dispatcher.Dispatch(ctx, esc); err != nil {
		logs.CtxErrorf(ctx, "干预派发失败，回滚标记等待重试, session:%d, err:%v", session.ID, err)
		if clearErr := m.store.ClearInterventionTriggered(ctx, newest.ID); clearErr != nil {
			logs.CtxErrorf(ctx, "回滚干预标记失败, event:%d, err:%v", newest.ID, clearErr)
		}
		return false
	}
	return true
}

// Streak 计算连续分神长度：从最新事件起数连续的is_drifting，
// 遇到第一条专注事件即停止
func Streak(events []*entity.DriftEvent) int {
	streak := 0
	for _, e := range events {
		if !e.IsDrifting {
			break
		}
		streak++
	}
	return streak
}
