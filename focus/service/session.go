package service

import (
	"context"
	"github.com/hatcher/voyage/focus/entity"
	"github.com/hatcher/voyage/focus/monitor"
	"github.com/hatcher/voyage/focus/store"
	"github.com/hatcher/voyage/pkg/util"
	"github.com/pkg/errors"
	"time"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionEnded    = errors.New("session already ended")
)

// SessionStore 会话生命周期所需的数据访问
type SessionStore interface {
	CreateSession(ctx context.Context, session *entity.Session) error
	GetSessionByID(ctx context.Context, id int64) (*entity.Session, error)
	SaveSession(ctx context.Context, session *entity.Session) error
	DeleteSession(ctx context.Context, id int64) error
	ListSessionsByUser(ctx context.Context, userID int64) ([]*entity.Session, error)
	LatestDriftEvents(ctx context.Context, sessionID int64, limit int) ([]*entity.DriftEvent, error)
}

// SessionService 会话生命周期
type SessionService struct {
	store SessionStore
	// 统计接口计算当前streak时回看的条数
	streakWindow int
}

func NewSessionService(s SessionStore, streakWindow int) *SessionService {
	if streakWindow <= 0 {
		streakWindow = 5
	}
	return &SessionService{store: s, streakWindow: streakWindow}
}

// Create 开始一次专注会话
func (s *SessionService) Create(ctx context.Context, userID int64, taskID *int64) (*entity.Session, error) {
	session := &entity.Session{
		UserID:    userID,
		TaskID:    taskID,
		Status:    entity.SessionActive,
		StartedAt: util.Of(time.Now()),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, errors.WithMessagef(err, "创建会话失败")
	}
	return session, nil
}

func (s *SessionService) Get(ctx context.Context, id int64) (*entity.Session, error) {
	session, err := s.store.GetSessionByID(ctx, id)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

func (s *SessionService) ListByUser(ctx context.Context, userID int64) ([]*entity.Session, error) {
	return s.store.ListSessionsByUser(ctx, userID)
}

// End 结束会话：状态置为ended，计数冻结
func (s *SessionService) End(ctx context.Context, id int64) (*entity.Session, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Ended() {
		return nil, ErrSessionEnded
	}
	session.Status = entity.SessionEnded
	session.EndedAt = util.Of(time.Now())
	if err := s.store.SaveSession(ctx, session); err != nil {
		return nil, errors.WithMessagef(err, "结束会话失败, session:%d", id)
	}
	return session, nil
}

// Delete 显式删除会话
func (s *SessionService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.store.DeleteSession(ctx, id)
}

// SessionStats 会话统计
type SessionStats struct {
	SessionID     int64                `json:"sessionId"`
	Status        entity.SessionStatus `json:"status"`
	FocusSeconds  int64                `json:"focusSeconds"`
	DriftSeconds  int64                `json:"driftSeconds"`
	DriftCount    int64                `json:"driftCount"`
	CurrentStreak int                  `json:"currentStreak"`
}

// Stats 返回会话统计。当前streak从事件日志重算，不信任冗余计数
func (s *SessionService) Stats(ctx context.Context, id int64) (*SessionStats, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	events, err := s.store.LatestDriftEvents(ctx, id, s.streakWindow)
	if err != nil {
		return nil, errors.WithMessagef(err, "查询事件失败, session:%d", id)
	}
	return &SessionStats{
		SessionID:     session.ID,
		Status:        session.Status,
		FocusSeconds:  session.FocusSeconds,
		DriftSeconds:  session.DriftSeconds,
		DriftCount:    session.DriftCount,
		CurrentStreak: monitor.Streak(events),
	}, nil
}
