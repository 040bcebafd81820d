package service

import (
	"context"
	"testing"

	"github.com/hatcher/voyage/focus/entity"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeSessionStore struct {
	sessions map[int64]*entity.Session
	events   map[int64][]*entity.DriftEvent
	nextID   int64
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{
		sessions: make(map[int64]*entity.Session),
		events:   make(map[int64][]*entity.DriftEvent),
	}
}

func (f *fakeSessionStore) CreateSession(ctx context.Context, session *entity.Session) error {
	f.nextID++
	session.ID = f.nextID
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionStore) GetSessionByID(ctx context.Context, id int64) (*entity.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (f *fakeSessionStore) SaveSession(ctx context.Context, session *entity.Session) error {
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionStore) DeleteSession(ctx context.Context, id int64) error {
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessionStore) ListSessionsByUser(ctx context.Context, userID int64) ([]*entity.Session, error) {
	var out []*entity.Session
	for _, s := range f.sessions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSessionStore) LatestDriftEvents(ctx context.Context, sessionID int64, limit int) ([]*entity.DriftEvent, error) {
	evs := f.events[sessionID]
	if len(evs) > limit {
		evs = evs[:limit]
	}
	return evs, nil
}

func TestSessionCreate(t *testing.T) {
	t.Parallel()
	st := newFakeSessionStore()
	svc := NewSessionService(st, 5)

	session, err := svc.Create(context.Background(), 10, nil)
	require.NoError(t, err)
	require.Equal(t, entity.SessionActive, session.Status)
	require.Equal(t, int64(10), session.UserID)
	require.NotNil(t, session.StartedAt)
	require.Nil(t, session.TaskID)
}

func TestSessionGetNotFound(t *testing.T) {
	t.Parallel()
	svc := NewSessionService(newFakeSessionStore(), 5)
	_, err := svc.Get(context.Background(), 999)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionEnd(t *testing.T) {
	t.Parallel()
	st := newFakeSessionStore()
	svc := NewSessionService(st, 5)
	session, err := svc.Create(context.Background(), 10, nil)
	require.NoError(t, err)

	ended, err := svc.End(context.Background(), session.ID)
	require.NoError(t, err)
	require.Equal(t, entity.SessionEnded, ended.Status)
	require.NotNil(t, ended.EndedAt)

	// 重复结束是请求错误
	_, err = svc.End(context.Background(), session.ID)
	require.ErrorIs(t, err, ErrSessionEnded)
}

func TestSessionEndNotFound(t *testing.T) {
	t.Parallel()
	svc := NewSessionService(newFakeSessionStore(), 5)
	_, err := svc.End(context.Background(), 404)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionDelete(t *testing.T) {
	t.Parallel()
	st := newFakeSessionStore()
	svc := NewSessionService(st, 5)
	session, err := svc.Create(context.Background(), 10, nil)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), session.ID))
	_, err = svc.Get(context.Background(), session.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)

	require.ErrorIs(t, svc.Delete(context.Background(), session.ID), ErrSessionNotFound)
}

func TestSessionStats(t *testing.T) {
	t.Parallel()
	st := newFakeSessionStore()
	svc := NewSessionService(st, 5)
	session, err := svc.Create(context.Background(), 10, nil)
	require.NoError(t, err)
	session.FocusSeconds = 300
	session.DriftSeconds = 90
	session.DriftCount = 2
	// 新到旧：最近三条都在分神
	st.events[session.ID] = []*entity.DriftEvent{
		{IsDrifting: true},
		{IsDrifting: true},
		{IsDrifting: true},
		{IsDrifting: false},
	}

	stats, err := svc.Stats(context.Background(), session.ID)
	require.NoError(t, err)
	require.Equal(t, int64(300), stats.FocusSeconds)
	require.Equal(t, int64(90), stats.DriftSeconds)
	require.Equal(t, int64(2), stats.DriftCount)
	require.Equal(t, 3, stats.CurrentStreak)
}
