package monitor

import (
	"context"
	"testing"

	"github.com/hatcher/voyage/focus/entity"
	"github.com/hatcher/voyage/focus/intervene"
	"github.com/hatcher/voyage/pkg/ormx"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

// fakeStore 内存实现，事件按新到旧排列
type fakeStore struct {
	sessions  []*entity.Session
	events    map[int64][]*entity.DriftEvent
	eventsErr map[int64]error
	markErr   error
	cleared   []int64
	nextID    int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events:    make(map[int64][]*entity.DriftEvent),
		eventsErr: make(map[int64]error),
	}
}

func (f *fakeStore) addSession(id int64) *entity.Session {
	s := &entity.Session{BaseModel: ormx.BaseModel{ID: id}, UserID: id, Status: entity.SessionActive}
	f.sessions = append(f.sessions, s)
	return s
}

// push 追加一条事件，保持新到旧排列
func (f *fakeStore) push(sessionID int64, drifting bool) *entity.DriftEvent {
	f.nextID++
	e := &entity.DriftEvent{
		BaseModel:  ormx.BaseModel{ID: f.nextID},
		SessionID:  sessionID,
		IsDrifting: drifting,
	}
	f.events[sessionID] = append([]*entity.DriftEvent{e}, f.events[sessionID]...)
	return e
}

func (f *fakeStore) ListActiveSessions(ctx context.Context) ([]*entity.Session, error) {
	return f.sessions, nil
}

func (f *fakeStore) LatestDriftEvents(ctx context.Context, sessionID int64, limit int) ([]*entity.DriftEvent, error) {
	if err := f.eventsErr[sessionID]; err != nil {
		return nil, err
	}
	evs := f.events[sessionID]
	if len(evs) > limit {
		evs = evs[:limit]
	}
	return evs, nil
}

func (f *fakeStore) MarkInterventionTriggered(ctx context.Context, eventID int64) (bool, error) {
	if f.markErr != nil {
		return false, f.markErr
	}
	for _, evs := range f.events {
		for _, e := range evs {
			if e.ID == eventID {
				if e.InterventionTriggered {
					return false, nil
				}
				e.InterventionTriggered = true
				return true, nil
			}
		}
	}
	return false, nil
}

func (f *fakeStore) ClearInterventionTriggered(ctx context.Context, eventID int64) error {
	f.cleared = append(f.cleared, eventID)
	for _, evs := range f.events {
		for _, e := range evs {
			if e.ID == eventID {
				e.InterventionTriggered = false
			}
		}
	}
	return nil
}

type fakeDispatcher struct {
	calls []intervene.Escalation
	err   error
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, esc intervene.Escalation) error {
	f.calls = append(f.calls, esc)
	return f.err
}

func newMonitor(st *fakeStore, d *fakeDispatcher) *Monitor {
	return New(Config{StreakThreshold: 5, StreakWindow: 5}, st, d, nil)
}

func TestStreak(t *testing.T) {
	t.Parallel()
	mk := func(flags ...bool) []*entity.DriftEvent {
		var evs []*entity.DriftEvent
		for _, d := range flags {
			evs = append(evs, &entity.DriftEvent{IsDrifting: d})
		}
		return evs
	}
	require.Equal(t, 0, Streak(nil))
	require.Equal(t, 0, Streak(mk(false, true, true)))
	require.Equal(t, 2, Streak(mk(true, true, false, true)))
	require.Equal(t, 3, Streak(mk(true, true, true)))
}

func TestSweepDispatchesAtThreshold(t *testing.T) {
	t.Parallel()
	st := newFakeStore()
	session := st.addSession(1)
	for i := 0; i < 5; i++ {
		st.push(1, true)
	}
	d := &fakeDispatcher{}

	n, err := newMonitor(st, d).Sweep(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Len(t, d.calls, 1)
	require.Equal(t, session.ID, d.calls[0].Session.ID)
	require.Equal(t, 5, d.calls[0].Streak)
	require.True(t, st.events[1][0].InterventionTriggered)
}

func TestSweepBelowThresholdSkips(t *testing.T) {
	t.Parallel()
	st := newFakeStore()
	st.addSession(1)
	for i := 0; i < 4; i++ {
		st.push(1, true)
	}
	d := &fakeDispatcher{}

	n, err := newMonitor(st, d).Sweep(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)
	require.Empty(t, d.calls)
}

func TestSweepIdempotent(t *testing.T) {
	t.Parallel()
	st := newFakeStore()
	st.addSession(1)
	for i := 0; i < 5; i++ {
		st.push(1, true)
	}
	d := &fakeDispatcher{}
	m := newMonitor(st, d)

	n, err := m.Sweep(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)

	// 无新事件的第二次清扫不再派发
	n, err = m.Sweep(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)
	require.Len(t, d.calls, 1)
}

func TestSweepStreakResetByFocusEvent(t *testing.T) {
	t.Parallel()
	st := newFakeStore()
	st.addSession(1)
	// 时间序：4条分神、1条专注、5条分神
	for i := 0; i < 4; i++ {
		st.push(1, true)
	}
	st.push(1, false)
	for i := 0; i < 5; i++ {
		st.push(1, true)
	}
	d := &fakeDispatcher{}

	n, err := newMonitor(st, d).Sweep(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, 5, d.calls[0].Streak)
}

func TestSweepPublishFailureRollsBackFlag(t *testing.T) {
	t.Parallel()
	st := newFakeStore()
	st.addSession(1)
	for i := 0; i < 5; i++ {
		st.push(1, true)
	}
	d := &fakeDispatcher{err: errors.New("无订阅者")}
	m := newMonitor(st, d)

	n, err := m.Sweep(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)
	require.False(t, st.events[1][0].InterventionTriggered, "派发失败应回滚标记")
	require.NotEmpty(t, st.cleared)

	// 标记回滚后，下一轮清扫自然重试
	d.err = nil
	n, err = m.Sweep(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestSweepSessionFailureIsolated(t *testing.T) {
	t.Parallel()
	st := newFakeStore()
	st.addSession(1)
	st.addSession(2)
	st.eventsErr[1] = errors.New("db down")
	for i := 0; i < 5; i++ {
		st.push(2, true)
	}
	d := &fakeDispatcher{}

	n, err := newMonitor(st, d).Sweep(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Len(t, d.calls, 1)
	require.Equal(t, int64(2), d.calls[0].Session.ID)
}
