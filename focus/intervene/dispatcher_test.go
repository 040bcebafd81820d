package intervene

import (
	"context"
	"testing"

	"github.com/hatcher/voyage/focus/conversation"
	"github.com/hatcher/voyage/focus/entity"
	"github.com/hatcher/voyage/focus/live"
	"github.com/hatcher/voyage/pkg/ormx"
	"github.com/hatcher/voyage/pkg/util"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeStore struct {
	user      *entity.User
	task      *entity.Task
	events    []*entity.DriftEvent
	records   []*entity.Intervention
	createErr error
}

func (f *fakeStore) GetUserByID(ctx context.Context, id int64) (*entity.User, error) {
	if f.user == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.user, nil
}

func (f *fakeStore) GetTaskByID(ctx context.Context, id int64) (*entity.Task, error) {
	if f.task == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.task, nil
}

func (f *fakeStore) LatestDriftEvents(ctx context.Context, sessionID int64, limit int) ([]*entity.DriftEvent, error) {
	return f.events, nil
}

func (f *fakeStore) CreateIntervention(ctx context.Context, record *entity.Intervention) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.records = append(f.records, record)
	return nil
}

type fakeTexts struct {
	text string
	err  error
	got  conversation.Context
}

func (f *fakeTexts) Generate(ctx context.Context, c conversation.Context) (string, error) {
	f.got = c
	return f.text, f.err
}

type fakeSpeech struct {
	audio []byte
	err   error
}

func (f *fakeSpeech) Synthesize(text string) ([]byte, error) {
	return f.audio, f.err
}

type fakePublisher struct {
	msgs []live.Message
	err  error
}

func (f *fakePublisher) Publish(sessionID int64, msg live.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msg)
	return nil
}

func escalation() Escalation {
	return Escalation{
		Session: &entity.Session{
			BaseModel: ormx.BaseModel{ID: 1},
			UserID:    10,
			TaskID:    util.Of(int64(20)),
			Status:    entity.SessionActive,
		},
		Event:  &entity.DriftEvent{IsDrifting: true},
		Streak: 5,
	}
}

func populatedStore() *fakeStore {
	user := &entity.User{Goal: "完成论文初稿"}
	user.ID = 10
	task := &entity.Task{Title: "写第三章"}
	task.ID = 20
	return &fakeStore{
		user: user,
		task: task,
		events: []*entity.DriftEvent{
			{IsDrifting: true, Reasons: "在看购物网站"},
			{IsDrifting: true, Reasons: "屏幕上是聊天窗口"},
			{IsDrifting: false},
		},
	}
}

func TestDispatchHappyPath(t *testing.T) {
	t.Parallel()
	st := populatedStore()
	texts := &fakeTexts{text: "回到第三章吧"}
	speech := &fakeSpeech{audio: []byte("mp3-bytes")}
	pub := &fakePublisher{}

	err := NewDispatcher(st, texts, speech, pub).Dispatch(context.Background(), escalation())
	require.NoError(t, err)

	require.Len(t, pub.msgs, 1)
	msg := pub.msgs[0]
	require.Equal(t, "回到第三章吧", msg.Text)
	require.True(t, msg.AudioOK)
	require.NotEmpty(t, msg.Audio)
	require.Equal(t, 5, msg.StreakLength)

	// 话术上下文组装完整
	require.Equal(t, "完成论文初稿", texts.got.Goal)
	require.Equal(t, "写第三章", texts.got.TaskTitle)
	require.Equal(t, 5, texts.got.Streak)
	require.Equal(t, []string{"在看购物网站", "屏幕上是聊天窗口"}, texts.got.RecentReasons)

	// 留档
	require.Len(t, st.records, 1)
	require.Equal(t, "回到第三章吧", st.records[0].Message)
	require.True(t, st.records[0].Delivered)
}

func TestDispatchTextFailureUsesFallback(t *testing.T) {
	t.Parallel()
	st := populatedStore()
	texts := &fakeTexts{err: errors.New("llm down")}
	pub := &fakePublisher{}

	err := NewDispatcher(st, texts, &fakeSpeech{audio: []byte("a")}, pub).Dispatch(context.Background(), escalation())
	require.NoError(t, err)
	require.Len(t, pub.msgs, 1)
	require.Equal(t, conversation.FallbackMessage(texts.got), pub.msgs[0].Text)
}

func TestDispatchSpeechFailureDeliversTextOnly(t *testing.T) {
	t.Parallel()
	st := populatedStore()
	pub := &fakePublisher{}

	err := NewDispatcher(st, &fakeTexts{text: "专心点"}, &fakeSpeech{err: errors.New("tts down")}, pub).
		Dispatch(context.Background(), escalation())
	require.NoError(t, err)
	require.Len(t, pub.msgs, 1)
	require.False(t, pub.msgs[0].AudioOK)
	require.Empty(t, pub.msgs[0].Audio)
	require.Equal(t, "专心点", pub.msgs[0].Text)
}

func TestDispatchPublishFailurePropagates(t *testing.T) {
	t.Parallel()
	st := populatedStore()
	pub := &fakePublisher{err: live.ErrNoSubscriber}

	err := NewDispatcher(st, &fakeTexts{text: "x"}, &fakeSpeech{audio: []byte("a")}, pub).
		Dispatch(context.Background(), escalation())
	require.ErrorIs(t, err, live.ErrNoSubscriber)
	require.Empty(t, st.records, "推送失败不留档")
}

func TestDispatchContextLookupFailuresDegrade(t *testing.T) {
	t.Parallel()
	st := &fakeStore{}
	texts := &fakeTexts{text: "继续加油"}
	pub := &fakePublisher{}

	err := NewDispatcher(st, texts, &fakeSpeech{audio: []byte("a")}, pub).Dispatch(context.Background(), escalation())
	require.NoError(t, err)
	require.Empty(t, texts.got.Goal)
	require.Empty(t, texts.got.TaskTitle)
	require.Len(t, pub.msgs, 1)
}

func TestDispatchAuditFailureNotPropagated(t *testing.T) {
	t.Parallel()
	st := populatedStore()
	st.createErr = errors.New("db down")
	pub := &fakePublisher{}

	err := NewDispatcher(st, &fakeTexts{text: "x"}, &fakeSpeech{audio: []byte("a")}, pub).
		Dispatch(context.Background(), escalation())
	require.NoError(t, err)
	require.Len(t, pub.msgs, 1)
}
