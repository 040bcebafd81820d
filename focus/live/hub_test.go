package live

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func recvMessage(t *testing.T, ch <-chan Message) Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(time.Second):
		t.Fatal("等待消息超时")
		return Message{}
	}
}

func TestHubPublishToSubscriber(t *testing.T) {
	t.Parallel()
	hub := NewHub()
	defer hub.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := hub.Subscribe(ctx, 1)

	err := hub.Publish(1, Message{SessionID: 1, Text: "回来专注"})
	require.NoError(t, err)

	msg := recvMessage(t, ch)
	require.Equal(t, int64(1), msg.SessionID)
	require.Equal(t, "回来专注", msg.Text)
	require.NotZero(t, msg.CreatedAt)
}

func TestHubPublishNoSubscriber(t *testing.T) {
	t.Parallel()
	hub := NewHub()
	defer hub.Shutdown()

	err := hub.Publish(42, Message{SessionID: 42})
	require.ErrorIs(t, err, ErrNoSubscriber)
}

func TestHubSessionIsolation(t *testing.T) {
	t.Parallel()
	hub := NewHub()
	defer hub.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch1 := hub.Subscribe(ctx, 1)
	ch2 := hub.Subscribe(ctx, 2)

	require.NoError(t, hub.Publish(1, Message{SessionID: 1, Text: "a"}))

	msg := recvMessage(t, ch1)
	require.Equal(t, "a", msg.Text)
	select {
	case m := <-ch2:
		t.Fatalf("会话2不应收到消息: %+v", m)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubUnsubscribeOnContextCancel(t *testing.T) {
	t.Parallel()
	hub := NewHub()
	defer hub.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	hub.Subscribe(ctx, 7)
	require.Eventually(t, func() bool {
		return hub.SubscriberCount(7) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	require.Eventually(t, func() bool {
		return hub.SubscriberCount(7) == 0
	}, time.Second, 10*time.Millisecond)

	err := hub.Publish(7, Message{SessionID: 7})
	require.ErrorIs(t, err, ErrNoSubscriber)
}

func TestHubCloseSession(t *testing.T) {
	t.Parallel()
	hub := NewHub()
	defer hub.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := hub.Subscribe(ctx, 3)

	hub.CloseSession(3)
	select {
	case _, ok := <-ch:
		require.False(t, ok, "通道关闭后应返回零值")
	case <-time.After(time.Second):
		t.Fatal("等待通道关闭超时")
	}
	require.ErrorIs(t, hub.Publish(3, Message{SessionID: 3}), ErrNoSubscriber)
}

func TestHubSlowSubscriberDropped(t *testing.T) {
	t.Parallel()
	hub := NewHub()
	defer hub.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := hub.Subscribe(ctx, 9)

	// 订阅者不消费，塞满缓冲后继续发布不应阻塞
	for i := 0; i < 64; i++ {
		_ = hub.Publish(9, Message{SessionID: 9, StreakLength: i})
	}
	// 缓冲里的消息仍可读出
	msg := recvMessage(t, ch)
	require.Equal(t, int64(9), msg.SessionID)
}
