package live

import (
	"context"
	"github.com/pkg/errors"
	"sync"
	"time"
)

// Message 推送到会话直播通道的一条干预消息
type Message struct {
	SessionID int64  `json:"session_id"`
	UserID    int64  `json:"user_id"`
	Text      string `json:"text"`
	// base64编码的音频，合成失败时为空，纯文本投递
	Audio        string `json:"audio,omitempty"`
	AudioOK      bool   `json:"audio_ok"`
	StreakLength int    `json:"streak_length"`
	CreatedAt    int64  `json:"created_at"`
}

// ErrNoSubscriber 会话无在线订阅者，消息无法送达
var ErrNoSubscriber = errors.New("会话无在线订阅者")

// Hub 按会话维度的直播通道。客户端按会话订阅，干预消息按会话发布
type Hub struct {
	mu      sync.Mutex
	brokers map[int64]*broker[Message]
}

func NewHub() *Hub {
	return &Hub{
		brokers: make(map[int64]*broker[Message]),
	}
}

// Subscribe 订阅一个会话的直播通道，ctx结束时自动退订
func (h *Hub) Subscribe(ctx context.Context, sessionID int64) <-chan Message {
	h.mu.Lock()
	b, ok := h.brokers[sessionID]
	if !ok {
		b = newBroker[Message]()
		h.brokers[sessionID] = b
	}
	h.mu.Unlock()
	return b.subscribe(ctx)
}

// Publish 向会话的所有订阅者投递消息。无人订阅视为投递失败，由调用方决定重试
func (h *Hub) Publish(sessionID int64, msg Message) error {
	if msg.CreatedAt == 0 {
		msg.CreatedAt = time.Now().Unix()
	}
	h.mu.Lock()
	b, ok := h.brokers[sessionID]
	h.mu.Unlock()
	if !ok {
		return errors.WithMessagef(ErrNoSubscriber, "session:%d", sessionID)
	}
	if b.publish(msg) == 0 {
		return errors.WithMessagef(ErrNoSubscriber, "session:%d", sessionID)
	}
	return nil
}

// SubscriberCount 会话当前订阅者数量
func (h *Hub) SubscriberCount(sessionID int64) int {
	h.mu.Lock()
	b, ok := h.brokers[sessionID]
	h.mu.Unlock()
	if !ok {
		return 0
	}
	return b.subscriberCount()
}

// CloseSession 会话结束时关闭其通道
func (h *Hub) CloseSession(sessionID int64) {
	h.mu.Lock()
	b, ok := h.brokers[sessionID]
	delete(h.brokers, sessionID)
	h.mu.Unlock()
	if ok {
		b.shutdown()
	}
}

// Shutdown 关闭全部通道
func (h *Hub) Shutdown() {
	h.mu.Lock()
	brokers := h.brokers
	h.brokers = make(map[int64]*broker[Message])
	h.mu.Unlock()
	for _, b := range brokers {
		b.shutdown()
	}
}
