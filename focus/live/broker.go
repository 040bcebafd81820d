package live

import (
	"context"
	"sync"

	"github.com/hatcher/voyage/pkg/safego"
)

const bufferSize = 16

// broker 单个会话的订阅分发。慢订阅者直接丢弃消息，不阻塞发布方
type broker[T any] struct {
	subs map[chan T]struct{}
	mu   sync.RWMutex
	done chan struct{}
}

func newBroker[T any]() *broker[T] {
	return &broker[T]{
		subs: make(map[chan T]struct{}),
		done: make(chan struct{}),
	}
}

func (b *broker[T]) shutdown() {
	select {
	case <-b.done:
		return
	default:
		close(b.done)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
}

func (b *broker[T]) subscribe(ctx context.Context) <-chan T {
	b.mu.Lock()
	defer b.mu.Unlock()

	select {
	case <-b.done:
		ch := make(chan T)
		close(ch)
		return ch
	default:
	}

	sub := make(chan T, bufferSize)
	b.subs[sub] = struct{}{}

	safego.Go(ctx, func() {
		<-ctx.Done()

		b.mu.Lock()
		defer b.mu.Unlock()

		select {
		case <-b.done:
			return
		default:
		}

		delete(b.subs, sub)
		close(sub)
	})

	return sub
}

func (b *broker[T]) subscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// publish 返回成功投递的订阅者数量
func (b *broker[T]) publish(payload T) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	select {
	case <-b.done:
		return 0
	default:
	}

	delivered := 0
	for sub := range b.subs {
		select {
		case sub <- payload:
			delivered++
		default:
			// 订阅者消费过慢，丢弃本条
		}
	}
	return delivered
}
