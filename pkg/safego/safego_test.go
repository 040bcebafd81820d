package safego

import (
	"context"
	"testing"
	"time"
)

func TestGoRunsFunc(t *testing.T) {
	t.Parallel()
	done := make(chan struct{})
	Go(context.Background(), func() {
		close(done)
	})
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("等待goroutine执行超时")
	}
}

func TestGoRecoversPanic(t *testing.T) {
	t.Parallel()
	panicked := make(chan struct{})
	Go(context.Background(), func() {
		defer close(panicked)
		panic("boom")
	})
	// panic被Recovery捕获，测试进程不崩
	select {
	case <-panicked:
	case <-time.After(time.Second):
		t.Fatal("等待goroutine执行超时")
	}
}
