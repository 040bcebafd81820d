package redisx

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/net/context"
	"time"
)

// DistributedLock 分布式锁
type DistributedLock struct {
	client     Redis
	key        string
	value      string
	expiration time.Duration
}

// NewDistributedLock 创建分布式锁
func NewDistributedLock(client Redis, key string, value string, expiration *time.Duration) *DistributedLock {
	exp := 30 * time.Second
	if expiration != nil {
		exp = *expiration
	}
	if value == "" {
		value = uuid.New().String()
	}
	return &DistributedLock{
		client:     client,
		key:        key,
		value:      value,
		expiration: exp,
	}
}

// TryLock 尝试获取锁（非阻塞）
func (l *DistributedLock) TryLock(ctx context.Context) (bool, error) {
	result, err := l.client.SetNX(ctx, l.key, l.value, l.expiration).Result()
	if err != nil {
		return false, errors.WithMessagef(err, "获取锁失败")
	}
	return result, nil
}

// Unlock 释放锁（使用Lua脚本保证原子性，只能释放自己持有的锁）
func (l *DistributedLock) Unlock(ctx context.Context) error {
	script := `
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		else
			return 0
		end
	`

	result, err := l.client.Eval(ctx, script, []string{l.key}, l.value).Result()
	if err != nil {
		return errors.WithMessagef(err, "释放锁失败")
	}
	if result == int64(0) {
		return errors.New("释放锁失败：锁不存在或已被其他持有者占用")
	}
	return nil
}

// IsLocked 检查锁是否被持有
func (l *DistributedLock) IsLocked(ctx context.Context) (bool, error) {
	val, err := l.client.Get(ctx, l.key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, errors.WithMessagef(err, "检查锁状态失败")
	}
	return val != "", nil
}
