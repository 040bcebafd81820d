package redisx

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) Redis {
	t.Helper()
	s := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: s.Addr()})
}

func TestDistributedLockTryLock(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	client := newTestRedis(t)

	lock := NewDistributedLock(client, "test:lock", "holder-a", nil)
	acquired, err := lock.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, acquired)

	// 第二个持有者拿不到
	other := NewDistributedLock(client, "test:lock", "holder-b", nil)
	acquired, err = other.TryLock(ctx)
	require.NoError(t, err)
	require.False(t, acquired)

	locked, err := lock.IsLocked(ctx)
	require.NoError(t, err)
	require.True(t, locked)
}

func TestDistributedLockUnlock(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	client := newTestRedis(t)

	lock := NewDistributedLock(client, "test:lock", "holder-a", nil)
	acquired, err := lock.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, acquired)

	require.NoError(t, lock.Unlock(ctx))

	locked, err := lock.IsLocked(ctx)
	require.NoError(t, err)
	require.False(t, locked)

	// 释放后可再次获取
	acquired, err = lock.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, acquired)
}

func TestDistributedLockUnlockOnlyOwner(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	client := newTestRedis(t)

	lock := NewDistributedLock(client, "test:lock", "holder-a", nil)
	acquired, err := lock.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, acquired)

	// 非持有者释放失败，锁仍在
	other := NewDistributedLock(client, "test:lock", "holder-b", nil)
	require.Error(t, other.Unlock(ctx))

	locked, err := lock.IsLocked(ctx)
	require.NoError(t, err)
	require.True(t, locked)
}

func TestDistributedLockExpiration(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})

	expiration := time.Second
	lock := NewDistributedLock(client, "test:lock", "holder-a", &expiration)
	acquired, err := lock.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, acquired)

	// 过期后其他持有者可获取
	s.FastForward(2 * time.Second)
	other := NewDistributedLock(client, "test:lock", "holder-b", &expiration)
	acquired, err = other.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, acquired)
}
