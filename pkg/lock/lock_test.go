package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T) (Locker, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewLocker(rdb), mr
}

func TestAcquireIsExclusive(t *testing.T) {
	locker, mr := newTestLocker(t)
	ctx := context.Background()

	lease, err := locker.Acquire(ctx, "order-1", time.Minute)
	require.NoError(t, err)
	require.True(t, mr.Exists("order:lock:order-1"))

	_, err = locker.Acquire(ctx, "order-1", time.Minute)
	require.ErrorIs(t, err, ErrNotAcquired)

	_, err = locker.Acquire(ctx, "order-2", time.Minute)
	require.NoError(t, err)

	require.NoError(t, lease.Release(ctx))
	require.False(t, mr.Exists("order:lock:order-1"))

	_, err = locker.Acquire(ctx, "order-1", time.Minute)
	require.NoError(t, err)
}

func TestExpiredLeaseCannotReleaseNewOwner(t *testing.T) {
	locker, mr := newTestLocker(t)
	ctx := context.Background()

	stale, err := locker.Acquire(ctx, "order-1", time.Second)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	_, err = locker.Acquire(ctx, "order-1", time.Minute)
	require.NoError(t, err)

	require.NoError(t, stale.Release(ctx))
	require.True(t, mr.Exists("order:lock:order-1"))
}
