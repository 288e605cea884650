// Package lock provides a Redis-backed single-owner lease per order.
package lock

import (
	"context"
	"errors"
	"time"

	"luxlife-studio/pkg/rediskey"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var ErrNotAcquired = errors.New("lock: already held")

var Module = fx.Module("lock", fx.Provide(NewLocker))

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type Locker interface {
	// Acquire returns ErrNotAcquired when another owner holds the order.
	Acquire(ctx context.Context, orderID string, ttl time.Duration) (Lease, error)
}

type Lease interface {
	Release(ctx context.Context) error
}

type redisLocker struct {
	rdb *redis.Client
}

func NewLocker(rdb *redis.Client) Locker {
	return &redisLocker{rdb: rdb}
}

func (l *redisLocker) Acquire(ctx context.Context, orderID string, ttl time.Duration) (Lease, error) {
	key := rediskey.BuildOrderLockKey(orderID)
	token := uuid.NewString()

	ok, err := l.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotAcquired
	}

	return &lease{rdb: l.rdb, key: key, token: token}, nil
}

type lease struct {
	rdb   *redis.Client
	key   string
	token string
}

// Release deletes the key only if this lease still owns it.
func (l *lease) Release(ctx context.Context) error {
	return releaseScript.Run(ctx, l.rdb, []string{l.key}, l.token).Err()
}
