package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	njerrors "github.com/Valtora/nojoin/pkg/errors"
)

// lockKey guards the whole installation: at most one pipeline run is
// active at a time, so identity operations never race an in-flight
// fusion.
const lockKey = "nojoin:pipeline:lock"

// DefaultLockTTL bounds how long a crashed run can hold the lock.
const DefaultLockTTL = 10 * time.Minute

// releaseScript deletes the lock only if the caller still owns it.
var releaseScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	end
	return 0
`)

// Locker is the single-flight guard for pipeline runs.
type Locker interface {
	// Acquire takes the lock or fails with ErrPipelineBusy.
	Acquire(ctx context.Context) (release func(context.Context) error, err error)
}

// RedisLock implements Locker with a fenced SET NX key.
type RedisLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLock creates a lock with the given TTL; zero means
// DefaultLockTTL.
func NewRedisLock(client *redis.Client, ttl time.Duration) *RedisLock {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &RedisLock{client: client, ttl: ttl}
}

func (l *RedisLock) Acquire(ctx context.Context) (func(context.Context) error, error) {
	token := uuid.New().String()

	ok, err := l.client.SetNX(ctx, lockKey, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquiring pipeline lock: %w", err)
	}
	if !ok {
		return nil, njerrors.ErrPipelineBusy
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{lockKey}, token).Err(); err != nil {
			return fmt.Errorf("releasing pipeline lock: %w", err)
		}
		return nil
	}
	return release, nil
}

// NoopLock is a Locker that always succeeds. Used when no Redis is
// configured (single-process installations).
type NoopLock struct{}

func (NoopLock) Acquire(ctx context.Context) (func(context.Context) error, error) {
	return func(context.Context) error { return nil }, nil
}
