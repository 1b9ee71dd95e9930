// Package lock provides a Redis-backed lock keyed by lineage, so several
// service instances sharing one database serialise writes per plant lineage.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrTimeout is returned when the lock could not be acquired within the acquire timeout.
var ErrTimeout = errors.New("timeout acquiring lock")

// DistributedLock implements per-key exclusive locks backed by Redis.
type DistributedLock struct {
	client         *redis.Client
	prefix         string
	lockTTL        time.Duration
	acquireTimeout time.Duration
}

// New creates a DistributedLock.
//   - prefix: prepended to every key (e.g. "stl:lineage:")
//   - ttl: how long a lock is held before auto-expiry (prevents deadlock)
//   - acquireTimeout: max time to wait when trying to acquire a lock
func New(client *redis.Client, prefix string, ttl, acquireTimeout time.Duration) *DistributedLock {
	return &DistributedLock{
		client:         client,
		prefix:         prefix,
		lockTTL:        ttl,
		acquireTimeout: acquireTimeout,
	}
}

// Acquire attempts to obtain the lock for key, blocking with exponential backoff
// until success or timeout. Returns a unique lockID used for Release.
func (l *DistributedLock) Acquire(ctx context.Context, key string) (string, error) {
	lockID := uuid.New().String()
	deadline := time.Now().Add(l.acquireTimeout)
	backoff := 50 * time.Millisecond

	for {
		ok, err := l.client.SetNX(ctx, l.prefix+key, lockID, l.lockTTL).Result()
		if err != nil {
			return "", fmt.Errorf("redis setnx: %w", err)
		}
		if ok {
			return lockID, nil
		}

		if time.Now().After(deadline) {
			return "", fmt.Errorf("%w %q after %s", ErrTimeout, key, l.acquireTimeout)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}

		// exponential backoff, max 500ms
		backoff *= 2
		if backoff > 500*time.Millisecond {
			backoff = 500 * time.Millisecond
		}
	}
}

// releaseScript atomically checks that the lock value matches before deleting,
// preventing a client from releasing a lock it no longer owns.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
    return redis.call("del", KEYS[1])
else
    return 0
end
`)

// Release releases the lock only if it is still owned by the given lockID.
func (l *DistributedLock) Release(ctx context.Context, key, lockID string) error {
	_, err := releaseScript.Run(ctx, l.client, []string{l.prefix + key}, lockID).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}

// Lock acquires key and returns a function that releases it. The release uses
// a fresh context so an abandoned request still frees the lock.
func (l *DistributedLock) Lock(ctx context.Context, key string) (func(), error) {
	lockID, err := l.Acquire(ctx, key)
	if err != nil {
		return nil, err
	}
	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := l.Release(releaseCtx, key, lockID); err != nil {
			hlog.Errorf("lineage lock %q not released, held until ttl %s expires: %v", key, l.lockTTL, err)
		}
	}, nil
}
