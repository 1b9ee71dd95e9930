package lock

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLock(t *testing.T, acquireTimeout time.Duration) (*miniredis.Miniredis, *DistributedLock) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, New(client, "stl:lineage:", 10*time.Second, acquireTimeout)
}

func TestAcquireAndRelease(t *testing.T) {
	mr, l := setupTestLock(t, 200*time.Millisecond)
	ctx := context.Background()

	id, err := l.Acquire(ctx, "7:Line A")
	require.NoError(t, err)
	assert.True(t, mr.Exists("stl:lineage:7:Line A"))

	// a stale token does not release someone else's lock
	require.NoError(t, l.Release(ctx, "7:Line A", "not-the-owner"))
	assert.True(t, mr.Exists("stl:lineage:7:Line A"))

	require.NoError(t, l.Release(ctx, "7:Line A", id))
	assert.False(t, mr.Exists("stl:lineage:7:Line A"))
}

func TestAcquireTimesOutWhileHeld(t *testing.T) {
	_, l := setupTestLock(t, 100*time.Millisecond)
	ctx := context.Background()

	_, err := l.Acquire(ctx, "k")
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "k")
	assert.True(t, errors.Is(err, ErrTimeout), "got %v", err)

	// other keys are independent
	_, err = l.Acquire(ctx, "other")
	assert.NoError(t, err)
}

func TestLockUnlock(t *testing.T) {
	mr, l := setupTestLock(t, 100*time.Millisecond)
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "k")
	require.NoError(t, err)
	assert.True(t, mr.Exists("stl:lineage:k"))
	unlock()
	assert.False(t, mr.Exists("stl:lineage:k"))

	unlock, err = l.Lock(ctx, "k")
	require.NoError(t, err)
	unlock()
}

func TestAcquireHonoursContext(t *testing.T) {
	_, l := setupTestLock(t, 5*time.Second)
	_, err := l.Acquire(context.Background(), "k")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()
	_, err = l.Acquire(ctx, "k")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestUnreachableRedisIsNotTimeout(t *testing.T) {
	mr, l := setupTestLock(t, time.Second)
	mr.Close()

	_, err := l.Acquire(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestUnlockLogsReleaseFailure(t *testing.T) {
	var buf bytes.Buffer
	hlog.SetOutput(&buf)
	t.Cleanup(func() { hlog.SetOutput(os.Stderr) })

	mr, l := setupTestLock(t, time.Second)
	unlock, err := l.Lock(context.Background(), "7:Line A")
	require.NoError(t, err)

	mr.Close()
	unlock()

	assert.Contains(t, buf.String(), `lineage lock "7:Line A" not released`)
}
