package revision

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// DefaultLockWait bounds how long a writer waits for a busy lineage.
const DefaultLockWait = 5 * time.Second

// Locker serialises writers of one lineage. Keys are LineageKey.String(),
// so different lineages never share a lock. When the lock stays held past
// the implementation's wait budget, Lock returns an error matching
// ErrLockTimeout; any other error means the lock could not be asked for.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// KeyedMutex is the in-process Locker.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
	wait  time.Duration
}

type keyedLock struct {
	ch   chan struct{}
	refs int
}

// NewKeyedMutex returns a KeyedMutex that gives up after wait. A zero wait
// only stops on ctx.
func NewKeyedMutex(wait time.Duration) *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyedLock), wait: wait}
}

// Lock blocks until the lineage is free, the wait budget runs out or ctx is done.
func (m *KeyedMutex) Lock(ctx context.Context, k string) (func(), error) {
	m.mu.Lock()
	l, ok := m.locks[k]
	if !ok {
		l = &keyedLock{ch: make(chan struct{}, 1)}
		m.locks[k] = l
	}
	l.refs++
	m.mu.Unlock()

	var expired <-chan time.Time
	if m.wait > 0 {
		timer := time.NewTimer(m.wait)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case l.ch <- struct{}{}:
	case <-expired:
		m.release(k, l)
		return nil, fmt.Errorf("%w: %s after %s", ErrLockTimeout, k, m.wait)
	case <-ctx.Done():
		m.release(k, l)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.ch
			m.release(k, l)
		})
	}, nil
}

func (m *KeyedMutex) release(k string, l *keyedLock) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(m.locks, k)
	}
}

// size returns the number of lineages currently tracked.
func (m *KeyedMutex) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}

// TimeoutAs adapts a Locker whose wait-budget error is timeoutErr, so that
// error also matches ErrLockTimeout. Other errors pass through unchanged.
func TimeoutAs(l Locker, timeoutErr error) Locker {
	return timeoutLocker{Locker: l, timeoutErr: timeoutErr}
}

type timeoutLocker struct {
	Locker
	timeoutErr error
}

func (l timeoutLocker) Lock(ctx context.Context, key string) (func(), error) {
	unlock, err := l.Locker.Lock(ctx, key)
	if err != nil && errors.Is(err, l.timeoutErr) {
		return nil, fmt.Errorf("%w: %w", ErrLockTimeout, err)
	}
	return unlock, err
}
