/*
Package runlock provides named, expiring locks for long-running jobs.

PURPOSE:
  A year import walks 372 candidate dates one after the other. Two runs for
  the same year would race on every day's merge, so a run holds a lock for
  "import:<year>" while it works.

IMPLEMENTATIONS:
  Local: process-local, for a single server instance (default)
  Redis: github.com/bsm/redislock, for several instances sharing a Redis

  Both return ErrNotObtained when the key is held. Neither blocks.
*/
package runlock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotObtained is returned when the key is already held.
var ErrNotObtained = errors.New("runlock: not obtained")

// Locker hands out named locks.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}

// Lock is a held lock.
type Lock interface {
	Release(ctx context.Context) error
}

// =============================================================================
// LOCAL LOCKER
// =============================================================================

// Local is an in-process Locker. A lock past its TTL may be taken over.
type Local struct {
	mu   sync.Mutex
	held map[string]*localLock
	now  func() time.Time
}

// NewLocal creates an empty in-process locker.
func NewLocal() *Local {
	return &Local{held: make(map[string]*localLock), now: time.Now}
}

type localLock struct {
	parent    *Local
	key       string
	expiresAt time.Time
}

// Obtain takes key for ttl, or fails with ErrNotObtained.
func (l *Local) Obtain(_ context.Context, key string, ttl time.Duration) (Lock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if cur, ok := l.held[key]; ok && now.Before(cur.expiresAt) {
		return nil, ErrNotObtained
	}
	lock := &localLock{parent: l, key: key, expiresAt: now.Add(ttl)}
	l.held[key] = lock
	return lock, nil
}

// Release frees the key if this lock still holds it.
func (ll *localLock) Release(_ context.Context) error {
	ll.parent.mu.Lock()
	defer ll.parent.mu.Unlock()

	if ll.parent.held[ll.key] == ll {
		delete(ll.parent.held, ll.key)
	}
	return nil
}
