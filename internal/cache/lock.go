package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
)

// ErrLocked is returned by TryLock when the lock is already held.
var ErrLocked = errors.New("lock is already held")

// ImportLockKey guards the import pipeline against concurrent runs.
var ImportLockKey = Key("lock", "import")

// Lock is a held distributed lock.
type Lock struct {
	lock *redislock.Lock
	ttl  time.Duration
}

// TryLock attempts to acquire the lock identified by key without retrying.
// If the lock is already held, ErrLocked is returned.
func TryLock(ctx context.Context, r *Redis, key string, ttl time.Duration) (*Lock, error) {
	l, err := redislock.New(r.client).Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrLocked
	}
	if err != nil {
		return nil, fmt.Errorf("cache lock %s: %w", key, err)
	}
	return &Lock{lock: l, ttl: ttl}, nil
}

// Refresh extends the lock by its original TTL.
func (l *Lock) Refresh(ctx context.Context) error {
	if err := l.lock.Refresh(ctx, l.ttl, nil); err != nil {
		return fmt.Errorf("cache lock refresh %s: %w", l.lock.Key(), err)
	}
	return nil
}

// Release frees the lock. It uses a background context so a cancelled caller
// still releases.
func (l *Lock) Release() error {
	err := l.lock.Release(context.Background())
	if err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
		return fmt.Errorf("cache lock release %s: %w", l.lock.Key(), err)
	}
	return nil
}
