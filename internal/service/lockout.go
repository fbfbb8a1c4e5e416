package service

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"dirgate/internal/domain"
	"dirgate/internal/metrics"
)

const lockoutStripes = 64

// Lockout enforces the failed-login lockout policy. Per-user striped mutexes
// keep the read-increment-write of the failure counter atomic under
// concurrent login attempts against the same account.
type Lockout struct {
	users     domain.UserRepository
	threshold int
	duration  time.Duration
	now       func() time.Time

	stripes [lockoutStripes]sync.Mutex
}

// NewLockout creates a lockout policy. threshold is the number of consecutive
// failures that locks the account, duration how long the lock holds.
func NewLockout(users domain.UserRepository, threshold int, duration time.Duration) *Lockout {
	return &Lockout{
		users:     users,
		threshold: threshold,
		duration:  duration,
		now:       time.Now,
	}
}

func (l *Lockout) stripe(userID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(userID))
	return &l.stripes[h.Sum32()%lockoutStripes]
}

// Admit checks whether the account may attempt a login. An expired lock is
// cleared lazily on access; an active lock returns *domain.LockedError.
func (l *Lockout) Admit(ctx context.Context, u *domain.User) error {
	if u.LockedUntil == nil {
		return nil
	}
	now := l.now()
	if u.Locked(now) {
		return &domain.LockedError{Until: *u.LockedUntil}
	}

	mu := l.stripe(u.ID)
	mu.Lock()
	defer mu.Unlock()
	if err := l.users.SetLockout(ctx, u.ID, 0, nil); err != nil {
		return err
	}
	u.FailedAttempts = 0
	u.LockedUntil = nil
	return nil
}

// RecordFailure increments the failure counter and locks the account when it
// reaches the threshold. It returns the lock expiry when the account locked.
func (l *Lockout) RecordFailure(ctx context.Context, userID string) (*time.Time, error) {
	mu := l.stripe(userID)
	mu.Lock()
	defer mu.Unlock()

	// Re-read under the stripe so concurrent failures each count.
	u, err := l.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	attempts := u.FailedAttempts + 1
	if attempts >= l.threshold {
		until := l.now().Add(l.duration).UTC().Truncate(time.Second)
		if err := l.users.SetLockout(ctx, userID, attempts, &until); err != nil {
			return nil, err
		}
		metrics.Lockouts.Inc()
		return &until, nil
	}
	if err := l.users.SetLockout(ctx, userID, attempts, nil); err != nil {
		return nil, err
	}
	return nil, nil
}

// RecordSuccess resets the failure counter after a successful login.
func (l *Lockout) RecordSuccess(ctx context.Context, userID string) error {
	mu := l.stripe(userID)
	mu.Lock()
	defer mu.Unlock()
	return l.users.SetLockout(ctx, userID, 0, nil)
}

// Unlock clears a lock immediately, regardless of its expiry. Used by the
// administrative unlock operation.
func (l *Lockout) Unlock(ctx context.Context, userID string) error {
	mu := l.stripe(userID)
	mu.Lock()
	defer mu.Unlock()
	return l.users.SetLockout(ctx, userID, 0, nil)
}

// Remaining reports how many attempts are left before the account locks.
func (l *Lockout) Remaining(attempts int) int {
	r := l.threshold - attempts
	if r < 0 {
		return 0
	}
	return r
}
