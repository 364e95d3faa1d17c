package ratelimit

import (
	"context"
	"time"
)

// Store defines the interface for rate limit data storage.
type Store interface {
	// Check evaluates a request for key at now and records it when accepted.
	Check(ctx context.Context, key string, rule Rule, now time.Time) (Result, error)
	// Remaining reports the unused quota for key without consuming it.
	Remaining(ctx context.Context, key string, rule Rule, now time.Time) (int, error)
}

// Sweeper is implemented by stores that need periodic cleanup of idle clients.
type Sweeper interface {
	Sweep(ctx context.Context, now time.Time, staleAfter time.Duration) (removed int, err error)
}

// BlockReporter is implemented by stores that can report an active block without
// recording a request.
type BlockReporter interface {
	BlockedUntil(ctx context.Context, key string, now time.Time) (time.Time, bool, error)
}

// Limiter decides whether a client may proceed under a rule.
type Limiter struct {
	store Store
	now   func() time.Time
}

// NewLimiter creates a limiter backed by store.
func NewLimiter(store Store) *Limiter {
	return &Limiter{
		store: store,
		now:   time.Now,
	}
}

// WithClock replaces the limiter's clock.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	if now != nil {
		l.now = now
	}

	return l
}

// IsRateLimited reports whether the request from clientID must be rejected.
func (l *Limiter) IsRateLimited(ctx context.Context, clientID string, rule Rule) (bool, error) {
	res, err := l.Check(ctx, clientID, rule)
	if err != nil {
		return false, err
	}

	return res.Limited, nil
}

// Check evaluates a request from clientID and returns the full decision.
func (l *Limiter) Check(ctx context.Context, clientID string, rule Rule) (Result, error) {
	if err := rule.Validate(); err != nil {
		return Result{}, err
	}

	return l.store.Check(ctx, clientID, rule, l.now())
}

// RemainingRequests returns how many requests clientID may still make in the current window.
func (l *Limiter) RemainingRequests(ctx context.Context, clientID string, rule Rule) (int, error) {
	if err := rule.Validate(); err != nil {
		return 0, err
	}

	return l.store.Remaining(ctx, clientID, rule, l.now())
}

// Exhausted reports whether clientID has no capacity left under rule, either because it
// is blocked or because its window is full. It never consumes quota.
func (l *Limiter) Exhausted(ctx context.Context, clientID string, rule Rule) (bool, error) {
	if err := rule.Validate(); err != nil {
		return false, err
	}

	now := l.now()

	if reporter, ok := l.store.(BlockReporter); ok {
		_, blocked, err := reporter.BlockedUntil(ctx, clientID, now)
		if err != nil {
			return false, err
		}

		if blocked {
			return true, nil
		}
	}

	remaining, err := l.store.Remaining(ctx, clientID, rule, now)
	if err != nil {
		return false, err
	}

	return remaining == 0, nil
}

// Store returns the underlying rate limit store.
func (l *Limiter) Store() Store {
	return l.store
}
