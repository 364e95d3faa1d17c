package store

import (
	"context"
	"sync"
	"time"

	"github.com/serroba/wastefinder/internal/ratelimit"
)

// RateLimitMemoryStore is an in-memory implementation of ratelimit.Store.
type RateLimitMemoryStore struct {
	mu      sync.Mutex
	entries map[string]*ratelimit.Entry
}

// NewRateLimitMemoryStore creates a new in-memory rate limit store.
func NewRateLimitMemoryStore() *RateLimitMemoryStore {
	return &RateLimitMemoryStore{
		entries: make(map[string]*ratelimit.Entry),
	}
}

func (s *RateLimitMemoryStore) Check(
	_ context.Context, key string, rule ratelimit.Rule, now time.Time,
) (ratelimit.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		entry = &ratelimit.Entry{}
		s.entries[key] = entry
	}

	return entry.Check(rule, now), nil
}

func (s *RateLimitMemoryStore) Remaining(
	_ context.Context, key string, rule ratelimit.Rule, now time.Time,
) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return rule.MaxRequests, nil
	}

	return entry.Remaining(rule, now), nil
}

// BlockedUntil reports an active block for key.
func (s *RateLimitMemoryStore) BlockedUntil(_ context.Context, key string, now time.Time) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return time.Time{}, false, nil
	}

	until, blocked := entry.BlockedUntil(now)

	return until, blocked, nil
}

// Sweep prunes every entry and forgets idle clients.
func (s *RateLimitMemoryStore) Sweep(_ context.Context, now time.Time, staleAfter time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0

	for key, entry := range s.entries {
		if entry.Sweep(now, staleAfter) {
			delete(s.entries, key)

			removed++
		}
	}

	return removed, nil
}

// Len returns the number of tracked clients.
func (s *RateLimitMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

// Compile-time checks.
var (
	_ ratelimit.Store         = (*RateLimitMemoryStore)(nil)
	_ ratelimit.Sweeper       = (*RateLimitMemoryStore)(nil)
	_ ratelimit.BlockReporter = (*RateLimitMemoryStore)(nil)
)
