package datastore

import (
	"context"
	"errors"
)

var (
	// ErrNoValue is returned by a Backend when nothing is persisted under a key.
	ErrNoValue = errors.New("no value persisted")
	// ErrNotFound is returned when no entity matches the requested id.
	ErrNotFound = errors.New("entity not found")
	// ErrPersist wraps backend write failures.
	ErrPersist = errors.New("persist failed")
	// ErrInvalidUpdate is returned when update fields do not fit the stored document.
	ErrInvalidUpdate = errors.New("invalid update")
)

// Backend is the string-keyed persistence layer behind the cache.
// Values are JSON documents stored verbatim.
type Backend interface {
	// Load returns the raw value for key, or ErrNoValue.
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, raw []byte) error
	Delete(ctx context.Context, key string) error
}

// MetricsCollector records cache effectiveness.
type MetricsCollector interface {
	IncHits(key string)
	IncMisses(key string)
}

type disabledMetrics struct{}

func (disabledMetrics) IncHits(string)   {}
func (disabledMetrics) IncMisses(string) {}
