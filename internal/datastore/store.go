// Package datastore provides a read-through cache with change notification over a
// key-value persistence backend. Each key holds one JSON document, usually a collection
// of entities.
package datastore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/serroba/wastefinder/internal/messaging"
	"go.uber.org/zap"
)

// DefaultTTL is the validity of cache entries written by Set.
const DefaultTTL = 5 * time.Minute

type cacheEntry struct {
	data      any
	timestamp time.Time
	ttl       time.Duration
}

func (e cacheEntry) live(now time.Time) bool {
	return now.Sub(e.timestamp) < e.ttl
}

type subscription struct {
	id int
	fn func(any)
}

// Store caches backend values per key and fans out changes to subscribers.
type Store struct {
	backend    Backend
	logger     *zap.Logger
	metrics    MetricsCollector
	publish    messaging.Publish[ChangeEvent]
	origin     string
	defaultTTL time.Duration
	now        func() time.Time

	mu      sync.Mutex // guards cache, subs, nextID, locks and pending
	cache   map[string]cacheEntry
	subs    map[string][]subscription
	nextID  int
	locks   map[string]*sync.Mutex
	pending map[string]*notifyQueue
}

// notifyQueue holds committed values of one key in commit order until they are delivered.
type notifyQueue struct {
	values   []any
	draining bool
}

// Option configures a Store.
type Option func(*Store)

// WithDefaultTTL sets the TTL used for entries refreshed by writes.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.defaultTTL = ttl
		}
	}
}

// WithClock replaces the store's clock.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMetrics records cache hits and misses.
func WithMetrics(m MetricsCollector) Option {
	return func(s *Store) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithChangePublisher announces committed writes. Origin identifies this store so it can
// ignore its own events.
func WithChangePublisher(publish messaging.Publish[ChangeEvent], origin string) Option {
	return func(s *Store) {
		s.publish = publish
		s.origin = origin
	}
}

// New creates a store over backend.
func New(backend Backend, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		backend:    backend,
		logger:     logger,
		metrics:    disabledMetrics{},
		defaultTTL: DefaultTTL,
		now:        time.Now,
		cache:      make(map[string]cacheEntry),
		subs:       make(map[string][]subscription),
		locks:      make(map[string]*sync.Mutex),
		pending:    make(map[string]*notifyQueue),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Origin returns the identifier attached to change events published by this store.
func (s *Store) Origin() string {
	return s.origin
}

// ClearCache drops cached entries for keys, or every entry when no key is given.
// Persisted data is untouched.
func (s *Store) ClearCache(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(keys) == 0 {
		clear(s.cache)

		return
	}

	for _, key := range keys {
		delete(s.cache, key)
	}
}

// Seed persists defaults for keys that currently hold no data. Existing values are
// never overwritten and subscribers are not notified.
func (s *Store) Seed(ctx context.Context, defaults map[string]any) error {
	var errs []error

	for _, key := range slices.Sorted(maps.Keys(defaults)) {
		if err := s.seedKey(ctx, key, defaults[key]); err != nil {
			errs = append(errs, fmt.Errorf("seed %q: %w", key, err))
		}
	}

	return errors.Join(errs...)
}

func (s *Store) seedKey(ctx context.Context, key string, value any) error {
	unlock := s.lockKey(key)
	defer unlock()

	raw, err := s.backend.Load(ctx, key)

	switch {
	case errors.Is(err, ErrNoValue):
	case err != nil:
		return err
	case !isEmptyDocument(raw):
		return nil
	}

	s.logger.Info("seeding default value", zap.String("key", key))

	return s.persist(ctx, key, value)
}

// HandleChange drops the cache entry named by an event from another store instance.
func (s *Store) HandleChange(_ context.Context, event *ChangeEvent) error {
	if event.Origin != "" && event.Origin == s.origin {
		return nil
	}

	s.ClearCache(event.Key)

	s.logger.Debug("cache invalidated by remote change",
		zap.String("key", event.Key),
		zap.String("origin", event.Origin),
	)

	return nil
}

// lockKey serializes read-modify-write sequences on a key.
func (s *Store) lockKey(key string) func() {
	s.mu.Lock()

	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}

	s.mu.Unlock()

	l.Lock()

	return l.Unlock
}

func (s *Store) cached(key string, now time.Time) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.cache[key]
	if !ok || !entry.live(now) {
		return nil, false
	}

	return entry.data, true
}

func (s *Store) remember(key string, data any, ttl time.Duration, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache[key] = cacheEntry{data: data, timestamp: now, ttl: ttl}
}

// persist writes data and refreshes the cache. The caller holds the key lock.
func (s *Store) persist(ctx context.Context, key string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}

	if err := s.backend.Save(ctx, key, raw); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrPersist, key, err)
	}

	s.remember(key, data, s.defaultTTL, s.now())

	return nil
}

// discard removes a corrupt persisted value so the next read starts clean.
func (s *Store) discard(ctx context.Context, key string, cause error) {
	s.logger.Warn("discarding corrupt persisted value",
		zap.String("key", key),
		zap.Error(cause),
	)

	if err := s.backend.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to delete corrupt persisted value",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

func (s *Store) subscribe(key string, fn func(any)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.subs[key] = append(s.subs[key], subscription{id: id, fn: fn})

	var once sync.Once

	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()

			s.subs[key] = slices.DeleteFunc(s.subs[key], func(sub subscription) bool {
				return sub.id == id
			})
		})
	}
}

// enqueue records a committed value for delivery. The caller holds the key lock, so
// values are queued in commit order.
func (s *Store) enqueue(key string, data any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.pending[key]
	if !ok {
		q = &notifyQueue{}
		s.pending[key] = q
	}

	q.values = append(q.values, data)
}

// committed notifies subscribers in registration order and announces each queued change.
// One caller at a time drains a key's queue, so subscribers observe writes in commit
// order. Writers that find the queue being drained return at once and their values are
// delivered by the draining caller. It must be called without holding the key lock so
// callbacks may read and write the store.
func (s *Store) committed(key string) {
	s.mu.Lock()

	q, ok := s.pending[key]
	if !ok || q.draining {
		s.mu.Unlock()

		return
	}

	q.draining = true

	for len(q.values) > 0 {
		data := q.values[0]
		q.values[0] = nil
		q.values = q.values[1:]
		subs := slices.Clone(s.subs[key])
		s.mu.Unlock()

		for _, sub := range subs {
			s.deliver(key, sub, data)
		}

		s.announce(key)

		s.mu.Lock()
	}

	delete(s.pending, key)
	s.mu.Unlock()
}

func (s *Store) announce(key string) {
	if s.publish == nil {
		return
	}

	event := &ChangeEvent{Key: key, Origin: s.origin, ChangedAt: s.now()}
	if err := s.publish(event); err != nil {
		s.logger.Error("failed to publish change event",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

func (s *Store) deliver(key string, sub subscription, data any) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("subscriber failed",
				zap.String("key", key),
				zap.Any("panic", r),
			)
		}
	}()

	sub.fn(data)
}

// load returns the cached value for key or reads it through from the backend.
// The caller holds the key lock.
func load[T any](ctx context.Context, s *Store, key string, ttl time.Duration) (T, error) {
	now := s.now()

	if v, ok := s.cached(key, now); ok {
		if data, ok := v.(T); ok {
			s.metrics.IncHits(key)

			return data, nil
		}
	}

	s.metrics.IncMisses(key)

	var data T

	raw, err := s.backend.Load(ctx, key)

	switch {
	case errors.Is(err, ErrNoValue):
	case err != nil:
		return data, fmt.Errorf("load %q: %w", key, err)
	default:
		if err := json.Unmarshal(raw, &data); err != nil {
			var zero T
			data = zero

			s.discard(ctx, key, err)
		}
	}

	s.remember(key, data, ttl, now)

	return data, nil
}

// replace persists data under key and notifies subscribers.
func replace[T any](ctx context.Context, s *Store, key string, data T) error {
	unlock := s.lockKey(key)

	err := s.persist(ctx, key, data)
	if err == nil {
		s.enqueue(key, data)
	}

	unlock()

	if err != nil {
		return err
	}

	s.committed(key)

	return nil
}

// modify runs a read-modify-write on key. fn reports whether it changed anything;
// unchanged values are not written back.
func modify[T any](ctx context.Context, s *Store, key string, fn func(T) (T, bool, error)) (T, error) {
	unlock := s.lockKey(key)

	current, err := load[T](ctx, s, key, s.defaultTTL)
	if err != nil {
		unlock()

		return current, err
	}

	next, changed, err := fn(current)
	if err != nil || !changed {
		unlock()

		return current, err
	}

	err = s.persist(ctx, key, next)
	if err == nil {
		s.enqueue(key, next)
	}

	unlock()

	if err != nil {
		return current, err
	}

	s.committed(key)

	return next, nil
}

func isEmptyDocument(raw []byte) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", "[]", "{}", `""`:
		return true
	default:
		return false
	}
}
