package datastore

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// Entity is an item of a collection, identified by a stable id.
type Entity interface {
	EntityID() string
}

// Collection is a typed view of a key holding a JSON array of entities.
// Returned slices are shared with the cache and must not be modified.
type Collection[T Entity] struct {
	store *Store
	key   string
}

// NewCollection binds a collection to key.
func NewCollection[T Entity](s *Store, key string) *Collection[T] {
	return &Collection[T]{store: s, key: key}
}

// Key returns the logical key of the collection.
func (c *Collection[T]) Key() string {
	return c.key
}

// Get returns the collection using the store's default TTL.
func (c *Collection[T]) Get(ctx context.Context) ([]T, error) {
	return c.GetWithTTL(ctx, c.store.defaultTTL)
}

// GetWithTTL returns the cached collection when it is younger than ttl, otherwise it
// reloads it from the backend.
func (c *Collection[T]) GetWithTTL(ctx context.Context, ttl time.Duration) ([]T, error) {
	unlock := c.store.lockKey(c.key)
	defer unlock()

	return load[[]T](ctx, c.store, c.key, ttl)
}

// Set replaces the whole collection.
func (c *Collection[T]) Set(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}

	return replace(ctx, c.store, c.key, items)
}

// Add appends item to the collection.
func (c *Collection[T]) Add(ctx context.Context, item T) error {
	_, err := modify(ctx, c.store, c.key, func(items []T) ([]T, bool, error) {
		next := make([]T, 0, len(items)+1)
		next = append(next, items...)

		return append(next, item), true, nil
	})

	return err
}

// Update merges fields into the entity with the given id and returns the result.
// Fields is anything that encodes to a JSON object; only the keys it contains change.
// It fails with ErrNotFound, leaving the collection untouched, when no entity matches.
func (c *Collection[T]) Update(ctx context.Context, id string, fields any) (T, error) {
	var updated T

	patch, err := json.Marshal(fields)
	if err != nil {
		return updated, fmt.Errorf("%w: encode update for %q: %w", ErrInvalidUpdate, id, err)
	}

	_, err = modify(ctx, c.store, c.key, func(items []T) ([]T, bool, error) {
		idx := slices.IndexFunc(items, func(item T) bool { return item.EntityID() == id })
		if idx < 0 {
			return items, false, fmt.Errorf("%w: %s %q", ErrNotFound, c.key, id)
		}

		merged, err := merge(items[idx], patch)
		if err != nil {
			return items, false, fmt.Errorf("%s %q: %w", c.key, id, err)
		}

		next := slices.Clone(items)
		next[idx] = merged
		updated = merged

		return next, true, nil
	})

	return updated, err
}

// Remove deletes the entity with the given id. A missing id is not an error.
func (c *Collection[T]) Remove(ctx context.Context, id string) error {
	_, err := modify(ctx, c.store, c.key, func(items []T) ([]T, bool, error) {
		if !slices.ContainsFunc(items, func(item T) bool { return item.EntityID() == id }) {
			return items, false, nil
		}

		next := slices.DeleteFunc(slices.Clone(items), func(item T) bool { return item.EntityID() == id })

		return next, true, nil
	})

	return err
}

// FindByID returns the entity with the given id. The boolean is false when none matches.
func (c *Collection[T]) FindByID(ctx context.Context, id string) (T, bool, error) {
	var zero T

	items, err := c.Get(ctx)
	if err != nil {
		return zero, false, err
	}

	for _, item := range items {
		if item.EntityID() == id {
			return item, true, nil
		}
	}

	return zero, false, nil
}

// Subscribe registers fn for every committed write of the collection.
// The current value is not replayed and writes are delivered in commit order.
// The returned function removes the registration.
func (c *Collection[T]) Subscribe(fn func([]T)) func() {
	return c.store.subscribe(c.key, func(v any) {
		if items, ok := v.([]T); ok {
			fn(items)
		}
	})
}

// merge decodes patch over a copy of item, so only the fields present in patch change.
// Fields of the wrong shape fail with ErrInvalidUpdate.
func merge[T any](item T, patch []byte) (T, error) {
	raw, err := json.Marshal(item)
	if err != nil {
		return item, err
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return item, err
	}

	if err := json.Unmarshal(patch, &out); err != nil {
		return item, fmt.Errorf("%w: %w", ErrInvalidUpdate, err)
	}

	return out, nil
}
