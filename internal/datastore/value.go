package datastore

import (
	"context"
	"encoding/json"
	"fmt"
)

// Value is a typed view of a key holding a single JSON document, such as a settings blob.
type Value[T any] struct {
	store *Store
	key   string
}

// NewValue binds a value to key.
func NewValue[T any](s *Store, key string) *Value[T] {
	return &Value[T]{store: s, key: key}
}

// Key returns the logical key of the value.
func (v *Value[T]) Key() string {
	return v.key
}

// Get returns the document, or its zero value when nothing is persisted.
func (v *Value[T]) Get(ctx context.Context) (T, error) {
	unlock := v.store.lockKey(v.key)
	defer unlock()

	return load[T](ctx, v.store, v.key, v.store.defaultTTL)
}

// Set replaces the document.
func (v *Value[T]) Set(ctx context.Context, data T) error {
	return replace(ctx, v.store, v.key, data)
}

// Update merges fields into the document and returns the result.
func (v *Value[T]) Update(ctx context.Context, fields any) (T, error) {
	patch, err := json.Marshal(fields)
	if err != nil {
		var zero T

		return zero, fmt.Errorf("%w: encode update for %q: %w", ErrInvalidUpdate, v.key, err)
	}

	return modify(ctx, v.store, v.key, func(current T) (T, bool, error) {
		merged, err := merge(current, patch)
		if err != nil {
			return current, false, fmt.Errorf("%s: %w", v.key, err)
		}

		return merged, true, nil
	})
}

// Subscribe registers fn for every committed write of the document.
func (v *Value[T]) Subscribe(fn func(T)) func() {
	return v.store.subscribe(v.key, func(data any) {
		if doc, ok := data.(T); ok {
			fn(doc)
		}
	})
}
