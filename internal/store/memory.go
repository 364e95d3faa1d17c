package store

import (
	"context"
	"slices"
	"sync"

	"github.com/serroba/wastefinder/internal/datastore"
)

// MemoryKV is an in-memory implementation of datastore.Backend.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryKV creates a new in-memory key-value backend.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{
		values: make(map[string][]byte),
	}
}

func (m *MemoryKV) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	raw, ok := m.values[key]
	if !ok {
		return nil, datastore.ErrNoValue
	}

	return slices.Clone(raw), nil
}

func (m *MemoryKV) Save(_ context.Context, key string, raw []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = slices.Clone(raw)

	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)

	return nil
}

// Compile-time check.
var _ datastore.Backend = (*MemoryKV)(nil)
