// Package storage provides domain.Storage backends.
package storage

import (
	"context"
	"sync"

	"github.com/example/storefront-core/internal/domain"
)

type MemoryStorage struct {
	mu    sync.RWMutex
	store map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{store: make(map[string][]byte)}
}

func (m *MemoryStorage) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.store[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryStorage) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	m.store[key] = append([]byte(nil), value...)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.store, key)
	m.mu.Unlock()
	return nil
}

var _ domain.Storage = (*MemoryStorage)(nil)
