package store

import (
	"context"
	"maps"
	"slices"
	"sync"
)

// Memory is a process-local store.
type Memory struct {
	mu     sync.RWMutex
	values map[string][]byte
	writes int
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(v), nil
}

func (m *Memory) Write(_ context.Context, snapshot map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range snapshot {
		m.values[k] = slices.Clone(v)
	}
	m.writes++
	return nil
}

// Writes returns how many snapshots have been written.
func (m *Memory) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

// Keys returns the stored keys in sorted order.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.values))
}

func (m *Memory) Close() error { return nil }
