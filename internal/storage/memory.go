package storage

import (
	"context"
	"sync"
)

// Memory keeps documents in a map. It is the backend for tests and for
// sessions that should not touch disk.
type Memory struct {
	mu   sync.RWMutex
	docs map[Key][]byte
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[Key][]byte)}
}

func (m *Memory) Load(_ context.Context, key Key) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.docs[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return append([]byte(nil), b...), nil
}

func (m *Memory) Save(_ context.Context, key Key, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[key] = append([]byte(nil), data...)
	return nil
}

func (m *Memory) Close() error { return nil }
