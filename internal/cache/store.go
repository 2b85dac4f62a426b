package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrStoreFull is returned by stores that ran out of room.
var ErrStoreFull = errors.New("cache store is full")

// Store is a backing store of raw entries. Get reports a miss with
// ok=false and a nil error.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every key that starts with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}

// MemoryStore keeps entries in process. A positive limit caps the number of
// keys; writes of new keys beyond it fail with ErrStoreFull.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
	limit   int
}

func NewMemoryStore(limit int) *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte), limit: limit}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.entries[key]
	return value, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.entries[key]; !exists && m.limit > 0 && len(m.entries) >= m.limit {
		return ErrStoreFull
	}
	m.entries[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *MemoryStore) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	return nil
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// NopStore never stores anything.
type NopStore struct{}

func (NopStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NopStore) Set(context.Context, string, []byte) error         { return nil }
func (NopStore) Delete(context.Context, string) error              { return nil }
func (NopStore) DeletePrefix(context.Context, string) error        { return nil }
