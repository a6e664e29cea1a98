package storage

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"

	"DailyBrief/internal/ports"
)

// MemoryStore is an in-process ArtifactStore. Documents are kept encoded so
// callers never share memory with the store.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

var _ ports.ArtifactStore = (*MemoryStore)(nil)

// NewMemoryStore builds an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: map[string][]byte{}}
}

// Read decodes the document stored under key into v.
func (m *MemoryStore) Read(_ context.Context, key string, v any) error {
	if err := validateKey(key); err != nil {
		return err
	}
	m.mu.RLock()
	raw, ok := m.docs[key]
	m.mu.RUnlock()
	if !ok {
		return errors.Wrapf(ErrNotFound, "read %s", key)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.Wrapf(err, "decode %s", key)
	}
	return nil
}

// Write stores the JSON encoding of v under key.
func (m *MemoryStore) Write(_ context.Context, key string, v any) error {
	if err := validateKey(key); err != nil {
		return err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode %s", key)
	}
	m.mu.Lock()
	m.docs[key] = raw
	m.mu.Unlock()
	return nil
}

// Exists reports whether key has been written.
func (m *MemoryStore) Exists(_ context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}
	m.mu.RLock()
	_, ok := m.docs[key]
	m.mu.RUnlock()
	return ok, nil
}

// Delete drops key from the store.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.docs, key)
	m.mu.Unlock()
	return nil
}

// Keys lists stored keys in order.
func (m *MemoryStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.docs))
	for key := range m.docs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
