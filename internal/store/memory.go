package store

import (
	"context"
	"sync"
)

// MemoryStore keeps entries in process memory. A positive quota caps the
// summed length of keys and values, like a browser's local storage.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]string
	quota   int
	used    int
}

// NewMemory creates an empty memory store. quota <= 0 means unlimited.
func NewMemory(quota int) *MemoryStore {
	return &MemoryStore{entries: map[string]string{}, quota: quota}
}

// Get retrieves a value
func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set stores a value, failing with ErrQuotaExceeded past the quota
func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	used := m.used + len(value)
	if old, ok := m.entries[key]; ok {
		used -= len(old)
	} else {
		used += len(key)
	}
	if m.quota > 0 && used > m.quota {
		return ErrQuotaExceeded
	}
	m.entries[key] = value
	m.used = used
	return nil
}

// SetQuota changes the quota. Existing entries are kept even if over it.
func (m *MemoryStore) SetQuota(quota int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quota = quota
}

// Keys returns the number of stored keys
func (m *MemoryStore) Keys() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Close is a no-op
func (m *MemoryStore) Close() error { return nil }
