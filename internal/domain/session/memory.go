package session

import "sync"

// MemoryPersister keeps session values in memory. It backs tests and serves
// as the fast mirror in front of the SQLite persister.
type MemoryPersister struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryPersister creates an empty in-memory persister.
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{values: make(map[string]string)}
}

// Get returns the stored value and whether the key exists.
func (m *MemoryPersister) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set stores a value under key.
func (m *MemoryPersister) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Delete removes a key. Deleting a missing key is not an error.
func (m *MemoryPersister) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Close is a no-op for the in-memory persister.
func (m *MemoryPersister) Close() error { return nil }
