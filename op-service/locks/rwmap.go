package locks

import "sync"

// RWMap is a map guarded by a read-write mutex.
// The zero value is an empty map, ready for use.
type RWMap[K comparable, V any] struct {
	mu    sync.RWMutex
	inner map[K]V
}

// CreateIfMissing returns the value at key, storing fn() there first if the key is unset.
// fn runs under the write lock, at most once per key.
func (m *RWMap[K, V]) CreateIfMissing(key K, fn func() V) V {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.inner[key]; ok {
		return v
	}
	v := fn()
	m.store(key, v)
	return v
}

func (m *RWMap[K, V]) Get(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.inner[key]
	return v, ok
}

// Set stores the value, replacing any previous value of the key.
func (m *RWMap[K, V]) Set(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store(key, value)
}

func (m *RWMap[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.inner)
}

// store requires the write lock to be held.
func (m *RWMap[K, V]) store(key K, value V) {
	if m.inner == nil {
		m.inner = make(map[K]V)
	}
	m.inner[key] = value
}
