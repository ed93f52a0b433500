// Package cache provides a time-bounded memoization table for expensive
// aggregate queries. Entries are keyed by query signature and recomputed
// synchronously on miss or expiry; staleness within the TTL window is
// accepted behavior, not a bug.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	value    any
	storedAt time.Time
	ttl      time.Duration
}

// Memo is a concurrency-safe TTL memoization table.
type Memo struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// New creates an empty Memo.
func New() *Memo {
	return &Memo{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the cached value for key if present and not expired.
func (m *Memo) Get(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if m.now().Sub(e.storedAt) > e.ttl {
		return nil, false
	}
	return e.value, true
}

// Put stores value under key with the given expiry window.
func (m *Memo) Put(key string, value any, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{value: value, storedAt: m.now(), ttl: ttl}
}

// Purge drops all entries.
func (m *Memo) Purge() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]entry)
}

// Do returns the memoized value for key, computing and storing it via fn
// when absent or expired. Errors are never cached.
func Do[T any](m *Memo, key string, ttl time.Duration, fn func() (T, error)) (T, error) {
	if v, ok := m.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}
	v, err := fn()
	if err != nil {
		var zero T
		return zero, err
	}
	m.Put(key, v, ttl)
	return v, nil
}
