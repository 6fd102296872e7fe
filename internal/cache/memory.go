package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is a TTL-aware in-process store with the same contract as
// RedisStore. It serves tests and single-binary development runs.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore builds an empty store. The now function defaults to
// time.Now and exists so tests can control expiry.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{entries: make(map[string]memoryEntry), now: now}
}

// Get returns the value for key if it exists and has not expired. Expired
// entries are removed lazily.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if s.now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false, nil
	}
	return entry.value, true, nil
}

// Set stores value under key until the TTL elapses. A non-positive TTL is a
// no-op.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	s.entries[key] = memoryEntry{value: value, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}
