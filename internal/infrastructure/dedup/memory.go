package dedup

import (
	"context"
	"sync"
)

const (
	defaultCapacity  = 10000
	defaultEvictSize = 1000
)

// MemoryStore is an in-process, insertion-ordered set of processed webhook
// keys. Bounded memory is the requirement, not exact LRU: once the set
// grows past capacity the oldest chunk is dropped wholesale. Node-local
// only; run the Redis store when scaling horizontally.
type MemoryStore struct {
	mu       sync.Mutex
	keys     map[string]struct{}
	order    []string
	capacity int
	evict    int
}

// NewMemoryStore creates a store with the default 10k/1k bounds.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithCapacity(defaultCapacity, defaultEvictSize)
}

// NewMemoryStoreWithCapacity creates a store with explicit bounds.
func NewMemoryStoreWithCapacity(capacity, evict int) *MemoryStore {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	if evict <= 0 || evict > capacity {
		evict = defaultEvictSize
	}
	return &MemoryStore{
		keys:     make(map[string]struct{}),
		capacity: capacity,
		evict:    evict,
	}
}

// Has reports whether the key was already processed.
func (s *MemoryStore) Has(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.keys[key]
	return ok, nil
}

// Put marks the key processed, evicting the oldest entries when over
// capacity.
func (s *MemoryStore) Put(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.keys[key]; ok {
		return nil
	}
	s.keys[key] = struct{}{}
	s.order = append(s.order, key)

	if len(s.keys) > s.capacity {
		for _, old := range s.order[:s.evict] {
			delete(s.keys, old)
		}
		s.order = append([]string(nil), s.order[s.evict:]...)
	}
	return nil
}

// Len returns the number of tracked keys.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}
