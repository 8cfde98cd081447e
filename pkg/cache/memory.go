package cache

import (
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	payload   []byte
	fetchedAt time.Time
}

// MemoryStore keeps payloads in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	data    map[Key]memoryItem
	maxSize int
	now     func() time.Time
}

// NewMemoryStore creates an in-memory store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		data:    make(map[Key]memoryItem),
		maxSize: 1000,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Get(_ context.Context, key Key) ([]byte, error) {
	s.mu.RLock()
	it, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrCacheMiss
	}
	out := make([]byte, len(it.payload))
	copy(out, it.payload)
	return out, nil
}

func (s *MemoryStore) Put(ctx context.Context, key Key, payload []byte) error {
	return s.PutAt(ctx, key, payload, s.now())
}

// PutAt stores payload with an explicit fetch time.
func (s *MemoryStore) PutAt(_ context.Context, key Key, payload []byte, at time.Time) error {
	b := make([]byte, len(payload))
	copy(b, payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.data[key]; !exists && s.maxSize > 0 && len(s.data) >= s.maxSize {
		s.evictOldest()
	}
	s.data[key] = memoryItem{payload: b, fetchedAt: at}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key Key) error {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) FetchedAt(_ context.Context, key Key) (time.Time, error) {
	s.mu.RLock()
	it, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return time.Time{}, ErrCacheMiss
	}
	return it.fetchedAt, nil
}

// Len returns the number of stored keys.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// evictOldest must be called with the write lock held.
func (s *MemoryStore) evictOldest() {
	var oldest Key
	var oldestAt time.Time
	first := true
	for k, it := range s.data {
		if first || it.fetchedAt.Before(oldestAt) {
			oldest, oldestAt, first = k, it.fetchedAt, false
		}
	}
	if !first {
		delete(s.data, oldest)
	}
}
