package cache

import (
	"context"
	"errors"
	"time"
)

// LayeredStore implements a two-level store (L1: memory, L2: file or Redis).
type LayeredStore struct {
	mem  *MemoryStore
	next Store
}

// NewLayeredStore puts an in-memory layer in front of next.
func NewLayeredStore(next Store, opts ...MemoryOption) *LayeredStore {
	return &LayeredStore{mem: NewMemoryStore(opts...), next: next}
}

func (s *LayeredStore) Get(ctx context.Context, key Key) ([]byte, error) {
	if b, err := s.mem.Get(ctx, key); err == nil {
		return b, nil
	}
	b, err := s.next.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if at, err := s.next.FetchedAt(ctx, key); err == nil {
		_ = s.mem.PutAt(ctx, key, b, at)
	}
	return b, nil
}

// Put writes through: L2 first, then memory with the L2 fetch time.
func (s *LayeredStore) Put(ctx context.Context, key Key, payload []byte) error {
	if err := s.next.Put(ctx, key, payload); err != nil {
		return err
	}
	at, err := s.next.FetchedAt(ctx, key)
	if err != nil {
		at = s.mem.now()
	}
	return s.mem.PutAt(ctx, key, payload, at)
}

func (s *LayeredStore) Delete(ctx context.Context, key Key) error {
	_ = s.mem.Delete(ctx, key)
	return s.next.Delete(ctx, key)
}

func (s *LayeredStore) FetchedAt(ctx context.Context, key Key) (time.Time, error) {
	if at, err := s.mem.FetchedAt(ctx, key); err == nil {
		return at, nil
	}
	at, err := s.next.FetchedAt(ctx, key)
	if err != nil && !errors.Is(err, ErrCacheMiss) {
		return time.Time{}, err
	}
	return at, err
}
