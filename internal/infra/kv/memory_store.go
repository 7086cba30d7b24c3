package kv

import (
	"context"
	"strconv"
	"sync"
	"time"

	"souksync/internal/domain"
	"souksync/internal/domain/ports/repository"
)

var _ repository.KeyValueStore = (*MemoryStore)(nil)

type memEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore is the process-local fallback with the same TTL semantics as
// the Redis store. Expired entries are evicted lazily on read. Atomicity is
// a single mutex around every read-modify-write.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memEntry
	now     func() time.Time // overridable in tests
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memEntry),
		now:     time.Now,
	}
}

// get returns the live entry for key, lazily evicting an expired one.
// Caller must hold mu.
func (s *MemoryStore) get(key string) (memEntry, bool) {
	e, ok := s.entries[key]
	if !ok {
		return memEntry{}, false
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, key)
		return memEntry{}, false
	}
	return e, true
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.get(key)
	if !ok {
		return "", domain.ErrNotFound
	}
	return e.value, nil
}

func (s *MemoryStore) SetWithTTL(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memEntry{value: value, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) IncrWithTTL(_ context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.get(key)
	if !ok {
		// Fresh window.
		s.entries[key] = memEntry{value: "1", expiresAt: s.now().Add(ttl)}
		return 1, nil
	}
	count, err := strconv.ParseInt(e.value, 10, 64)
	if err != nil {
		return 0, domain.ErrInvalidArgument
	}
	count++
	// Increment keeps the original window's expiry.
	s.entries[key] = memEntry{value: strconv.FormatInt(count, 10), expiresAt: e.expiresAt}
	return count, nil
}

func (s *MemoryStore) Del(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) CompareAndDelete(_ context.Context, key, expected string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.get(key)
	if !ok || e.value != expected {
		return false, nil
	}
	delete(s.entries, key)
	return true, nil
}
