package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps entries in a process-local map. With a quota it behaves
// like a browser storage area: a write that would exceed the budget first
// purges expired entries and fails with ErrQuotaExceeded if that is not
// enough. Live entries are never evicted.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memItem
	size  int64
	quota int64
	now   func() time.Time
}

type memItem struct {
	value   []byte
	expires time.Time
}

func (it memItem) expired(now time.Time) bool {
	return !it.expires.IsZero() && !now.Before(it.expires)
}

// NewMemoryStore creates a store; quota <= 0 means unbounded.
func NewMemoryStore(quota int64) *MemoryStore {
	return &MemoryStore{
		items: make(map[string]memItem),
		quota: quota,
		now:   time.Now,
	}
}

func (s *MemoryStore) Name() string {
	return "memory"
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[key]
	return it.value, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.quota > 0 && s.size+s.delta(key, value) > s.quota {
		s.purgeExpired(now)
		if s.size+s.delta(key, value) > s.quota {
			return ErrQuotaExceeded
		}
	}

	// Copy so callers can reuse their buffer.
	buf := make([]byte, len(value))
	copy(buf, value)
	it := memItem{value: buf}
	if ttl > 0 {
		it.expires = now.Add(ttl)
	}
	s.size += s.delta(key, value)
	s.items[key] = it
	return nil
}

func (s *MemoryStore) delta(key string, value []byte) int64 {
	d := int64(len(key) + len(value))
	if old, ok := s.items[key]; ok {
		d -= int64(len(key) + len(old.value))
	}
	return d
}

// purgeExpired must be called with the write lock held.
func (s *MemoryStore) purgeExpired(now time.Time) {
	for k, it := range s.items {
		if it.expired(now) {
			s.size -= int64(len(k) + len(it.value))
			delete(s.items, k)
		}
	}
}

func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		if it, ok := s.items[k]; ok {
			s.size -= int64(len(k) + len(it.value))
			delete(s.items, k)
		}
	}
	return nil
}

func (s *MemoryStore) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (s *MemoryStore) Size() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}
