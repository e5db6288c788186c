// Package idempotency deduplicates webhook deliveries. The gateway retries
// aggressively, so every event id is claimed before processing and released
// again if processing fails, letting a later retry succeed.
package idempotency

import (
	"context"
	"sync"
	"time"
)

// Store tracks processed event keys for a bounded window.
type Store interface {
	// Claim records the key as being processed. It returns false when the
	// key was already claimed within the retention window.
	Claim(ctx context.Context, key string) (bool, error)

	// Release frees a claimed key so a failed handler run can be retried.
	Release(ctx context.Context, key string) error
}

// MemoryStore is an in-process Store with a bounded entry count. Suitable
// for tests and single-instance deployments; multi-instance deployments
// need the Redis store so replicas share claims.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	ttl     time.Duration
	max     int
	now     func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a memory store retaining claims for ttl, holding
// at most max entries. Expired entries are evicted lazily; when full, the
// oldest entry goes first.
func NewMemoryStore(ttl time.Duration, max int) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]time.Time),
		ttl:     ttl,
		max:     max,
		now:     time.Now,
	}
}

func (s *MemoryStore) Claim(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, t := range s.entries {
		if now.Sub(t) > s.ttl {
			delete(s.entries, k)
		}
	}
	if _, ok := s.entries[key]; ok {
		return false, nil
	}
	if len(s.entries) >= s.max {
		var oldestKey string
		var oldest time.Time
		for k, t := range s.entries {
			if oldestKey == "" || t.Before(oldest) {
				oldestKey, oldest = k, t
			}
		}
		delete(s.entries, oldestKey)
	}
	s.entries[key] = now
	return true, nil
}

func (s *MemoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
