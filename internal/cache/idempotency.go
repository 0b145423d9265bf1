// Package cache provides the settlement idempotency store: a mapping from
// client idempotency keys to settled record IDs with a bounded lifetime.
package cache

import (
	"context"
	"sync"
	"time"
)

// IdempotencyStore remembers which idempotency key settled which record.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (recordID string, found bool, err error)
	Set(ctx context.Context, key, recordID string, ttl time.Duration) error
}

type memoryEntry struct {
	recordID  string
	expiresAt time.Time
}

// MemoryIdempotencyStore is a single-process store used when Redis is not
// configured (development, tests).
type MemoryIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryIdempotencyStore creates an empty in-memory store.
func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns the record ID stored under key, if present and not expired.
func (s *MemoryIdempotencyStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return "", false, nil
	}
	if s.now().After(entry.expiresAt) {
		delete(s.entries, key)
		return "", false, nil
	}
	return entry.recordID, true, nil
}

// Set stores the key → record mapping for ttl.
func (s *MemoryIdempotencyStore) Set(_ context.Context, key, recordID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = memoryEntry{
		recordID:  recordID,
		expiresAt: s.now().Add(ttl),
	}
	return nil
}
