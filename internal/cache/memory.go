package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// MemoryStore is an in-process Store used by tests and cache-less development
// runs. Expiry is evaluated lazily on read against an injectable clock.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// SetClock overrides the time source used for TTL checks.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryStore) SetJSON(_ context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.put(key, string(payload), ttl)
	return nil
}

func (s *MemoryStore) GetJSON(_ context.Context, key string, target any) (bool, error) {
	payload, found := s.get(key)
	if !found {
		return false, nil
	}
	if err := json.Unmarshal([]byte(payload), target); err != nil {
		// Mirrors the Redis store: an unparseable entry is a miss.
		return false, nil
	}
	return true, nil
}

func (s *MemoryStore) SetString(_ context.Context, key, value string, ttl time.Duration) error {
	s.put(key, value, ttl)
	return nil
}

func (s *MemoryStore) GetString(_ context.Context, key string) (string, bool, error) {
	value, found := s.get(key)
	return value, found, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// PutRaw stores a value verbatim, bypassing JSON marshaling. Tests use it to
// seed corrupt payloads.
func (s *MemoryStore) PutRaw(key, value string, ttl time.Duration) {
	s.put(key, value, ttl)
}

func (s *MemoryStore) put(key, value string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.entries[key] = entry
}

func (s *MemoryStore) get(key string) (string, bool) {
	s.mu.RLock()
	entry, found := s.entries[key]
	now := s.now()
	s.mu.RUnlock()
	if !found {
		return "", false
	}
	if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return "", false
	}
	return entry.value, true
}
