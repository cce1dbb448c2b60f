package kv

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

type entry struct {
	value   string
	expires time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

// MemoryStore keeps entries in a map. Expired entries are dropped lazily.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]entry), now: time.Now}
}

func (s *MemoryStore) Add(_ context.Context, key, value string, ttl time.Duration) error {
	if err := checkKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.entries[key]; ok && !e.expired(now) {
		return fmt.Errorf("%w: %s", ErrKeyExists, key)
	}
	e := entry{value: value}
	if ttl > 0 {
		e.expires = now.Add(ttl)
	}
	s.entries[key] = e
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok || e.expired(s.now()) {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return e.value, nil
}

func (s *MemoryStore) Update(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || e.expired(s.now()) {
		delete(s.entries, key)
		return fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	e.value = value
	s.entries[key] = e
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	delete(s.entries, key)
	if !ok || e.expired(s.now()) {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return nil
}

func (s *MemoryStore) Keys(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	keys := make([]string, 0, len(s.entries))
	for k, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, k)
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *MemoryStore) Close() error { return nil }
