package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Store is an in-process key/value cache with per-entry expiry.
// Entries are never invalidated explicitly; they only age out.
type Store struct {
	mu         sync.RWMutex
	entries    map[string]entry
	maxEntries int
	now        func() time.Time
}

func NewStore(maxEntries int) *Store {
	return &Store{
		entries:    make(map[string]entry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool) {
	if key == "" {
		return nil, false
	}

	now := s.now()
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !e.expiresAt.After(now) {
		s.mu.Lock()
		if current, still := s.entries[key]; still && !current.expiresAt.After(now) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, false
	}

	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true
}

// Set upserts key. A non-positive ttl is a no-op.
func (s *Store) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if key == "" || ttl <= 0 {
		return
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; !exists && s.maxEntries > 0 && len(s.entries) >= s.maxEntries {
		s.evictExpired(now)
		if len(s.entries) >= s.maxEntries {
			s.evictOldest()
		}
	}

	s.entries[key] = entry{
		value:     stored,
		expiresAt: now.Add(ttl),
	}
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Keys returns the live keys carrying prefix. Intended for diagnostics and tests.
func (s *Store) Keys(prefix string) []string {
	now := s.now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.entries))
	for key, e := range s.entries {
		if e.expiresAt.After(now) && strings.HasPrefix(key, prefix) {
			out = append(out, key)
		}
	}
	return out
}

func (s *Store) evictExpired(now time.Time) {
	for key, e := range s.entries {
		if !e.expiresAt.After(now) {
			delete(s.entries, key)
		}
	}
}

func (s *Store) evictOldest() {
	var (
		victim string
		oldest time.Time
	)
	for key, e := range s.entries {
		if victim == "" || e.expiresAt.Before(oldest) {
			victim = key
			oldest = e.expiresAt
		}
	}
	if victim != "" {
		delete(s.entries, victim)
	}
}

// NopStore never stores anything; every Get is a miss.
type NopStore struct{}

func (NopStore) Get(context.Context, string) ([]byte, bool) { return nil, false }

func (NopStore) Set(context.Context, string, []byte, time.Duration) {}
