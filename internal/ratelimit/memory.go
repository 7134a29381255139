package ratelimit

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	count   int
	resetAt time.Time
}

// MemoryStore is a process-local Store backed by a mutex-guarded map.
// Entries are replaced lazily once their window has passed; nothing is
// evicted in the background.
type MemoryStore struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	entries map[string]*entry
	now     func() time.Time
}

func NewMemoryStore(limit int, window time.Duration) *MemoryStore {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Hour
	}
	return &MemoryStore{
		limit:   limit,
		window:  window,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Check counts one attempt for key. At the limit it denies without
// incrementing, so a stored count never exceeds the configured maximum.
func (s *MemoryStore) Check(_ context.Context, key string) (Result, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || !e.resetAt.After(now) {
		e = &entry{count: 1, resetAt: now.Add(s.window)}
		s.entries[key] = e
		return Result{Allowed: true, Remaining: s.limit - 1, ResetAt: e.resetAt}, nil
	}
	if e.count >= s.limit {
		return Result{Allowed: false, Remaining: 0, ResetAt: e.resetAt}, nil
	}
	e.count++
	return Result{Allowed: true, Remaining: s.limit - e.count, ResetAt: e.resetAt}, nil
}

// Status reports the active window for key without creating or touching
// an entry.
func (s *MemoryStore) Status(_ context.Context, key string) (Status, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || !e.resetAt.After(now) {
		return Status{Count: 0, Remaining: s.limit}, nil
	}
	remaining := s.limit - e.count
	if remaining < 0 {
		remaining = 0
	}
	return Status{Count: e.count, Remaining: remaining, ResetAt: e.resetAt}, nil
}

func (s *MemoryStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*entry)
	return nil
}
