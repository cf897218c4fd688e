// Package memory is an in-memory cache storage.
package memory

import (
	"context"
	"sync"
	"time"
)

type item struct {
	content   []byte
	expiresAt time.Time
}

// Storage ...
type Storage struct {
	mu    sync.Mutex
	items map[string]item
	now   func() time.Time
}

// NewStorage creates new instance of Storage.
func NewStorage() *Storage {
	return &Storage{
		items: map[string]item{},
		now:   time.Now,
	}
}

// Get returns cached content or nil when it is missing or expired.
func (s *Storage) Get(_ context.Context, key string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.items[key]
	if !ok {
		return nil
	}

	if !s.now().Before(i.expiresAt) {
		delete(s.items, key)
		return nil
	}

	return i.content
}

// Set ...
func (s *Storage) Set(_ context.Context, key string, content []byte, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[key] = item{
		content:   content,
		expiresAt: s.now().Add(ttl),
	}
}
