package cache

import (
	"context"
	"sync"
	"time"

	"github.com/storefront/backend/internal/domain/checkout"
)

// entry is a stored session with its expiry
type entry struct {
	data      checkout.SessionData
	expiresAt time.Time
}

// InMemorySessionStore implements checkout.SessionStore using an in-memory map.
// This is suitable for single-instance deployments and testing.
type InMemorySessionStore struct {
	mu        sync.RWMutex
	entries   map[string]entry
	ttl       time.Duration
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemorySessionStore creates a new in-memory session store.
// It starts a background goroutine that drops expired sessions every cleanupPeriod.
func NewInMemorySessionStore(ttl, cleanupPeriod time.Duration) *InMemorySessionStore {
	if cleanupPeriod <= 0 {
		cleanupPeriod = 5 * time.Minute
	}
	store := &InMemorySessionStore{
		entries:  make(map[string]entry),
		ttl:      ttl,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop(cleanupPeriod)

	return store
}

// Load returns the session data, or empty data for unknown and expired sessions
func (s *InMemorySessionStore) Load(_ context.Context, sessionID string) (*checkout.SessionData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[sessionID]
	if !ok || s.now().After(e.expiresAt) {
		return &checkout.SessionData{}, nil
	}
	data := e.data
	return &data, nil
}

// Save stores a copy of data and restarts the session lifetime
func (s *InMemorySessionStore) Save(_ context.Context, sessionID string, data *checkout.SessionData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[sessionID] = entry{
		data:      *data,
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

// Delete removes the session
func (s *InMemorySessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, sessionID)
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemorySessionStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemorySessionStore) cleanupLoop(period time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

// cleanup removes expired sessions
func (s *InMemorySessionStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, id)
		}
	}
}

// Size returns the number of stored sessions, expired ones included
func (s *InMemorySessionStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

var _ checkout.SessionStore = (*InMemorySessionStore)(nil)
