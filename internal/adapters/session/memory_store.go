package session

import (
	"context"
	"sync"

	"github.com/snapdeck/snapdeck-review-engine/internal/core/domain"
)

var _ domain.SessionStore = (*MemorySessionStore)(nil)

// MemorySessionStore keeps sittings in process memory. Sessions do not
// survive a restart, which is acceptable for tests and single-shot tools.
type MemorySessionStore struct {
	store map[string]*domain.Session

	mu sync.RWMutex
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		store: make(map[string]*domain.Session),
	}
}

func (s *MemorySessionStore) Get(ctx context.Context, userID string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.store[userID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	clone := *sess
	clone.ItemIDs = append([]string(nil), sess.ItemIDs...)
	return &clone, nil
}

func (s *MemorySessionStore) Set(ctx context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *session
	clone.ItemIDs = append([]string(nil), session.ItemIDs...)
	s.store[session.UserID] = &clone
	return nil
}

func (s *MemorySessionStore) Clear(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.store, userID)
	return nil
}
