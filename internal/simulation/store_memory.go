package simulation

import (
	"context"
	"sync"
	"time"

	"github.com/Alexandre220990/ProfitumMVP-sub006/pkg/platform/sentinel"
)

// MemorySessionStore keeps sessions in a map. Safe for concurrent use.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]Session)}
}

func (s *MemorySessionStore) Create(_ context.Context, session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

func (s *MemorySessionStore) Get(_ context.Context, sessionID string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return Session{}, sentinel.ErrNotFound
	}
	return session, nil
}

func (s *MemorySessionStore) SetStatus(_ context.Context, sessionID string, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return sentinel.ErrNotFound
	}
	session.Status = status
	session.UpdatedAt = time.Now().UTC()
	s.sessions[sessionID] = session
	return nil
}
