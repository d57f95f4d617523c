package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// memRepo is a thread-safe in-memory Repository, the default store backend.
type memRepo struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

func NewMemRepo() Repository {
	return &memRepo{sessions: make(map[uuid.UUID]*Session)}
}

func (r *memRepo) Create(_ context.Context, s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	cp := *s
	r.sessions[s.ID] = &cp
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id uuid.UUID) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s not found", id)
	}
	cp := *s
	return &cp, nil
}

func (r *memRepo) GetActiveByExternalID(_ context.Context, externalID string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	// Prefer the most recently created active session for the identifier.
	var latest *Session
	for _, s := range r.sessions {
		if s.ExternalPatientID != externalID || !s.Active {
			continue
		}
		if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (r *memRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return fmt.Errorf("session %s not found", id)
	}
	s.Active = false
	return nil
}
