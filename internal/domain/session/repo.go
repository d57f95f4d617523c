package session

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the storage contract for sessions. GetActiveByExternalID
// returns (nil, nil) when no active session exists for the identifier.
type Repository interface {
	Create(ctx context.Context, s *Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*Session, error)
	GetActiveByExternalID(ctx context.Context, externalID string) (*Session, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}
