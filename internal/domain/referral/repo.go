package referral

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the storage contract for referrals.
type Repository interface {
	Create(ctx context.Context, r *Referral) error
	GetByID(ctx context.Context, id uuid.UUID) (*Referral, error)
	List(ctx context.Context, limit, offset int) ([]*Referral, int, error)
	ListByPatient(ctx context.Context, patientID string) ([]*Referral, error)
}
