package tracking

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*Task, error)
	GetByReferralID(ctx context.Context, referralID uuid.UUID) (*Task, error)
	Update(ctx context.Context, t *Task) error
	List(ctx context.Context, limit, offset int) ([]*Task, int, error)
	// ListOpenByPatient returns the patient's non-terminal tasks ordered by
	// creation time ascending.
	ListOpenByPatient(ctx context.Context, patientID string) ([]*Task, error)
	// ListOpen returns all non-terminal tasks, for the overdue sweep.
	ListOpen(ctx context.Context) ([]*Task, error)
}
