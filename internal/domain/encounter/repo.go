package encounter

import (
	"context"
)

// Repository is the storage contract for encounters. Upsert reports whether
// the encounter was newly created.
type Repository interface {
	Upsert(ctx context.Context, e *Encounter) (created bool, err error)
	GetByFHIRID(ctx context.Context, fhirID string) (*Encounter, error)
	List(ctx context.Context, limit, offset int) ([]*Encounter, int, error)
	ListByPatient(ctx context.Context, patientID string) ([]*Encounter, error)
}
