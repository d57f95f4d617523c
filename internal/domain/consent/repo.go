package consent

import (
	"context"
)

// Repository is the storage contract for sharing preferences. Get returns
// (nil, nil) when no preference exists for the pair.
type Repository interface {
	Upsert(ctx context.Context, pref *SharingPreference) error
	Get(ctx context.Context, patientID, providerRef string) (*SharingPreference, error)
	ListByPatient(ctx context.Context, patientID string) ([]*SharingPreference, error)
}
