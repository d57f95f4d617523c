package loop

import (
	"context"
)

// Repository is the storage contract for routed events. Upsert replaces any
// existing event for the same encounter FHIR ID; Delete of an absent event
// is a no-op. An event exists exactly when the most recent routing
// evaluation for its encounter routed.
type Repository interface {
	Upsert(ctx context.Context, ev *RoutedEvent) error
	DeleteByEncounterID(ctx context.Context, encounterFHIRID string) error
	GetByEncounterID(ctx context.Context, encounterFHIRID string) (*RoutedEvent, error)
	List(ctx context.Context, limit, offset int) ([]*RoutedEvent, int, error)
	ListByProvider(ctx context.Context, providerRef string) ([]*RoutedEvent, error)
}
