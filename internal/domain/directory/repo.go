package directory

import (
	"context"
)

// Repository is the storage contract for the provider directory. Upserts are
// keyed by FHIR reference.
type Repository interface {
	UpsertOrganization(ctx context.Context, org *Organization) error
	GetOrganization(ctx context.Context, ref string) (*Organization, error)
	ListOrganizations(ctx context.Context, limit, offset int) ([]*Organization, int, error)

	UpsertPractitioner(ctx context.Context, p *Practitioner) error
	GetPractitioner(ctx context.Context, ref string) (*Practitioner, error)
	ListPractitioners(ctx context.Context, limit, offset int) ([]*Practitioner, int, error)
}
