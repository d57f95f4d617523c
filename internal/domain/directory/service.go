package directory

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) UpsertOrganization(ctx context.Context, org *Organization) error {
	if org.Ref == "" {
		return fmt.Errorf("ref is required")
	}
	if !strings.HasPrefix(org.Ref, "Organization/") {
		return fmt.Errorf("ref must be of the form Organization/<id>")
	}
	org.UpdatedAt = s.now().UTC()
	return s.repo.UpsertOrganization(ctx, org)
}

func (s *Service) UpsertPractitioner(ctx context.Context, p *Practitioner) error {
	if p.Ref == "" {
		return fmt.Errorf("ref is required")
	}
	if !strings.HasPrefix(p.Ref, "Practitioner/") {
		return fmt.Errorf("ref must be of the form Practitioner/<id>")
	}
	p.UpdatedAt = s.now().UTC()
	return s.repo.UpsertPractitioner(ctx, p)
}

func (s *Service) GetOrganization(ctx context.Context, ref string) (*Organization, error) {
	return s.repo.GetOrganization(ctx, ref)
}

func (s *Service) GetPractitioner(ctx context.Context, ref string) (*Practitioner, error) {
	return s.repo.GetPractitioner(ctx, ref)
}

func (s *Service) ListOrganizations(ctx context.Context, limit, offset int) ([]*Organization, int, error) {
	return s.repo.ListOrganizations(ctx, limit, offset)
}

func (s *Service) ListPractitioners(ctx context.Context, limit, offset int) ([]*Practitioner, int, error) {
	return s.repo.ListPractitioners(ctx, limit, offset)
}
