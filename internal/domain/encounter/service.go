package encounter

import (
	"context"
	"fmt"
	"time"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Store upserts an encounter by its FHIR ID and reports whether it was new.
func (s *Service) Store(ctx context.Context, e *Encounter) (bool, error) {
	if e.FHIRID == "" {
		return false, fmt.Errorf("encounter id is required")
	}
	if e.PatientID == "" {
		return false, fmt.Errorf("patient_id is required")
	}
	if e.Status == "" {
		return false, fmt.Errorf("status is required")
	}
	if e.ReceivedAt.IsZero() {
		e.ReceivedAt = s.now().UTC()
	}
	return s.repo.Upsert(ctx, e)
}

func (s *Service) Get(ctx context.Context, fhirID string) (*Encounter, error) {
	return s.repo.GetByFHIRID(ctx, fhirID)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Encounter, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID string) ([]*Encounter, error) {
	return s.repo.ListByPatient(ctx, patientID)
}
