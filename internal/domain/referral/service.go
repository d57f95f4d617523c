package referral

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/durvester/referral-loop-closure/internal/domain/tracking"
)

// CreateReferralInput carries the fields needed to place a referral.
type CreateReferralInput struct {
	PatientID    string     `json:"patient_id"`
	RequesterRef string     `json:"requester_ref"`

	TargetOrgNPI          *string `json:"target_org_npi,omitempty"`
	TargetOrgName         *string `json:"target_org_name,omitempty"`
	TargetPractitionerNPI *string `json:"target_practitioner_npi,omitempty"`
	TargetSpecialty       *string `json:"target_specialty,omitempty"`

	WindowStart *time.Time `json:"window_start,omitempty"`
	WindowEnd   *time.Time `json:"window_end,omitempty"`
	Reason      string     `json:"reason,omitempty"`
}

// Open pairs a referral with its live tracking task.
type Open struct {
	Referral *Referral      `json:"referral"`
	Task     *tracking.Task `json:"task"`
}

type Service struct {
	repo     Repository
	tracking *tracking.Service
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(repo Repository, trackingSvc *tracking.Service, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		tracking: trackingSvc,
		logger:   logger.With().Str("component", "referral").Logger(),
		now:      time.Now,
	}
}

// CreateReferral stores a referral and creates its tracking task. The two are
// created together; a referral never exists without a task.
func (s *Service) CreateReferral(ctx context.Context, in CreateReferralInput) (*Referral, *tracking.Task, error) {
	if in.PatientID == "" {
		return nil, nil, fmt.Errorf("patient_id is required")
	}
	if in.RequesterRef == "" {
		return nil, nil, fmt.Errorf("requester_ref is required")
	}
	if in.WindowStart != nil && in.WindowEnd != nil && in.WindowEnd.Before(*in.WindowStart) {
		return nil, nil, fmt.Errorf("window_end precedes window_start")
	}

	ref := &Referral{
		ID:                    uuid.New(),
		PatientID:             in.PatientID,
		RequesterRef:          in.RequesterRef,
		TargetOrgNPI:          in.TargetOrgNPI,
		TargetOrgName:         in.TargetOrgName,
		TargetPractitionerNPI: in.TargetPractitionerNPI,
		TargetSpecialty:       in.TargetSpecialty,
		WindowStart:           in.WindowStart,
		WindowEnd:             in.WindowEnd,
		Reason:                in.Reason,
		CreatedAt:             s.now().UTC(),
	}
	if !ref.Matchable() {
		s.logger.Warn().
			Str("patient_id", ref.PatientID).
			Msg("referral has no target identifiers and will never match an encounter")
	}

	if err := s.repo.Create(ctx, ref); err != nil {
		return nil, nil, fmt.Errorf("create referral: %w", err)
	}
	task, err := s.tracking.CreateForReferral(ctx, ref.ID, ref.PatientID, ref.WindowStart, ref.WindowEnd)
	if err != nil {
		return nil, nil, fmt.Errorf("create tracking task: %w", err)
	}

	s.logger.Info().
		Str("referral_id", ref.ID.String()).
		Str("task_id", task.ID.String()).
		Str("patient_id", ref.PatientID).
		Msg("referral created")
	return ref, task, nil
}

func (s *Service) GetReferral(ctx context.Context, id uuid.UUID) (*Referral, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListReferrals(ctx context.Context, limit, offset int) ([]*Referral, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID string) ([]*Referral, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

// ListOpenByPatient returns the patient's referrals whose tracking task is
// still live, oldest task first, each paired with that task.
func (s *Service) ListOpenByPatient(ctx context.Context, patientID string) ([]Open, error) {
	tasks, err := s.tracking.ListOpenByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	open := make([]Open, 0, len(tasks))
	for _, t := range tasks {
		ref, err := s.repo.GetByID(ctx, t.ReferralID)
		if err != nil {
			s.logger.Error().Err(err).
				Str("task_id", t.ID.String()).
				Str("referral_id", t.ReferralID.String()).
				Msg("open task references missing referral")
			continue
		}
		open = append(open, Open{Referral: ref, Task: t})
	}
	return open, nil
}
