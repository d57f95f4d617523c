package tracking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service is the referral lifecycle manager. It owns every tracking task's
// state: requested → in-progress → completed, with failed (overdue)
// reachable from any non-terminal state.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// SetClock overrides the service's time source, for tests.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// CreateForReferral creates the tracking task paired with a new referral.
func (s *Service) CreateForReferral(ctx context.Context, referralID uuid.UUID, patientID string, windowStart, windowEnd *time.Time) (*Task, error) {
	if referralID == uuid.Nil {
		return nil, fmt.Errorf("referral_id is required")
	}
	if patientID == "" {
		return nil, fmt.Errorf("patient_id is required")
	}

	now := s.now().UTC()
	t := &Task{
		ID:             uuid.New(),
		ReferralID:     referralID,
		PatientID:      patientID,
		Status:         StatusRequested,
		BusinessStatus: BusinessAwaitingScheduling,
		WindowStart:    windowStart,
		WindowEnd:      windowEnd,
		LastModified:   now,
		CreatedAt:      now,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) GetTask(ctx context.Context, id uuid.UUID) (*Task, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByReferralID(ctx context.Context, referralID uuid.UUID) (*Task, error) {
	return s.repo.GetByReferralID(ctx, referralID)
}

func (s *Service) ListTasks(ctx context.Context, limit, offset int) ([]*Task, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListOpenByPatient(ctx context.Context, patientID string) ([]*Task, error) {
	return s.repo.ListOpenByPatient(ctx, patientID)
}

// Cancel marks a task cancelled. Cancellation only ever arrives externally;
// the lifecycle manager itself never produces it.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Terminal() {
		return t, nil
	}
	t.Status = StatusCancelled
	t.BusinessStatus = "cancelled"
	t.LastModified = s.now().UTC()
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Advance moves a task through its lifecycle given a matched encounter's
// clinical status. Terminal tasks are left untouched. Returns whether the
// task changed. encounterRef ("Encounter/<id>") is appended to the task's
// output when the encounter is finished; duplicates are not filtered here
// because encounters are upserted by ID upstream, so a given encounter is
// only ever finished once.
func (s *Service) Advance(ctx context.Context, t *Task, encounterStatus, encounterRef string) (bool, error) {
	if t.Terminal() {
		return false, nil
	}

	switch encounterStatus {
	case "planned":
		t.Status = StatusInProgress
		t.BusinessStatus = BusinessAppointmentScheduled
	case "in-progress", "arrived", "triaged":
		t.Status = StatusInProgress
		t.BusinessStatus = BusinessEncounterInProgress
	case "finished":
		t.Status = StatusCompleted
		t.BusinessStatus = BusinessLoopClosed
		t.Output = append(t.Output, encounterRef)
	default:
		// cancelled, on-leave, and anything unrecognized leave the task as-is.
		return false, nil
	}

	t.LastModified = s.now().UTC()
	if err := s.repo.Update(ctx, t); err != nil {
		return false, err
	}
	return true, nil
}

// SweepOverdue fails every open task whose validity window ended before
// now, and returns the IDs it transitioned. Tasks with no window end, or
// whose end has not passed, are untouched; a second sweep with no newly
// overdue tasks returns nothing.
func (s *Service) SweepOverdue(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	open, err := s.repo.ListOpen(ctx)
	if err != nil {
		return nil, err
	}

	var overdue []uuid.UUID
	for _, t := range open {
		if t.WindowEnd == nil || !now.After(*t.WindowEnd) {
			continue
		}
		t.Status = StatusFailed
		t.BusinessStatus = BusinessOverdue
		t.LastModified = now
		if err := s.repo.Update(ctx, t); err != nil {
			return overdue, fmt.Errorf("fail overdue task %s: %w", t.ID, err)
		}
		overdue = append(overdue, t.ID)
	}
	return overdue, nil
}
