package consent

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

// SetPreference records a patient's sharing election for one provider,
// replacing any earlier election for the same pair.
func (s *Service) SetPreference(ctx context.Context, pref *SharingPreference) error {
	if pref.PatientID == "" {
		return fmt.Errorf("patient_id is required")
	}
	if pref.ProviderRef == "" {
		return fmt.Errorf("provider_ref is required")
	}
	if pref.Mode != ModeAllEncounters && pref.Mode != ModeReferralsOnly {
		return fmt.Errorf("mode must be %q or %q", ModeAllEncounters, ModeReferralsOnly)
	}
	if pref.GrantedAt.IsZero() {
		pref.GrantedAt = s.now().UTC()
	}
	return s.repo.Upsert(ctx, pref)
}

// GetPreference returns the preference for a (patient, provider) pair, or
// nil when the patient never made an election for that provider.
func (s *Service) GetPreference(ctx context.Context, patientID, providerRef string) (*SharingPreference, error) {
	return s.repo.Get(ctx, patientID, providerRef)
}

func (s *Service) ListByPatient(ctx context.Context, patientID string) ([]*SharingPreference, error) {
	return s.repo.ListByPatient(ctx, patientID)
}
