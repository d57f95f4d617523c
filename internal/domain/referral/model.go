package referral

import (
	"time"

	"github.com/google/uuid"

	"github.com/durvester/referral-loop-closure/internal/matching"
)

// Referral is a clinical order directing a patient to a destination
// organization, practitioner, or specialty. Immutable once created; its
// lifecycle lives on the paired tracking task.
type Referral struct {
	ID           uuid.UUID  `json:"id"`
	PatientID    string     `json:"patient_id"`
	RequesterRef string     `json:"requester_ref"`

	TargetOrgNPI          *string `json:"target_org_npi,omitempty"`
	TargetOrgName         *string `json:"target_org_name,omitempty"`
	TargetPractitionerNPI *string `json:"target_practitioner_npi,omitempty"`
	TargetSpecialty       *string `json:"target_specialty,omitempty"`

	WindowStart *time.Time `json:"window_start,omitempty"`
	WindowEnd   *time.Time `json:"window_end,omitempty"`

	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Target projects the referral's destination identifiers for the scorer.
func (r *Referral) Target() matching.Target {
	return matching.Target{
		OrganizationNPI:  r.TargetOrgNPI,
		OrganizationName: r.TargetOrgName,
		PractitionerNPI:  r.TargetPractitionerNPI,
		Specialty:        r.TargetSpecialty,
	}
}

// Matchable reports whether the scorer can do anything with this referral.
func (r *Referral) Matchable() bool {
	return r.Target().Matchable()
}
