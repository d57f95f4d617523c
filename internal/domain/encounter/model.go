package encounter

import (
	"time"

	"github.com/durvester/referral-loop-closure/internal/matching"
)

// Encounter is the stored projection of an inbound FHIR Encounter. FHIRID is
// the source system's resource ID and the upsert key: replaying the same
// encounter replaces the stored copy instead of duplicating it.
type Encounter struct {
	FHIRID    string `json:"fhir_id"`
	PatientID string `json:"patient_id"`
	Status    string `json:"status"`

	OrganizationRef  string `json:"organization_ref,omitempty"`
	OrganizationName string `json:"organization_name,omitempty"`

	PractitionerRef string `json:"practitioner_ref,omitempty"`
	PractitionerNPI string `json:"practitioner_npi,omitempty"`

	PeriodStart *time.Time `json:"period_start,omitempty"`
	PeriodEnd   *time.Time `json:"period_end,omitempty"`

	ReceivedAt time.Time `json:"received_at"`
}

// Ref returns the encounter's FHIR reference string.
func (e *Encounter) Ref() string {
	return "Encounter/" + e.FHIRID
}

// MatchInput projects the encounter for the match scorer.
func (e *Encounter) MatchInput() matching.EncounterInput {
	return matching.EncounterInput{
		OrganizationRef:  e.OrganizationRef,
		OrganizationName: e.OrganizationName,
		PractitionerRef:  e.PractitionerRef,
		PractitionerNPI:  e.PractitionerNPI,
		PeriodStart:      e.PeriodStart,
	}
}
