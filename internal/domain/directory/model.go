package directory

import (
	"time"
)

// Organization is a provider directory entry for a servicing organization,
// keyed by its FHIR reference ("Organization/<id>").
type Organization struct {
	Ref       string    `json:"ref"`
	NPI       string    `json:"npi,omitempty"`
	Name      string    `json:"name,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Practitioner is a provider directory entry for an individual clinician,
// keyed by its FHIR reference ("Practitioner/<id>").
type Practitioner struct {
	Ref       string    `json:"ref"`
	NPI       string    `json:"npi,omitempty"`
	Specialty string    `json:"specialty,omitempty"`
	Name      string    `json:"name,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}
