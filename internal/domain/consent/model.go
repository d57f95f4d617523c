package consent

import (
	"time"
)

// Sharing modes a patient can elect per provider.
const (
	ModeAllEncounters = "all-encounters"
	ModeReferralsOnly = "referrals-only"
)

// SharingPreference records a patient's election to share encounter activity
// with one provider. Keyed by (patient, provider); upserts replace.
type SharingPreference struct {
	PatientID   string    `json:"patient_id"`
	ProviderRef string    `json:"provider_ref"`
	Mode        string    `json:"mode"`
	Active      bool      `json:"active"`
	GrantedAt   time.Time `json:"granted_at"`
}
