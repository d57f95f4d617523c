package session

import (
	"time"

	"github.com/google/uuid"
)

// Session links a source system's patient identifier to the local patient ID
// and carries the access token handed back to the integrating system.
type Session struct {
	ID                uuid.UUID `json:"id"`
	ExternalPatientID string    `json:"external_patient_id"`
	PatientID         string    `json:"patient_id"`
	AccessToken       string    `json:"access_token"`
	ExpiresAt         time.Time `json:"expires_at"`
	Active            bool      `json:"active"`
	CreatedAt         time.Time `json:"created_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
