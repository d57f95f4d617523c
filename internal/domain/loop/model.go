package loop

import (
	"time"

	"github.com/google/uuid"

	"github.com/durvester/referral-loop-closure/internal/domain/encounter"
	"github.com/durvester/referral-loop-closure/internal/matching"
)

// RoutedEvent records that an encounter was surfaced to a referring provider.
// Keyed by the encounter's FHIR ID: re-delivery of the same encounter
// replaces the event instead of duplicating it.
type RoutedEvent struct {
	ID              uuid.UUID           `json:"id"`
	EncounterFHIRID string              `json:"encounter_fhir_id"`
	PatientID       string              `json:"patient_id"`
	ProviderRef     string              `json:"provider_ref"`
	Reason          string              `json:"reason"`
	ReferralID      *uuid.UUID          `json:"referral_id,omitempty"`
	Score           *float64            `json:"score,omitempty"`
	Encounter       encounter.Encounter `json:"encounter"`
	RoutedAt        time.Time           `json:"routed_at"`
}

// Result is the record a pipeline run returns to its caller.
type Result struct {
	EncounterFHIRID string             `json:"encounter_fhir_id"`
	PatientID       string             `json:"patient_id"`
	Created         bool               `json:"created"`
	Matches         []matching.Result  `json:"matches"`
	BestMatch       *matching.Result   `json:"best_match,omitempty"`
	TaskID          *uuid.UUID         `json:"task_id,omitempty"`
	TaskAdvanced    bool               `json:"task_advanced"`
	Routed          bool               `json:"routed"`
	RoutedTo        string             `json:"routed_to,omitempty"`
	Reason          string             `json:"reason"`
}
