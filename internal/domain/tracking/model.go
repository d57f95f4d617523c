// Package tracking owns the referral-tracking task: the mutable lifecycle
// record created alongside every referral and advanced as qualifying
// encounters arrive.
package tracking

import (
	"time"

	"github.com/google/uuid"

	"github.com/durvester/referral-loop-closure/internal/platform/fhir"
)

// Lifecycle statuses. Cancelled is terminal but only ever set externally;
// the lifecycle manager never produces it.
const (
	StatusRequested  = "requested"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusCancelled  = "cancelled"
)

// Business-status sub-codes giving human-readable lifecycle detail.
const (
	BusinessAwaitingScheduling   = "awaiting-scheduling"
	BusinessAppointmentScheduled = "appointment-scheduled"
	BusinessEncounterInProgress  = "encounter-in-progress"
	BusinessLoopClosed           = "loop-closed"
	BusinessOverdue              = "overdue"
)

// Task tracks one referral's fulfillment. Created once with its referral,
// mutated by the lifecycle manager, never deleted.
type Task struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	ReferralID     uuid.UUID  `db:"referral_id" json:"referral_id"`
	PatientID      string     `db:"patient_id" json:"patient_id"`
	Status         string     `db:"status" json:"status"`
	BusinessStatus string     `db:"business_status" json:"business_status"`
	WindowStart    *time.Time `db:"window_start" json:"window_start,omitempty"`
	WindowEnd      *time.Time `db:"window_end" json:"window_end,omitempty"`
	Output         []string   `db:"output" json:"output"`
	LastModified   time.Time  `db:"last_modified" json:"last_modified"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// Terminal reports whether the task has reached a state it can never leave.
func (t *Task) Terminal() bool {
	switch t.Status {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

func (t *Task) ToFHIR() map[string]interface{} {
	result := map[string]interface{}{
		"resourceType": "Task",
		"id":           t.ID.String(),
		"status":       t.Status,
		"intent":       "order",
		"businessStatus": fhir.CodeableConcept{
			Coding: []fhir.Coding{{Code: t.BusinessStatus}},
		},
		"for":          fhir.Reference{Reference: fhir.FormatReference("Patient", t.PatientID)},
		"focus":        fhir.Reference{Reference: fhir.FormatReference("ServiceRequest", t.ReferralID.String())},
		"lastModified": t.LastModified.Format(time.RFC3339),
	}

	if t.WindowStart != nil || t.WindowEnd != nil {
		result["restriction"] = map[string]interface{}{
			"period": fhir.Period{Start: t.WindowStart, End: t.WindowEnd},
		}
	}

	if len(t.Output) > 0 {
		outputs := make([]map[string]interface{}, 0, len(t.Output))
		for _, ref := range t.Output {
			outputs = append(outputs, map[string]interface{}{
				"type":           fhir.CodeableConcept{Text: "fulfilling-encounter"},
				"valueReference": fhir.Reference{Reference: ref},
			})
		}
		result["output"] = outputs
	}

	return result
}
