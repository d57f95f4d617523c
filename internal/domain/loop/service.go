package loop

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/durvester/referral-loop-closure/internal/domain/consent"
	"github.com/durvester/referral-loop-closure/internal/domain/directory"
	"github.com/durvester/referral-loop-closure/internal/domain/encounter"
	"github.com/durvester/referral-loop-closure/internal/domain/referral"
	"github.com/durvester/referral-loop-closure/internal/domain/session"
	"github.com/durvester/referral-loop-closure/internal/domain/tracking"
	"github.com/durvester/referral-loop-closure/internal/matching"
	"github.com/durvester/referral-loop-closure/internal/platform/webhook"
	"github.com/durvester/referral-loop-closure/internal/platform/websocket"
)

// Service orchestrates the encounter pipeline: resolve the patient, store
// the encounter, score it against open referrals, advance the matched task,
// and route to the referring provider subject to consent.
type Service struct {
	sessions   *session.Service
	encounters *encounter.Service
	referrals  *referral.Service
	tracking   *tracking.Service
	consents   *consent.Service
	directory  *directory.Service
	routed     Repository

	hub      *websocket.Hub
	webhooks *webhook.Manager
	logger   zerolog.Logger

	patientLocks *keyedMutex
	now          func() time.Time
}

func NewService(
	sessions *session.Service,
	encounters *encounter.Service,
	referrals *referral.Service,
	trackingSvc *tracking.Service,
	consents *consent.Service,
	directorySvc *directory.Service,
	routed Repository,
	hub *websocket.Hub,
	webhooks *webhook.Manager,
	logger zerolog.Logger,
) *Service {
	return &Service{
		sessions:     sessions,
		encounters:   encounters,
		referrals:    referrals,
		tracking:     trackingSvc,
		consents:     consents,
		directory:    directorySvc,
		routed:       routed,
		hub:          hub,
		webhooks:     webhooks,
		logger:       logger.With().Str("component", "loop").Logger(),
		patientLocks: newKeyedMutex(),
		now:          time.Now,
	}
}

// ProcessEncounter runs the full pipeline for one encounter. Re-processing
// the same encounter ID is idempotent: the encounter and any routed event
// are replaced, never duplicated, and terminal tasks stay terminal.
func (s *Service) ProcessEncounter(ctx context.Context, e *encounter.Encounter) (*Result, error) {
	if e == nil || e.FHIRID == "" {
		return nil, fmt.Errorf("encounter id is required")
	}

	canonical, err := s.sessions.ResolvePatientID(ctx, e.PatientID)
	if err != nil {
		return nil, fmt.Errorf("resolve patient: %w", err)
	}
	if canonical != e.PatientID {
		s.logger.Debug().
			Str("external_id", e.PatientID).
			Str("patient_id", canonical).
			Msg("rewrote encounter subject to canonical patient")
		e.PatientID = canonical
	}

	// Everything from the store write onward is a critical section per
	// patient, so tracking and routed-event mutations never interleave.
	unlock := s.patientLocks.Lock(canonical)
	defer unlock()

	created, err := s.encounters.Store(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("store encounter: %w", err)
	}

	s.notifyPatient(ctx, canonical, e, created)

	open, err := s.referrals.ListOpenByPatient(ctx, canonical)
	if err != nil {
		return nil, fmt.Errorf("list open referrals: %w", err)
	}

	candidates := make([]matching.Candidate, 0, len(open))
	for _, o := range open {
		candidates = append(candidates, matching.Candidate{
			ReferralID:  o.Referral.ID,
			TaskID:      o.Task.ID,
			Target:      o.Referral.Target(),
			WindowStart: o.Referral.WindowStart,
			WindowEnd:   o.Referral.WindowEnd,
		})
	}

	results := matching.Score(e.MatchInput(), candidates, s.directory.Lookup(ctx))

	result := &Result{
		EncounterFHIRID: e.FHIRID,
		PatientID:       canonical,
		Created:         created,
		Matches:         results,
	}

	var best *matching.Result
	if len(results) > 0 && results[0].Score >= matching.AutoLinkThreshold {
		best = &results[0]
		result.BestMatch = best
	}

	if best != nil {
		advanced, err := s.advanceMatched(ctx, open, best, e)
		if err != nil {
			return nil, err
		}
		result.TaskID = &best.TaskID
		result.TaskAdvanced = advanced
	}

	// Consent is evaluated against the requester of the oldest open
	// referral, not necessarily the matched one.
	var providerRef string
	if len(open) > 0 {
		providerRef = open[0].Referral.RequesterRef
	}

	var pref *consent.SharingPreference
	if providerRef != "" {
		pref, err = s.consents.GetPreference(ctx, canonical, providerRef)
		if err != nil {
			return nil, fmt.Errorf("get sharing preference: %w", err)
		}
	}

	decision := consent.Route(pref, best)
	result.Routed = decision.Routed
	result.Reason = decision.Reason

	if decision.Routed {
		result.RoutedTo = providerRef
		if err := s.recordRouted(ctx, e, providerRef, decision, best); err != nil {
			return nil, err
		}
	} else {
		// A routed event reflects the most recent evaluation only; a
		// re-delivery that no longer routes clears any stale event.
		if err := s.routed.DeleteByEncounterID(ctx, e.FHIRID); err != nil {
			return nil, fmt.Errorf("clear routed event: %w", err)
		}
	}

	s.logger.Info().
		Str("encounter_id", e.FHIRID).
		Str("patient_id", canonical).
		Int("matches", len(results)).
		Bool("routed", decision.Routed).
		Str("reason", decision.Reason).
		Msg("encounter processed")
	return result, nil
}

func (s *Service) advanceMatched(ctx context.Context, open []referral.Open, best *matching.Result, e *encounter.Encounter) (bool, error) {
	for _, o := range open {
		if o.Task.ID != best.TaskID {
			continue
		}
		advanced, err := s.tracking.Advance(ctx, o.Task, e.Status, e.Ref())
		if err != nil {
			return false, fmt.Errorf("advance task %s: %w", o.Task.ID, err)
		}
		return advanced, nil
	}
	return false, nil
}

func (s *Service) recordRouted(ctx context.Context, e *encounter.Encounter, providerRef string, decision consent.Decision, best *matching.Result) error {
	ev := &RoutedEvent{
		EncounterFHIRID: e.FHIRID,
		PatientID:       e.PatientID,
		ProviderRef:     providerRef,
		Reason:          decision.Reason,
		Encounter:       *e,
		RoutedAt:        s.now().UTC(),
	}
	if best != nil {
		referralID := best.ReferralID
		score := best.Score
		ev.ReferralID = &referralID
		ev.Score = &score
	}
	if err := s.routed.Upsert(ctx, ev); err != nil {
		return fmt.Errorf("upsert routed event: %w", err)
	}

	if s.hub != nil {
		event := websocket.NewEvent(websocket.EventEncounterRouted, websocket.ProviderTopic(providerRef), ev)
		_ = s.hub.Publish(ctx, event)
	}
	if s.webhooks != nil {
		s.webhooks.Deliver(ctx, webhook.NewEvent(webhook.EventEncounterRouted, websocket.ProviderTopic(providerRef), ev))
	}
	return nil
}

func (s *Service) notifyPatient(ctx context.Context, patientID string, e *encounter.Encounter, created bool) {
	payload := map[string]interface{}{
		"encounter": e,
		"created":   created,
	}
	if s.hub != nil {
		event := websocket.NewEvent(websocket.EventEncounterStored, websocket.PatientTopic(patientID), payload)
		_ = s.hub.Publish(ctx, event)
	}
	if s.webhooks != nil {
		s.webhooks.Deliver(ctx, webhook.NewEvent(webhook.EventEncounterStored, websocket.PatientTopic(patientID), payload))
	}
}

// SweepOverdue fails open tasks whose window has passed and notifies each
// affected patient's subscribers. Safe to run on a timer alongside intake.
func (s *Service) SweepOverdue(ctx context.Context) ([]*tracking.Task, error) {
	ids, err := s.tracking.SweepOverdue(ctx, s.now().UTC())
	if err != nil {
		return nil, err
	}

	overdue := make([]*tracking.Task, 0, len(ids))
	for _, id := range ids {
		t, err := s.tracking.GetTask(ctx, id)
		if err != nil {
			s.logger.Error().Err(err).Str("task_id", id.String()).Msg("load swept task")
			continue
		}
		overdue = append(overdue, t)

		if s.hub != nil {
			event := websocket.NewEvent(websocket.EventTaskOverdue, websocket.PatientTopic(t.PatientID), t)
			_ = s.hub.Publish(ctx, event)
		}
		if s.webhooks != nil {
			s.webhooks.Deliver(ctx, webhook.NewEvent(webhook.EventTaskOverdue, websocket.PatientTopic(t.PatientID), t))
		}
	}

	if len(overdue) > 0 {
		s.logger.Info().Int("count", len(overdue)).Msg("overdue referrals failed by sweep")
	}
	return overdue, nil
}

// RoutedEvents lists recorded routed events, newest last.
func (s *Service) RoutedEvents(ctx context.Context, limit, offset int) ([]*RoutedEvent, int, error) {
	return s.routed.List(ctx, limit, offset)
}

func (s *Service) RoutedEventsByProvider(ctx context.Context, providerRef string) ([]*RoutedEvent, error) {
	return s.routed.ListByProvider(ctx, providerRef)
}
