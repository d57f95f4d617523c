package loop

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/durvester/referral-loop-closure/internal/domain/encounter"
)

type pgRepo struct{ pool *pgxpool.Pool }

func NewPGRepo(pool *pgxpool.Pool) Repository {
	return &pgRepo{pool: pool}
}

const routedCols = `id, encounter_fhir_id, patient_id, provider_ref, reason,
	referral_id, score, encounter, routed_at`

func scanRoutedEvent(row pgx.Row) (*RoutedEvent, error) {
	var ev RoutedEvent
	var encData []byte
	err := row.Scan(&ev.ID, &ev.EncounterFHIRID, &ev.PatientID, &ev.ProviderRef, &ev.Reason,
		&ev.ReferralID, &ev.Score, &encData, &ev.RoutedAt)
	if err != nil {
		return nil, err
	}
	if len(encData) > 0 {
		var enc encounter.Encounter
		if err := json.Unmarshal(encData, &enc); err != nil {
			return nil, fmt.Errorf("decode encounter snapshot: %w", err)
		}
		ev.Encounter = enc
	}
	return &ev, nil
}

func (r *pgRepo) Upsert(ctx context.Context, ev *RoutedEvent) error {
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	encData, err := json.Marshal(ev.Encounter)
	if err != nil {
		return fmt.Errorf("encode encounter snapshot: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO routed_event (id, encounter_fhir_id, patient_id, provider_ref, reason,
			referral_id, score, encounter, routed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (encounter_fhir_id) DO UPDATE
		SET patient_id = EXCLUDED.patient_id,
			provider_ref = EXCLUDED.provider_ref,
			reason = EXCLUDED.reason,
			referral_id = EXCLUDED.referral_id,
			score = EXCLUDED.score,
			encounter = EXCLUDED.encounter,
			routed_at = EXCLUDED.routed_at`,
		ev.ID, ev.EncounterFHIRID, ev.PatientID, ev.ProviderRef, ev.Reason,
		ev.ReferralID, ev.Score, encData, ev.RoutedAt)
	return err
}

func (r *pgRepo) DeleteByEncounterID(ctx context.Context, encounterFHIRID string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM routed_event WHERE encounter_fhir_id = $1`, encounterFHIRID)
	return err
}

func (r *pgRepo) GetByEncounterID(ctx context.Context, encounterFHIRID string) (*RoutedEvent, error) {
	return scanRoutedEvent(r.pool.QueryRow(ctx,
		`SELECT `+routedCols+` FROM routed_event WHERE encounter_fhir_id = $1`, encounterFHIRID))
}

func (r *pgRepo) List(ctx context.Context, limit, offset int) ([]*RoutedEvent, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM routed_event`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+routedCols+` FROM routed_event ORDER BY routed_at LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events, err := collectRoutedEvents(rows)
	return events, total, err
}

func (r *pgRepo) ListByProvider(ctx context.Context, providerRef string) ([]*RoutedEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+routedCols+` FROM routed_event WHERE provider_ref = $1 ORDER BY routed_at`,
		providerRef)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRoutedEvents(rows)
}

func collectRoutedEvents(rows pgx.Rows) ([]*RoutedEvent, error) {
	var events []*RoutedEvent
	for rows.Next() {
		ev, err := scanRoutedEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
