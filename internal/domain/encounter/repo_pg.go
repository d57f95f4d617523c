package encounter

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgRepo struct{ pool *pgxpool.Pool }

func NewPGRepo(pool *pgxpool.Pool) Repository {
	return &pgRepo{pool: pool}
}

const encounterCols = `fhir_id, patient_id, status, organization_ref, organization_name,
	practitioner_ref, practitioner_npi, period_start, period_end, received_at`

func scanEncounter(row pgx.Row) (*Encounter, error) {
	var e Encounter
	err := row.Scan(&e.FHIRID, &e.PatientID, &e.Status, &e.OrganizationRef, &e.OrganizationName,
		&e.PractitionerRef, &e.PractitionerNPI, &e.PeriodStart, &e.PeriodEnd, &e.ReceivedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *pgRepo) Upsert(ctx context.Context, e *Encounter) (bool, error) {
	var created bool
	err := r.pool.QueryRow(ctx, `
		INSERT INTO encounter (fhir_id, patient_id, status, organization_ref, organization_name,
			practitioner_ref, practitioner_npi, period_start, period_end, received_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (fhir_id) DO UPDATE
		SET patient_id = EXCLUDED.patient_id,
			status = EXCLUDED.status,
			organization_ref = EXCLUDED.organization_ref,
			organization_name = EXCLUDED.organization_name,
			practitioner_ref = EXCLUDED.practitioner_ref,
			practitioner_npi = EXCLUDED.practitioner_npi,
			period_start = EXCLUDED.period_start,
			period_end = EXCLUDED.period_end
		RETURNING (xmax = 0)`,
		e.FHIRID, e.PatientID, e.Status, e.OrganizationRef, e.OrganizationName,
		e.PractitionerRef, e.PractitionerNPI, e.PeriodStart, e.PeriodEnd, e.ReceivedAt).
		Scan(&created)
	return created, err
}

func (r *pgRepo) GetByFHIRID(ctx context.Context, fhirID string) (*Encounter, error) {
	return scanEncounter(r.pool.QueryRow(ctx,
		`SELECT `+encounterCols+` FROM encounter WHERE fhir_id = $1`, fhirID))
}

func (r *pgRepo) List(ctx context.Context, limit, offset int) ([]*Encounter, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM encounter`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+encounterCols+` FROM encounter ORDER BY received_at LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	encounters, err := collectEncounters(rows)
	return encounters, total, err
}

func (r *pgRepo) ListByPatient(ctx context.Context, patientID string) ([]*Encounter, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+encounterCols+` FROM encounter WHERE patient_id = $1 ORDER BY received_at`,
		patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEncounters(rows)
}

func collectEncounters(rows pgx.Rows) ([]*Encounter, error) {
	var encounters []*Encounter
	for rows.Next() {
		e, err := scanEncounter(rows)
		if err != nil {
			return nil, err
		}
		encounters = append(encounters, e)
	}
	return encounters, rows.Err()
}
