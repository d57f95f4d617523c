package referral

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgRepo struct{ pool *pgxpool.Pool }

func NewPGRepo(pool *pgxpool.Pool) Repository {
	return &pgRepo{pool: pool}
}

const referralCols = `id, patient_id, requester_ref, target_org_npi, target_org_name,
	target_practitioner_npi, target_specialty, window_start, window_end, reason, created_at`

func scanReferral(row pgx.Row) (*Referral, error) {
	var ref Referral
	err := row.Scan(&ref.ID, &ref.PatientID, &ref.RequesterRef,
		&ref.TargetOrgNPI, &ref.TargetOrgName, &ref.TargetPractitionerNPI, &ref.TargetSpecialty,
		&ref.WindowStart, &ref.WindowEnd, &ref.Reason, &ref.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

func (r *pgRepo) Create(ctx context.Context, ref *Referral) error {
	if ref.ID == uuid.Nil {
		ref.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO referral (id, patient_id, requester_ref, target_org_npi, target_org_name,
			target_practitioner_npi, target_specialty, window_start, window_end, reason, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		ref.ID, ref.PatientID, ref.RequesterRef, ref.TargetOrgNPI, ref.TargetOrgName,
		ref.TargetPractitionerNPI, ref.TargetSpecialty, ref.WindowStart, ref.WindowEnd,
		ref.Reason, ref.CreatedAt)
	return err
}

func (r *pgRepo) GetByID(ctx context.Context, id uuid.UUID) (*Referral, error) {
	return scanReferral(r.pool.QueryRow(ctx,
		`SELECT `+referralCols+` FROM referral WHERE id = $1`, id))
}

func (r *pgRepo) List(ctx context.Context, limit, offset int) ([]*Referral, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM referral`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+referralCols+` FROM referral ORDER BY created_at LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	refs, err := collectReferrals(rows)
	return refs, total, err
}

func (r *pgRepo) ListByPatient(ctx context.Context, patientID string) ([]*Referral, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+referralCols+` FROM referral WHERE patient_id = $1 ORDER BY created_at`,
		patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReferrals(rows)
}

func collectReferrals(rows pgx.Rows) ([]*Referral, error) {
	var refs []*Referral
	for rows.Next() {
		ref, err := scanReferral(rows)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}
