package consent

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgRepo struct{ pool *pgxpool.Pool }

func NewPGRepo(pool *pgxpool.Pool) Repository {
	return &pgRepo{pool: pool}
}

func (r *pgRepo) Upsert(ctx context.Context, pref *SharingPreference) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sharing_preference (patient_id, provider_ref, mode, active, granted_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (patient_id, provider_ref) DO UPDATE
		SET mode = EXCLUDED.mode, active = EXCLUDED.active, granted_at = EXCLUDED.granted_at`,
		pref.PatientID, pref.ProviderRef, pref.Mode, pref.Active, pref.GrantedAt)
	return err
}

func (r *pgRepo) Get(ctx context.Context, patientID, providerRef string) (*SharingPreference, error) {
	var pref SharingPreference
	err := r.pool.QueryRow(ctx, `
		SELECT patient_id, provider_ref, mode, active, granted_at
		FROM sharing_preference WHERE patient_id = $1 AND provider_ref = $2`,
		patientID, providerRef).
		Scan(&pref.PatientID, &pref.ProviderRef, &pref.Mode, &pref.Active, &pref.GrantedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

func (r *pgRepo) ListByPatient(ctx context.Context, patientID string) ([]*SharingPreference, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT patient_id, provider_ref, mode, active, granted_at
		FROM sharing_preference WHERE patient_id = $1 ORDER BY provider_ref`,
		patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*SharingPreference, error) {
		var pref SharingPreference
		err := row.Scan(&pref.PatientID, &pref.ProviderRef, &pref.Mode, &pref.Active, &pref.GrantedAt)
		return &pref, err
	})
}
