package session

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgRepo struct{ pool *pgxpool.Pool }

func NewPGRepo(pool *pgxpool.Pool) Repository {
	return &pgRepo{pool: pool}
}

const sessionCols = `id, external_patient_id, patient_id, access_token, expires_at, active, created_at`

func scanSession(row pgx.Row) (*Session, error) {
	var s Session
	err := row.Scan(&s.ID, &s.ExternalPatientID, &s.PatientID, &s.AccessToken,
		&s.ExpiresAt, &s.Active, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *pgRepo) Create(ctx context.Context, s *Session) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO session (id, external_patient_id, patient_id, access_token, expires_at, active, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		s.ID, s.ExternalPatientID, s.PatientID, s.AccessToken, s.ExpiresAt, s.Active, s.CreatedAt)
	return err
}

func (r *pgRepo) GetByID(ctx context.Context, id uuid.UUID) (*Session, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionCols+` FROM session WHERE id = $1`, id))
}

func (r *pgRepo) GetActiveByExternalID(ctx context.Context, externalID string) (*Session, error) {
	s, err := scanSession(r.pool.QueryRow(ctx, `
		SELECT `+sessionCols+` FROM session
		WHERE external_patient_id = $1 AND active
		ORDER BY created_at DESC LIMIT 1`, externalID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *pgRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE session SET active = false WHERE id = $1`, id)
	return err
}
