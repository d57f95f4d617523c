package tracking

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgRepo struct{ pool *pgxpool.Pool }

func NewPGRepo(pool *pgxpool.Pool) Repository {
	return &pgRepo{pool: pool}
}

const taskCols = `id, referral_id, patient_id, status, business_status,
	window_start, window_end, output, last_modified, created_at`

func scanTask(row pgx.Row) (*Task, error) {
	var t Task
	var output []byte
	err := row.Scan(&t.ID, &t.ReferralID, &t.PatientID, &t.Status, &t.BusinessStatus,
		&t.WindowStart, &t.WindowEnd, &output, &t.LastModified, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(output) > 0 {
		if err := json.Unmarshal(output, &t.Output); err != nil {
			return nil, fmt.Errorf("decode task output: %w", err)
		}
	}
	return &t, nil
}

func encodeOutput(t *Task) ([]byte, error) {
	if t.Output == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t.Output)
}

func (r *pgRepo) Create(ctx context.Context, t *Task) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	output, err := encodeOutput(t)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO tracking_task (id, referral_id, patient_id, status, business_status,
			window_start, window_end, output, last_modified)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		t.ID, t.ReferralID, t.PatientID, t.Status, t.BusinessStatus,
		t.WindowStart, t.WindowEnd, output, t.LastModified)
	return err
}

func (r *pgRepo) GetByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	return scanTask(r.pool.QueryRow(ctx,
		`SELECT `+taskCols+` FROM tracking_task WHERE id = $1`, id))
}

func (r *pgRepo) GetByReferralID(ctx context.Context, referralID uuid.UUID) (*Task, error) {
	return scanTask(r.pool.QueryRow(ctx,
		`SELECT `+taskCols+` FROM tracking_task WHERE referral_id = $1`, referralID))
}

func (r *pgRepo) Update(ctx context.Context, t *Task) error {
	output, err := encodeOutput(t)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		UPDATE tracking_task
		SET status = $2, business_status = $3, output = $4, last_modified = $5
		WHERE id = $1`,
		t.ID, t.Status, t.BusinessStatus, output, t.LastModified)
	return err
}

func (r *pgRepo) List(ctx context.Context, limit, offset int) ([]*Task, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tracking_task`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+taskCols+` FROM tracking_task ORDER BY created_at LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tasks, err := collectTasks(rows)
	return tasks, total, err
}

func (r *pgRepo) ListOpenByPatient(ctx context.Context, patientID string) ([]*Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskCols+` FROM tracking_task
		WHERE patient_id = $1 AND status NOT IN ($2, $3, $4)
		ORDER BY created_at`,
		patientID, StatusCompleted, StatusFailed, StatusCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTasks(rows)
}

func (r *pgRepo) ListOpen(ctx context.Context) ([]*Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskCols+` FROM tracking_task
		WHERE status NOT IN ($1, $2, $3)
		ORDER BY created_at`,
		StatusCompleted, StatusFailed, StatusCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTasks(rows)
}

func collectTasks(rows pgx.Rows) ([]*Task, error) {
	var tasks []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
