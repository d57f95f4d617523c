package directory

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgRepo struct{ pool *pgxpool.Pool }

func NewPGRepo(pool *pgxpool.Pool) Repository {
	return &pgRepo{pool: pool}
}

func (r *pgRepo) UpsertOrganization(ctx context.Context, org *Organization) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO directory_organization (ref, npi, name, updated_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (ref) DO UPDATE
		SET npi = EXCLUDED.npi, name = EXCLUDED.name, updated_at = EXCLUDED.updated_at`,
		org.Ref, org.NPI, org.Name, org.UpdatedAt)
	return err
}

func (r *pgRepo) GetOrganization(ctx context.Context, ref string) (*Organization, error) {
	var org Organization
	err := r.pool.QueryRow(ctx,
		`SELECT ref, npi, name, updated_at FROM directory_organization WHERE ref = $1`, ref).
		Scan(&org.Ref, &org.NPI, &org.Name, &org.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *pgRepo) ListOrganizations(ctx context.Context, limit, offset int) ([]*Organization, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM directory_organization`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT ref, npi, name, updated_at FROM directory_organization ORDER BY ref LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orgs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Organization, error) {
		var org Organization
		err := row.Scan(&org.Ref, &org.NPI, &org.Name, &org.UpdatedAt)
		return &org, err
	})
	return orgs, total, err
}

func (r *pgRepo) UpsertPractitioner(ctx context.Context, p *Practitioner) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO directory_practitioner (ref, npi, specialty, name, updated_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (ref) DO UPDATE
		SET npi = EXCLUDED.npi, specialty = EXCLUDED.specialty,
			name = EXCLUDED.name, updated_at = EXCLUDED.updated_at`,
		p.Ref, p.NPI, p.Specialty, p.Name, p.UpdatedAt)
	return err
}

func (r *pgRepo) GetPractitioner(ctx context.Context, ref string) (*Practitioner, error) {
	var p Practitioner
	err := r.pool.QueryRow(ctx,
		`SELECT ref, npi, specialty, name, updated_at FROM directory_practitioner WHERE ref = $1`, ref).
		Scan(&p.Ref, &p.NPI, &p.Specialty, &p.Name, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pgRepo) ListPractitioners(ctx context.Context, limit, offset int) ([]*Practitioner, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM directory_practitioner`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT ref, npi, specialty, name, updated_at FROM directory_practitioner ORDER BY ref LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	ps, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Practitioner, error) {
		var p Practitioner
		err := row.Scan(&p.Ref, &p.NPI, &p.Specialty, &p.Name, &p.UpdatedAt)
		return &p, err
	})
	return ps, total, err
}
