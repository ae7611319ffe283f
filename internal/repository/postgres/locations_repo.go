package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/baharkarakas/tradebinder/internal/models"
	repo "github.com/baharkarakas/tradebinder/internal/repository"
)

type locationsRepo struct{ q querier }

const locationColumns = `id, name, COALESCE(description, ''), is_active, created_at, updated_at`

func scanLocation(row interface{ Scan(...any) error }) (models.Location, error) {
	var l models.Location
	err := row.Scan(&l.ID, &l.Name, &l.Description, &l.IsActive, &l.CreatedAt, &l.UpdatedAt)
	return l, mapErr(err)
}

func (r *locationsRepo) Create(ctx context.Context, l models.Location) (models.Location, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return scanLocation(r.q.QueryRow(ctx,
		`INSERT INTO locations(id, name, description, is_active) VALUES($1,$2,$3,$4)
		 RETURNING `+locationColumns,
		l.ID, l.Name, nullable(l.Description), l.IsActive))
}

func (r *locationsRepo) GetByID(ctx context.Context, id string) (models.Location, error) {
	return scanLocation(r.q.QueryRow(ctx, `SELECT `+locationColumns+` FROM locations WHERE id=$1`, id))
}

func (r *locationsRepo) GetByName(ctx context.Context, name string) (models.Location, error) {
	return scanLocation(r.q.QueryRow(ctx, `SELECT `+locationColumns+` FROM locations WHERE name=$1`, name))
}

func (r *locationsRepo) ListActive(ctx context.Context) ([]models.Location, error) {
	rows, err := r.q.Query(ctx, `SELECT `+locationColumns+` FROM locations WHERE is_active ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Location{}
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *locationsRepo) Update(ctx context.Context, l models.Location) (models.Location, error) {
	return scanLocation(r.q.QueryRow(ctx,
		`UPDATE locations SET name=$2, description=$3, updated_at=now() WHERE id=$1
		 RETURNING `+locationColumns,
		l.ID, l.Name, nullable(l.Description)))
}

func (r *locationsRepo) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := r.q.Exec(ctx, `UPDATE locations SET is_active=$2, updated_at=now() WHERE id=$1`, id, active)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *locationsRepo) Stats(ctx context.Context) (models.Stats, error) {
	var s models.Stats
	err := r.q.QueryRow(ctx,
		`SELECT count(*), count(*) FILTER (WHERE is_active) FROM locations`,
	).Scan(&s.Total, &s.Active)
	s.Inactive = s.Total - s.Active
	return s, err
}
