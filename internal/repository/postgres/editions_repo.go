package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/baharkarakas/tradebinder/internal/models"
)

type editionsRepo struct{ q querier }

const editionColumns = `id, name, release_date, has_foil, created_at, updated_at`

func scanEdition(row interface{ Scan(...any) error }) (models.Edition, error) {
	var e models.Edition
	err := row.Scan(&e.ID, &e.Name, &e.ReleaseDate, &e.HasFoil, &e.CreatedAt, &e.UpdatedAt)
	return e, mapErr(err)
}

func (r *editionsRepo) Create(ctx context.Context, e models.Edition) (models.Edition, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return scanEdition(r.q.QueryRow(ctx,
		`INSERT INTO editions(id, name, release_date, has_foil) VALUES($1,$2,$3,$4) RETURNING `+editionColumns,
		e.ID, e.Name, e.ReleaseDate, e.HasFoil))
}

func (r *editionsRepo) GetByID(ctx context.Context, id string) (models.Edition, error) {
	return scanEdition(r.q.QueryRow(ctx, `SELECT `+editionColumns+` FROM editions WHERE id=$1`, id))
}

func (r *editionsRepo) List(ctx context.Context) ([]models.Edition, error) {
	rows, err := r.q.Query(ctx, `SELECT `+editionColumns+` FROM editions ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Edition{}
	for rows.Next() {
		e, err := scanEdition(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
