package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/baharkarakas/tradebinder/internal/models"
)

type usersRepo struct{ q querier }

const userColumns = `u.id, u.email, u.username, u.password_hash, u.location_id, loc.name,
	COALESCE(u.avatar, ''), u.is_active, u.created_at, u.updated_at`

const userFrom = ` FROM users u LEFT JOIN locations loc ON loc.id = u.location_id`

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var (
		u       models.User
		locName *string
	)
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.LocationID, &locName,
		&u.Avatar, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return models.User{}, mapErr(err)
	}
	if u.LocationID != nil && locName != nil {
		u.Location = &models.LocationSummary{ID: *u.LocationID, Name: *locName}
	}
	return u, nil
}

func (r *usersRepo) Create(ctx context.Context, u models.User) (models.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	_, err := r.q.Exec(ctx,
		`INSERT INTO users(id, email, username, password_hash, location_id, avatar, is_active)
		 VALUES($1,$2,$3,$4,$5,$6,$7)`,
		u.ID, u.Email, u.Username, u.PasswordHash, u.LocationID, nullable(u.Avatar), u.IsActive,
	)
	if err != nil {
		return models.User{}, mapErr(err)
	}
	return r.GetByID(ctx, u.ID)
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (models.User, error) {
	return scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+userFrom+` WHERE u.id=$1`, id))
}

func (r *usersRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+userFrom+` WHERE u.email=$1`, email))
}

func (r *usersRepo) FindByEmailOrUsername(ctx context.Context, email, username string) (models.User, error) {
	return scanUser(r.q.QueryRow(ctx,
		`SELECT `+userColumns+userFrom+` WHERE u.email=$1 OR u.username=$2 ORDER BY (u.email=$1) DESC LIMIT 1`,
		email, username))
}
