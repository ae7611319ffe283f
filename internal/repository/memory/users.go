package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/baharkarakas/tradebinder/internal/models"
	repo "github.com/baharkarakas/tradebinder/internal/repository"
)

type users struct{ s *Store }

func (d *data) hydrateUser(u models.User) models.User {
	u.Location = nil
	if u.LocationID != nil {
		if loc, ok := d.locations[*u.LocationID]; ok {
			u.Location = &models.LocationSummary{ID: loc.ID, Name: loc.Name}
		}
	}
	return u
}

func (r *users) Create(_ context.Context, u models.User) (models.User, error) {
	err := r.s.do(func(d *data) error {
		for _, other := range d.users {
			if other.Email == u.Email || other.Username == u.Username {
				return repo.ErrDuplicate
			}
		}
		if u.LocationID != nil {
			if _, ok := d.locations[*u.LocationID]; !ok {
				return repo.ErrReferenced
			}
		}
		if u.ID == "" {
			u.ID = uuid.NewString()
		}
		u.CreatedAt = r.s.now()
		u.UpdatedAt = u.CreatedAt
		u.Location = nil
		d.users[u.ID] = u
		d.insert(u.ID)
		u = d.hydrateUser(u)
		return nil
	})
	return u, err
}

func (r *users) GetByID(_ context.Context, id string) (models.User, error) {
	var u models.User
	err := r.s.do(func(d *data) error {
		found, ok := d.users[id]
		if !ok {
			return repo.ErrNotFound
		}
		u = d.hydrateUser(found)
		return nil
	})
	return u, err
}

func (r *users) GetByEmail(_ context.Context, email string) (models.User, error) {
	var u models.User
	err := r.s.do(func(d *data) error {
		for _, found := range d.users {
			if found.Email == email {
				u = d.hydrateUser(found)
				return nil
			}
		}
		return repo.ErrNotFound
	})
	return u, err
}

func (r *users) FindByEmailOrUsername(_ context.Context, email, username string) (models.User, error) {
	var u models.User
	err := r.s.do(func(d *data) error {
		var byName *models.User
		for _, found := range d.users {
			if found.Email == email {
				u = d.hydrateUser(found)
				return nil
			}
			if found.Username == username && byName == nil {
				found := found
				byName = &found
			}
		}
		if byName == nil {
			return repo.ErrNotFound
		}
		u = d.hydrateUser(*byName)
		return nil
	})
	return u, err
}
