package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/baharkarakas/tradebinder/internal/api/validate"
	"github.com/baharkarakas/tradebinder/internal/apperr"
	"github.com/baharkarakas/tradebinder/internal/cache"
	"github.com/baharkarakas/tradebinder/internal/logger"
	"github.com/baharkarakas/tradebinder/internal/models"
	repo "github.com/baharkarakas/tradebinder/internal/repository"
)

const MaxLocationNameLen = 100

type LocationService struct {
	store repo.Store
	cache *cache.Cache
}

func NewLocationService(store repo.Store, c *cache.Cache) *LocationService {
	return &LocationService{store: store, cache: c}
}

type LocationInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (in *LocationInput) normalize() error {
	in.Name = sanitizeText(in.Name)
	in.Description = sanitizeText(in.Description)
	var errs validate.Errs
	errs.Add(validate.Required("name", in.Name), validate.MaxLen("name", in.Name, MaxLocationNameLen))
	return errs.Err()
}

func (s *LocationService) FindAll(ctx context.Context) ([]models.Location, error) {
	return s.store.Locations().ListActive(ctx)
}

func (s *LocationService) FindOne(ctx context.Context, id string) (models.Location, error) {
	l, err := s.store.Locations().GetByID(ctx, id)
	if err != nil {
		return models.Location{}, notFound(err, "Location")
	}
	if !l.IsActive {
		return models.Location{}, apperr.NotFound("Location not found")
	}
	return l, nil
}

func (s *LocationService) Create(ctx context.Context, in LocationInput) (models.Location, error) {
	if err := in.normalize(); err != nil {
		return models.Location{}, err
	}
	l, err := s.store.Locations().Create(ctx, models.Location{Name: in.Name, Description: in.Description, IsActive: true})
	if errors.Is(err, repo.ErrDuplicate) {
		return models.Location{}, apperr.Conflict("location %q already exists", in.Name)
	}
	if err != nil {
		return models.Location{}, fmt.Errorf("create location: %w", err)
	}
	cache.Invalidate(ctx, s.cache, cache.KeyLocationStats)
	logger.FromContext(ctx).Info("location created", "location_id", l.ID)
	return l, nil
}

func (s *LocationService) Update(ctx context.Context, id string, in LocationInput) (models.Location, error) {
	if err := in.normalize(); err != nil {
		return models.Location{}, err
	}
	l, err := s.store.Locations().Update(ctx, models.Location{ID: id, Name: in.Name, Description: in.Description})
	switch {
	case errors.Is(err, repo.ErrDuplicate):
		return models.Location{}, apperr.Conflict("location %q already exists", strings.TrimSpace(in.Name))
	case err != nil:
		return models.Location{}, notFound(err, "Location")
	}
	return l, nil
}

// Deactivate hides the location; rows that reference it keep working.
func (s *LocationService) Deactivate(ctx context.Context, id string) error {
	if err := s.store.Locations().SetActive(ctx, id, false); err != nil {
		return notFound(err, "Location")
	}
	cache.Invalidate(ctx, s.cache, cache.KeyLocationStats)
	return nil
}

func (s *LocationService) Stats(ctx context.Context) (models.Stats, error) {
	return cache.Remember(ctx, s.cache, cache.KeyLocationStats, s.store.Locations().Stats)
}
