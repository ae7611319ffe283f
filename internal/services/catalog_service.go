package services

import (
	"context"
	"strings"

	"github.com/baharkarakas/tradebinder/internal/apperr"
	"github.com/baharkarakas/tradebinder/internal/cache"
	"github.com/baharkarakas/tradebinder/internal/models"
	repo "github.com/baharkarakas/tradebinder/internal/repository"
)

const (
	DefaultSearchLimit = 10
	MaxSearchLimit     = 50
)

type CardService struct {
	store repo.Store
	cache *cache.Cache
}

func NewCardService(store repo.Store, c *cache.Cache) *CardService {
	return &CardService{store: store, cache: c}
}

func (s *CardService) FindAll(ctx context.Context, f models.CardFilter) (models.Page[models.Card], error) {
	f.PageQuery = f.PageQuery.Normalize(models.CardSortColumns, "name", models.SortAsc)
	cards, total, err := s.store.Cards().List(ctx, f)
	if err != nil {
		return models.Page[models.Card]{}, err
	}
	return models.NewPage(cards, total, f.PageQuery), nil
}

// Search matches active cards by name, text or type. An empty query yields no cards.
func (s *CardService) Search(ctx context.Context, q string, limit int) ([]models.Card, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []models.Card{}, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	limit = min(limit, MaxSearchLimit)
	return s.store.Cards().Search(ctx, q, limit)
}

func (s *CardService) FindOne(ctx context.Context, id string) (models.Card, error) {
	c, err := s.store.Cards().GetByID(ctx, id)
	if err != nil {
		return models.Card{}, notFound(err, "Card")
	}
	if !c.IsActive {
		return models.Card{}, apperr.NotFound("Card not found")
	}
	return c, nil
}

func (s *CardService) Stats(ctx context.Context) (models.Stats, error) {
	return cache.Remember(ctx, s.cache, cache.KeyCardStats, s.store.Cards().Stats)
}

type EditionService struct {
	store repo.Store
}

func NewEditionService(store repo.Store) *EditionService {
	return &EditionService{store: store}
}

func (s *EditionService) FindAll(ctx context.Context) ([]models.Edition, error) {
	return s.store.Editions().List(ctx)
}

func (s *EditionService) FindOne(ctx context.Context, id string) (models.Edition, error) {
	e, err := s.store.Editions().GetByID(ctx, id)
	if err != nil {
		return models.Edition{}, notFound(err, "Edition")
	}
	return e, nil
}
