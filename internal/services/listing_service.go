package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/baharkarakas/tradebinder/internal/api/validate"
	"github.com/baharkarakas/tradebinder/internal/apperr"
	"github.com/baharkarakas/tradebinder/internal/auth"
	"github.com/baharkarakas/tradebinder/internal/cache"
	"github.com/baharkarakas/tradebinder/internal/logger"
	"github.com/baharkarakas/tradebinder/internal/metrics"
	"github.com/baharkarakas/tradebinder/internal/models"
	"github.com/baharkarakas/tradebinder/internal/policy"
	repo "github.com/baharkarakas/tradebinder/internal/repository"
)

const MaxImageURLLen = 2048

type ListingService struct {
	store repo.Store
	cache *cache.Cache
}

func NewListingService(store repo.Store, c *cache.Cache) *ListingService {
	return &ListingService{store: store, cache: c}
}

type CreateListingInput struct {
	CardID      string           `json:"cardId"`
	EditionID   string           `json:"editionId"`
	LocationID  string           `json:"locationId"`
	Condition   models.Condition `json:"condition"`
	IsFoil      bool             `json:"isFoil"`
	Price       decimal.Decimal  `json:"price"`
	Quantity    int              `json:"quantity"`
	Description string           `json:"description"`
	Images      []string         `json:"images"`
}

func validateDescription(errs *validate.Errs, d string) {
	if d != "" {
		errs.Add(validate.MinLen("description", d, models.MinDescriptionLen), validate.MaxLen("description", d, models.MaxDescriptionLen))
	}
}

func validateImages(errs *validate.Errs, images []string) {
	if len(images) > models.MaxListingImages {
		errs.Add(&validate.ErrField{Field: "images", Msg: "at most " + strconv.Itoa(models.MaxListingImages) + " images"})
	}
	for i, img := range images {
		errs.Add(validate.MaxLen("images["+strconv.Itoa(i)+"]", img, MaxImageURLLen))
	}
}

func validateCondition(errs *validate.Errs, cond models.Condition) {
	if !cond.Valid() {
		errs.Add(&validate.ErrField{Field: "condition", Msg: "unknown condition"})
	}
}

func validatePrice(errs *validate.Errs, price decimal.Decimal) {
	errs.Add(validate.DecimalRange("price", price, models.MinListingPrice, models.MaxListingPrice))
}

func validateQuantity(errs *validate.Errs, qty int) {
	errs.Add(
		validate.MinInt("quantity", int64(qty), models.MinListingQuantity),
		validate.MaxInt("quantity", int64(qty), models.MaxListingQuantity),
	)
}

func validateListingValues(errs *validate.Errs, cond models.Condition, price decimal.Decimal, qty int) {
	validateCondition(errs, cond)
	validatePrice(errs, price)
	validateQuantity(errs, qty)
}

// activeLocation loads a location that listings may point at.
func (s *ListingService) activeLocation(ctx context.Context, id string) (models.Location, error) {
	loc, err := s.store.Locations().GetByID(ctx, id)
	if err != nil {
		return models.Location{}, notFound(err, "Location")
	}
	if !loc.IsActive {
		return models.Location{}, apperr.NotFound("Location not found or inactive")
	}
	return loc, nil
}

func (s *ListingService) Create(ctx context.Context, actor auth.Principal, in CreateListingInput) (models.Listing, error) {
	in.Description = sanitizeText(in.Description)
	in.Images = lo.Compact(in.Images)
	if in.Condition == "" {
		in.Condition = models.ConditionNearMint
	}
	var errs validate.Errs
	errs.Add(validate.UUID("cardId", in.CardID), validate.UUID("editionId", in.EditionID), validate.UUID("locationId", in.LocationID))
	validateListingValues(&errs, in.Condition, in.Price, in.Quantity)
	validateDescription(&errs, in.Description)
	validateImages(&errs, in.Images)
	if err := errs.Err(); err != nil {
		return models.Listing{}, err
	}

	if _, err := s.store.Users().GetByID(ctx, actor.UserID); err != nil {
		return models.Listing{}, notFound(err, "User")
	}
	if _, err := s.store.Cards().GetByID(ctx, in.CardID); err != nil {
		return models.Listing{}, notFound(err, "Card")
	}
	edition, err := s.store.Editions().GetByID(ctx, in.EditionID)
	if err != nil {
		return models.Listing{}, notFound(err, "Edition")
	}
	if in.IsFoil && !edition.HasFoil {
		return models.Listing{}, apperr.BadRequest("edition %q has no foil printing", edition.Name)
	}
	if _, err := s.activeLocation(ctx, in.LocationID); err != nil {
		return models.Listing{}, err
	}

	l, err := s.store.Listings().Create(ctx, models.Listing{
		OwnerID:     actor.UserID,
		CardID:      in.CardID,
		EditionID:   in.EditionID,
		LocationID:  in.LocationID,
		Condition:   in.Condition,
		IsFoil:      in.IsFoil,
		Price:       in.Price,
		Quantity:    in.Quantity,
		Description: in.Description,
		Images:      in.Images,
		IsActive:    true,
	})
	if err != nil {
		return models.Listing{}, fmt.Errorf("create listing: %w", err)
	}
	s.changed(ctx, "created")
	logger.FromContext(ctx).Info("listing created", "listing_id", l.ID, "user_id", actor.UserID)
	return l, nil
}

// FindAll searches listings. Without an explicit location filter the viewer's location, when known, applies.
func (s *ListingService) FindAll(ctx context.Context, f models.ListingFilter, viewerLocationID string) (models.Page[models.Listing], error) {
	if f.LocationID == "" && viewerLocationID != "" {
		f.LocationID = viewerLocationID
	}
	f.PageQuery = f.PageQuery.Normalize(models.ListingSortColumns, "createdAt", models.SortDesc)
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return models.Page[models.Listing]{}, apperr.BadRequest("minPrice must not exceed maxPrice")
	}
	listings, total, err := s.store.Listings().List(ctx, f)
	if err != nil {
		return models.Page[models.Listing]{}, err
	}
	return models.NewPage(listings, total, f.PageQuery), nil
}

// FindAvailable is FindAll restricted to active listings.
func (s *ListingService) FindAvailable(ctx context.Context, f models.ListingFilter, viewerLocationID string) (models.Page[models.Listing], error) {
	f.IsActive = lo.ToPtr(true)
	return s.FindAll(ctx, f, viewerLocationID)
}

func (s *ListingService) FindByOwner(ctx context.Context, actor auth.Principal, q models.PageQuery) (models.Page[models.Listing], error) {
	q.SortBy, q.SortOrder = "createdAt", models.SortDesc
	q = q.Normalize(models.ListingSortColumns, "createdAt", models.SortDesc)
	listings, total, err := s.store.Listings().List(ctx, models.ListingFilter{OwnerID: actor.UserID, PageQuery: q})
	if err != nil {
		return models.Page[models.Listing]{}, err
	}
	return models.NewPage(listings, total, q), nil
}

func (s *ListingService) FindOne(ctx context.Context, id string) (models.Listing, error) {
	l, err := s.store.Listings().GetByID(ctx, id)
	if err != nil {
		return models.Listing{}, notFound(err, "Listing")
	}
	return l, nil
}

// validatePatch checks only the fields the patch sets, so a sold out listing
// (quantity 0) can still be repriced or redescribed.
func validatePatch(patch *models.ListingPatch) error {
	if patch.Description != nil {
		d := sanitizeText(*patch.Description)
		patch.Description = &d
	}
	if patch.Images != nil {
		patch.Images = lo.Compact(patch.Images)
	}

	var errs validate.Errs
	if patch.LocationID != nil {
		errs.Add(validate.UUID("locationId", *patch.LocationID))
	}
	if patch.Condition != nil {
		validateCondition(&errs, *patch.Condition)
	}
	if patch.Price != nil {
		validatePrice(&errs, *patch.Price)
	}
	if patch.Quantity != nil {
		validateQuantity(&errs, *patch.Quantity)
	}
	if patch.Description != nil {
		validateDescription(&errs, *patch.Description)
	}
	if patch.Images != nil {
		validateImages(&errs, patch.Images)
	}
	return errs.Err()
}

// Update applies patch under the listing row lock. A quantity change is applied
// as a delta against the locked row, so purchases committed before the lock are kept.
func (s *ListingService) Update(ctx context.Context, actor auth.Principal, id string, patch models.ListingPatch) (models.Listing, error) {
	if err := validatePatch(&patch); err != nil {
		return models.Listing{}, err
	}

	var updated models.Listing
	err := s.store.WithTx(ctx, func(tx repo.Store) error {
		l, err := tx.Listings().GetForUpdate(ctx, id)
		if err != nil {
			return notFound(err, "Listing")
		}
		if err := policy.Check(actor.UserID, policy.Resource{OwnerID: l.OwnerID}, policy.ListingUpdate); err != nil {
			return err
		}

		if patch.LocationID != nil {
			loc, err := tx.Locations().GetByID(ctx, *patch.LocationID)
			if err != nil {
				return notFound(err, "Location")
			}
			if !loc.IsActive {
				return apperr.NotFound("Location not found or inactive")
			}
			l.LocationID = loc.ID
		}
		if patch.Condition != nil {
			l.Condition = *patch.Condition
		}
		if patch.IsFoil != nil {
			if *patch.IsFoil && l.Edition != nil && !l.Edition.HasFoil {
				return apperr.BadRequest("edition %q has no foil printing", l.Edition.Name)
			}
			l.IsFoil = *patch.IsFoil
		}
		if patch.Price != nil {
			l.Price = *patch.Price
		}
		if patch.Description != nil {
			l.Description = *patch.Description
		}
		if patch.Images != nil {
			l.Images = patch.Images
		}

		if _, err := tx.Listings().Update(ctx, l); err != nil {
			return notFound(err, "Listing")
		}
		if patch.Quantity != nil && *patch.Quantity != l.Quantity {
			if _, err := tx.Listings().AdjustQuantity(ctx, l.ID, *patch.Quantity-l.Quantity); err != nil {
				return fmt.Errorf("set listing quantity: %w", err)
			}
		}
		updated, err = tx.Listings().GetByID(ctx, l.ID)
		return err
	})
	if err != nil {
		return models.Listing{}, err
	}
	s.changed(ctx, "updated")
	return updated, nil
}

// UpdateStatus only flips isActive; the stock is never rewritten here.
func (s *ListingService) UpdateStatus(ctx context.Context, actor auth.Principal, id string, status models.ListingStatus) (models.Listing, error) {
	active, ok := status.Active()
	if !ok {
		return models.Listing{}, apperr.BadRequest("invalid status %q", status)
	}

	var updated models.Listing
	err := s.store.WithTx(ctx, func(tx repo.Store) error {
		l, err := tx.Listings().GetForUpdate(ctx, id)
		if err != nil {
			return notFound(err, "Listing")
		}
		if err := policy.Check(actor.UserID, policy.Resource{OwnerID: l.OwnerID}, policy.ListingSetStatus); err != nil {
			return err
		}
		if err := tx.Listings().SetActive(ctx, id, active); err != nil {
			return notFound(err, "Listing")
		}
		updated, err = tx.Listings().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return models.Listing{}, err
	}
	s.changed(ctx, "updated")
	return updated, nil
}

func (s *ListingService) Remove(ctx context.Context, actor auth.Principal, id string) error {
	l, err := s.FindOne(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Check(actor.UserID, policy.Resource{OwnerID: l.OwnerID}, policy.ListingDelete); err != nil {
		return err
	}
	err = s.store.Listings().Delete(ctx, id)
	if errors.Is(err, repo.ErrReferenced) {
		return apperr.Conflict("listing has transactions and cannot be deleted")
	}
	if err != nil {
		return notFound(err, "Listing")
	}
	s.changed(ctx, "deleted")
	logger.FromContext(ctx).Info("listing deleted", "listing_id", id, "user_id", actor.UserID)
	return nil
}

func (s *ListingService) Stats(ctx context.Context) (models.ListingStats, error) {
	return cache.Remember(ctx, s.cache, cache.KeyListingStats, s.store.Listings().Stats)
}

func (s *ListingService) changed(ctx context.Context, event string) {
	metrics.ListingsTotal.WithLabelValues(event).Inc()
	cache.Invalidate(ctx, s.cache, cache.KeyListingStats)
}
