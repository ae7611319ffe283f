package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/baharkarakas/tradebinder/internal/models"
	repo "github.com/baharkarakas/tradebinder/internal/repository"
)

type listings struct{ s *Store }

func (d *data) hydrateListing(l models.Listing) models.Listing {
	l.Images = slices.Clone(l.Images)
	if l.Images == nil {
		l.Images = []string{}
	}
	owner := d.hydrateUser(d.users[l.OwnerID])
	l.Owner = &models.UserSummary{ID: owner.ID, Username: owner.Username, Location: owner.Location}
	card := d.cards[l.CardID].Summary()
	edition := d.editions[l.EditionID].Summary()
	loc := d.locations[l.LocationID]
	l.Card, l.Edition = &card, &edition
	l.Location = &models.LocationSummary{ID: loc.ID, Name: loc.Name}
	return l
}

func (d *data) checkListingRefs(l models.Listing) error {
	_, u := d.users[l.OwnerID]
	_, c := d.cards[l.CardID]
	_, e := d.editions[l.EditionID]
	_, loc := d.locations[l.LocationID]
	if !u || !c || !e || !loc {
		return repo.ErrReferenced
	}
	return nil
}

// hasOpenTransaction mirrors the postgres exclusion of listings with a non-cancelled sale.
func (d *data) hasOpenTransaction(listingID string) bool {
	for _, t := range d.transactions {
		if t.ListingID == listingID && t.Status != models.TxnCancelled {
			return true
		}
	}
	return false
}

func strip(l models.Listing) models.Listing {
	l.Owner, l.Card, l.Edition, l.Location = nil, nil, nil, nil
	l.Images = slices.Clone(l.Images)
	return l
}

func (r *listings) Create(_ context.Context, l models.Listing) (models.Listing, error) {
	err := r.s.do(func(d *data) error {
		if err := d.checkListingRefs(l); err != nil {
			return err
		}
		if l.ID == "" {
			l.ID = uuid.NewString()
		}
		l.CreatedAt = r.s.now()
		l.UpdatedAt = l.CreatedAt
		d.listings[l.ID] = strip(l)
		d.insert(l.ID)
		l = d.hydrateListing(d.listings[l.ID])
		return nil
	})
	return l, err
}

func (r *listings) GetByID(_ context.Context, id string) (models.Listing, error) {
	var l models.Listing
	err := r.s.do(func(d *data) error {
		found, ok := d.listings[id]
		if !ok {
			return repo.ErrNotFound
		}
		l = d.hydrateListing(found)
		return nil
	})
	return l, err
}

func (r *listings) GetActiveForUpdate(ctx context.Context, id string) (models.Listing, error) {
	l, err := r.GetByID(ctx, id)
	if err != nil {
		return models.Listing{}, err
	}
	if !l.IsActive {
		return models.Listing{}, repo.ErrNotFound
	}
	return l, nil
}

func (r *listings) GetForUpdate(ctx context.Context, id string) (models.Listing, error) {
	return r.GetByID(ctx, id)
}

var listingCompare = map[string]func(a, b models.Listing) int{
	"createdAt": func(a, b models.Listing) int { return a.CreatedAt.Compare(b.CreatedAt) },
	"updatedAt": func(a, b models.Listing) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
	"price":     func(a, b models.Listing) int { return a.Price.Cmp(b.Price) },
	"quantity":  func(a, b models.Listing) int { return cmp.Compare(a.Quantity, b.Quantity) },
	"condition": func(a, b models.Listing) int { return cmp.Compare(a.Condition, b.Condition) },
}

func (d *data) matchListing(l models.Listing, f models.ListingFilter) bool {
	switch {
	case f.LocationID != "" && l.LocationID != f.LocationID,
		f.OwnerID != "" && l.OwnerID != f.OwnerID,
		f.CardID != "" && l.CardID != f.CardID,
		f.EditionID != "" && l.EditionID != f.EditionID,
		f.Condition != "" && l.Condition != f.Condition,
		f.IsFoil != nil && l.IsFoil != *f.IsFoil,
		f.MinPrice != nil && l.Price.LessThan(*f.MinPrice),
		f.MaxPrice != nil && l.Price.GreaterThan(*f.MaxPrice),
		f.IsActive != nil && l.IsActive != *f.IsActive:
		return false
	}
	if f.CardName != "" && !containsFold(d.cards[l.CardID].Name, f.CardName) {
		return false
	}
	return !d.hasOpenTransaction(l.ID)
}

func (r *listings) List(_ context.Context, f models.ListingFilter) ([]models.Listing, int64, error) {
	var (
		out   []models.Listing
		total int64
	)
	err := r.s.do(func(d *data) error {
		matched := lo.Filter(lo.Values(d.listings), func(l models.Listing, _ int) bool { return d.matchListing(l, f) })
		total = int64(len(matched))
		compare, ok := listingCompare[f.SortBy]
		if !ok {
			compare = listingCompare["createdAt"]
		}
		page := sortPage(d, matched, func(l models.Listing) string { return l.ID }, compare, f.PageQuery)
		out = lo.Map(page, func(l models.Listing, _ int) models.Listing { return d.hydrateListing(l) })
		return nil
	})
	return out, total, err
}

func (r *listings) Update(_ context.Context, l models.Listing) (models.Listing, error) {
	err := r.s.do(func(d *data) error {
		cur, ok := d.listings[l.ID]
		if !ok {
			return repo.ErrNotFound
		}
		if _, ok := d.locations[l.LocationID]; !ok {
			return repo.ErrReferenced
		}
		cur.LocationID, cur.Condition, cur.IsFoil, cur.Price = l.LocationID, l.Condition, l.IsFoil, l.Price
		cur.Description, cur.Images = l.Description, slices.Clone(l.Images)
		cur.UpdatedAt = r.s.now()
		d.listings[l.ID] = cur
		l = d.hydrateListing(cur)
		return nil
	})
	return l, err
}

func (r *listings) SetActive(_ context.Context, id string, active bool) error {
	return r.s.do(func(d *data) error {
		cur, ok := d.listings[id]
		if !ok {
			return repo.ErrNotFound
		}
		cur.IsActive = active
		cur.UpdatedAt = r.s.now()
		d.listings[id] = cur
		return nil
	})
}

func (r *listings) Delete(_ context.Context, id string) error {
	return r.s.do(func(d *data) error {
		if _, ok := d.listings[id]; !ok {
			return repo.ErrNotFound
		}
		for _, t := range d.transactions {
			if t.ListingID == id {
				return repo.ErrReferenced
			}
		}
		for mid, m := range d.messages {
			if m.ListingID == id {
				delete(d.messages, mid)
			}
		}
		delete(d.listings, id)
		return nil
	})
}

func (r *listings) AdjustQuantity(_ context.Context, id string, delta int) (int, error) {
	var qty int
	err := r.s.do(func(d *data) error {
		cur, ok := d.listings[id]
		if !ok {
			return repo.ErrNotFound
		}
		if cur.Quantity+delta < 0 {
			return repo.ErrInsufficientQuantity
		}
		cur.Quantity += delta
		cur.UpdatedAt = r.s.now()
		d.listings[id] = cur
		qty = cur.Quantity
		return nil
	})
	return qty, err
}

func (r *listings) Stats(_ context.Context) (models.ListingStats, error) {
	var s models.ListingStats
	err := r.s.do(func(d *data) error {
		s.TotalValue = decimal.Zero
		for _, l := range d.listings {
			s.Total++
			if l.IsActive {
				s.Active++
				s.TotalValue = s.TotalValue.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
			}
		}
		s.Inactive = s.Total - s.Active
		return nil
	})
	return s, err
}
