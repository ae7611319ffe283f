package memory

import (
	"cmp"
	"context"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/baharkarakas/tradebinder/internal/models"
	repo "github.com/baharkarakas/tradebinder/internal/repository"
)

type transactions struct{ s *Store }

func (d *data) hydrateTxn(t models.Transaction) models.Transaction {
	l := d.listings[t.ListingID]
	card := d.cards[l.CardID]
	edition := d.editions[l.EditionID]
	t.Listing = &models.TransactionListing{
		ID:        t.ListingID,
		Card:      models.CardSummary{ID: card.ID, Name: card.Name, ImageURL: card.ImageURL},
		Edition:   models.EditionSummary{ID: edition.ID, Name: edition.Name},
		Condition: l.Condition,
		Price:     l.Price,
	}
	buyer, seller := d.users[t.BuyerID], d.users[t.SellerID]
	t.Buyer = &models.UserSummary{ID: buyer.ID, Username: buyer.Username, Email: buyer.Email}
	t.Seller = &models.UserSummary{ID: seller.ID, Username: seller.Username, Email: seller.Email}
	return t
}

func (r *transactions) Create(_ context.Context, t models.Transaction) (models.Transaction, error) {
	err := r.s.do(func(d *data) error {
		_, l := d.listings[t.ListingID]
		_, b := d.users[t.BuyerID]
		_, s := d.users[t.SellerID]
		if !l || !b || !s {
			return repo.ErrReferenced
		}
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		t.CreatedAt = r.s.now()
		t.UpdatedAt = t.CreatedAt
		t.Listing, t.Buyer, t.Seller = nil, nil, nil
		d.transactions[t.ID] = t
		d.insert(t.ID)
		return nil
	})
	return t, err
}

func (r *transactions) GetByID(_ context.Context, id string) (models.Transaction, error) {
	var t models.Transaction
	err := r.s.do(func(d *data) error {
		found, ok := d.transactions[id]
		if !ok {
			return repo.ErrNotFound
		}
		t = d.hydrateTxn(found)
		return nil
	})
	return t, err
}

func (r *transactions) GetForUpdate(_ context.Context, id string) (models.Transaction, error) {
	var t models.Transaction
	err := r.s.do(func(d *data) error {
		found, ok := d.transactions[id]
		if !ok {
			return repo.ErrNotFound
		}
		t = found
		return nil
	})
	return t, err
}

var txnCompare = map[string]func(a, b models.Transaction) int{
	"createdAt":  func(a, b models.Transaction) int { return a.CreatedAt.Compare(b.CreatedAt) },
	"updatedAt":  func(a, b models.Transaction) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
	"totalPrice": func(a, b models.Transaction) int { return a.TotalPrice.Cmp(b.TotalPrice) },
	"status":     func(a, b models.Transaction) int { return cmp.Compare(a.Status, b.Status) },
}

func matchTxn(t models.Transaction, f models.TransactionFilter) bool {
	switch f.Role {
	case models.RoleBuyer:
		if t.BuyerID != f.UserID {
			return false
		}
	case models.RoleSeller:
		if t.SellerID != f.UserID {
			return false
		}
	default:
		if t.BuyerID != f.UserID && t.SellerID != f.UserID {
			return false
		}
	}
	return (f.Status == "" || t.Status == f.Status) &&
		(f.ListingID == "" || t.ListingID == f.ListingID) &&
		(f.BuyerID == "" || t.BuyerID == f.BuyerID) &&
		(f.SellerID == "" || t.SellerID == f.SellerID)
}

func (r *transactions) List(_ context.Context, f models.TransactionFilter) ([]models.Transaction, int64, error) {
	var (
		out   []models.Transaction
		total int64
	)
	err := r.s.do(func(d *data) error {
		matched := lo.Filter(lo.Values(d.transactions), func(t models.Transaction, _ int) bool { return matchTxn(t, f) })
		total = int64(len(matched))
		compare, ok := txnCompare[f.SortBy]
		if !ok {
			compare = txnCompare["createdAt"]
		}
		page := sortPage(d, matched, func(t models.Transaction) string { return t.ID }, compare, f.PageQuery)
		out = lo.Map(page, func(t models.Transaction, _ int) models.Transaction { return d.hydrateTxn(t) })
		return nil
	})
	return out, total, err
}

func (r *transactions) UpdateStatus(_ context.Context, id string, status models.TransactionStatus, trackingNumber string) error {
	return r.s.do(func(d *data) error {
		cur, ok := d.transactions[id]
		if !ok {
			return repo.ErrNotFound
		}
		cur.Status = status
		if trackingNumber != "" {
			cur.TrackingNumber = trackingNumber
		}
		cur.UpdatedAt = r.s.now()
		d.transactions[id] = cur
		return nil
	})
}

func (r *transactions) HasActive(_ context.Context, listingID, userID string) (bool, error) {
	var ok bool
	err := r.s.do(func(d *data) error {
		ok = lo.SomeBy(lo.Values(d.transactions), func(t models.Transaction) bool {
			return t.ListingID == listingID && t.Status.Active() && (t.BuyerID == userID || t.SellerID == userID)
		})
		return nil
	})
	return ok, err
}
