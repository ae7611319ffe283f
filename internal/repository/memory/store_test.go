package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/tradebinder/internal/models"
	repo "github.com/baharkarakas/tradebinder/internal/repository"
)

func seedListing(t *testing.T, s *Store, qty int) models.Listing {
	t.Helper()
	ctx := context.Background()
	loc, err := s.Locations().Create(ctx, models.Location{Name: "Madrid", IsActive: true})
	require.NoError(t, err)
	u, err := s.Users().Create(ctx, models.User{Email: "seller@example.com", Username: "seller", IsActive: true})
	require.NoError(t, err)
	c, err := s.Cards().Create(ctx, models.Card{Name: "Black Lotus", IsActive: true})
	require.NoError(t, err)
	e, err := s.Editions().Create(ctx, models.Edition{Name: "Alpha"})
	require.NoError(t, err)
	l, err := s.Listings().Create(ctx, models.Listing{
		OwnerID: u.ID, CardID: c.ID, EditionID: e.ID, LocationID: loc.ID,
		Condition: models.ConditionNearMint, Price: decimal.NewFromInt(150), Quantity: qty, IsActive: true,
	})
	require.NoError(t, err)
	return l
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	s := NewStore()
	l := seedListing(t, s, 3)
	boom := errors.New("boom")

	err := s.WithTx(context.Background(), func(tx repo.Store) error {
		_, err := tx.Listings().AdjustQuantity(context.Background(), l.ID, -2)
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Listings().GetByID(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Quantity)
}

func TestListingUpdate_LeavesStockAndStatus(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	l := seedListing(t, s, 2)

	_, err := s.Listings().AdjustQuantity(ctx, l.ID, -1)
	require.NoError(t, err)

	stale := l
	stale.Quantity, stale.IsActive = 2, false
	stale.Price = decimal.NewFromInt(99)
	got, err := s.Listings().Update(ctx, stale)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(decimal.NewFromInt(99)))
	assert.Equal(t, 1, got.Quantity)
	assert.True(t, got.IsActive)

	require.NoError(t, s.Listings().SetActive(ctx, l.ID, false))
	got, err = s.Listings().GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, 1, got.Quantity)

	assert.ErrorIs(t, s.Listings().SetActive(ctx, "missing", true), repo.ErrNotFound)
}

func TestAdjustQuantity_NeverBelowZero(t *testing.T) {
	s := NewStore()
	l := seedListing(t, s, 1)

	_, err := s.Listings().AdjustQuantity(context.Background(), l.ID, -2)
	assert.ErrorIs(t, err, repo.ErrInsufficientQuantity)

	qty, err := s.Listings().AdjustQuantity(context.Background(), l.ID, -1)
	require.NoError(t, err)
	assert.Equal(t, 0, qty)

	_, err = s.Listings().AdjustQuantity(context.Background(), "missing", 1)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestListings_HydratesAndFilters(t *testing.T) {
	s := NewStore()
	l := seedListing(t, s, 2)
	ctx := context.Background()

	got, err := s.Listings().GetByID(ctx, l.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Card)
	assert.Equal(t, "Black Lotus", got.Card.Name)
	assert.Equal(t, "seller", got.Owner.Username)
	assert.Equal(t, "Madrid", got.Location.Name)

	q := models.PageQuery{}.Normalize(models.ListingSortColumns, "createdAt", models.SortDesc)
	out, total, err := s.Listings().List(ctx, models.ListingFilter{CardName: "lotus", PageQuery: q})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, out, 1)

	out, total, err = s.Listings().List(ctx, models.ListingFilter{CardName: "ring", PageQuery: q})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, out)
}

func TestListings_DeleteBlockedByTransaction(t *testing.T) {
	s := NewStore()
	l := seedListing(t, s, 2)
	ctx := context.Background()
	buyer, err := s.Users().Create(ctx, models.User{Email: "buyer@example.com", Username: "buyer", IsActive: true})
	require.NoError(t, err)

	_, err = s.Transactions().Create(ctx, models.Transaction{
		ListingID: l.ID, BuyerID: buyer.ID, SellerID: l.OwnerID, Quantity: 1,
		PricePerUnit: l.Price, TotalPrice: l.Price, Status: models.TxnPending,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, s.Listings().Delete(ctx, l.ID), repo.ErrReferenced)
}

func TestUsers_Duplicate(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_, err := s.Users().Create(ctx, models.User{Email: "a@example.com", Username: "alice"})
	require.NoError(t, err)
	_, err = s.Users().Create(ctx, models.User{Email: "a@example.com", Username: "other"})
	assert.ErrorIs(t, err, repo.ErrDuplicate)
}
