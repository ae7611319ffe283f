//go:build integration

package postgres

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/tradebinder/internal/db"
	"github.com/baharkarakas/tradebinder/internal/models"
	repo "github.com/baharkarakas/tradebinder/internal/repository"
)

// Run with: TRADEBINDER_TEST_DATABASE_URL=postgres://... go test -tags integration ./internal/repository/postgres/
func newTestStore(t *testing.T) repo.Store {
	t.Helper()
	url := os.Getenv("TRADEBINDER_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TRADEBINDER_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := db.NewPool(ctx, url, 16)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, db.RunMigrations(ctx, pool))
	return NewStore(pool)
}

func seedListing(t *testing.T, s repo.Store, qty int) models.Listing {
	t.Helper()
	ctx := context.Background()
	suffix := uuid.NewString()[:8]

	loc, err := s.Locations().Create(ctx, models.Location{Name: "Madrid " + suffix, IsActive: true})
	require.NoError(t, err)
	u, err := s.Users().Create(ctx, models.User{
		Email: "seller-" + suffix + "@example.com", Username: "seller-" + suffix, PasswordHash: "x", IsActive: true,
	})
	require.NoError(t, err)
	c, err := s.Cards().Create(ctx, models.Card{Name: "Black Lotus " + suffix, IsActive: true})
	require.NoError(t, err)
	e, err := s.Editions().Create(ctx, models.Edition{Name: "Alpha " + suffix})
	require.NoError(t, err)
	l, err := s.Listings().Create(ctx, models.Listing{
		OwnerID: u.ID, CardID: c.ID, EditionID: e.ID, LocationID: loc.ID,
		Condition: models.ConditionNearMint, Price: decimal.RequireFromString("150.00"), Quantity: qty, IsActive: true,
	})
	require.NoError(t, err)
	return l
}

func TestListings_LockedDecrementNeverOversells(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	l := seedListing(t, s, 1)

	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		won, starved int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.WithTx(ctx, func(tx repo.Store) error {
				if _, err := tx.Listings().GetActiveForUpdate(ctx, l.ID); err != nil {
					return err
				}
				_, err := tx.Listings().AdjustQuantity(ctx, l.ID, -1)
				return err
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				won++
			case errors.Is(err, repo.ErrInsufficientQuantity):
				starved++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, won)
	assert.Equal(t, 7, starved)
	got, err := s.Listings().GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)
}

func TestListings_UpdateLeavesStockAndStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	l := seedListing(t, s, 2)

	_, err := s.Listings().AdjustQuantity(ctx, l.ID, -1)
	require.NoError(t, err)

	stale := l
	stale.Quantity, stale.IsActive = 2, false
	stale.Price = decimal.RequireFromString("99.99")
	got, err := s.Listings().Update(ctx, stale)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("99.99")))
	assert.Equal(t, 1, got.Quantity)
	assert.True(t, got.IsActive)

	require.NoError(t, s.Listings().SetActive(ctx, l.ID, false))
	_, err = s.Listings().GetActiveForUpdate(ctx, l.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	err = s.WithTx(ctx, func(tx repo.Store) error {
		locked, err := tx.Listings().GetForUpdate(ctx, l.ID)
		if err != nil {
			return err
		}
		assert.False(t, locked.IsActive)
		assert.Equal(t, 1, locked.Quantity)
		return nil
	})
	require.NoError(t, err)

	_, err = s.Listings().AdjustQuantity(ctx, l.ID, -2)
	assert.ErrorIs(t, err, repo.ErrInsufficientQuantity)
	_, err = s.Listings().AdjustQuantity(ctx, uuid.NewString(), 1)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}
