package services

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/tradebinder/internal/apperr"
	"github.com/baharkarakas/tradebinder/internal/auth"
	"github.com/baharkarakas/tradebinder/internal/models"
	"github.com/baharkarakas/tradebinder/internal/worker"
)

func TestTransactionCreate_TotalsStockAndOpeningMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.listing(t, "150.00", 1)
	svc := NewTransactionService(f.store, nil, nil)

	txn, err := svc.Create(ctx, f.buyer, CreateTransactionInput{ListingID: l.ID, Quantity: 1, PaymentMethod: "cash"})
	require.NoError(t, err)
	assert.Equal(t, models.TxnPending, txn.Status)
	assert.True(t, txn.TotalPrice.Equal(decimal.RequireFromString("150")))
	assert.True(t, txn.PricePerUnit.Equal(l.Price))
	assert.Equal(t, f.seller.UserID, txn.SellerID)
	require.NotNil(t, txn.Listing)
	assert.Equal(t, "Black Lotus", txn.Listing.Card.Name)

	got, err := f.store.Listings().GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)

	msgs, err := f.store.Messages().ListByListing(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Transaction created: 1 x Black Lotus for €150.00", msgs[0].Content)
	assert.Equal(t, f.buyer.UserID, msgs[0].SenderID)
	assert.Equal(t, f.seller.UserID, msgs[0].ReceiverID)

	page, err := NewListingService(f.store, nil).FindAll(ctx, models.ListingFilter{}, "")
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestTransactionCreate_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.listing(t, "10.00", 2)
	svc := NewTransactionService(f.store, nil, nil)

	tests := []struct {
		name  string
		actor auth.Principal
		in    CreateTransactionInput
		kind  apperr.Kind
	}{
		{"own_listing", f.seller, CreateTransactionInput{ListingID: l.ID, Quantity: 1}, apperr.KindBadRequest},
		{"too_many", f.buyer, CreateTransactionInput{ListingID: l.ID, Quantity: 3}, apperr.KindBadRequest},
		{"zero_quantity", f.buyer, CreateTransactionInput{ListingID: l.ID, Quantity: 0}, apperr.KindBadRequest},
		{"bad_id", f.buyer, CreateTransactionInput{ListingID: "nope", Quantity: 1}, apperr.KindBadRequest},
		{"missing_listing", f.buyer, CreateTransactionInput{ListingID: "00000000-0000-0000-0000-000000000000", Quantity: 1}, apperr.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.actor, tt.in)
			assertKind(t, err, tt.kind)
		})
	}

	got, err := f.store.Listings().GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Quantity)
}

func TestTransactionCreate_InactiveListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.listing(t, "10.00", 2)
	_, err := NewListingService(f.store, nil).UpdateStatus(ctx, f.seller, l.ID, models.ListingSold)
	require.NoError(t, err)

	_, err = NewTransactionService(f.store, nil, nil).Create(ctx, f.buyer, CreateTransactionInput{ListingID: l.ID, Quantity: 1})
	assertKind(t, err, apperr.KindNotFound)
}

func TestTransactionCreate_ConcurrentBuyersOneWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.listing(t, "99.99", 1)
	svc := NewTransactionService(f.store, nil, nil)

	const buyers = 8
	actors := make([]auth.Principal, buyers)
	for i := range actors {
		actors[i] = f.user(t, "buyer"+string(rune('a'+i)))
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		failures  []error
	)
	for _, a := range actors {
		wg.Add(1)
		go func(a auth.Principal) {
			defer wg.Done()
			_, err := svc.Create(ctx, a, CreateTransactionInput{ListingID: l.ID, Quantity: 1})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			failures = append(failures, err)
		}(a)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	for _, err := range failures {
		assertKind(t, err, apperr.KindBadRequest)
	}
	got, err := f.store.Listings().GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)
}

func TestTransactionCancel_RestoresPendingQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.listing(t, "5.00", 3)
	svc := NewTransactionService(f.store, nil, nil)

	txn, err := svc.Create(ctx, f.buyer, CreateTransactionInput{ListingID: l.ID, Quantity: 2})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, f.buyer, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TxnCancelled, cancelled.Status)

	got, err := f.store.Listings().GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Quantity)

	_, err = svc.Cancel(ctx, f.seller, txn.ID)
	assertKind(t, err, apperr.KindBadRequest)
}

func TestTransactionCancel_ConfirmedKeepsQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.listing(t, "5.00", 3)
	svc := NewTransactionService(f.store, nil, nil)

	txn, err := svc.Create(ctx, f.buyer, CreateTransactionInput{ListingID: l.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, f.seller, txn.ID, models.TxnConfirmed, "")
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, f.seller, txn.ID)
	require.NoError(t, err)

	got, err := f.store.Listings().GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Quantity)
}

func TestTransactionUpdateStatus_SellerCancelRestoresPendingQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.listing(t, "5.00", 3)
	svc := NewTransactionService(f.store, nil, nil)

	txn, err := svc.Create(ctx, f.buyer, CreateTransactionInput{ListingID: l.ID, Quantity: 2})
	require.NoError(t, err)
	before, err := f.store.Listings().GetByID(ctx, l.ID)
	require.NoError(t, err)
	require.Equal(t, 1, before.Quantity)

	_, err = svc.UpdateStatus(ctx, f.buyer, txn.ID, models.TxnCancelled, "")
	assertKind(t, err, apperr.KindForbidden)

	cancelled, err := svc.UpdateStatus(ctx, f.seller, txn.ID, models.TxnCancelled, "")
	require.NoError(t, err)
	assert.Equal(t, models.TxnCancelled, cancelled.Status)

	after, err := f.store.Listings().GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, after.Quantity)

	page, err := NewListingService(f.store, nil).FindAll(ctx, models.ListingFilter{}, "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	_, err = svc.UpdateStatus(ctx, f.seller, txn.ID, models.TxnCancelled, "")
	assertKind(t, err, apperr.KindBadRequest)
	again, err := f.store.Listings().GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, again.Quantity)
}

func TestTransactionLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.listing(t, "5.00", 10)
	svc := NewTransactionService(f.store, nil, nil)
	stranger := f.user(t, "stranger")

	txn, err := svc.Create(ctx, f.buyer, CreateTransactionInput{ListingID: l.ID, Quantity: 1})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, f.buyer, txn.ID, models.TxnConfirmed, "")
	assertKind(t, err, apperr.KindForbidden)
	_, err = svc.FindOne(ctx, stranger, txn.ID)
	assertKind(t, err, apperr.KindForbidden)
	_, err = svc.Cancel(ctx, stranger, txn.ID)
	assertKind(t, err, apperr.KindForbidden)
	_, err = svc.UpdateStatus(ctx, f.seller, txn.ID, "shipped", "")
	assertKind(t, err, apperr.KindBadRequest)

	confirmed, err := svc.UpdateStatus(ctx, f.seller, txn.ID, models.TxnConfirmed, "TRK-1")
	require.NoError(t, err)
	assert.Equal(t, models.TxnConfirmed, confirmed.Status)
	assert.Equal(t, "TRK-1", confirmed.TrackingNumber)

	_, err = svc.Complete(ctx, f.seller, txn.ID, "")
	assertKind(t, err, apperr.KindForbidden)
	delivered, err := svc.Complete(ctx, f.buyer, txn.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.TxnDelivered, delivered.Status)
	assert.Equal(t, "TRK-1", delivered.TrackingNumber)

	_, err = svc.UpdateStatus(ctx, f.seller, txn.ID, models.TxnCancelled, "")
	assertKind(t, err, apperr.KindBadRequest)
	_, err = svc.Cancel(ctx, f.buyer, txn.ID)
	assertKind(t, err, apperr.KindBadRequest)
	_, err = svc.Complete(ctx, f.buyer, txn.ID, "")
	assertKind(t, err, apperr.KindBadRequest)
}

func TestTransactionFindAll_Roles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewTransactionService(f.store, nil, nil)
	l := f.listing(t, "1.00", 10)

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, f.buyer, CreateTransactionInput{ListingID: l.ID, Quantity: 1})
		require.NoError(t, err)
	}

	bought, err := svc.FindAll(ctx, f.buyer, models.TransactionFilter{Role: models.RoleBuyer})
	require.NoError(t, err)
	assert.EqualValues(t, 3, bought.Total)

	sold, err := svc.FindAll(ctx, f.buyer, models.TransactionFilter{Role: models.RoleSeller})
	require.NoError(t, err)
	assert.Zero(t, sold.Total)

	all, err := svc.FindAll(ctx, f.seller, models.TransactionFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, all.Total)

	_, err = svc.FindAll(ctx, f.seller, models.TransactionFilter{Role: "owner"})
	assertKind(t, err, apperr.KindBadRequest)
	_, err = svc.FindAll(ctx, f.seller, models.TransactionFilter{Status: "shipped"})
	assertKind(t, err, apperr.KindBadRequest)
}

func TestTransactionAudit_WrittenByPool(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.listing(t, "1.00", 2)
	wp := worker.NewPool(2)
	svc := NewTransactionService(f.store, nil, NewAuditor(f.store, wp))

	txn, err := svc.Create(ctx, f.buyer, CreateTransactionInput{ListingID: l.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, f.buyer, txn.ID)
	require.NoError(t, err)
	wp.Stop()

	entries := f.store.AuditEntries()
	require.Len(t, entries, 2)
	actions := []string{entries[0].Action, entries[1].Action}
	assert.ElementsMatch(t, []string{"created", "transaction.cancel"}, actions)
	for _, e := range entries {
		assert.Equal(t, "transaction", e.EntityType)
		assert.Equal(t, txn.ID, e.EntityID)
	}
}
