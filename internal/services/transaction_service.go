package services

import (
	"context"
	"errors"
	"fmt"

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

const (
	MaxPaymentMethodLen   = 100
	MaxShippingAddressLen = 500
	MaxTrackingNumberLen  = 100
)

type TransactionService struct {
	store repo.Store
	cache *cache.Cache
	audit *Auditor
}

func NewTransactionService(store repo.Store, c *cache.Cache, audit *Auditor) *TransactionService {
	return &TransactionService{store: store, cache: c, audit: audit}
}

type CreateTransactionInput struct {
	ListingID       string `json:"listingId"`
	Quantity        int    `json:"quantity"`
	PaymentMethod   string `json:"paymentMethod"`
	ShippingAddress string `json:"shippingAddress"`
}

// Create buys quantity units of a listing. Locking the listing row, inserting the
// transaction, decrementing the stock and posting the opening message commit together.
func (s *TransactionService) Create(ctx context.Context, actor auth.Principal, in CreateTransactionInput) (models.Transaction, error) {
	in.PaymentMethod = sanitizeText(in.PaymentMethod)
	in.ShippingAddress = sanitizeText(in.ShippingAddress)
	var errs validate.Errs
	errs.Add(
		validate.UUID("listingId", in.ListingID),
		validate.MinInt("quantity", int64(in.Quantity), models.MinPurchaseQuantity),
		validate.MaxInt("quantity", int64(in.Quantity), models.MaxPurchaseQuantity),
		validate.MaxLen("paymentMethod", in.PaymentMethod, MaxPaymentMethodLen),
		validate.MaxLen("shippingAddress", in.ShippingAddress, MaxShippingAddressLen),
	)
	if err := errs.Err(); err != nil {
		return models.Transaction{}, err
	}

	var created models.Transaction
	err := s.store.WithTx(ctx, func(tx repo.Store) error {
		l, err := tx.Listings().GetActiveForUpdate(ctx, in.ListingID)
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("Listing not found or not available")
		}
		if err != nil {
			return fmt.Errorf("lock listing: %w", err)
		}
		if l.OwnerID == actor.UserID {
			return apperr.BadRequest("you cannot buy your own listing")
		}
		if in.Quantity > l.Quantity {
			return apperr.BadRequest("requested quantity exceeds the available quantity")
		}

		total := l.Price.Mul(decimal.NewFromInt(int64(in.Quantity)))
		created, err = tx.Transactions().Create(ctx, models.Transaction{
			ListingID:       l.ID,
			BuyerID:         actor.UserID,
			SellerID:        l.OwnerID,
			Quantity:        in.Quantity,
			PricePerUnit:    l.Price,
			TotalPrice:      total,
			Status:          models.TxnPending,
			PaymentMethod:   in.PaymentMethod,
			ShippingAddress: in.ShippingAddress,
		})
		if err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}

		_, err = tx.Listings().AdjustQuantity(ctx, l.ID, -in.Quantity)
		if errors.Is(err, repo.ErrInsufficientQuantity) {
			return apperr.BadRequest("requested quantity exceeds the available quantity")
		}
		if err != nil {
			return fmt.Errorf("decrement listing: %w", err)
		}

		cardName := "card"
		if l.Card != nil && l.Card.Name != "" {
			cardName = l.Card.Name
		}
		_, err = tx.Messages().Create(ctx, models.Message{
			Content:    fmt.Sprintf("Transaction created: %d x %s for €%s", in.Quantity, cardName, total.StringFixed(2)),
			SenderID:   actor.UserID,
			ReceiverID: l.OwnerID,
			ListingID:  l.ID,
		})
		if err != nil {
			return fmt.Errorf("insert opening message: %w", err)
		}
		return nil
	})
	if err != nil {
		metrics.TransactionsFailed.Inc()
		return models.Transaction{}, err
	}

	metrics.TransactionsTotal.WithLabelValues("created").Inc()
	metrics.MessagesTotal.Inc()
	cache.Invalidate(ctx, s.cache, cache.KeyListingStats)
	s.audit.Record(ctx, models.AuditEntityTransaction, created.ID, models.AuditCreated, actor.UserID, map[string]any{
		"listingId":  created.ListingID,
		"quantity":   created.Quantity,
		"totalPrice": created.TotalPrice.StringFixed(2),
	})
	logger.FromContext(ctx).Info("transaction created",
		"transaction_id", created.ID, "listing_id", created.ListingID, "buyer_id", actor.UserID)
	return s.load(ctx, created.ID)
}

func (s *TransactionService) FindAll(ctx context.Context, actor auth.Principal, f models.TransactionFilter) (models.Page[models.Transaction], error) {
	switch f.Role {
	case "":
		f.Role = models.RoleAll
	case models.RoleAll, models.RoleBuyer, models.RoleSeller:
	default:
		return models.Page[models.Transaction]{}, apperr.BadRequest("type must be buyer, seller or all")
	}
	if f.Status != "" && !f.Status.Valid() {
		return models.Page[models.Transaction]{}, apperr.BadRequest("unknown status %q", f.Status)
	}
	f.UserID = actor.UserID
	f.PageQuery = f.PageQuery.Normalize(models.TransactionSortColumns, "createdAt", models.SortDesc)
	txns, total, err := s.store.Transactions().List(ctx, f)
	if err != nil {
		return models.Page[models.Transaction]{}, err
	}
	return models.NewPage(txns, total, f.PageQuery), nil
}

func (s *TransactionService) FindOne(ctx context.Context, actor auth.Principal, id string) (models.Transaction, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return models.Transaction{}, err
	}
	if err := policy.Check(actor.UserID, policy.Resource{BuyerID: t.BuyerID, SellerID: t.SellerID}, policy.TransactionView); err != nil {
		return models.Transaction{}, err
	}
	return t, nil
}

// UpdateStatus lets the seller move the transaction along the lifecycle table.
func (s *TransactionService) UpdateStatus(ctx context.Context, actor auth.Principal, id string, next models.TransactionStatus, trackingNumber string) (models.Transaction, error) {
	if !next.Valid() {
		return models.Transaction{}, apperr.BadRequest("unknown status %q", next)
	}
	return s.change(ctx, actor, id, policy.TransactionSetStatus, trackingNumber, func(t models.Transaction) (models.TransactionStatus, error) {
		if !t.Status.CanTransitionTo(next) {
			return "", apperr.BadRequest("invalid status transition: %s -> %s", t.Status, next)
		}
		return next, nil
	})
}

// Complete lets the buyer confirm reception.
func (s *TransactionService) Complete(ctx context.Context, actor auth.Principal, id, trackingNumber string) (models.Transaction, error) {
	return s.change(ctx, actor, id, policy.TransactionComplete, trackingNumber, func(t models.Transaction) (models.TransactionStatus, error) {
		if !t.Status.Active() {
			return "", apperr.BadRequest("transaction must be pending or confirmed to be completed")
		}
		return models.TxnDelivered, nil
	})
}

// Cancel lets either party call the sale off before delivery.
func (s *TransactionService) Cancel(ctx context.Context, actor auth.Principal, id string) (models.Transaction, error) {
	return s.change(ctx, actor, id, policy.TransactionCancel, "", func(t models.Transaction) (models.TransactionStatus, error) {
		switch t.Status {
		case models.TxnDelivered:
			return "", apperr.BadRequest("a delivered transaction cannot be cancelled")
		case models.TxnCancelled:
			return "", apperr.BadRequest("transaction is already cancelled")
		}
		return models.TxnCancelled, nil
	})
}

// change runs one lifecycle step under a row lock. Cancelling a pending
// transaction gives its quantity back to the listing in the same unit of work.
func (s *TransactionService) change(
	ctx context.Context,
	actor auth.Principal,
	id string,
	action policy.Action,
	trackingNumber string,
	decide func(models.Transaction) (models.TransactionStatus, error),
) (models.Transaction, error) {
	trackingNumber = sanitizeText(trackingNumber)
	if err := validate.MaxLen("trackingNumber", trackingNumber, MaxTrackingNumberLen); err != nil {
		return models.Transaction{}, validate.Errs{*err}.Err()
	}

	var (
		prev, next models.TransactionStatus
		restored   bool
	)
	err := s.store.WithTx(ctx, func(tx repo.Store) error {
		t, err := tx.Transactions().GetForUpdate(ctx, id)
		if err != nil {
			return notFound(err, "Transaction")
		}
		if err := policy.Check(actor.UserID, policy.Resource{BuyerID: t.BuyerID, SellerID: t.SellerID}, action); err != nil {
			return err
		}
		prev = t.Status
		if next, err = decide(t); err != nil {
			return err
		}
		if next == models.TxnCancelled && prev == models.TxnPending {
			if _, err := tx.Listings().AdjustQuantity(ctx, t.ListingID, t.Quantity); err != nil {
				return fmt.Errorf("restore listing quantity: %w", err)
			}
			restored = true
		}
		if err := tx.Transactions().UpdateStatus(ctx, id, next, trackingNumber); err != nil {
			return notFound(err, "Transaction")
		}
		return nil
	})
	if err != nil {
		return models.Transaction{}, err
	}

	metrics.TransactionsTotal.WithLabelValues(string(next)).Inc()
	if restored {
		cache.Invalidate(ctx, s.cache, cache.KeyListingStats)
	}
	s.audit.Record(ctx, models.AuditEntityTransaction, id, string(action), actor.UserID, map[string]any{
		"from":             string(prev),
		"to":               string(next),
		"quantityRestored": restored,
	})
	logger.FromContext(ctx).Info("transaction status changed",
		"transaction_id", id, "from", prev, "to", next, "actor_id", actor.UserID)
	return s.load(ctx, id)
}

func (s *TransactionService) load(ctx context.Context, id string) (models.Transaction, error) {
	t, err := s.store.Transactions().GetByID(ctx, id)
	if err != nil {
		return models.Transaction{}, notFound(err, "Transaction")
	}
	return t, nil
}
