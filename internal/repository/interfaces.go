package repository

import (
	"context"
	"errors"

	"github.com/baharkarakas/tradebinder/internal/models"
)

var (
	// ErrNotFound is returned by single-row lookups that match nothing.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
	// ErrInsufficientQuantity is returned when a decrement would drive a listing below zero.
	ErrInsufficientQuantity = errors.New("insufficient listing quantity")
	// ErrReferenced is returned when a delete is blocked by rows that still point at the record.
	ErrReferenced = errors.New("record is still referenced")
)

type Users interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	// FindByEmailOrUsername returns the first user matching either value.
	FindByEmailOrUsername(ctx context.Context, email, username string) (models.User, error)
}

type Locations interface {
	Create(ctx context.Context, l models.Location) (models.Location, error)
	GetByID(ctx context.Context, id string) (models.Location, error)
	GetByName(ctx context.Context, name string) (models.Location, error)
	ListActive(ctx context.Context) ([]models.Location, error)
	Update(ctx context.Context, l models.Location) (models.Location, error)
	SetActive(ctx context.Context, id string, active bool) error
	Stats(ctx context.Context) (models.Stats, error)
}

type Cards interface {
	Create(ctx context.Context, c models.Card) (models.Card, error)
	GetByID(ctx context.Context, id string) (models.Card, error)
	List(ctx context.Context, f models.CardFilter) ([]models.Card, int64, error)
	Search(ctx context.Context, term string, limit int) ([]models.Card, error)
	Stats(ctx context.Context) (models.Stats, error)
}

type Editions interface {
	Create(ctx context.Context, e models.Edition) (models.Edition, error)
	GetByID(ctx context.Context, id string) (models.Edition, error)
	List(ctx context.Context) ([]models.Edition, error)
}

type Listings interface {
	Create(ctx context.Context, l models.Listing) (models.Listing, error)
	// GetByID loads the listing with its owner, card, edition and location summaries.
	GetByID(ctx context.Context, id string) (models.Listing, error)
	// GetActiveForUpdate loads an active listing and locks its row until the surrounding transaction ends.
	GetActiveForUpdate(ctx context.Context, id string) (models.Listing, error)
	// GetForUpdate is GetActiveForUpdate without the active filter.
	GetForUpdate(ctx context.Context, id string) (models.Listing, error)
	// List applies f and always excludes listings with a non-cancelled transaction.
	List(ctx context.Context, f models.ListingFilter) ([]models.Listing, int64, error)
	// Update writes the owner-editable fields. Quantity and isActive are left alone;
	// they change through AdjustQuantity and SetActive.
	Update(ctx context.Context, l models.Listing) (models.Listing, error)
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
	// AdjustQuantity adds delta to the listing quantity; it fails with
	// ErrInsufficientQuantity instead of going below zero.
	AdjustQuantity(ctx context.Context, id string, delta int) (int, error)
	Stats(ctx context.Context) (models.ListingStats, error)
}

type Transactions interface {
	Create(ctx context.Context, t models.Transaction) (models.Transaction, error)
	GetByID(ctx context.Context, id string) (models.Transaction, error)
	// GetForUpdate loads the bare transaction row and locks it until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id string) (models.Transaction, error)
	List(ctx context.Context, f models.TransactionFilter) ([]models.Transaction, int64, error)
	UpdateStatus(ctx context.Context, id string, status models.TransactionStatus, trackingNumber string) error
	// HasActive reports whether userID is buyer or seller of a pending/confirmed transaction on listingID.
	HasActive(ctx context.Context, listingID, userID string) (bool, error)
}

type Messages interface {
	Create(ctx context.Context, m models.Message) (models.Message, error)
	GetByID(ctx context.Context, id string) (models.Message, error)
	ListByListing(ctx context.Context, listingID string) ([]models.Message, error)
	// ListForUser returns every message the user sent or received, newest first.
	ListForUser(ctx context.Context, userID string) ([]models.Message, error)
	HasParticipant(ctx context.Context, listingID, userID string) (bool, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, listingID, receiverID string) (int64, error)
	CountUnread(ctx context.Context, receiverID string) (int64, error)
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}

// Store groups the repositories and runs units of work atomically.
type Store interface {
	Users() Users
	Locations() Locations
	Cards() Cards
	Editions() Editions
	Listings() Listings
	Transactions() Transactions
	Messages() Messages
	AuditLogs() AuditLogs

	// WithTx runs fn against a Store bound to a single database transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(Store) error) error
}
