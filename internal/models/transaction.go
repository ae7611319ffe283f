package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	TxnPending   TransactionStatus = "pending"
	TxnConfirmed TransactionStatus = "confirmed"
	TxnDelivered TransactionStatus = "delivered"
	TxnCancelled TransactionStatus = "cancelled"
)

// transitions is the adjacency table of the transaction lifecycle.
// delivered and cancelled are terminal.
var transitions = map[TransactionStatus][]TransactionStatus{
	TxnPending:   {TxnConfirmed, TxnDelivered, TxnCancelled},
	TxnConfirmed: {TxnDelivered, TxnCancelled},
	TxnDelivered: {},
	TxnCancelled: {},
}

func (s TransactionStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	for _, n := range transitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

func (s TransactionStatus) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// Active reports whether the transaction still grants conversation access.
func (s TransactionStatus) Active() bool {
	return s == TxnPending || s == TxnConfirmed
}

var ActiveTransactionStatuses = []TransactionStatus{TxnPending, TxnConfirmed}

type Transaction struct {
	ID              string            `json:"id"`
	ListingID       string            `json:"listingId"`
	BuyerID         string            `json:"buyerId"`
	SellerID        string            `json:"sellerId"`
	Quantity        int               `json:"quantity"`
	PricePerUnit    decimal.Decimal   `json:"pricePerUnit"`
	TotalPrice      decimal.Decimal   `json:"totalPrice"`
	Status          TransactionStatus `json:"status"`
	PaymentMethod   string            `json:"paymentMethod,omitempty"`
	ShippingAddress string            `json:"shippingAddress,omitempty"`
	TrackingNumber  string            `json:"trackingNumber,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`

	Listing *TransactionListing `json:"listing,omitempty"`
	Buyer   *UserSummary        `json:"buyer,omitempty"`
	Seller  *UserSummary        `json:"seller,omitempty"`
}

// TransactionListing is the listing projection embedded in transaction responses.
type TransactionListing struct {
	ID        string          `json:"id"`
	Card      CardSummary     `json:"cardBase"`
	Edition   EditionSummary  `json:"edition"`
	Condition Condition       `json:"condition"`
	Price     decimal.Decimal `json:"price"`
}

// TransactionRole narrows GET /transactions to purchases, sales or both.
type TransactionRole string

const (
	RoleBuyer  TransactionRole = "buyer"
	RoleSeller TransactionRole = "seller"
	RoleAll    TransactionRole = "all"
)

type TransactionFilter struct {
	UserID    string
	Role      TransactionRole
	Status    TransactionStatus
	ListingID string
	BuyerID   string
	SellerID  string
	PageQuery
}

var TransactionSortColumns = []string{"createdAt", "updatedAt", "totalPrice", "status"}

const (
	MinPurchaseQuantity = 1
	MaxPurchaseQuantity = 100
)
