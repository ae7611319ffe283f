package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// prices go over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

type Condition string

const (
	ConditionMint             Condition = "mint"
	ConditionNearMint         Condition = "near_mint"
	ConditionLightlyPlayed    Condition = "lightly_played"
	ConditionModeratelyPlayed Condition = "moderately_played"
	ConditionHeavilyPlayed    Condition = "heavily_played"
	ConditionDamaged          Condition = "damaged"
)

var Conditions = []Condition{
	ConditionMint, ConditionNearMint, ConditionLightlyPlayed,
	ConditionModeratelyPlayed, ConditionHeavilyPlayed, ConditionDamaged,
}

func (c Condition) Valid() bool {
	for _, v := range Conditions {
		if v == c {
			return true
		}
	}
	return false
}

// ListingStatus is the tri-state status exposed by PUT /listings/{id}/status.
// It is stored as the boolean IsActive.
type ListingStatus string

const (
	ListingAvailable ListingStatus = "available"
	ListingSold      ListingStatus = "sold"
	ListingCancelled ListingStatus = "cancelled"
)

// Active maps the status onto IsActive. ok is false for unknown statuses.
func (s ListingStatus) Active() (active bool, ok bool) {
	switch s {
	case ListingAvailable:
		return true, true
	case ListingSold, ListingCancelled:
		return false, true
	}
	return false, false
}

const (
	MaxListingImages   = 5
	MinListingQuantity = 1
	MaxListingQuantity = 100
	MinDescriptionLen  = 10
	MaxDescriptionLen  = 1000
)

var (
	MinListingPrice = decimal.RequireFromString("0.01")
	MaxListingPrice = decimal.RequireFromString("999999.99")
)

type Listing struct {
	ID          string          `json:"id"`
	OwnerID     string          `json:"userId"`
	CardID      string          `json:"cardId"`
	EditionID   string          `json:"editionId"`
	LocationID  string          `json:"locationId"`
	Condition   Condition       `json:"condition"`
	IsFoil      bool            `json:"isFoil"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Description string          `json:"description,omitempty"`
	Images      []string        `json:"images"`
	IsActive    bool            `json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`

	Owner    *UserSummary     `json:"user,omitempty"`
	Card     *CardSummary     `json:"cardBase,omitempty"`
	Edition  *EditionSummary  `json:"edition,omitempty"`
	Location *LocationSummary `json:"location,omitempty"`
}

// ListingFilter is the dynamic search built by GET /listings and friends.
type ListingFilter struct {
	CardName   string
	CardID     string
	EditionID  string
	LocationID string
	OwnerID    string
	Condition  Condition
	IsFoil     *bool
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	IsActive   *bool
	PageQuery
}

var ListingSortColumns = []string{"createdAt", "updatedAt", "price", "quantity", "condition"}

// ListingPatch holds the optional fields of PUT /listings/{id}.
type ListingPatch struct {
	LocationID  *string
	Condition   *Condition
	IsFoil      *bool
	Price       *decimal.Decimal
	Quantity    *int
	Description *string
	Images      []string
}

type ListingStats struct {
	Total      int64           `json:"total" msgpack:"total"`
	Active     int64           `json:"active" msgpack:"active"`
	Inactive   int64           `json:"inactive" msgpack:"inactive"`
	TotalValue decimal.Decimal `json:"totalValue" msgpack:"totalValue"`
}
