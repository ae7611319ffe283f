package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/baharkarakas/tradebinder/internal/apperr"
)

func TestAllowed(t *testing.T) {
	listing := Resource{OwnerID: "owner"}
	txn := Resource{BuyerID: "buyer", SellerID: "seller"}
	msg := Resource{ReceiverID: "rcv"}

	tests := []struct {
		name   string
		actor  string
		res    Resource
		action Action
		want   bool
	}{
		{"owner updates listing", "owner", listing, ListingUpdate, true},
		{"stranger updates listing", "other", listing, ListingUpdate, false},
		{"owner deletes listing", "owner", listing, ListingDelete, true},
		{"buyer views transaction", "buyer", txn, TransactionView, true},
		{"seller views transaction", "seller", txn, TransactionView, true},
		{"stranger views transaction", "other", txn, TransactionView, false},
		{"seller sets status", "seller", txn, TransactionSetStatus, true},
		{"buyer sets status", "buyer", txn, TransactionSetStatus, false},
		{"buyer completes", "buyer", txn, TransactionComplete, true},
		{"seller completes", "seller", txn, TransactionComplete, false},
		{"buyer cancels", "buyer", txn, TransactionCancel, true},
		{"seller cancels", "seller", txn, TransactionCancel, true},
		{"receiver marks read", "rcv", msg, MessageMarkRead, true},
		{"sender marks read", "snd", msg, MessageMarkRead, false},
		{"empty actor never matches empty role", "", Resource{}, ListingUpdate, false},
		{"unknown action", "owner", listing, Action("nope"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allowed(tt.actor, tt.res, tt.action))
		})
	}
}

func TestCheckReturnsForbidden(t *testing.T) {
	err := Check("buyer", Resource{BuyerID: "buyer", SellerID: "seller"}, TransactionSetStatus)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	assert.Contains(t, err.Error(), "only the seller")

	assert.NoError(t, Check("seller", Resource{BuyerID: "buyer", SellerID: "seller"}, TransactionSetStatus))
}
