// Package policy decides whether an actor may perform an action on a resource.
package policy

import (
	"github.com/baharkarakas/tradebinder/internal/apperr"
)

type Action string

const (
	ListingUpdate        Action = "listing.update"
	ListingDelete        Action = "listing.delete"
	ListingSetStatus     Action = "listing.set_status"
	TransactionView      Action = "transaction.view"
	TransactionSetStatus Action = "transaction.set_status"
	TransactionComplete  Action = "transaction.complete"
	TransactionCancel    Action = "transaction.cancel"
	MessageMarkRead      Action = "message.mark_read"
)

type Role int

const (
	Owner Role = iota
	Buyer
	Seller
	Receiver
)

// Resource names the parties of the thing being acted on. Unused roles stay empty.
type Resource struct {
	OwnerID    string
	BuyerID    string
	SellerID   string
	ReceiverID string
}

func (r Resource) holder(role Role) string {
	switch role {
	case Owner:
		return r.OwnerID
	case Buyer:
		return r.BuyerID
	case Seller:
		return r.SellerID
	case Receiver:
		return r.ReceiverID
	}
	return ""
}

type rule struct {
	roles []Role
	deny  string
}

var table = map[Action]rule{
	ListingUpdate:        {roles: []Role{Owner}, deny: "you can only update your own listings"},
	ListingDelete:        {roles: []Role{Owner}, deny: "you can only delete your own listings"},
	ListingSetStatus:     {roles: []Role{Owner}, deny: "you can only update your own listings"},
	TransactionView:      {roles: []Role{Buyer, Seller}, deny: "you have no access to this transaction"},
	TransactionSetStatus: {roles: []Role{Seller}, deny: "only the seller can change the transaction status"},
	TransactionComplete:  {roles: []Role{Buyer}, deny: "only the buyer can complete the transaction"},
	TransactionCancel:    {roles: []Role{Buyer, Seller}, deny: "you are not allowed to cancel this transaction"},
	MessageMarkRead:      {roles: []Role{Receiver}, deny: "you can only mark your own received messages as read"},
}

// Allowed reports whether actorID holds one of the roles the action requires.
func Allowed(actorID string, res Resource, action Action) bool {
	if actorID == "" {
		return false
	}
	r, ok := table[action]
	if !ok {
		return false
	}
	for _, role := range r.roles {
		if res.holder(role) == actorID {
			return true
		}
	}
	return false
}

// Check is Allowed returning a Forbidden error on deny.
func Check(actorID string, res Resource, action Action) error {
	if Allowed(actorID, res, action) {
		return nil
	}
	msg := "forbidden"
	if r, ok := table[action]; ok {
		msg = r.deny
	}
	return apperr.Forbidden("%s", msg)
}
