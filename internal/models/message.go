package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const MaxMessageLen = 1000

type Message struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	ListingID  string    `json:"listingId"`
	IsRead     bool      `json:"isRead"`
	CreatedAt  time.Time `json:"createdAt"`

	Sender   *UserSummary    `json:"sender,omitempty"`
	Receiver *UserSummary    `json:"receiver,omitempty"`
	Listing  *MessageListing `json:"listing,omitempty"`
}

type MessageListing struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	OwnerID  string          `json:"-"`
	CardName string          `json:"-"`
	ImageURL string          `json:"-"`
}

type ConversationListing struct {
	ID    string          `json:"id"`
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price"`
	Card  struct {
		Name     string `json:"name"`
		ImageURL string `json:"imageUrl,omitempty"`
	} `json:"card"`
}

type LastMessage struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	SenderID  string    `json:"senderId"`
}

// Conversation summarizes every message a user exchanged about one listing.
type Conversation struct {
	ListingID     string              `json:"listingId"`
	Listing       ConversationListing `json:"listing"`
	OtherUser     UserSummary         `json:"otherUser"`
	LastMessage   *LastMessage        `json:"lastMessage,omitempty"`
	UnreadCount   int                 `json:"unreadCount"`
	TotalMessages int                 `json:"totalMessages"`
}
