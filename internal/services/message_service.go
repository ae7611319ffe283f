package services

import (
	"context"
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/baharkarakas/tradebinder/internal/api/validate"
	"github.com/baharkarakas/tradebinder/internal/apperr"
	"github.com/baharkarakas/tradebinder/internal/auth"
	"github.com/baharkarakas/tradebinder/internal/metrics"
	"github.com/baharkarakas/tradebinder/internal/models"
	"github.com/baharkarakas/tradebinder/internal/policy"
	repo "github.com/baharkarakas/tradebinder/internal/repository"
)

type MessageService struct {
	store repo.Store
}

func NewMessageService(store repo.Store) *MessageService {
	return &MessageService{store: store}
}

type CreateMessageInput struct {
	ReceiverID string `json:"receiverId"`
	ListingID  string `json:"listingId"`
	Content    string `json:"content"`
}

// canAccess is the conversation gate: a prior message on the listing, an
// open transaction on it, or ownership of it.
func (s *MessageService) canAccess(ctx context.Context, l models.Listing, userID string) (bool, error) {
	if l.OwnerID == userID {
		return true, nil
	}
	ok, err := s.store.Messages().HasParticipant(ctx, l.ID, userID)
	if err != nil || ok {
		return ok, err
	}
	return s.store.Transactions().HasActive(ctx, l.ID, userID)
}

func (s *MessageService) gate(ctx context.Context, actor auth.Principal, listingID string) (models.Listing, error) {
	l, err := s.store.Listings().GetByID(ctx, listingID)
	if err != nil {
		return models.Listing{}, notFound(err, "Listing")
	}
	ok, err := s.canAccess(ctx, l, actor.UserID)
	if err != nil {
		return models.Listing{}, fmt.Errorf("check conversation access: %w", err)
	}
	if !ok {
		return models.Listing{}, apperr.Forbidden("you have no access to this conversation")
	}
	return l, nil
}

func (s *MessageService) Create(ctx context.Context, actor auth.Principal, in CreateMessageInput) (models.Message, error) {
	in.Content = sanitizeText(in.Content)
	var errs validate.Errs
	errs.Add(
		validate.UUID("listingId", in.ListingID),
		validate.UUID("receiverId", in.ReceiverID),
		validate.Required("content", in.Content),
		validate.MaxLen("content", in.Content, models.MaxMessageLen),
	)
	if err := errs.Err(); err != nil {
		return models.Message{}, err
	}

	if _, err := s.store.Listings().GetByID(ctx, in.ListingID); err != nil {
		return models.Message{}, notFound(err, "Listing")
	}
	if _, err := s.store.Users().GetByID(ctx, in.ReceiverID); err != nil {
		return models.Message{}, notFound(err, "Receiver")
	}
	if in.ReceiverID == actor.UserID {
		return models.Message{}, apperr.BadRequest("you cannot send a message to yourself")
	}
	if _, err := s.gate(ctx, actor, in.ListingID); err != nil {
		return models.Message{}, err
	}

	m, err := s.store.Messages().Create(ctx, models.Message{
		Content:    in.Content,
		SenderID:   actor.UserID,
		ReceiverID: in.ReceiverID,
		ListingID:  in.ListingID,
	})
	if err != nil {
		return models.Message{}, fmt.Errorf("create message: %w", err)
	}
	metrics.MessagesTotal.Inc()
	return m, nil
}

// FindByListing returns the whole thread, oldest first.
func (s *MessageService) FindByListing(ctx context.Context, actor auth.Principal, listingID string) ([]models.Message, error) {
	if _, err := s.gate(ctx, actor, listingID); err != nil {
		return nil, err
	}
	return s.store.Messages().ListByListing(ctx, listingID)
}

// Conversations groups the actor's messages per listing, most recent conversation first.
func (s *MessageService) Conversations(ctx context.Context, actor auth.Principal) ([]models.Conversation, error) {
	msgs, err := s.store.Messages().ListForUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	// msgs is newest first, so the first message of each group is its last message
	groups := lo.GroupBy(msgs, func(m models.Message) string { return m.ListingID })
	out := make([]models.Conversation, 0, len(groups))
	for listingID, thread := range groups {
		last := thread[0]
		c := models.Conversation{
			ListingID: listingID,
			LastMessage: &models.LastMessage{
				ID: last.ID, Content: last.Content, CreatedAt: last.CreatedAt, SenderID: last.SenderID,
			},
			TotalMessages: len(thread),
			UnreadCount: lo.CountBy(thread, func(m models.Message) bool {
				return m.ReceiverID == actor.UserID && !m.IsRead
			}),
		}
		if last.Listing != nil {
			c.Listing = models.ConversationListing{ID: listingID, Title: last.Listing.Title, Price: last.Listing.Price}
			c.Listing.Card.Name = last.Listing.CardName
			c.Listing.Card.ImageURL = last.Listing.ImageURL
		}
		if other := otherParty(last, actor.UserID); other != nil {
			c.OtherUser = *other
		}
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b models.Conversation) int {
		return b.LastMessage.CreatedAt.Compare(a.LastMessage.CreatedAt)
	})
	return out, nil
}

func otherParty(m models.Message, userID string) *models.UserSummary {
	if m.SenderID == userID {
		return m.Receiver
	}
	return m.Sender
}

func (s *MessageService) MarkAsRead(ctx context.Context, actor auth.Principal, id string) (models.Message, error) {
	m, err := s.store.Messages().GetByID(ctx, id)
	if err != nil {
		return models.Message{}, notFound(err, "Message")
	}
	if err := policy.Check(actor.UserID, policy.Resource{ReceiverID: m.ReceiverID}, policy.MessageMarkRead); err != nil {
		return models.Message{}, err
	}
	if err := s.store.Messages().MarkRead(ctx, id); err != nil {
		return models.Message{}, notFound(err, "Message")
	}
	m.IsRead = true
	return m, nil
}

// MarkAllAsRead marks every message the actor received on the listing as read and returns how many changed.
func (s *MessageService) MarkAllAsRead(ctx context.Context, actor auth.Principal, listingID string) (int64, error) {
	if _, err := s.gate(ctx, actor, listingID); err != nil {
		return 0, err
	}
	return s.store.Messages().MarkAllRead(ctx, listingID, actor.UserID)
}

func (s *MessageService) UnreadCount(ctx context.Context, actor auth.Principal) (int64, error) {
	return s.store.Messages().CountUnread(ctx, actor.UserID)
}
