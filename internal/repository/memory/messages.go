package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/baharkarakas/tradebinder/internal/models"
	repo "github.com/baharkarakas/tradebinder/internal/repository"
)

type messages struct{ s *Store }

func (d *data) hydrateMessage(m models.Message) models.Message {
	sender, receiver := d.users[m.SenderID], d.users[m.ReceiverID]
	m.Sender = &models.UserSummary{ID: sender.ID, Username: sender.Username, Email: sender.Email}
	m.Receiver = &models.UserSummary{ID: receiver.ID, Username: receiver.Username, Email: receiver.Email}
	l := d.listings[m.ListingID]
	card := d.cards[l.CardID]
	m.Listing = &models.MessageListing{
		ID: m.ListingID, Title: card.Name, Price: l.Price,
		OwnerID: l.OwnerID, CardName: card.Name, ImageURL: card.ImageURL,
	}
	return m
}

func (d *data) messagesWhere(keep func(models.Message) bool, q models.PageQuery) []models.Message {
	matched := lo.Filter(lo.Values(d.messages), func(m models.Message, _ int) bool { return keep(m) })
	sorted := sortPage(d, matched, func(m models.Message) string { return m.ID },
		func(a, b models.Message) int { return a.CreatedAt.Compare(b.CreatedAt) }, q)
	return lo.Map(sorted, func(m models.Message, _ int) models.Message { return d.hydrateMessage(m) })
}

func (r *messages) Create(_ context.Context, m models.Message) (models.Message, error) {
	err := r.s.do(func(d *data) error {
		_, l := d.listings[m.ListingID]
		_, s := d.users[m.SenderID]
		_, rc := d.users[m.ReceiverID]
		if !l || !s || !rc {
			return repo.ErrReferenced
		}
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		m.CreatedAt = r.s.now()
		m.Sender, m.Receiver, m.Listing = nil, nil, nil
		d.messages[m.ID] = m
		d.insert(m.ID)
		m = d.hydrateMessage(m)
		return nil
	})
	return m, err
}

func (r *messages) GetByID(_ context.Context, id string) (models.Message, error) {
	var m models.Message
	err := r.s.do(func(d *data) error {
		found, ok := d.messages[id]
		if !ok {
			return repo.ErrNotFound
		}
		m = d.hydrateMessage(found)
		return nil
	})
	return m, err
}

func (r *messages) ListByListing(_ context.Context, listingID string) ([]models.Message, error) {
	var out []models.Message
	err := r.s.do(func(d *data) error {
		out = d.messagesWhere(func(m models.Message) bool { return m.ListingID == listingID },
			models.PageQuery{SortOrder: models.SortAsc})
		return nil
	})
	return out, err
}

func (r *messages) ListForUser(_ context.Context, userID string) ([]models.Message, error) {
	var out []models.Message
	err := r.s.do(func(d *data) error {
		out = d.messagesWhere(func(m models.Message) bool { return m.SenderID == userID || m.ReceiverID == userID },
			models.PageQuery{SortOrder: models.SortDesc})
		return nil
	})
	return out, err
}

func (r *messages) HasParticipant(_ context.Context, listingID, userID string) (bool, error) {
	var ok bool
	err := r.s.do(func(d *data) error {
		ok = lo.SomeBy(lo.Values(d.messages), func(m models.Message) bool {
			return m.ListingID == listingID && (m.SenderID == userID || m.ReceiverID == userID)
		})
		return nil
	})
	return ok, err
}

func (r *messages) MarkRead(_ context.Context, id string) error {
	return r.s.do(func(d *data) error {
		m, ok := d.messages[id]
		if !ok {
			return repo.ErrNotFound
		}
		m.IsRead = true
		d.messages[id] = m
		return nil
	})
}

func (r *messages) MarkAllRead(_ context.Context, listingID, receiverID string) (int64, error) {
	var n int64
	err := r.s.do(func(d *data) error {
		for id, m := range d.messages {
			if m.ListingID == listingID && m.ReceiverID == receiverID && !m.IsRead {
				m.IsRead = true
				d.messages[id] = m
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *messages) CountUnread(_ context.Context, receiverID string) (int64, error) {
	var n int
	err := r.s.do(func(d *data) error {
		n = lo.CountBy(lo.Values(d.messages), func(m models.Message) bool { return m.ReceiverID == receiverID && !m.IsRead })
		return nil
	})
	return int64(n), err
}

type auditLogs struct{ s *Store }

func (r *auditLogs) Create(_ context.Context, l models.AuditLog) error {
	return r.s.do(func(d *data) error {
		if l.ID == "" {
			l.ID = uuid.NewString()
		}
		l.CreatedAt = r.s.now()
		d.auditLogs = append(d.auditLogs, l)
		return nil
	})
}
