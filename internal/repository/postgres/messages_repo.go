package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/baharkarakas/tradebinder/internal/models"
	repo "github.com/baharkarakas/tradebinder/internal/repository"
)

type messagesRepo struct{ q querier }

const messageColumns = `m.id, m.content, m.sender_id, m.receiver_id, m.listing_id, m.is_read, m.created_at,
	su.username, su.email, ru.username, ru.email,
	l.price, l.user_id, c.name, COALESCE(c.image_url,'')`

const messageFrom = ` FROM messages m
	JOIN users su ON su.id = m.sender_id
	JOIN users ru ON ru.id = m.receiver_id
	JOIN listings l ON l.id = m.listing_id
	JOIN cards c ON c.id = l.card_id`

func scanMessage(row interface{ Scan(...any) error }) (models.Message, error) {
	var (
		m                models.Message
		sender, receiver models.UserSummary
		lst              models.MessageListing
	)
	err := row.Scan(&m.ID, &m.Content, &m.SenderID, &m.ReceiverID, &m.ListingID, &m.IsRead, &m.CreatedAt,
		&sender.Username, &sender.Email, &receiver.Username, &receiver.Email,
		&lst.Price, &lst.OwnerID, &lst.CardName, &lst.ImageURL)
	if err != nil {
		return models.Message{}, mapErr(err)
	}
	sender.ID, receiver.ID = m.SenderID, m.ReceiverID
	lst.ID, lst.Title = m.ListingID, lst.CardName
	m.Sender, m.Receiver, m.Listing = &sender, &receiver, &lst
	return m, nil
}

func (r *messagesRepo) list(ctx context.Context, q string, args ...any) ([]models.Message, error) {
	rows, err := r.q.Query(ctx, q, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []models.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *messagesRepo) Create(ctx context.Context, m models.Message) (models.Message, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	_, err := r.q.Exec(ctx,
		`INSERT INTO messages(id, content, sender_id, receiver_id, listing_id, is_read) VALUES($1,$2,$3,$4,$5,$6)`,
		m.ID, m.Content, m.SenderID, m.ReceiverID, m.ListingID, m.IsRead,
	)
	if err != nil {
		return models.Message{}, mapErr(err)
	}
	return r.GetByID(ctx, m.ID)
}

func (r *messagesRepo) GetByID(ctx context.Context, id string) (models.Message, error) {
	return scanMessage(r.q.QueryRow(ctx, `SELECT `+messageColumns+messageFrom+` WHERE m.id=$1`, id))
}

func (r *messagesRepo) ListByListing(ctx context.Context, listingID string) ([]models.Message, error) {
	return r.list(ctx,
		`SELECT `+messageColumns+messageFrom+` WHERE m.listing_id=$1 ORDER BY m.created_at ASC, m.id ASC`,
		listingID)
}

func (r *messagesRepo) ListForUser(ctx context.Context, userID string) ([]models.Message, error) {
	return r.list(ctx,
		`SELECT `+messageColumns+messageFrom+`
		  WHERE m.sender_id=$1 OR m.receiver_id=$1
		  ORDER BY m.created_at DESC, m.id DESC`,
		userID)
}

func (r *messagesRepo) HasParticipant(ctx context.Context, listingID, userID string) (bool, error) {
	var ok bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM messages WHERE listing_id=$1 AND (sender_id=$2 OR receiver_id=$2))`,
		listingID, userID,
	).Scan(&ok)
	return ok, mapErr(err)
}

func (r *messagesRepo) MarkRead(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `UPDATE messages SET is_read=true WHERE id=$1`, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *messagesRepo) MarkAllRead(ctx context.Context, listingID, receiverID string) (int64, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE messages SET is_read=true WHERE listing_id=$1 AND receiver_id=$2 AND NOT is_read`,
		listingID, receiverID,
	)
	if err != nil {
		return 0, mapErr(err)
	}
	return tag.RowsAffected(), nil
}

func (r *messagesRepo) CountUnread(ctx context.Context, receiverID string) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx, `SELECT count(*) FROM messages WHERE receiver_id=$1 AND NOT is_read`, receiverID).Scan(&n)
	return n, mapErr(err)
}
