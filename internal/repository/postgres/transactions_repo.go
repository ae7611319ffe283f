package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/baharkarakas/tradebinder/internal/models"
	repo "github.com/baharkarakas/tradebinder/internal/repository"
)

type transactionsRepo struct{ q querier }

const txnColumns = `t.id, t.listing_id, t.buyer_id, t.seller_id, t.quantity, t.price_per_unit, t.total_price, t.status,
	COALESCE(t.payment_method,''), COALESCE(t.shipping_address,''), COALESCE(t.tracking_number,''),
	t.created_at, t.updated_at`

const txnDetailColumns = txnColumns + `,
	l.condition, l.price, c.id, c.name, COALESCE(c.image_url,''), e.id, e.name,
	b.username, b.email, s.username, s.email`

const txnDetailFrom = ` FROM transactions t
	JOIN listings l ON l.id = t.listing_id
	JOIN cards c ON c.id = l.card_id
	JOIN editions e ON e.id = l.edition_id
	JOIN users b ON b.id = t.buyer_id
	JOIN users s ON s.id = t.seller_id`

var txnSortColumns = map[string]string{
	"createdAt":  "t.created_at",
	"updatedAt":  "t.updated_at",
	"totalPrice": "t.total_price",
	"status":     "t.status",
}

func scanTxn(row interface{ Scan(...any) error }) (models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.ID, &t.ListingID, &t.BuyerID, &t.SellerID, &t.Quantity, &t.PricePerUnit, &t.TotalPrice,
		&t.Status, &t.PaymentMethod, &t.ShippingAddress, &t.TrackingNumber, &t.CreatedAt, &t.UpdatedAt)
	return t, mapErr(err)
}

func scanTxnDetail(row interface{ Scan(...any) error }) (models.Transaction, error) {
	var (
		t             models.Transaction
		lst           models.TransactionListing
		buyer, seller models.UserSummary
	)
	err := row.Scan(&t.ID, &t.ListingID, &t.BuyerID, &t.SellerID, &t.Quantity, &t.PricePerUnit, &t.TotalPrice,
		&t.Status, &t.PaymentMethod, &t.ShippingAddress, &t.TrackingNumber, &t.CreatedAt, &t.UpdatedAt,
		&lst.Condition, &lst.Price, &lst.Card.ID, &lst.Card.Name, &lst.Card.ImageURL, &lst.Edition.ID, &lst.Edition.Name,
		&buyer.Username, &buyer.Email, &seller.Username, &seller.Email)
	if err != nil {
		return models.Transaction{}, mapErr(err)
	}
	lst.ID = t.ListingID
	buyer.ID, seller.ID = t.BuyerID, t.SellerID
	t.Listing, t.Buyer, t.Seller = &lst, &buyer, &seller
	return t, nil
}

func (r *transactionsRepo) Create(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return scanTxn(r.q.QueryRow(ctx,
		`INSERT INTO transactions AS t (id, listing_id, buyer_id, seller_id, quantity, price_per_unit, total_price,
		                                status, payment_method, shipping_address)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		 RETURNING `+txnColumns,
		t.ID, t.ListingID, t.BuyerID, t.SellerID, t.Quantity, t.PricePerUnit, t.TotalPrice,
		t.Status, nullable(t.PaymentMethod), nullable(t.ShippingAddress)))
}

func (r *transactionsRepo) GetByID(ctx context.Context, id string) (models.Transaction, error) {
	return scanTxnDetail(r.q.QueryRow(ctx, `SELECT `+txnDetailColumns+txnDetailFrom+` WHERE t.id=$1`, id))
}

func (r *transactionsRepo) GetForUpdate(ctx context.Context, id string) (models.Transaction, error) {
	return scanTxn(r.q.QueryRow(ctx, `SELECT `+txnColumns+` FROM transactions t WHERE t.id=$1 FOR UPDATE`, id))
}

func (r *transactionsRepo) List(ctx context.Context, tf models.TransactionFilter) ([]models.Transaction, int64, error) {
	var f filter
	switch tf.Role {
	case models.RoleBuyer:
		f.where("t.buyer_id = " + f.arg(tf.UserID))
	case models.RoleSeller:
		f.where("t.seller_id = " + f.arg(tf.UserID))
	default:
		p := f.arg(tf.UserID)
		f.where("(t.buyer_id = " + p + " OR t.seller_id = " + p + ")")
	}
	if tf.Status != "" {
		f.where("t.status = " + f.arg(tf.Status))
	}
	if tf.ListingID != "" {
		f.where("t.listing_id = " + f.arg(tf.ListingID))
	}
	if tf.BuyerID != "" {
		f.where("t.buyer_id = " + f.arg(tf.BuyerID))
	}
	if tf.SellerID != "" {
		f.where("t.seller_id = " + f.arg(tf.SellerID))
	}

	var total int64
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM transactions t`+f.sql(), f.args...).Scan(&total); err != nil {
		return nil, 0, mapErr(err)
	}

	order := orderBy(txnSortColumns, tf.SortBy, "createdAt", tf.SortOrder) + ", t.id ASC"
	q := `SELECT ` + txnDetailColumns + txnDetailFrom + f.sql() +
		` ORDER BY ` + order + ` LIMIT ` + f.arg(tf.Limit) + ` OFFSET ` + f.arg(tf.Offset())
	rows, err := r.q.Query(ctx, q, f.args...)
	if err != nil {
		return nil, 0, mapErr(err)
	}
	defer rows.Close()

	out := []models.Transaction{}
	for rows.Next() {
		t, err := scanTxnDetail(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	return out, total, rows.Err()
}

// UpdateStatus keeps the stored tracking number when trackingNumber is empty.
func (r *transactionsRepo) UpdateStatus(ctx context.Context, id string, status models.TransactionStatus, trackingNumber string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE transactions
		    SET status=$2, tracking_number=COALESCE($3, tracking_number), updated_at=now()
		  WHERE id=$1`,
		id, status, nullable(trackingNumber),
	)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *transactionsRepo) HasActive(ctx context.Context, listingID, userID string) (bool, error) {
	var ok bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS(
		   SELECT 1 FROM transactions
		    WHERE listing_id=$1 AND (buyer_id=$2 OR seller_id=$2) AND status = ANY($3))`,
		listingID, userID, []string{string(models.TxnPending), string(models.TxnConfirmed)},
	).Scan(&ok)
	return ok, mapErr(err)
}
