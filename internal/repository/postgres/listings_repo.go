package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/baharkarakas/tradebinder/internal/models"
	repo "github.com/baharkarakas/tradebinder/internal/repository"
)

type listingsRepo struct{ q querier }

const listingColumns = `l.id, l.user_id, l.card_id, l.edition_id, l.location_id, l.condition, l.is_foil, l.price,
	l.quantity, COALESCE(l.description, ''), l.images, l.is_active, l.created_at, l.updated_at,
	u.username, ul.id, ul.name,
	c.name, COALESCE(c.mana_cost,''), COALESCE(c.type,''), COALESCE(c.rarity,''), COALESCE(c.image_url,''),
	e.name, e.release_date, e.has_foil,
	loc.name`

const listingFrom = ` FROM listings l
	JOIN users u ON u.id = l.user_id
	LEFT JOIN locations ul ON ul.id = u.location_id
	JOIN cards c ON c.id = l.card_id
	JOIN editions e ON e.id = l.edition_id
	JOIN locations loc ON loc.id = l.location_id`

// listings with a live sale attached are hidden from every search
const noOpenTransaction = `NOT EXISTS (SELECT 1 FROM transactions t WHERE t.listing_id = l.id AND t.status <> 'cancelled')`

var listingSortColumns = map[string]string{
	"createdAt": "l.created_at",
	"updatedAt": "l.updated_at",
	"price":     "l.price",
	"quantity":  "l.quantity",
	"condition": "l.condition",
}

func scanListing(row interface{ Scan(...any) error }) (models.Listing, error) {
	var (
		l            models.Listing
		owner        models.UserSummary
		ownerLocID   *string
		ownerLocName *string
		card         models.CardSummary
		edition      models.EditionSummary
		location     models.LocationSummary
	)
	err := row.Scan(&l.ID, &l.OwnerID, &l.CardID, &l.EditionID, &l.LocationID, &l.Condition, &l.IsFoil, &l.Price,
		&l.Quantity, &l.Description, &l.Images, &l.IsActive, &l.CreatedAt, &l.UpdatedAt,
		&owner.Username, &ownerLocID, &ownerLocName,
		&card.Name, &card.ManaCost, &card.Type, &card.Rarity, &card.ImageURL,
		&edition.Name, &edition.ReleaseDate, &edition.HasFoil,
		&location.Name)
	if err != nil {
		return models.Listing{}, mapErr(err)
	}
	owner.ID = l.OwnerID
	if ownerLocID != nil && ownerLocName != nil {
		owner.Location = &models.LocationSummary{ID: *ownerLocID, Name: *ownerLocName}
	}
	card.ID = l.CardID
	edition.ID = l.EditionID
	location.ID = l.LocationID
	l.Owner, l.Card, l.Edition, l.Location = &owner, &card, &edition, &location
	if l.Images == nil {
		l.Images = []string{}
	}
	return l, nil
}

func (r *listingsRepo) Create(ctx context.Context, l models.Listing) (models.Listing, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Images == nil {
		l.Images = []string{}
	}
	_, err := r.q.Exec(ctx,
		`INSERT INTO listings(id, user_id, card_id, edition_id, location_id, condition, is_foil, price,
		                      quantity, description, images, is_active)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		l.ID, l.OwnerID, l.CardID, l.EditionID, l.LocationID, l.Condition, l.IsFoil, l.Price,
		l.Quantity, nullable(l.Description), l.Images, l.IsActive,
	)
	if err != nil {
		return models.Listing{}, mapErr(err)
	}
	return r.GetByID(ctx, l.ID)
}

func (r *listingsRepo) GetByID(ctx context.Context, id string) (models.Listing, error) {
	return scanListing(r.q.QueryRow(ctx, `SELECT `+listingColumns+listingFrom+` WHERE l.id=$1`, id))
}

func (r *listingsRepo) GetActiveForUpdate(ctx context.Context, id string) (models.Listing, error) {
	return scanListing(r.q.QueryRow(ctx,
		`SELECT `+listingColumns+listingFrom+` WHERE l.id=$1 AND l.is_active FOR UPDATE OF l`, id))
}

func (r *listingsRepo) GetForUpdate(ctx context.Context, id string) (models.Listing, error) {
	return scanListing(r.q.QueryRow(ctx,
		`SELECT `+listingColumns+listingFrom+` WHERE l.id=$1 FOR UPDATE OF l`, id))
}

func (r *listingsRepo) List(ctx context.Context, lf models.ListingFilter) ([]models.Listing, int64, error) {
	var f filter
	if lf.LocationID != "" {
		f.where("l.location_id = " + f.arg(lf.LocationID))
	}
	if lf.OwnerID != "" {
		f.where("l.user_id = " + f.arg(lf.OwnerID))
	}
	if lf.CardName != "" {
		f.where("c.name ILIKE " + f.arg(contains(lf.CardName)))
	}
	if lf.CardID != "" {
		f.where("l.card_id = " + f.arg(lf.CardID))
	}
	if lf.EditionID != "" {
		f.where("l.edition_id = " + f.arg(lf.EditionID))
	}
	if lf.Condition != "" {
		f.where("l.condition = " + f.arg(lf.Condition))
	}
	if lf.IsFoil != nil {
		f.where("l.is_foil = " + f.arg(*lf.IsFoil))
	}
	if lf.MinPrice != nil {
		f.where("l.price >= " + f.arg(*lf.MinPrice))
	}
	if lf.MaxPrice != nil {
		f.where("l.price <= " + f.arg(*lf.MaxPrice))
	}
	if lf.IsActive != nil {
		f.where("l.is_active = " + f.arg(*lf.IsActive))
	}
	f.where(noOpenTransaction)

	var total int64
	if err := r.q.QueryRow(ctx, `SELECT count(*)`+listingFrom+f.sql(), f.args...).Scan(&total); err != nil {
		return nil, 0, mapErr(err)
	}

	order := orderBy(listingSortColumns, lf.SortBy, "createdAt", lf.SortOrder) + ", l.id ASC"
	q := `SELECT ` + listingColumns + listingFrom + f.sql() +
		` ORDER BY ` + order + ` LIMIT ` + f.arg(lf.Limit) + ` OFFSET ` + f.arg(lf.Offset())
	rows, err := r.q.Query(ctx, q, f.args...)
	if err != nil {
		return nil, 0, mapErr(err)
	}
	defer rows.Close()

	out := []models.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, l)
	}
	return out, total, rows.Err()
}

func (r *listingsRepo) Update(ctx context.Context, l models.Listing) (models.Listing, error) {
	if l.Images == nil {
		l.Images = []string{}
	}
	tag, err := r.q.Exec(ctx,
		`UPDATE listings
		    SET location_id=$2, condition=$3, is_foil=$4, price=$5,
		        description=$6, images=$7, updated_at=now()
		  WHERE id=$1`,
		l.ID, l.LocationID, l.Condition, l.IsFoil, l.Price,
		nullable(l.Description), l.Images,
	)
	if err != nil {
		return models.Listing{}, mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return models.Listing{}, repo.ErrNotFound
	}
	return r.GetByID(ctx, l.ID)
}

func (r *listingsRepo) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := r.q.Exec(ctx, `UPDATE listings SET is_active=$2, updated_at=now() WHERE id=$1`, id, active)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *listingsRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM listings WHERE id=$1`, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// AdjustQuantity is a compare-and-swap: the row only changes while the result stays non-negative.
func (r *listingsRepo) AdjustQuantity(ctx context.Context, id string, delta int) (int, error) {
	var qty int
	err := r.q.QueryRow(ctx,
		`UPDATE listings
		    SET quantity = quantity + $2, updated_at = now()
		  WHERE id = $1 AND quantity + $2 >= 0
		  RETURNING quantity`,
		id, delta,
	).Scan(&qty)
	if err == nil {
		return qty, nil
	}
	if err = mapErr(err); err != repo.ErrNotFound {
		return 0, err
	}
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM listings WHERE id=$1)`, id).Scan(&exists); err != nil {
		return 0, mapErr(err)
	}
	if exists {
		return 0, repo.ErrInsufficientQuantity
	}
	return 0, repo.ErrNotFound
}

func (r *listingsRepo) Stats(ctx context.Context) (models.ListingStats, error) {
	var s models.ListingStats
	err := r.q.QueryRow(ctx,
		`SELECT count(*),
		        count(*) FILTER (WHERE is_active),
		        COALESCE(SUM(price * quantity) FILTER (WHERE is_active), 0)
		   FROM listings`,
	).Scan(&s.Total, &s.Active, &s.TotalValue)
	if err != nil {
		return models.ListingStats{}, err
	}
	s.Inactive = s.Total - s.Active
	return s, nil
}
