package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/baharkarakas/tradebinder/internal/models"
)

type cardsRepo struct{ q querier }

const cardColumns = `id, name, COALESCE(mana_cost,''), COALESCE(type,''), COALESCE(subtype,''), COALESCE(rarity,''),
	COALESCE(text,''), COALESCE(flavor_text,''), COALESCE(power,''), COALESCE(toughness,''), loyalty,
	COALESCE(image_url,''), COALESCE(artist,''), COALESCE(number,''), is_active, created_at, updated_at`

var cardSortColumns = map[string]string{
	"name":      "name",
	"manaCost":  "mana_cost",
	"type":      "type",
	"rarity":    "rarity",
	"createdAt": "created_at",
}

func scanCard(row interface{ Scan(...any) error }) (models.Card, error) {
	var c models.Card
	err := row.Scan(&c.ID, &c.Name, &c.ManaCost, &c.Type, &c.Subtype, &c.Rarity, &c.Text, &c.FlavorText,
		&c.Power, &c.Toughness, &c.Loyalty, &c.ImageURL, &c.Artist, &c.Number, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, mapErr(err)
}

func (r *cardsRepo) Create(ctx context.Context, c models.Card) (models.Card, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return scanCard(r.q.QueryRow(ctx,
		`INSERT INTO cards(id, name, mana_cost, type, subtype, rarity, text, flavor_text, power, toughness,
		                   loyalty, image_url, artist, number, is_active)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		 RETURNING `+cardColumns,
		c.ID, c.Name, nullable(c.ManaCost), nullable(c.Type), nullable(c.Subtype), nullable(c.Rarity),
		nullable(c.Text), nullable(c.FlavorText), nullable(c.Power), nullable(c.Toughness), c.Loyalty,
		nullable(c.ImageURL), nullable(c.Artist), nullable(c.Number), c.IsActive))
}

func (r *cardsRepo) GetByID(ctx context.Context, id string) (models.Card, error) {
	return scanCard(r.q.QueryRow(ctx, `SELECT `+cardColumns+` FROM cards WHERE id=$1`, id))
}

func (r *cardsRepo) List(ctx context.Context, cf models.CardFilter) ([]models.Card, int64, error) {
	var f filter
	for col, v := range map[string]string{
		"name": cf.Name, "mana_cost": cf.ManaCost, "type": cf.Type, "subtype": cf.Subtype,
		"rarity": cf.Rarity, "artist": cf.Artist, "text": cf.Text,
	} {
		if v != "" {
			f.where(col + " ILIKE " + f.arg(contains(v)))
		}
	}
	if cf.IsActive != nil {
		f.where("is_active = " + f.arg(*cf.IsActive))
	}

	var total int64
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM cards`+f.sql(), f.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := orderBy(cardSortColumns, cf.SortBy, "name", cf.SortOrder) + ", id ASC"
	q := `SELECT ` + cardColumns + ` FROM cards` + f.sql() +
		` ORDER BY ` + order + ` LIMIT ` + f.arg(cf.Limit) + ` OFFSET ` + f.arg(cf.Offset())
	rows, err := r.q.Query(ctx, q, f.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []models.Card{}
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *cardsRepo) Search(ctx context.Context, term string, limit int) ([]models.Card, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+cardColumns+` FROM cards
		  WHERE is_active AND (name ILIKE $1 OR text ILIKE $1 OR type ILIKE $1)
		  ORDER BY name ASC
		  LIMIT $2`,
		contains(term), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Card{}
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *cardsRepo) Stats(ctx context.Context) (models.Stats, error) {
	var s models.Stats
	err := r.q.QueryRow(ctx,
		`SELECT count(*), count(*) FILTER (WHERE is_active) FROM cards`,
	).Scan(&s.Total, &s.Active)
	s.Inactive = s.Total - s.Active
	return s, err
}
