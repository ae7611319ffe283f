package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/baharkarakas/tradebinder/internal/models"
	repo "github.com/baharkarakas/tradebinder/internal/repository"
)

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

type locations struct{ s *Store }

func (r *locations) Create(_ context.Context, l models.Location) (models.Location, error) {
	err := r.s.do(func(d *data) error {
		for _, other := range d.locations {
			if other.Name == l.Name {
				return repo.ErrDuplicate
			}
		}
		if l.ID == "" {
			l.ID = uuid.NewString()
		}
		l.CreatedAt = r.s.now()
		l.UpdatedAt = l.CreatedAt
		d.locations[l.ID] = l
		d.insert(l.ID)
		return nil
	})
	return l, err
}

func (r *locations) GetByID(_ context.Context, id string) (models.Location, error) {
	var l models.Location
	err := r.s.do(func(d *data) error {
		found, ok := d.locations[id]
		if !ok {
			return repo.ErrNotFound
		}
		l = found
		return nil
	})
	return l, err
}

func (r *locations) GetByName(_ context.Context, name string) (models.Location, error) {
	var l models.Location
	err := r.s.do(func(d *data) error {
		for _, found := range d.locations {
			if found.Name == name {
				l = found
				return nil
			}
		}
		return repo.ErrNotFound
	})
	return l, err
}

func (r *locations) ListActive(_ context.Context) ([]models.Location, error) {
	var out []models.Location
	err := r.s.do(func(d *data) error {
		out = lo.Filter(lo.Values(d.locations), func(l models.Location, _ int) bool { return l.IsActive })
		slices.SortFunc(out, func(a, b models.Location) int { return cmp.Compare(a.Name, b.Name) })
		return nil
	})
	return out, err
}

func (r *locations) Update(_ context.Context, l models.Location) (models.Location, error) {
	var out models.Location
	err := r.s.do(func(d *data) error {
		cur, ok := d.locations[l.ID]
		if !ok {
			return repo.ErrNotFound
		}
		for _, other := range d.locations {
			if other.ID != l.ID && other.Name == l.Name {
				return repo.ErrDuplicate
			}
		}
		cur.Name, cur.Description, cur.UpdatedAt = l.Name, l.Description, r.s.now()
		d.locations[l.ID] = cur
		out = cur
		return nil
	})
	return out, err
}

func (r *locations) SetActive(_ context.Context, id string, active bool) error {
	return r.s.do(func(d *data) error {
		cur, ok := d.locations[id]
		if !ok {
			return repo.ErrNotFound
		}
		cur.IsActive, cur.UpdatedAt = active, r.s.now()
		d.locations[id] = cur
		return nil
	})
}

func (r *locations) Stats(_ context.Context) (models.Stats, error) {
	var s models.Stats
	err := r.s.do(func(d *data) error {
		s.Total = int64(len(d.locations))
		s.Active = int64(lo.CountBy(lo.Values(d.locations), func(l models.Location) bool { return l.IsActive }))
		s.Inactive = s.Total - s.Active
		return nil
	})
	return s, err
}

type cards struct{ s *Store }

func (r *cards) Create(_ context.Context, c models.Card) (models.Card, error) {
	err := r.s.do(func(d *data) error {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		c.CreatedAt = r.s.now()
		c.UpdatedAt = c.CreatedAt
		d.cards[c.ID] = c
		d.insert(c.ID)
		return nil
	})
	return c, err
}

func (r *cards) GetByID(_ context.Context, id string) (models.Card, error) {
	var c models.Card
	err := r.s.do(func(d *data) error {
		found, ok := d.cards[id]
		if !ok {
			return repo.ErrNotFound
		}
		c = found
		return nil
	})
	return c, err
}

var cardCompare = map[string]func(a, b models.Card) int{
	"name":      func(a, b models.Card) int { return cmp.Compare(a.Name, b.Name) },
	"manaCost":  func(a, b models.Card) int { return cmp.Compare(a.ManaCost, b.ManaCost) },
	"type":      func(a, b models.Card) int { return cmp.Compare(a.Type, b.Type) },
	"rarity":    func(a, b models.Card) int { return cmp.Compare(a.Rarity, b.Rarity) },
	"createdAt": func(a, b models.Card) int { return a.CreatedAt.Compare(b.CreatedAt) },
}

func (r *cards) List(_ context.Context, f models.CardFilter) ([]models.Card, int64, error) {
	var (
		out   []models.Card
		total int64
	)
	err := r.s.do(func(d *data) error {
		matched := lo.Filter(lo.Values(d.cards), func(c models.Card, _ int) bool {
			for _, p := range [][2]string{
				{c.Name, f.Name}, {c.ManaCost, f.ManaCost}, {c.Type, f.Type}, {c.Subtype, f.Subtype},
				{c.Rarity, f.Rarity}, {c.Artist, f.Artist}, {c.Text, f.Text},
			} {
				if p[1] != "" && !containsFold(p[0], p[1]) {
					return false
				}
			}
			return f.IsActive == nil || c.IsActive == *f.IsActive
		})
		total = int64(len(matched))
		compare, ok := cardCompare[f.SortBy]
		if !ok {
			compare = cardCompare["name"]
		}
		out = sortPage(d, matched, func(c models.Card) string { return c.ID }, compare, f.PageQuery)
		return nil
	})
	return out, total, err
}

func (r *cards) Search(_ context.Context, term string, limit int) ([]models.Card, error) {
	var out []models.Card
	err := r.s.do(func(d *data) error {
		out = lo.Filter(lo.Values(d.cards), func(c models.Card, _ int) bool {
			return c.IsActive && (containsFold(c.Name, term) || containsFold(c.Text, term) || containsFold(c.Type, term))
		})
		out = sortPage(d, out, func(c models.Card) string { return c.ID }, cardCompare["name"],
			models.PageQuery{Page: 1, Limit: limit, SortOrder: models.SortAsc})
		return nil
	})
	return out, err
}

func (r *cards) Stats(_ context.Context) (models.Stats, error) {
	var s models.Stats
	err := r.s.do(func(d *data) error {
		s.Total = int64(len(d.cards))
		s.Active = int64(lo.CountBy(lo.Values(d.cards), func(c models.Card) bool { return c.IsActive }))
		s.Inactive = s.Total - s.Active
		return nil
	})
	return s, err
}

type editions struct{ s *Store }

func (r *editions) Create(_ context.Context, e models.Edition) (models.Edition, error) {
	err := r.s.do(func(d *data) error {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		e.CreatedAt = r.s.now()
		e.UpdatedAt = e.CreatedAt
		d.editions[e.ID] = e
		d.insert(e.ID)
		return nil
	})
	return e, err
}

func (r *editions) GetByID(_ context.Context, id string) (models.Edition, error) {
	var e models.Edition
	err := r.s.do(func(d *data) error {
		found, ok := d.editions[id]
		if !ok {
			return repo.ErrNotFound
		}
		e = found
		return nil
	})
	return e, err
}

func (r *editions) List(_ context.Context) ([]models.Edition, error) {
	var out []models.Edition
	err := r.s.do(func(d *data) error {
		out = sortPage(d, lo.Values(d.editions), func(e models.Edition) string { return e.ID },
			func(a, b models.Edition) int { return cmp.Compare(a.Name, b.Name) },
			models.PageQuery{SortOrder: models.SortAsc})
		return nil
	})
	return out, err
}
