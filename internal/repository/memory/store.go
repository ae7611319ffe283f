// Package memory is an in-process implementation of repository.Store.
// It honours the same contracts as the postgres store, including rollback
// of failed units of work, and backs the service and router tests.
package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/baharkarakas/tradebinder/internal/models"
	repo "github.com/baharkarakas/tradebinder/internal/repository"
)

type data struct {
	users        map[string]models.User
	locations    map[string]models.Location
	cards        map[string]models.Card
	editions     map[string]models.Edition
	listings     map[string]models.Listing
	transactions map[string]models.Transaction
	messages     map[string]models.Message
	auditLogs    []models.AuditLog

	// seq records insertion order so equal timestamps still sort deterministically.
	seq  map[string]int64
	next int64
}

func newData() *data {
	return &data{
		users:        map[string]models.User{},
		locations:    map[string]models.Location{},
		cards:        map[string]models.Card{},
		editions:     map[string]models.Edition{},
		listings:     map[string]models.Listing{},
		transactions: map[string]models.Transaction{},
		messages:     map[string]models.Message{},
		seq:          map[string]int64{},
	}
}

func (d *data) clone() *data {
	c := &data{
		users:        maps.Clone(d.users),
		locations:    maps.Clone(d.locations),
		cards:        maps.Clone(d.cards),
		editions:     maps.Clone(d.editions),
		listings:     make(map[string]models.Listing, len(d.listings)),
		transactions: maps.Clone(d.transactions),
		messages:     maps.Clone(d.messages),
		auditLogs:    slices.Clone(d.auditLogs),
		seq:          maps.Clone(d.seq),
		next:         d.next,
	}
	for id, l := range d.listings {
		l.Images = slices.Clone(l.Images)
		c.listings[id] = l
	}
	return c
}

func (d *data) insert(id string) {
	d.next++
	d.seq[id] = d.next
}

// Store keeps everything behind one mutex. WithTx holds it for the whole
// unit of work, so units of work are serialized.
type Store struct {
	mu   *sync.Mutex
	d    *data
	inTx bool
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{mu: &sync.Mutex{}, d: newData(), now: time.Now}
}

func (s *Store) Users() repo.Users               { return &users{s} }
func (s *Store) Locations() repo.Locations       { return &locations{s} }
func (s *Store) Cards() repo.Cards               { return &cards{s} }
func (s *Store) Editions() repo.Editions         { return &editions{s} }
func (s *Store) Listings() repo.Listings         { return &listings{s} }
func (s *Store) Transactions() repo.Transactions { return &transactions{s} }
func (s *Store) Messages() repo.Messages         { return &messages{s} }
func (s *Store) AuditLogs() repo.AuditLogs       { return &auditLogs{s} }

// WithTx snapshots the data and restores it if fn fails.
func (s *Store) WithTx(ctx context.Context, fn func(repo.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.d.clone()
	tx := &Store{mu: s.mu, d: s.d, inTx: true, now: s.now}
	if err := fn(tx); err != nil {
		*s.d = *snapshot
		return err
	}
	return nil
}

// AuditEntries returns a copy of the audit log.
func (s *Store) AuditEntries() []models.AuditLog {
	var out []models.AuditLog
	_ = s.do(func(d *data) error {
		out = slices.Clone(d.auditLogs)
		return nil
	})
	return out
}

// do runs fn under the store mutex unless the caller already holds it through WithTx.
func (s *Store) do(fn func(d *data) error) error {
	if !s.inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.d)
}

// sortPage orders items by compare and q.SortOrder (ties broken by insertion order) and cuts out the requested page.
func sortPage[T any](d *data, items []T, id func(T) string, compare func(a, b T) int, q models.PageQuery) []T {
	slices.SortStableFunc(items, func(a, b T) int {
		c := compare(a, b)
		if c == 0 {
			c = cmp.Compare(d.seq[id(a)], d.seq[id(b)])
		}
		if q.SortOrder == models.SortDesc {
			c = -c
		}
		return c
	})
	if q.Limit <= 0 {
		return items
	}
	start := min(q.Offset(), len(items))
	end := min(start+q.Limit, len(items))
	return items[start:end]
}
