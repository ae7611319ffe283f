package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/baharkarakas/tradebinder/internal/apperr"
	"github.com/baharkarakas/tradebinder/internal/auth"
	"github.com/baharkarakas/tradebinder/internal/models"
)

// query collects the first parse failure so handlers check once.
type query struct {
	v   url.Values
	err error
}

func newQuery(r *http.Request) *query { return &query{v: r.URL.Query()} }

func (q *query) str(key string) string { return strings.TrimSpace(q.v.Get(key)) }

func (q *query) integer(key string) int {
	s := q.str(key)
	if s == "" || q.err != nil {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		q.err = apperr.BadRequest("%s must be an integer", key)
	}
	return n
}

func (q *query) boolean(key string) *bool {
	s := q.str(key)
	if s == "" || q.err != nil {
		return nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		q.err = apperr.BadRequest("%s must be true or false", key)
		return nil
	}
	return lo.ToPtr(b)
}

func (q *query) number(key string) *decimal.Decimal {
	s := q.str(key)
	if s == "" || q.err != nil {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		q.err = apperr.BadRequest("%s must be a number", key)
		return nil
	}
	return &d
}

// id reads an optional UUID filter.
func (q *query) id(key string) string {
	s := q.str(key)
	if s == "" || q.err != nil {
		return s
	}
	if _, err := uuid.Parse(s); err != nil {
		q.err = apperr.BadRequest("%s must be a UUID", key)
	}
	return s
}

func (q *query) page() models.PageQuery {
	return models.PageQuery{
		Page:      q.integer("page"),
		Limit:     q.integer("limit"),
		SortBy:    q.str("sortBy"),
		SortOrder: models.SortOrder(strings.ToUpper(q.str("sortOrder"))),
	}
}

// pathID reads a UUID path parameter.
func pathID(r *http.Request, name string) (string, error) {
	id := chi.URLParam(r, name)
	if _, err := uuid.Parse(id); err != nil {
		return "", apperr.BadRequest("%s must be a UUID", name)
	}
	return id, nil
}

// actor returns the principal attached by the auth middleware.
func actor(r *http.Request) (auth.Principal, error) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		return auth.Principal{}, apperr.Unauthorized("authentication required")
	}
	return p, nil
}
