package models

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

// PageQuery carries the page/limit/sortBy/sortOrder query parameters shared by every list endpoint.
type PageQuery struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder SortOrder
}

// Normalize clamps page and limit and resolves the sort column against allowed.
// Unknown columns fall back to def; an empty order falls back to defOrder.
func (q PageQuery) Normalize(allowed []string, def string, defOrder SortOrder) PageQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	found := false
	for _, a := range allowed {
		if a == q.SortBy {
			found = true
			break
		}
	}
	if !found {
		q.SortBy = def
	}
	switch q.SortOrder {
	case SortAsc, SortDesc:
	default:
		q.SortOrder = defOrder
	}
	return q
}

func (q PageQuery) Offset() int { return (q.Page - 1) * q.Limit }

type Page[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

func NewPage[T any](data []T, total int64, q PageQuery) Page[T] {
	if data == nil {
		data = []T{}
	}
	pages := 0
	if q.Limit > 0 {
		pages = int((total + int64(q.Limit) - 1) / int64(q.Limit))
	}
	return Page[T]{Data: data, Total: total, Page: q.Page, Limit: q.Limit, TotalPages: pages}
}
