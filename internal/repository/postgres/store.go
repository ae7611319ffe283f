package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/baharkarakas/tradebinder/internal/models"
	repo "github.com/baharkarakas/tradebinder/internal/repository"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type store struct {
	pool *pgxpool.Pool
	q    querier
	inTx bool
}

func NewStore(pool *pgxpool.Pool) repo.Store {
	return &store{pool: pool, q: pool}
}

func (s *store) Users() repo.Users               { return &usersRepo{s.q} }
func (s *store) Locations() repo.Locations       { return &locationsRepo{s.q} }
func (s *store) Cards() repo.Cards               { return &cardsRepo{s.q} }
func (s *store) Editions() repo.Editions         { return &editionsRepo{s.q} }
func (s *store) Listings() repo.Listings         { return &listingsRepo{s.q} }
func (s *store) Transactions() repo.Transactions { return &transactionsRepo{s.q} }
func (s *store) Messages() repo.Messages         { return &messagesRepo{s.q} }
func (s *store) AuditLogs() repo.AuditLogs       { return &auditLogsRepo{s.q} }

// WithTx runs fn inside one pgx transaction. Row locks taken with FOR UPDATE
// serialize competing writers, so read committed is enough here.
func (s *store) WithTx(ctx context.Context, fn func(repo.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return err
	}
	if err := fn(&store{pool: s.pool, q: tx, inTx: true}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// mapErr translates driver errors into the repository sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repo.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return repo.ErrDuplicate
		case "23503":
			return repo.ErrReferenced
		case "22P02":
			// malformed uuid in a lookup
			return repo.ErrNotFound
		}
	}
	return err
}

// filter accumulates WHERE clauses with positional arguments.
type filter struct {
	clauses []string
	args    []any
}

func (f *filter) arg(v any) string {
	f.args = append(f.args, v)
	return "$" + strconv.Itoa(len(f.args))
}

func (f *filter) where(clause string) { f.clauses = append(f.clauses, clause) }

func (f *filter) sql() string {
	if len(f.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.clauses, " AND ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func contains(s string) string { return "%" + likeEscaper.Replace(s) + "%" }

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// orderBy resolves an API sort key to a column; unknown keys use def.
func orderBy(columns map[string]string, key, def string, order models.SortOrder) string {
	col, ok := columns[key]
	if !ok {
		col = columns[def]
	}
	if order != models.SortAsc {
		order = models.SortDesc
	}
	return col + " " + string(order)
}
