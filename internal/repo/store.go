package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX abstracts a pgx pool, connection, or transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store bundles the per-entity repositories over a shared pool.
type Store struct {
	Vouchers VoucherRepo
	Carts    CartRepo
	Catalog  CatalogRepo
	Shipping ShippingRepo
	Users    UserRepo
	Events   EventRepo
}

// NewStore constructs a Store backed by the provided pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		Vouchers: VoucherRepo{DB: pool},
		Carts:    CartRepo{DB: pool},
		Catalog:  CatalogRepo{DB: pool},
		Shipping: ShippingRepo{DB: pool},
		Users:    UserRepo{DB: pool},
		Events:   EventRepo{DB: pool},
	}
}

// ErrNotFound is returned when a write targets a row that does not exist.
var ErrNotFound = errors.New("repo: not found")

// IsUniqueViolation reports whether the error is a Postgres unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
