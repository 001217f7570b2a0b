package repository

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/MikeRez0/ypshop/internal/adapter/storage"
	"github.com/MikeRez0/ypshop/internal/core/domain"
	"github.com/MikeRez0/ypshop/internal/core/port"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository struct {
	db *storage.DB
	// reads outside of a unit of work
	reader *pgStore
}

func NewRepository(db *storage.DB) (*Repository, error) {
	return &Repository{
		db:     db,
		reader: &pgStore{q: db.Pool, qb: db.QueryBuilder},
	}, nil
}

// Atomic runs fn in a transaction. Rows fetched through the store are
// locked with SELECT ... FOR UPDATE until commit or rollback.
func (r *Repository) Atomic(ctx context.Context, fn port.AtomicFn) error {
	return pgx.BeginTxFunc(ctx, r.db, pgx.TxOptions{IsoLevel: pgx.ReadCommitted},
		func(tx pgx.Tx) error {
			return fn(ctx, &pgStore{q: tx, qb: r.db.QueryBuilder, lock: true})
		})
}

func (r *Repository) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	statement := r.db.QueryBuilder.
		Select(productColumns...).
		From("products").
		OrderBy("id")

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}

	return list, rows.Err()
}

func (r *Repository) ListCustomers(ctx context.Context) ([]*domain.Customer, error) {
	statement := r.db.QueryBuilder.
		Select(customerColumns...).
		From("customers").
		OrderBy("id")

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*domain.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}

	return list, rows.Err()
}

func (r *Repository) ReadCustomer(ctx context.Context, id uint64) (*domain.Customer, error) {
	return r.reader.GetCustomer(ctx, id)
}

func (r *Repository) ListOrders(ctx context.Context, customerID uint64) ([]*domain.Order, error) {
	statement := r.db.QueryBuilder.
		Select(orderColumns...).
		From("orders").
		OrderBy("id")
	if customerID != 0 {
		statement = statement.Where(sq.Eq{"customer_id": customerID})
	}

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*domain.Order, 0)
	byID := make(map[uint64]*domain.Order)
	ids := make([]uint64, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, o)
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return list, nil
	}

	items, err := r.reader.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for orderID, orderItems := range items {
		byID[orderID].Items = orderItems
	}

	return list, nil
}

func (r *Repository) ReadOrder(ctx context.Context, id uint64) (*domain.Order, error) {
	return r.reader.GetOrder(ctx, id)
}

func (r *Repository) ListActivePromos(ctx context.Context) ([]*domain.PromoCode, error) {
	statement := r.db.QueryBuilder.
		Select(promoColumns...).
		From("promo_codes").
		Where(sq.Eq{"is_active": true}).
		Where(sq.Or{sq.Eq{"expires_at": nil}, sq.Expr("expires_at > ?", time.Now())}).
		OrderBy("id")

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*domain.PromoCode, 0)
	for rows.Next() {
		p, err := scanPromo(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}

	return list, rows.Err()
}

func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.CheckViolation
}
