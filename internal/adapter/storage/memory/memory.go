// Package memory keeps the shop in a go-memdb database. Write transactions
// are exclusive, so every unit of work runs alone and is rolled back by
// aborting the transaction.
package memory

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/MikeRez0/ypshop/internal/core/domain"
	"github.com/MikeRez0/ypshop/internal/core/port"
	"github.com/hashicorp/go-memdb"
)

const (
	tableProducts  = "products"
	tableCustomers = "customers"
	tablePromos    = "promos"
	tableOrders    = "orders"
)

func schema() *memdb.DBSchema {
	id := &memdb.IndexSchema{
		Name:    "id",
		Unique:  true,
		Indexer: &memdb.UintFieldIndex{Field: "ID"},
	}
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableProducts: {
				Name:    tableProducts,
				Indexes: map[string]*memdb.IndexSchema{"id": id},
			},
			tableCustomers: {
				Name:    tableCustomers,
				Indexes: map[string]*memdb.IndexSchema{"id": id},
			},
			tablePromos: {
				Name: tablePromos,
				Indexes: map[string]*memdb.IndexSchema{
					"id": id,
					"code": {
						Name:    "code",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Code"},
					},
				},
			},
			tableOrders: {
				Name: tableOrders,
				Indexes: map[string]*memdb.IndexSchema{
					"id": id,
					"customer": {
						Name:    "customer",
						Indexer: &memdb.UintFieldIndex{Field: "CustomerID"},
					},
				},
			},
		},
	}
}

type Repository struct {
	db      *memdb.MemDB
	orderID atomic.Uint64
	now     func() time.Time
}

func NewRepository() (*Repository, error) {
	db, err := memdb.NewMemDB(schema())
	if err != nil {
		return nil, fmt.Errorf("failed to create memdb: %w", err)
	}
	return &Repository{db: db, now: time.Now}, nil
}

func (r *Repository) Atomic(ctx context.Context, fn port.AtomicFn) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	txn := r.db.Txn(true)
	defer txn.Abort()

	if err := fn(ctx, &txnStore{txn: txn, repo: r}); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

func (r *Repository) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	txn := r.db.Txn(false)
	it, err := txn.Get(tableProducts, "id")
	if err != nil {
		return nil, err
	}
	list := make([]*domain.Product, 0)
	for obj := it.Next(); obj != nil; obj = it.Next() {
		p := *obj.(*domain.Product)
		list = append(list, &p)
	}
	return list, nil
}

func (r *Repository) ListCustomers(ctx context.Context) ([]*domain.Customer, error) {
	txn := r.db.Txn(false)
	it, err := txn.Get(tableCustomers, "id")
	if err != nil {
		return nil, err
	}
	list := make([]*domain.Customer, 0)
	for obj := it.Next(); obj != nil; obj = it.Next() {
		c := *obj.(*domain.Customer)
		list = append(list, &c)
	}
	return list, nil
}

func (r *Repository) ReadCustomer(ctx context.Context, id uint64) (*domain.Customer, error) {
	return (&txnStore{txn: r.db.Txn(false), repo: r}).GetCustomer(ctx, id)
}

func (r *Repository) ListOrders(ctx context.Context, customerID uint64) ([]*domain.Order, error) {
	txn := r.db.Txn(false)
	var (
		it  memdb.ResultIterator
		err error
	)
	if customerID == 0 {
		it, err = txn.Get(tableOrders, "id")
	} else {
		it, err = txn.Get(tableOrders, "customer", customerID)
	}
	if err != nil {
		return nil, err
	}
	list := make([]*domain.Order, 0)
	for obj := it.Next(); obj != nil; obj = it.Next() {
		list = append(list, copyOrder(obj.(*domain.Order)))
	}
	return list, nil
}

func (r *Repository) ReadOrder(ctx context.Context, id uint64) (*domain.Order, error) {
	return (&txnStore{txn: r.db.Txn(false), repo: r}).GetOrder(ctx, id)
}

func (r *Repository) ListActivePromos(ctx context.Context) ([]*domain.PromoCode, error) {
	txn := r.db.Txn(false)
	it, err := txn.Get(tablePromos, "id")
	if err != nil {
		return nil, err
	}
	now := r.now()
	list := make([]*domain.PromoCode, 0)
	for obj := it.Next(); obj != nil; obj = it.Next() {
		p := *obj.(*domain.PromoCode)
		if p.Validate(now) != nil {
			continue
		}
		list = append(list, &p)
	}
	return list, nil
}

func copyOrder(o *domain.Order) *domain.Order {
	c := *o
	c.Items = append([]domain.OrderItem(nil), o.Items...)
	if o.RefundedAt != nil {
		at := *o.RefundedAt
		c.RefundedAt = &at
	}
	return &c
}
