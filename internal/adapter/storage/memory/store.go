package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/MikeRez0/ypshop/internal/core/domain"
	"github.com/hashicorp/go-memdb"
)

// txnStore never mutates objects it read from memdb; every update inserts a copy.
type txnStore struct {
	txn  *memdb.Txn
	repo *Repository
}

func (s *txnStore) GetProduct(ctx context.Context, id uint64) (*domain.Product, error) {
	obj, err := s.txn.First(tableProducts, "id", id)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, domain.NewNotFound(domain.EntityProduct, id)
	}
	p := *obj.(*domain.Product)
	return &p, nil
}

func (s *txnStore) UpdateStock(ctx context.Context, id uint64, delta int64) error {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if p.Stock+delta < 0 {
		return fmt.Errorf("product %d: %w", id, domain.ErrOutOfStock)
	}
	p.Stock += delta
	return s.txn.Insert(tableProducts, p)
}

func (s *txnStore) GetCustomer(ctx context.Context, id uint64) (*domain.Customer, error) {
	obj, err := s.txn.First(tableCustomers, "id", id)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, domain.NewNotFound(domain.EntityCustomer, id)
	}
	c := *obj.(*domain.Customer)
	return &c, nil
}

func (s *txnStore) UpdateLoyalty(ctx context.Context, id uint64, points int64, tier domain.Tier) error {
	c, err := s.GetCustomer(ctx, id)
	if err != nil {
		return err
	}
	if points < 0 {
		return fmt.Errorf("customer %d: negative points %d", id, points)
	}
	c.LoyaltyPoints = points
	c.Tier = tier
	return s.txn.Insert(tableCustomers, c)
}

func (s *txnStore) GetPromo(ctx context.Context, code string) (*domain.PromoCode, error) {
	obj, err := s.txn.First(tablePromos, "code", code)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, domain.NewNotFound(domain.EntityPromo, code)
	}
	p := *obj.(*domain.PromoCode)
	return &p, nil
}

func (s *txnStore) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	created := copyOrder(order)
	created.ID = s.repo.orderID.Add(1)
	if err := s.txn.Insert(tableOrders, created); err != nil {
		return nil, err
	}
	return copyOrder(created), nil
}

func (s *txnStore) GetOrder(ctx context.Context, id uint64) (*domain.Order, error) {
	obj, err := s.txn.First(tableOrders, "id", id)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, domain.NewNotFound(domain.EntityOrder, id)
	}
	return copyOrder(obj.(*domain.Order)), nil
}

func (s *txnStore) UpdateOrderStatus(ctx context.Context, id uint64, status domain.OrderStatus, at time.Time) error {
	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	o.Status = status
	if status == domain.OrderStatusRefunded {
		o.RefundedAt = &at
	}
	return s.txn.Insert(tableOrders, o)
}
