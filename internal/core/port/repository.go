package port

import (
	"context"
	"time"

	"github.com/MikeRez0/ypshop/internal/core/domain"
)

// Store is the set of loads and saves an engine operation performs. Every
// call made through the Store handed to an AtomicFn joins the same unit of
// work; products and orders read through it stay locked until the unit ends.
//
//go:generate mockgen -source=repository.go -destination=mock/repository.go -package=mock
type Store interface {
	// Catalog
	GetProduct(ctx context.Context, id uint64) (*domain.Product, error)
	UpdateStock(ctx context.Context, id uint64, delta int64) error

	// Customer
	GetCustomer(ctx context.Context, id uint64) (*domain.Customer, error)
	UpdateLoyalty(ctx context.Context, id uint64, points int64, tier domain.Tier) error

	// Promo
	GetPromo(ctx context.Context, code string) (*domain.PromoCode, error)

	// Order
	CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetOrder(ctx context.Context, id uint64) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id uint64, status domain.OrderStatus, at time.Time) error
}

type AtomicFn func(ctx context.Context, store Store) error

type Repository interface {
	// Atomic runs fn as one serializable unit: either every write made
	// through the given Store is committed or none is.
	Atomic(ctx context.Context, fn AtomicFn) error

	ListProducts(ctx context.Context) ([]*domain.Product, error)
	ListCustomers(ctx context.Context) ([]*domain.Customer, error)
	ReadCustomer(ctx context.Context, id uint64) (*domain.Customer, error)
	ListOrders(ctx context.Context, customerID uint64) ([]*domain.Order, error)
	ReadOrder(ctx context.Context, id uint64) (*domain.Order, error)
	ListActivePromos(ctx context.Context) ([]*domain.PromoCode, error)
}
