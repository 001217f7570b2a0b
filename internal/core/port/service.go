package port

import (
	"context"

	"github.com/MikeRez0/ypshop/internal/core/domain"
)

//go:generate mockgen -source=service.go -destination=mock/service.go -package=mock
type Service interface {
	PlaceOrder(ctx context.Context, customerID uint64, lines []domain.LineRequest, promoCode string) (*domain.Order, error)
	Refund(ctx context.Context, orderID uint64) (*domain.Refund, error)

	ListProducts(ctx context.Context) ([]*domain.Product, error)
	ListCustomers(ctx context.Context) ([]*domain.Customer, error)
	GetCustomer(ctx context.Context, id uint64) (*domain.Customer, error)
	ListOrders(ctx context.Context, customerID uint64) ([]*domain.Order, error)
	GetOrder(ctx context.Context, id uint64) (*domain.Order, error)
	ListPromoCodes(ctx context.Context) ([]*domain.PromoCode, error)
}
