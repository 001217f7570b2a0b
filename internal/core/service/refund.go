package service

import (
	"context"
	"sort"

	"github.com/MikeRez0/ypshop/internal/core/domain"
	"github.com/MikeRez0/ypshop/internal/core/port"
	"go.uber.org/zap"
)

// Refund fully reverses an order: stock comes back, the points its total
// earned are taken back and the order is marked refunded.
func (s *Service) Refund(ctx context.Context, orderID uint64) (*domain.Refund, error) {
	now := s.now()
	var (
		order    *domain.Order
		customer *domain.Customer
		refund   *domain.Refund
	)

	err := s.repo.Atomic(ctx, func(ctx context.Context, store port.Store) error {
		o, err := store.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if o.Status == domain.OrderStatusRefunded {
			return &domain.AlreadyRefundedError{OrderID: o.ID}
		}

		// same lock order as PlaceOrder: customer, then products by ascending id
		if _, err := store.GetCustomer(ctx, o.CustomerID); err != nil {
			return err
		}
		items := append([]domain.OrderItem(nil), o.Items...)
		sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })
		for _, item := range items {
			if err := store.UpdateStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		c, reversed, err := s.loyalty.Reverse(ctx, store, o.CustomerID, o.Total)
		if err != nil {
			return err
		}

		if err := store.UpdateOrderStatus(ctx, o.ID, domain.OrderStatusRefunded, now); err != nil {
			return err
		}

		o.Status = domain.OrderStatusRefunded
		o.RefundedAt = &now
		order, customer = o, c
		refund = &domain.Refund{
			OrderID:        o.ID,
			Amount:         o.Total,
			PointsReversed: reversed,
			Status:         o.Status,
		}
		return nil
	})
	if err != nil {
		return nil, s.handleError("Refund order", err)
	}

	s.logger.Debug("Order refunded",
		zap.Uint64("order", order.ID),
		zap.Int64("points", refund.PointsReversed))
	s.publish(ctx, domain.OrderEventRefunded, order, customer)

	return refund, nil
}
