package service

import (
	"context"
	"sort"

	"github.com/MikeRez0/ypshop/internal/core/domain"
	"github.com/MikeRez0/ypshop/internal/core/port"
	"go.uber.org/zap"
)

func (s *Service) PlaceOrder(ctx context.Context, customerID uint64,
	lines []domain.LineRequest, promoCode string) (*domain.Order, error) {
	merged, err := mergeLines(lines)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var (
		placed   *domain.Order
		customer *domain.Customer
	)

	err = s.repo.Atomic(ctx, func(ctx context.Context, store port.Store) error {
		c, err := store.GetCustomer(ctx, customerID)
		if err != nil {
			return err
		}

		// check stock for the whole request before touching any of it
		products, err := s.lockProducts(ctx, store, merged)
		if err != nil {
			return err
		}
		items := make([]domain.OrderItem, 0, len(merged))
		for _, line := range merged {
			p := products[line.ProductID]
			if line.Quantity > p.Stock {
				return &domain.OutOfStockError{
					ProductID: p.ID,
					Name:      p.Name,
					Requested: line.Quantity,
					Available: p.Stock,
				}
			}
			items = append(items, domain.OrderItem{
				ProductID: p.ID,
				Quantity:  line.Quantity,
				UnitPrice: p.Price,
			})
		}

		promo, err := s.pricer.ResolvePromo(ctx, store, promoCode, now)
		if err != nil {
			return err
		}
		quote, err := s.pricer.Price(items, promo, c)
		if err != nil {
			return err
		}

		// commit
		for _, item := range items {
			if err := store.UpdateStock(ctx, item.ProductID, -item.Quantity); err != nil {
				return err
			}
		}
		order := &domain.Order{
			CustomerID: c.ID,
			Items:      items,
			Subtotal:   quote.Subtotal,
			Discount:   quote.Discount,
			Total:      quote.Total,
			Status:     domain.OrderStatusPlaced,
			CreatedAt:  now,
		}
		if promo != nil && quote.Source == DiscountPromo {
			order.PromoCode = promo.Code
		}
		placed, err = store.CreateOrder(ctx, order)
		if err != nil {
			return err
		}

		customer, err = s.loyalty.Accrue(ctx, store, c.ID, quote.Total)
		return err
	})
	if err != nil {
		return nil, s.handleError("Place order", err)
	}

	s.logger.Debug("Order placed",
		zap.Uint64("order", placed.ID),
		zap.Uint64("customer", customerID),
		zap.Stringer("total", placed.Total))
	s.publish(ctx, domain.OrderEventPlaced, placed, customer)

	return placed, nil
}

// lockProducts loads products in ascending id order so that concurrent
// units always take row locks in the same sequence.
func (s *Service) lockProducts(ctx context.Context, store port.Store,
	lines []domain.LineRequest) (map[uint64]*domain.Product, error) {
	ids := make([]uint64, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	products := make(map[uint64]*domain.Product, len(ids))
	for _, id := range ids {
		p, err := store.GetProduct(ctx, id)
		if err != nil {
			return nil, err
		}
		products[id] = p
	}
	return products, nil
}

// mergeLines validates quantities and folds repeated products into the
// first line that mentions them.
func mergeLines(lines []domain.LineRequest) ([]domain.LineRequest, error) {
	if len(lines) == 0 {
		return nil, domain.ErrEmptyOrder
	}
	merged := make([]domain.LineRequest, 0, len(lines))
	index := make(map[uint64]int, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, domain.ErrBadQuantity
		}
		if i, ok := index[line.ProductID]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(merged)
		merged = append(merged, line)
	}
	return merged, nil
}
