package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MikeRez0/ypshop/internal/core/domain"
	"github.com/MikeRez0/ypshop/internal/core/port"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service struct {
	repo      port.Repository
	publisher port.EventPublisher
	pricer    *Pricer
	loyalty   *Loyalty
	logger    *zap.Logger
	now       func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now, used for order timestamps and promo expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(repo port.Repository, publisher port.EventPublisher,
	policy domain.Policy, logger *zap.Logger, opts ...Option) (*Service, error) {
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("bad policy: %w", err)
	}

	s := &Service{
		repo:      repo,
		publisher: publisher,
		pricer:    NewPricer(policy),
		loyalty:   NewLoyalty(policy),
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	list, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, s.handleError("List products", err)
	}
	return list, nil
}

func (s *Service) ListCustomers(ctx context.Context) ([]*domain.Customer, error) {
	list, err := s.repo.ListCustomers(ctx)
	if err != nil {
		return nil, s.handleError("List customers", err)
	}
	return list, nil
}

func (s *Service) GetCustomer(ctx context.Context, id uint64) (*domain.Customer, error) {
	customer, err := s.repo.ReadCustomer(ctx, id)
	if err != nil {
		return nil, s.handleError("Get customer", err)
	}
	return customer, nil
}

// ListOrders returns every order when customerID is 0.
func (s *Service) ListOrders(ctx context.Context, customerID uint64) ([]*domain.Order, error) {
	list, err := s.repo.ListOrders(ctx, customerID)
	if err != nil {
		return nil, s.handleError("List orders", err)
	}
	return list, nil
}

func (s *Service) GetOrder(ctx context.Context, id uint64) (*domain.Order, error) {
	order, err := s.repo.ReadOrder(ctx, id)
	if err != nil {
		return nil, s.handleError("Get order", err)
	}
	return order, nil
}

func (s *Service) ListPromoCodes(ctx context.Context) ([]*domain.PromoCode, error) {
	list, err := s.repo.ListActivePromos(ctx)
	if err != nil {
		return nil, s.handleError("List promo codes", err)
	}
	return list, nil
}

var businessErrors = []error{
	domain.ErrDataNotFound,
	domain.ErrBadRequest,
	domain.ErrEmptyOrder,
	domain.ErrBadQuantity,
	domain.ErrOutOfStock,
	domain.ErrInvalidPromo,
	domain.ErrAlreadyRefunded,
}

// handleError passes expected outcomes through and hides store failures
// behind ErrInternal.
func (s *Service) handleError(op string, err error) error {
	for _, target := range businessErrors {
		if errors.Is(err, target) {
			s.logger.Debug(op+" rejected", zap.Error(err))
			return err
		}
	}
	s.logger.Error(op, zap.Error(err))
	return domain.ErrInternal
}

func (s *Service) publish(ctx context.Context, typ domain.OrderEventType,
	order *domain.Order, customer *domain.Customer) {
	if s.publisher == nil {
		return
	}
	event := &domain.OrderEvent{
		ID:         uuid.NewString(),
		Type:       typ,
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Total:      order.Total,
		Points:     customer.LoyaltyPoints,
		Tier:       customer.Tier.String(),
		OccurredAt: s.now(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		// The unit is already committed; the event is lost, not the order.
		s.logger.Warn("Publish event", zap.String("type", string(typ)),
			zap.Uint64("order", order.ID), zap.Error(err))
	}
}
