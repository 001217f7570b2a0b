package service

import (
	"context"
	"fmt"

	"github.com/MikeRez0/ypshop/internal/core/domain"
	"github.com/MikeRez0/ypshop/internal/core/port"
	"github.com/govalues/decimal"
)

// Loyalty turns spend into points. The tier is always written together with
// the points it is derived from.
type Loyalty struct {
	policy domain.Policy
}

func NewLoyalty(policy domain.Policy) *Loyalty {
	return &Loyalty{policy: policy}
}

// PointsFor returns floor(amount * points per unit); non-positive amounts earn nothing.
func (l *Loyalty) PointsFor(amount decimal.Decimal) (int64, error) {
	if !amount.IsPos() {
		return 0, nil
	}
	raw, err := amount.Mul(l.policy.PointsPerUnit)
	if err != nil {
		return 0, fmt.Errorf("points for %s: %w", amount, err)
	}
	points, _, ok := raw.Floor(0).Int64(0)
	if !ok {
		return 0, fmt.Errorf("points for %s: overflow", amount)
	}
	return points, nil
}

func (l *Loyalty) TierFor(points int64) domain.Tier {
	return l.policy.TierFor(points)
}

func (l *Loyalty) Accrue(ctx context.Context, store port.Store,
	customerID uint64, amountSpent decimal.Decimal) (*domain.Customer, error) {
	earned, err := l.PointsFor(amountSpent)
	if err != nil {
		return nil, err
	}

	customer, err := store.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	return l.apply(ctx, store, customer, customer.LoyaltyPoints+earned)
}

// Reverse takes back the points amountSpent earned, never going below zero.
// It returns the number of points actually removed.
func (l *Loyalty) Reverse(ctx context.Context, store port.Store,
	customerID uint64, amountSpent decimal.Decimal) (*domain.Customer, int64, error) {
	earned, err := l.PointsFor(amountSpent)
	if err != nil {
		return nil, 0, err
	}

	customer, err := store.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, 0, err
	}

	points := customer.LoyaltyPoints - earned
	if points < 0 {
		points = 0
	}
	removed := customer.LoyaltyPoints - points

	customer, err = l.apply(ctx, store, customer, points)
	if err != nil {
		return nil, 0, err
	}
	return customer, removed, nil
}

func (l *Loyalty) apply(ctx context.Context, store port.Store,
	customer *domain.Customer, points int64) (*domain.Customer, error) {
	tier := l.policy.TierFor(points)
	if err := store.UpdateLoyalty(ctx, customer.ID, points, tier); err != nil {
		return nil, err
	}
	updated := *customer
	updated.LoyaltyPoints = points
	updated.Tier = tier
	return &updated, nil
}
