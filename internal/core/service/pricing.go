package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MikeRez0/ypshop/internal/core/domain"
	"github.com/MikeRez0/ypshop/internal/core/port"
	"github.com/govalues/decimal"
)

const currencyScale = 2

type DiscountSource string

const (
	DiscountNone  DiscountSource = "none"
	DiscountPromo DiscountSource = "promo"
	DiscountTier  DiscountSource = "tier"
)

type Quote struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
	Percent  decimal.Decimal
	Source   DiscountSource
}

// Pricer computes order totals. Promo and tier discounts never stack: the
// larger percentage is applied and a tie goes to the promo code.
type Pricer struct {
	policy domain.Policy
}

func NewPricer(policy domain.Policy) *Pricer {
	return &Pricer{policy: policy}
}

// ResolvePromo loads a promo code and checks it is usable at now.
// An empty code resolves to nil.
func (p *Pricer) ResolvePromo(ctx context.Context, store port.Store, code string, now time.Time) (*domain.PromoCode, error) {
	if code == "" {
		return nil, nil
	}
	promo, err := store.GetPromo(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrDataNotFound) {
			return nil, &domain.InvalidPromoError{Code: code, Reason: domain.PromoReasonUnknown}
		}
		return nil, err
	}
	if err := promo.Validate(now); err != nil {
		return nil, err
	}
	return promo, nil
}

func (p *Pricer) Subtotal(items []domain.OrderItem) (decimal.Decimal, error) {
	subtotal := decimal.Zero
	for _, item := range items {
		qty, err := decimal.New(item.Quantity, 0)
		if err != nil {
			return decimal.Zero, fmt.Errorf("quantity %d: %w", item.Quantity, err)
		}
		line, err := item.UnitPrice.Mul(qty)
		if err != nil {
			return decimal.Zero, fmt.Errorf("line total for product %d: %w", item.ProductID, err)
		}
		subtotal, err = subtotal.Add(line)
		if err != nil {
			return decimal.Zero, fmt.Errorf("subtotal: %w", err)
		}
	}
	return subtotal.Pad(currencyScale), nil
}

// Price expects promo to be resolved already; a nil promo means none was supplied.
func (p *Pricer) Price(items []domain.OrderItem, promo *domain.PromoCode, customer *domain.Customer) (*Quote, error) {
	subtotal, err := p.Subtotal(items)
	if err != nil {
		return nil, err
	}

	percent, source := p.choosePercent(subtotal, promo, customer)

	discount := decimal.Zero
	if !percent.IsZero() {
		raw, err := subtotal.Mul(percent)
		if err != nil {
			return nil, fmt.Errorf("discount: %w", err)
		}
		raw, err = raw.Quo(decimal.Hundred)
		if err != nil {
			return nil, fmt.Errorf("discount: %w", err)
		}
		discount, err = roundHalfUp(raw, currencyScale)
		if err != nil {
			return nil, fmt.Errorf("discount: %w", err)
		}
	}
	if discount.Cmp(subtotal) > 0 {
		discount = subtotal
	}
	discount = discount.Pad(currencyScale)

	total, err := subtotal.Sub(discount)
	if err != nil {
		return nil, fmt.Errorf("total: %w", err)
	}

	return &Quote{
		Subtotal: subtotal,
		Discount: discount,
		Total:    total.Pad(currencyScale),
		Percent:  percent,
		Source:   source,
	}, nil
}

func (p *Pricer) choosePercent(subtotal decimal.Decimal, promo *domain.PromoCode,
	customer *domain.Customer) (decimal.Decimal, DiscountSource) {
	tierPercent := p.policy.TierDiscount(p.policy.TierFor(customer.LoyaltyPoints))

	if promo != nil && promo.Applies(subtotal) {
		promoPercent := clampPercent(promo.DiscountPercent)
		if promoPercent.Cmp(tierPercent) >= 0 {
			return promoPercent, DiscountPromo
		}
	}
	if tierPercent.IsPos() {
		return tierPercent, DiscountTier
	}
	return decimal.Zero, DiscountNone
}

func clampPercent(d decimal.Decimal) decimal.Decimal {
	if d.IsNeg() {
		return decimal.Zero
	}
	if d.Cmp(decimal.Hundred) > 0 {
		return decimal.Hundred
	}
	return d
}

// roundHalfUp rounds a non-negative amount to scale digits, halves away from zero.
func roundHalfUp(d decimal.Decimal, scale int) (decimal.Decimal, error) {
	if d.Scale() <= scale {
		return d.Pad(scale), nil
	}
	half, err := decimal.New(5, scale+1)
	if err != nil {
		return decimal.Zero, err
	}
	shifted, err := d.Add(half)
	if err != nil {
		return decimal.Zero, err
	}
	return shifted.Trunc(scale).Pad(scale), nil
}
