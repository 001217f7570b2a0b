package domain

import (
	"time"

	"github.com/govalues/decimal"
)

type PromoCode struct {
	ID              uint64
	Code            string
	DiscountPercent decimal.Decimal
	Active          bool
	ExpiresAt       *time.Time
	MinOrderAmount  decimal.Decimal
}

// Validate reports why the code cannot be used at the given moment.
func (p *PromoCode) Validate(now time.Time) error {
	if !p.Active {
		return &InvalidPromoError{Code: p.Code, Reason: PromoReasonInactive}
	}
	if p.ExpiresAt != nil && !now.Before(*p.ExpiresAt) {
		return &InvalidPromoError{Code: p.Code, Reason: PromoReasonExpired}
	}
	return nil
}

// Applies is false when the subtotal is below the minimum order amount.
func (p *PromoCode) Applies(subtotal decimal.Decimal) bool {
	return subtotal.Cmp(p.MinOrderAmount) >= 0
}
