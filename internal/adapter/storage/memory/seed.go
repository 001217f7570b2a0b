package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/MikeRez0/ypshop/internal/core/domain"
	"github.com/govalues/decimal"
)

// Load inserts catalog data as is. Ids must be set by the caller.
func (r *Repository) Load(ctx context.Context, products []domain.Product,
	customers []domain.Customer, promos []domain.PromoCode) error {
	txn := r.db.Txn(true)
	defer txn.Abort()

	for i := range products {
		p := products[i]
		if p.Stock < 0 {
			return fmt.Errorf("product %d: negative stock", p.ID)
		}
		if err := txn.Insert(tableProducts, &p); err != nil {
			return fmt.Errorf("insert product %d: %w", p.ID, err)
		}
	}
	for i := range customers {
		c := customers[i]
		if err := txn.Insert(tableCustomers, &c); err != nil {
			return fmt.Errorf("insert customer %d: %w", c.ID, err)
		}
	}
	for i := range promos {
		p := promos[i]
		if err := txn.Insert(tablePromos, &p); err != nil {
			return fmt.Errorf("insert promo %s: %w", p.Code, err)
		}
	}

	txn.Commit()
	return nil
}

// Seed loads the demo catalog. Tiers are derived from points with policy.
func (r *Repository) Seed(ctx context.Context, policy domain.Policy) error {
	now := r.now()
	customer := func(id uint64, name, email string, points int64) domain.Customer {
		return domain.Customer{
			ID:            id,
			Name:          name,
			Email:         email,
			LoyaltyPoints: points,
			Tier:          policy.TierFor(points),
			CreatedAt:     now,
		}
	}
	product := func(id uint64, name, description, price string, stock int64) domain.Product {
		return domain.Product{
			ID:          id,
			Name:        name,
			Description: description,
			Price:       decimal.MustParse(price),
			Stock:       stock,
			CreatedAt:   now,
		}
	}
	promo := func(id uint64, code string, percent int64, min int64) domain.PromoCode {
		return domain.PromoCode{
			ID:              id,
			Code:            code,
			DiscountPercent: decimal.MustNew(percent, 0),
			Active:          true,
			MinOrderAmount:  decimal.MustNew(min, 0),
		}
	}

	return r.Load(ctx,
		[]domain.Product{
			product(1, "Wireless Headphones", "Noise-cancelling, 30h battery", "79.99", 50),
			product(2, "USB-C Hub", "7-in-1 dock, 4K HDMI", "34.99", 120),
			product(3, "Mechanical Keyboard", "Cherry MX Blue, RGB", "129.99", 30),
			product(4, "Laptop Stand", "Aluminum, adjustable height", "49.99", 75),
			product(5, "Webcam 1080p", "Auto-focus, built-in mic", "59.99", 60),
		},
		[]domain.Customer{
			customer(1, "Alice Johnson", "alice@example.com", 0),
			customer(2, "Bob Smith", "bob@example.com", 600),
			customer(3, "Carol Lee", "carol@example.com", 1200),
		},
		[]domain.PromoCode{
			promo(1, "SAVE10", 10, 50),
			promo(2, "WELCOME20", 20, 0),
			promo(3, "VIP15", 15, 100),
		},
	)
}

// WithClock is used by tests that check promo expiry in listings.
func (r *Repository) WithClock(now func() time.Time) *Repository {
	r.now = now
	return r
}
