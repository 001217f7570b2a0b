package domain

import (
	"errors"
	"fmt"

	"github.com/govalues/decimal"
)

const tierCount = int(TierPlatinum) + 1

// Policy holds the pricing and loyalty constants. It is built once at
// startup and passed by value, so engines never observe a change.
type Policy struct {
	// PointsPerUnit is the number of points earned per currency unit spent.
	PointsPerUnit decimal.Decimal
	// TierThresholds[t] is the minimum points balance for tier t; index 0 must be 0.
	TierThresholds [tierCount]int64
	// TierDiscounts[t] is the discount percent granted to tier t.
	TierDiscounts [tierCount]decimal.Decimal
}

func DefaultPolicy() Policy {
	return Policy{
		PointsPerUnit:  decimal.One,
		TierThresholds: [tierCount]int64{0, 500, 1000, 5000},
		TierDiscounts: [tierCount]decimal.Decimal{
			decimal.Zero,
			decimal.MustNew(5, 0),
			decimal.MustNew(10, 0),
			decimal.MustNew(15, 0),
		},
	}
}

func (p Policy) Validate() error {
	if p.PointsPerUnit.IsNeg() {
		return errors.New("points per unit must not be negative")
	}
	if p.TierThresholds[0] != 0 {
		return errors.New("bronze threshold must be 0")
	}
	for t := 1; t < tierCount; t++ {
		if p.TierThresholds[t] <= p.TierThresholds[t-1] {
			return fmt.Errorf("threshold for %s must be above %s", Tier(t), Tier(t-1))
		}
		if p.TierDiscounts[t].Cmp(p.TierDiscounts[t-1]) < 0 {
			return fmt.Errorf("discount for %s must not be below %s", Tier(t), Tier(t-1))
		}
	}
	for t := 0; t < tierCount; t++ {
		d := p.TierDiscounts[t]
		if d.IsNeg() || d.Cmp(decimal.Hundred) > 0 {
			return fmt.Errorf("discount for %s out of range: %s", Tier(t), d)
		}
	}
	return nil
}

// TierFor is the only place a tier is derived from a points balance.
func (p Policy) TierFor(points int64) Tier {
	tier := TierBronze
	for t := 1; t < tierCount; t++ {
		if points >= p.TierThresholds[t] {
			tier = Tier(t)
		}
	}
	return tier
}

func (p Policy) TierDiscount(t Tier) decimal.Decimal {
	if t < TierBronze || int(t) >= tierCount {
		return decimal.Zero
	}
	return p.TierDiscounts[t]
}
