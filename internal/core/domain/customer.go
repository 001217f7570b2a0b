package domain

import "time"

// Tier is ordered: a greater value is a higher tier.
type Tier int

const (
	TierBronze Tier = iota
	TierSilver
	TierGold
	TierPlatinum
)

var tierNames = [...]string{"bronze", "silver", "gold", "platinum"}

func (t Tier) String() string {
	if t < TierBronze || t > TierPlatinum {
		return "unknown"
	}
	return tierNames[t]
}

func ParseTier(s string) (Tier, bool) {
	for i, n := range tierNames {
		if n == s {
			return Tier(i), true
		}
	}
	return TierBronze, false
}

type Customer struct {
	ID            uint64
	Name          string
	Email         string
	LoyaltyPoints int64
	Tier          Tier
	CreatedAt     time.Time
}
