package port

import (
	"context"
	"time"
)

// IdempotencyCache remembers responses keyed by a client supplied key.
// Get returns an empty string and no error on a miss.
//
//go:generate mockgen -source=cache.go -destination=mock/cache.go -package=mock
type IdempotencyCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}
