package domain

import (
	"time"

	"github.com/govalues/decimal"
)

type Product struct {
	ID          uint64
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int64
	CreatedAt   time.Time
}
