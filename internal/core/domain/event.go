package domain

import (
	"time"

	"github.com/govalues/decimal"
)

type OrderEventType string

const (
	OrderEventPlaced   OrderEventType = "order.placed"
	OrderEventRefunded OrderEventType = "order.refunded"
)

type OrderEvent struct {
	ID         string          `json:"id"`
	Type       OrderEventType  `json:"type"`
	OrderID    uint64          `json:"order_id"`
	CustomerID uint64          `json:"customer_id"`
	Total      decimal.Decimal `json:"total"`
	Points     int64           `json:"points"`
	Tier       string          `json:"tier"`
	OccurredAt time.Time       `json:"occurred_at"`
}
