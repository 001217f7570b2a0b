package domain

import (
	"time"

	"github.com/govalues/decimal"
)

type OrderStatus string

const (
	OrderStatusPlaced   OrderStatus = "PLACED"
	OrderStatusRefunded OrderStatus = "REFUNDED"
)

type OrderItem struct {
	ProductID uint64
	Quantity  int64
	UnitPrice decimal.Decimal
}

type Order struct {
	ID         uint64
	CustomerID uint64
	Items      []OrderItem
	Subtotal   decimal.Decimal
	Discount   decimal.Decimal
	Total      decimal.Decimal
	PromoCode  string
	Status     OrderStatus
	CreatedAt  time.Time
	RefundedAt *time.Time
}

// LineRequest is one requested line of a new order.
type LineRequest struct {
	ProductID uint64
	Quantity  int64
}

type Refund struct {
	OrderID        uint64
	Amount         decimal.Decimal
	PointsReversed int64
	Status         OrderStatus
}
