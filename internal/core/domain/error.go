package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInternal = errors.New("internal error")

	// * Data errors.
	ErrDataNotFound    = errors.New("data not found")
	ErrNoUpdatedData   = errors.New("no data to update")
	ErrConflictingData = errors.New("data conflicts with existing data in unique column")

	// * Communication errors.
	ErrBadRequest = errors.New("error parsing request")

	// * Business errors.
	ErrOutOfStock      = errors.New("not enough stock")
	ErrInvalidPromo    = errors.New("promo code is not valid")
	ErrAlreadyRefunded = errors.New("order already refunded")
	ErrEmptyOrder      = errors.New("order has no items")
	ErrBadQuantity     = errors.New("quantity must be positive")
)

type Entity string

const (
	EntityProduct  Entity = "product"
	EntityCustomer Entity = "customer"
	EntityOrder    Entity = "order"
	EntityPromo    Entity = "promo code"
)

type NotFoundError struct {
	Entity Entity
	ID     string
}

func NewNotFound(entity Entity, id any) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: fmt.Sprint(id)}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrDataNotFound }

type OutOfStockError struct {
	ProductID uint64
	Name      string
	Requested int64
	Available int64
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q (product %d): requested %d, available %d",
		e.Name, e.ProductID, e.Requested, e.Available)
}

func (e *OutOfStockError) Unwrap() error { return ErrOutOfStock }

// Reasons reported by InvalidPromoError.
const (
	PromoReasonUnknown  = "unknown code"
	PromoReasonInactive = "inactive"
	PromoReasonExpired  = "expired"
)

type InvalidPromoError struct {
	Code   string
	Reason string
}

func (e *InvalidPromoError) Error() string {
	return fmt.Sprintf("invalid promo code %q: %s", e.Code, e.Reason)
}

func (e *InvalidPromoError) Unwrap() error { return ErrInvalidPromo }

type AlreadyRefundedError struct {
	OrderID uint64
}

func (e *AlreadyRefundedError) Error() string {
	return fmt.Sprintf("order %d already refunded", e.OrderID)
}

func (e *AlreadyRefundedError) Unwrap() error { return ErrAlreadyRefunded }
