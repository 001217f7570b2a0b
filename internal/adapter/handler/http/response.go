package http

import (
	"time"

	"github.com/MikeRez0/ypshop/internal/core/domain"
)

type productResponse struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Stock       int64  `json:"stock"`
}

func newProductResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.Pad(2).String(),
		Stock:       p.Stock,
	}
}

type customerResponse struct {
	ID            uint64 `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	LoyaltyPoints int64  `json:"loyalty_points"`
	LoyaltyTier   string `json:"loyalty_tier"`
}

func newCustomerResponse(c *domain.Customer) customerResponse {
	return customerResponse{
		ID:            c.ID,
		Name:          c.Name,
		Email:         c.Email,
		LoyaltyPoints: c.LoyaltyPoints,
		LoyaltyTier:   c.Tier.String(),
	}
}

type promoResponse struct {
	ID              uint64     `json:"id"`
	Code            string     `json:"code"`
	DiscountPercent string     `json:"discount_percent"`
	MinOrderAmount  string     `json:"min_order_amount"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
}

func newPromoResponse(p *domain.PromoCode) promoResponse {
	return promoResponse{
		ID:              p.ID,
		Code:            p.Code,
		DiscountPercent: p.DiscountPercent.String(),
		MinOrderAmount:  p.MinOrderAmount.Pad(2).String(),
		ExpiresAt:       p.ExpiresAt,
	}
}

type orderItemResponse struct {
	ProductID       uint64 `json:"product_id"`
	Quantity        int64  `json:"quantity"`
	PriceAtPurchase string `json:"price_at_purchase"`
}

type orderResponse struct {
	ID             uint64              `json:"id"`
	CustomerID     uint64              `json:"customer_id"`
	Status         string              `json:"status"`
	Subtotal       string              `json:"subtotal"`
	DiscountAmount string              `json:"discount_amount"`
	Total          string              `json:"total"`
	PromoCodeUsed  string              `json:"promo_code_used,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	RefundedAt     *time.Time          `json:"refunded_at,omitempty"`
	Items          []orderItemResponse `json:"items"`
}

func newOrderResponse(o *domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, i := range o.Items {
		items = append(items, orderItemResponse{
			ProductID:       i.ProductID,
			Quantity:        i.Quantity,
			PriceAtPurchase: i.UnitPrice.Pad(2).String(),
		})
	}
	return orderResponse{
		ID:             o.ID,
		CustomerID:     o.CustomerID,
		Status:         string(o.Status),
		Subtotal:       o.Subtotal.Pad(2).String(),
		DiscountAmount: o.Discount.Pad(2).String(),
		Total:          o.Total.Pad(2).String(),
		PromoCodeUsed:  o.PromoCode,
		CreatedAt:      o.CreatedAt,
		RefundedAt:     o.RefundedAt,
		Items:          items,
	}
}

type refundResponse struct {
	OrderID        uint64 `json:"order_id"`
	RefundAmount   string `json:"refund_amount"`
	PointsReversed int64  `json:"points_reversed"`
	Status         string `json:"status"`
}
