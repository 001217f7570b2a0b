package http

import (
	"net/http"
	"strconv"

	"github.com/MikeRez0/ypshop/internal/core/domain"
	"github.com/MikeRez0/ypshop/internal/core/port"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OrderHandler struct {
	Handler
	service port.Service
}

func NewOrderHandler(service port.Service, logger *zap.Logger) (*OrderHandler, error) {
	return &OrderHandler{
		Handler: *NewHandler(logger),
		service: service,
	}, nil
}

type orderItemRequest struct {
	ProductID uint64 `json:"product_id" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
}

type placeOrderRequest struct {
	CustomerID uint64             `json:"customer_id" binding:"required"`
	Items      []orderItemRequest `json:"items" binding:"required,min=1,dive"`
	PromoCode  string             `json:"promo_code"`
}

func (oh *OrderHandler) PlaceOrder(ctx *gin.Context) {
	req := placeOrderRequest{}
	err := ctx.ShouldBindBodyWithJSON(&req)
	if err != nil {
		oh.handleValidationError(ctx, err)
		return
	}

	lines := make([]domain.LineRequest, 0, len(req.Items))
	for _, i := range req.Items {
		lines = append(lines, domain.LineRequest{ProductID: i.ProductID, Quantity: i.Quantity})
	}

	order, err := oh.service.PlaceOrder(ctx, req.CustomerID, lines, req.PromoCode)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccessWithStatus(ctx, newOrderResponse(order), http.StatusCreated)
}

func (oh *OrderHandler) ListOrders(ctx *gin.Context) {
	var customerID uint64
	if q := ctx.Query("customer_id"); q != "" {
		id, err := strconv.ParseUint(q, 10, 64)
		if err != nil {
			oh.handleValidationError(ctx, err)
			return
		}
		customerID = id
	}

	list, err := oh.service.ListOrders(ctx, customerID)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	result := make([]orderResponse, 0, len(list))
	for _, o := range list {
		result = append(result, newOrderResponse(o))
	}
	oh.handleSuccess(ctx, result)
}

func (oh *OrderHandler) GetOrder(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		oh.handleValidationError(ctx, err)
		return
	}

	order, err := oh.service.GetOrder(ctx, id)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}
	oh.handleSuccess(ctx, newOrderResponse(order))
}

type refundRequest struct {
	OrderID uint64 `json:"order_id" binding:"required"`
}

func (oh *OrderHandler) Refund(ctx *gin.Context) {
	req := refundRequest{}
	err := ctx.ShouldBindBodyWithJSON(&req)
	if err != nil {
		oh.handleValidationError(ctx, err)
		return
	}

	refund, err := oh.service.Refund(ctx, req.OrderID)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccess(ctx, refundResponse{
		OrderID:        refund.OrderID,
		RefundAmount:   refund.Amount.Pad(2).String(),
		PointsReversed: refund.PointsReversed,
		Status:         string(refund.Status),
	})
}
