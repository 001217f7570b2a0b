package http

import (
	"strconv"

	"github.com/MikeRez0/ypshop/internal/core/domain"
	"github.com/MikeRez0/ypshop/internal/core/port"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CatalogHandler serves the read-only products, customers and promo codes.
type CatalogHandler struct {
	Handler
	service port.Service
}

func NewCatalogHandler(service port.Service, logger *zap.Logger) (*CatalogHandler, error) {
	return &CatalogHandler{
		Handler: *NewHandler(logger),
		service: service,
	}, nil
}

func (ch *CatalogHandler) ListProducts(ctx *gin.Context) {
	list, err := ch.service.ListProducts(ctx)
	if err != nil {
		ch.handleError(ctx, err)
		return
	}

	result := make([]productResponse, 0, len(list))
	for _, p := range list {
		result = append(result, newProductResponse(p))
	}
	ch.handleSuccess(ctx, result)
}

func (ch *CatalogHandler) ListCustomers(ctx *gin.Context) {
	list, err := ch.service.ListCustomers(ctx)
	if err != nil {
		ch.handleError(ctx, err)
		return
	}

	result := make([]customerResponse, 0, len(list))
	for _, c := range list {
		result = append(result, newCustomerResponse(c))
	}
	ch.handleSuccess(ctx, result)
}

func (ch *CatalogHandler) GetCustomer(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		ch.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	customer, err := ch.service.GetCustomer(ctx, id)
	if err != nil {
		ch.handleError(ctx, err)
		return
	}
	ch.handleSuccess(ctx, newCustomerResponse(customer))
}

func (ch *CatalogHandler) ListPromoCodes(ctx *gin.Context) {
	list, err := ch.service.ListPromoCodes(ctx)
	if err != nil {
		ch.handleError(ctx, err)
		return
	}

	result := make([]promoResponse, 0, len(list))
	for _, p := range list {
		result = append(result, newPromoResponse(p))
	}
	ch.handleSuccess(ctx, result)
}
