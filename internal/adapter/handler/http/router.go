package http

import (
	"github.com/MikeRez0/ypshop/internal/adapter/config"
	"github.com/MikeRez0/ypshop/internal/core/port"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

type Router struct {
	*gin.Engine
}

// NewRouter wires the API. cache may be nil.
func NewRouter(
	conf *config.Cache,
	cache port.IdempotencyCache,
	catalogHandler *CatalogHandler,
	orderHandler *OrderHandler,
	logger *zap.Logger) (*Router, error) {

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), requestLogger(logger))

	// Swagger
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api")
	{
		api.GET("/products", catalogHandler.ListProducts)
		api.GET("/promo-codes", catalogHandler.ListPromoCodes)

		customers := api.Group("/customers")
		{
			customers.GET("", catalogHandler.ListCustomers)
			customers.GET("/:id", catalogHandler.GetCustomer)
		}

		orders := api.Group("/orders")
		{
			orders.POST("", idempotent(cache, conf.IdempotencyTTL, logger), orderHandler.PlaceOrder)
			orders.GET("", orderHandler.ListOrders)
			orders.GET("/:id", orderHandler.GetOrder)
		}

		api.POST("/refunds", orderHandler.Refund)
	}

	return &Router{router}, nil
}

// Serve starts the HTTP server
func (r *Router) Serve(listenAddr string) error {
	return r.Run(listenAddr)
}
