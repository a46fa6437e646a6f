package routes

import (
	"net/http"

	coreport "github.com/kiarash-asgari/storefront-core/internal/domain/port/core"
	"github.com/kiarash-asgari/storefront-core/internal/infrastructure/adapter/api/handler"
	"github.com/kiarash-asgari/storefront-core/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all the routes for the API
func SetupRoutes(
	router *gin.Engine,
	paymentHandler *handler.PaymentHandler,
	orderHandler *handler.OrderHandler,
	accountHandler *handler.AccountHandler,
) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		payments := v1.Group("/payments")
		{
			payments.POST("/invoice", paymentHandler.CreateInvoice)
			payments.POST("/webhook", paymentHandler.Webhook)
			payments.GET("/:paymentId/status", paymentHandler.GetStatus)
		}

		accounts := v1.Group("/accounts")
		{
			accounts.GET("/:ownerId/balance", accountHandler.GetBalance)
		}

		orders := v1.Group("/orders")
		{
			orders.POST("", orderHandler.Create)
			orders.POST("/:orderNumber/process", orderHandler.Process)
			orders.POST("/:orderNumber/cancel", orderHandler.Cancel)
			orders.POST("/:orderNumber/refund", orderHandler.Refund)
			orders.POST("/:orderNumber/delivery", orderHandler.Deliver)
			orders.GET("/:orderNumber/timeline", orderHandler.Timeline)
		}
	}
}

// SetupMiddlewares configures global middlewares for the API
func SetupMiddlewares(router *gin.Engine, logger coreport.Logger) {
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS())
}
