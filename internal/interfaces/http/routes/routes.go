// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/alma-store/storefront-api/internal/config"
	"github.com/alma-store/storefront-api/internal/domain/cart"
	"github.com/alma-store/storefront-api/internal/domain/payment"
	"github.com/alma-store/storefront-api/internal/interfaces/http/handlers"
	"github.com/alma-store/storefront-api/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// EventsPath is the long-lived cart stream; it is exempt from request timeouts
const EventsPath = "/api/v1/cart/events"

// SetupRoutes registers every API route under rg
func SetupRoutes(rg *gin.RouterGroup, cfg *config.Config, carts *cart.Service, reconciler *payment.Reconciler, logger logrus.FieldLogger) {
	SetupCartRoutes(rg, cfg, carts, logger)
	SetupPaymentRoutes(rg, cfg, carts, reconciler, logger)
}

// SetupCartRoutes sets up cart related routes (guest sessions or authenticated users)
func SetupCartRoutes(rg *gin.RouterGroup, cfg *config.Config, carts *cart.Service, logger logrus.FieldLogger) {
	cartHandler := handlers.NewCartHandler(carts, logger)

	group := rg.Group("/cart")
	group.Use(middleware.OptionalAuthMiddleware(cfg))
	group.Use(middleware.CartOwner(cfg))
	{
		group.GET("", cartHandler.GetCart)
		group.GET("/count", cartHandler.GetCartCount)
		group.GET("/events", cartHandler.Events)
		group.POST("/items", cartHandler.AddToCart)
		group.PUT("/items/:id", cartHandler.UpdateCartItem)
		group.DELETE("/items/:id", cartHandler.RemoveFromCart)
		group.DELETE("", cartHandler.ClearCart)
		group.POST("/merge", cartHandler.MergeGuestCart)
	}
}

// SetupPaymentRoutes sets up payment related routes
func SetupPaymentRoutes(rg *gin.RouterGroup, cfg *config.Config, carts *cart.Service, reconciler *payment.Reconciler, logger logrus.FieldLogger) {
	paymentHandler := handlers.NewPaymentHandler(reconciler, carts, logger)

	group := rg.Group("/payment")
	group.Use(middleware.OptionalAuthMiddleware(cfg))
	group.Use(middleware.CartOwner(cfg))
	{
		group.GET("/response", paymentHandler.PaymentResponse)
	}
}
