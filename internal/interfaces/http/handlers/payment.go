// internal/interfaces/http/handlers/payment.go
package handlers

import (
	"context"
	"net/http"

	"github.com/alma-store/storefront-api/internal/domain/cart"
	"github.com/alma-store/storefront-api/internal/domain/payment"
	"github.com/alma-store/storefront-api/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	reconciler  *payment.Reconciler
	cartService *cart.Service
	logger      logrus.FieldLogger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(reconciler *payment.Reconciler, cartService *cart.Service, logger logrus.FieldLogger) *PaymentHandler {
	return &PaymentHandler{
		reconciler:  reconciler,
		cartService: cartService,
		logger:      logger,
	}
}

// PaymentResponse handles GET /payment/response, the page ePayco redirects to.
// The transaction is verified against the gateway; the shopper's cart is
// cleared only when the verified state is accepted.
func (h *PaymentHandler) PaymentResponse(c *gin.Context) {
	clearer := &ownerCart{
		carts:  h.cartService,
		owner:  middleware.GetCartOwner(c),
		logger: h.logger,
	}

	conf := h.reconciler.Reconcile(c.Request.Context(), c.Request.URL.Query(), clearer)

	switch conf.Status {
	case payment.StatusNoInformation:
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Payment information not found",
			"data":  conf,
		})
	case payment.StatusPending:
		c.JSON(http.StatusAccepted, gin.H{
			"message": "Payment verification in progress",
			"data":    conf,
		})
	default:
		c.JSON(http.StatusOK, gin.H{
			"message": "Payment verified",
			"data":    conf,
		})
	}
}

// ownerCart opens the shopper's cart only when a verified payment clears it
type ownerCart struct {
	carts  *cart.Service
	owner  string
	logger logrus.FieldLogger
}

func (o *ownerCart) ClearCart(ctx context.Context) {
	if err := o.carts.ClearCart(ctx, o.owner); err != nil {
		o.logger.WithError(err).WithField("cart_owner", o.owner).Error("Failed to clear cart after payment")
	}
}
