// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/alma-store/storefront-api/internal/domain/cart"
	"github.com/alma-store/storefront-api/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// eventBuffer is how many snapshots an SSE client may lag behind before
// intermediate versions are skipped
const eventBuffer = 16

// CartHandler handles cart endpoints
type CartHandler struct {
	cartService *cart.Service
	logger      logrus.FieldLogger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cart.Service, logger logrus.FieldLogger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		logger:      logger,
	}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	snap, err := h.cartService.GetCart(c.Request.Context(), middleware.GetCartOwner(c))
	if err != nil {
		h.fail(c, err, "Failed to retrieve cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    snap,
	})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req cart.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	snap, err := h.cartService.AddToCart(c.Request.Context(), middleware.GetCartOwner(c), &req)
	if err != nil {
		h.fail(c, err, "Failed to add item to cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    snap,
	})
}

// UpdateCartItem handles PUT /cart/items/:id
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	var req cart.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	id := cart.ItemID(c.Param("id"))
	snap, err := h.cartService.UpdateCartItem(c.Request.Context(), middleware.GetCartOwner(c), id, &req)
	if err != nil {
		h.fail(c, err, "Failed to update cart item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    snap,
	})
}

// RemoveFromCart handles DELETE /cart/items/:id
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	id := cart.ItemID(c.Param("id"))
	snap, err := h.cartService.RemoveFromCart(c.Request.Context(), middleware.GetCartOwner(c), id)
	if err != nil {
		h.fail(c, err, "Failed to remove cart item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    snap,
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.cartService.ClearCart(c.Request.Context(), middleware.GetCartOwner(c)); err != nil {
		h.fail(c, err, "Failed to clear cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
	})
}

// GetCartCount handles GET /cart/count
func (h *CartHandler) GetCartCount(c *gin.Context) {
	count, err := h.cartService.GetCartItemCount(c.Request.Context(), middleware.GetCartOwner(c))
	if err != nil {
		h.fail(c, err, "Failed to get cart count")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart count retrieved successfully",
		"data": gin.H{
			"count": count,
		},
	})
}

// MergeGuestCart handles POST /cart/merge - called when user logs in
func (h *CartHandler) MergeGuestCart(c *gin.Context) {
	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	snap, err := h.cartService.MergeGuestCart(c.Request.Context(), middleware.GetGuestOwner(c), middleware.GetCartOwner(c))
	if err != nil {
		h.fail(c, err, "Failed to merge cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Guest cart merged successfully",
		"data":    snap,
	})
}

// Events handles GET /cart/events, streaming one "cart" event per committed
// change, starting with the current state
func (h *CartHandler) Events(c *gin.Context) {
	ctx := c.Request.Context()

	store, err := h.cartService.Store(ctx, middleware.GetCartOwner(c))
	if err != nil {
		h.fail(c, err, "Failed to open cart")
		return
	}

	updates := make(chan cart.Snapshot, eventBuffer)
	unsubscribe := store.Subscribe(func(snap cart.Snapshot) {
		select {
		case updates <- snap:
		default:
			// slow client: it will catch up with a later, complete snapshot
		}
	})
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case snap := <-updates:
			c.SSEvent("cart", snap)
			return true
		}
	})
}

func (h *CartHandler) fail(c *gin.Context, err error, message string) {
	if errors.Is(err, cart.ErrOwnerRequired) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Cart session required",
		})
		return
	}

	h.logger.WithError(err).Error(message)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": message,
	})
}
