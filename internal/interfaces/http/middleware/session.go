package middleware

import (
	"fmt"
	"net/http"

	"github.com/alma-store/storefront-api/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sessionCookie   = "session_id"
	sessionMaxAge   = 30 * 24 * 60 * 60
	cartOwnerKey    = "cart_owner"
	guestSessionKey = "guest_session"
)

// CartOwner resolves who the cart of the current request belongs to: the
// authenticated user when a valid token is present, the session cookie
// otherwise. A session cookie is issued when missing.
func CartOwner(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(sessionCookie)
		if err != nil || sessionID == "" {
			sessionID = uuid.New().String()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(sessionCookie, sessionID, sessionMaxAge, "/", "", cfg.Security.SecureCookies, true)
		}

		guest := "session:" + sessionID
		c.Set(guestSessionKey, guest)

		if userID, ok := GetUserIDFromContext(c); ok {
			c.Set(cartOwnerKey, fmt.Sprintf("user:%d", userID))
		} else {
			c.Set(cartOwnerKey, guest)
		}

		c.Next()
	}
}

// GetCartOwner returns the owner resolved by CartOwner
func GetCartOwner(c *gin.Context) string {
	return c.GetString(cartOwnerKey)
}

// GetGuestOwner returns the session-based owner even for authenticated requests
func GetGuestOwner(c *gin.Context) string {
	return c.GetString(guestSessionKey)
}
