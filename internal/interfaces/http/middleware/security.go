package middleware

import (
	"strings"

	"github.com/alma-store/storefront-api/internal/config"
	"github.com/gin-gonic/gin"
)

// SecurityHeaders adds security headers to responses. Cart and payment
// responses are per-shopper and must never be cached by intermediaries.
func SecurityHeaders(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		c.Header("Server", cfg.App.Name)

		if cfg.Security.SecureCookies {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.Header("Cache-Control", "no-store")
		}

		c.Next()
	}
}
