package middleware

import (
	"strings"

	"github.com/formcraft/formcraft-backend/config"
	"github.com/gin-gonic/gin"
)

// SecurityHeadersMiddleware adds the standard hardening headers. Embed pages
// are meant to be framed by third-party sites, so they get no
// X-Frame-Options; the embed handler sets a frame-ancestors policy instead.
func SecurityHeadersMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isEmbedPath(c.Request.URL.Path) {
			c.Header("X-Frame-Options", "DENY")
		}
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if cfg.IsProduction() {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}

func isEmbedPath(path string) bool {
	return path == "/embed" || strings.HasPrefix(path, "/embed/")
}
