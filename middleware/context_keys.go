package middleware

import "github.com/gin-gonic/gin"

// contextKey defines a type for context keys to avoid collisions.
type contextKey string

const (
	// UserIDKey is the gin context key for the authenticated user's ID.
	UserIDKey contextKey = "userID"
)

// GetUserID returns the authenticated user ID, or "" on public routes.
func GetUserID(c *gin.Context) string {
	return c.GetString(string(UserIDKey))
}
