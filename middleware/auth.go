package middleware

import (
	"errors"
	"strings"

	apperrors "github.com/formcraft/formcraft-backend/errors"
	"github.com/formcraft/formcraft-backend/logger"
	"github.com/gin-gonic/gin"
)

const (
	authCodeMissingToken = "missing_token"
	authCodeTokenExpired = "token_expired"
	authCodeInvalidToken = "invalid_token"

	// MsgUnauthorized is the body message for every failed authentication.
	MsgUnauthorized = "Unauthorized"
)

// AuthMiddleware requires a valid "Authorization: Bearer <jwt>" header and
// stores the token subject under UserIDKey.
func AuthMiddleware(validator Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			_ = c.Error(apperrors.Unauthorized(authCodeMissingToken, MsgUnauthorized))
			c.Abort()
			return
		}

		userID, err := validator.Validate(c.Request.Context(), token)
		if err != nil {
			code := authCodeInvalidToken
			if errors.Is(err, ErrTokenExpired) {
				code = authCodeTokenExpired
			}
			logger.GetLogger().Warnw("Rejected bearer token",
				"error", err,
				"token", logger.MaskJWT(token),
				"path", c.Request.URL.Path,
				"request_id", c.GetString(RequestIDKey))
			_ = c.Error(apperrors.Unauthorized(code, MsgUnauthorized))
			c.Abort()
			return
		}

		c.Set(string(UserIDKey), userID)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
