package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/formcraft/formcraft-backend/errors"
	"github.com/formcraft/formcraft-backend/logger"
	"github.com/gin-gonic/gin"
	"github.com/supabase-community/supabase-go"
)

// Session is the token pair handed back after a refresh.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// ErrRefreshUnavailable is returned when no Supabase project is configured.
var ErrRefreshUnavailable = stderrors.New("token refresh is not configured")

// AuthHandler handles authentication-related endpoints
type AuthHandler struct {
	refresh func(refreshToken string) (*Session, error)
}

// NewAuthHandler refreshes sessions through the Supabase auth API. A nil
// client makes every refresh answer 503.
func NewAuthHandler(supabaseClient *supabase.Client) *AuthHandler {
	if supabaseClient == nil {
		return &AuthHandler{refresh: func(string) (*Session, error) { return nil, ErrRefreshUnavailable }}
	}
	return &AuthHandler{
		refresh: func(refreshToken string) (*Session, error) {
			resp, err := supabaseClient.Auth.RefreshToken(refreshToken)
			if err != nil {
				return nil, err
			}
			return &Session{
				AccessToken:  resp.AccessToken,
				RefreshToken: resp.RefreshToken,
				ExpiresIn:    resp.ExpiresIn,
			}, nil
		},
	}
}

// RefreshTokenHandler godoc
// @Summary Refresh an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{refresh_token=string} true "Refresh token"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} types.ErrorBody
// @Failure 401 {object} types.ErrorBody
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshTokenHandler(c *gin.Context) {
	log := logger.GetLogger()

	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.ValidationFailed("Invalid request format", "refresh_token is required"))
		return
	}

	session, err := h.refresh(req.RefreshToken)
	if stderrors.Is(err, ErrRefreshUnavailable) {
		_ = c.Error(errors.ServiceUnavailable("Token refresh is not available"))
		return
	}
	if err != nil {
		log.Warnw("Failed to refresh token", "error", err)
		_ = c.Error(errors.Unauthorized("refresh_failed", "Failed to refresh token"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  session.AccessToken,
		"refresh_token": session.RefreshToken,
		"expires_in":    session.ExpiresIn,
		"token_type":    "bearer",
	})
}
