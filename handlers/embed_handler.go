package handlers

import (
	"net/http"

	"github.com/formcraft/formcraft-backend/config"
	apperrors "github.com/formcraft/formcraft-backend/errors"
	"github.com/formcraft/formcraft-backend/logger"
	"github.com/formcraft/formcraft-backend/models/embed"
	"github.com/formcraft/formcraft-backend/types"
	"github.com/gin-gonic/gin"
)

// EmbedHandler serves the public embed page and the site and grant dashboard.
type EmbedHandler struct {
	embeds      EmbedServiceInterface
	production  bool
	refererHint bool
}

func NewEmbedHandler(embeds EmbedServiceInterface, cfg *config.Config) *EmbedHandler {
	return &EmbedHandler{
		embeds:      embeds,
		production:  cfg.IsProduction(),
		refererHint: cfg.Embed.AllowRefererQuery,
	}
}

// requestReferer returns the raw referer and its host. The ?referer= query is
// a testing aid and is only read when the header is absent outside production.
func (h *EmbedHandler) requestReferer(c *gin.Context) (string, string) {
	referer := c.GetHeader("Referer")
	if referer == "" && h.refererHint && !h.production {
		referer = c.Query("referer")
	}
	return referer, embed.RefererHost(referer)
}

// LoadEmbedHandler godoc
// @Summary Load an embedded form
// @Description Public endpoint. Returns the published form when the key is granted to the requesting site.
// @Tags embed
// @Produce json
// @Param key path string true "Embedding key"
// @Param referer query string false "Referer override, non-production only"
// @Success 200 {object} types.PublicFormResponse
// @Failure 403 {object} types.ErrorBody
// @Router /embed/{key} [get]
func (h *EmbedHandler) LoadEmbedHandler(c *gin.Context) {
	key := c.Param("key")
	referer, refererDomain := h.requestReferer(c)

	decision, err := h.embeds.Load(c.Request.Context(), key, refererDomain, referer, c.GetHeader("User-Agent"))
	if err != nil {
		_ = c.Error(apperrors.PersistenceFailed("Failed to load form", err))
		return
	}
	if !decision.Authorized {
		logger.GetLogger().Infow("Embed load denied",
			"embedKey", logger.MaskEmbedKey(key), "referer", refererDomain, "reason", decision.Reason)
		_ = c.Error(apperrors.EmbedDenied(decision.Reason))
		return
	}

	c.Header("Content-Security-Policy", embed.FrameAncestors(decision.SiteDomain))
	c.JSON(http.StatusOK, gin.H{"success": true, "form": decision.Form.Public()})
}

// CreateSiteHandler godoc
// @Summary Register a site
// @Description The site can host embeds once an admin approves it.
// @Tags sites
// @Accept json
// @Produce json
// @Param request body types.CreateSiteRequest true "Domain"
// @Success 201 {object} types.SiteResponse
// @Failure 400 {object} types.ErrorBody
// @Failure 409 {object} types.ErrorBody
// @Router /sites [post]
// @Security BearerAuth
func (h *EmbedHandler) CreateSiteHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req types.CreateSiteRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	site, err := h.embeds.CreateSite(c.Request.Context(), userID, req.Domain)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "site": site})
}

// ListSitesHandler godoc
// @Summary List your sites
// @Tags sites
// @Produce json
// @Success 200 {object} types.SiteListResponse
// @Router /sites [get]
// @Security BearerAuth
func (h *EmbedHandler) ListSitesHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	sites, err := h.embeds.ListSites(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if sites == nil {
		sites = []types.Site{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "sites": sites})
}

// ApproveSiteHandler godoc
// @Summary Approve a site for embedding
// @Tags sites
// @Produce json
// @Param id path string true "Site ID"
// @Success 200 {object} types.SiteResponse
// @Failure 403 {object} types.ErrorBody "Not an admin"
// @Failure 404 {object} types.ErrorBody
// @Router /sites/{id}/approve [post]
// @Security BearerAuth
func (h *EmbedHandler) ApproveSiteHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	site, err := h.embeds.ApproveSite(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "site": site})
}

// CreateGrantHandler godoc
// @Summary Grant a site an embedding key for a form
// @Tags embeddings
// @Accept json
// @Produce json
// @Param id path string true "Form ID"
// @Param request body types.CreateGrantRequest true "Site and settings"
// @Success 201 {object} types.GrantResponse
// @Failure 400 {object} types.ErrorBody
// @Failure 404 {object} types.ErrorBody
// @Router /forms/{id}/embeddings [post]
// @Security BearerAuth
func (h *EmbedHandler) CreateGrantHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req types.CreateGrantRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	grant, err := h.embeds.CreateGrant(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "embedding": grant})
}

// ListGrantsHandler godoc
// @Summary List a form's embedding keys
// @Tags embeddings
// @Produce json
// @Param id path string true "Form ID"
// @Success 200 {object} types.GrantListResponse
// @Failure 404 {object} types.ErrorBody
// @Router /forms/{id}/embeddings [get]
// @Security BearerAuth
func (h *EmbedHandler) ListGrantsHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	grants, err := h.embeds.ListGrants(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if grants == nil {
		grants = []types.EmbedGrant{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "embeddings": grants})
}

// RevokeGrantHandler godoc
// @Summary Revoke an embedding key
// @Tags embeddings
// @Param key path string true "Embedding key"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} types.ErrorBody
// @Router /embeddings/{key} [delete]
// @Security BearerAuth
func (h *EmbedHandler) RevokeGrantHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.embeds.RevokeGrant(c.Request.Context(), userID, c.Param("key")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// EmbedCodeHandler godoc
// @Summary Get the iframe snippet for an embedding key
// @Tags embeddings
// @Produce json
// @Param key path string true "Embedding key"
// @Param height query string false "Frame height" default(600px)
// @Param width query string false "Frame width" default(100%)
// @Success 200 {object} types.EmbedCodeResponse
// @Failure 404 {object} types.ErrorBody
// @Router /embeddings/{key}/code [get]
// @Security BearerAuth
func (h *EmbedHandler) EmbedCodeHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	code, err := h.embeds.EmbedCode(c.Request.Context(), userID, c.Param("key"), c.Query("height"), c.Query("width"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "embeddingKey": code.EmbeddingKey, "code": code.Code})
}
