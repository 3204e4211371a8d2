package handlers

import (
	"net/http"

	"github.com/formcraft/formcraft-backend/types"
	"github.com/gin-gonic/gin"
)

type TemplateHandler struct {
	templates TemplateServiceInterface
}

func NewTemplateHandler(templates TemplateServiceInterface) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

// CreateTemplateHandler godoc
// @Summary Save a form as a template
// @Tags templates
// @Accept json
// @Produce json
// @Param request body types.CreateTemplateRequest true "Source form and template name"
// @Success 200 {object} types.TemplateResponse
// @Failure 400 {object} types.ErrorBody
// @Failure 404 {object} types.ErrorBody
// @Router /templates/create [post]
// @Security BearerAuth
func (h *TemplateHandler) CreateTemplateHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req types.CreateTemplateRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	tmpl, err := h.templates.InstantiateFromForm(c.Request.Context(), userID, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "template": tmpl})
}

// ListTemplatesHandler godoc
// @Summary List templates
// @Description Newest first. userId only filters; any signed-in user may browse.
// @Tags templates
// @Produce json
// @Param userId query string false "Creator filter"
// @Success 200 {object} types.TemplateListResponse
// @Router /templates [get]
// @Security BearerAuth
func (h *TemplateHandler) ListTemplatesHandler(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}

	templates, err := h.templates.ListTemplates(c.Request.Context(), c.Query("userId"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if templates == nil {
		templates = []types.FormTemplate{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "templates": templates})
}

// GetTemplateHandler godoc
// @Summary Get a template
// @Tags templates
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} types.TemplateResponse
// @Failure 404 {object} types.ErrorBody
// @Router /templates/{id} [get]
// @Security BearerAuth
func (h *TemplateHandler) GetTemplateHandler(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	tmpl, err := h.templates.GetTemplate(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "template": tmpl})
}

// SetPremiumHandler godoc
// @Summary Put a price on a template
// @Tags templates
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Param request body types.SetPremiumRequest true "Price in credits"
// @Success 200 {object} types.TemplateResponse
// @Failure 400 {object} types.ErrorBody
// @Failure 404 {object} types.ErrorBody
// @Router /templates/{id}/premium [put]
// @Security BearerAuth
func (h *TemplateHandler) SetPremiumHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req types.SetPremiumRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	tmpl, err := h.templates.SetPremium(c.Request.Context(), c.Param("id"), userID, req.Price)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "template": tmpl})
}

// PurchaseTemplateHandler godoc
// @Summary Buy a premium template with credits
// @Tags templates
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} types.CreditsResponse
// @Failure 400 {object} types.ErrorBody "Insufficient credits"
// @Failure 409 {object} types.ErrorBody "Already purchased"
// @Router /templates/{id}/purchase [post]
// @Security BearerAuth
func (h *TemplateHandler) PurchaseTemplateHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	balance, err := h.templates.Purchase(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "balance": balance})
}

// InstantiateTemplateHandler godoc
// @Summary Create a form from a template
// @Tags templates
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Param request body types.InstantiateTemplateRequest false "Name and description overrides"
// @Success 200 {object} types.FormResponse
// @Failure 403 {object} types.ErrorBody "Premium template not purchased"
// @Failure 404 {object} types.ErrorBody
// @Router /templates/{id}/instantiate [post]
// @Security BearerAuth
func (h *TemplateHandler) InstantiateTemplateHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req types.InstantiateTemplateRequest
	if c.Request.ContentLength != 0 && !bindJSONOrError(c, &req) {
		return
	}

	form, err := h.templates.InstantiateFromTemplate(c.Request.Context(), c.Param("id"), userID, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "form": form})
}
