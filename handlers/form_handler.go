package handlers

import (
	"errors"
	"net/http"

	apperrors "github.com/formcraft/formcraft-backend/errors"
	"github.com/formcraft/formcraft-backend/logger"
	"github.com/formcraft/formcraft-backend/middleware"
	"github.com/formcraft/formcraft-backend/types"
	"github.com/gin-gonic/gin"
)

const MsgCreateFormFailed = "Failed to create form"

// FormHandler serves the owner's form dashboard.
type FormHandler struct {
	forms FormServiceInterface
}

func NewFormHandler(forms FormServiceInterface) *FormHandler {
	return &FormHandler{forms: forms}
}

// bindJSONOrError binds JSON request body and sets validation error if binding fails.
// Returns true if binding succeeded, false if error was set (caller should return).
func bindJSONOrError(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		_ = c.Error(apperrors.ValidationFailed("Invalid request body", err.Error()))
		return false
	}
	return true
}

// requireUser returns the authenticated user id or attaches a 401.
func requireUser(c *gin.Context) (string, bool) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		_ = c.Error(apperrors.Unauthorized("not_authenticated", middleware.MsgUnauthorized))
		return "", false
	}
	return userID, true
}

// CreateFormHandler godoc
// @Summary Create a form
// @Description Creates a draft form from a field list, or from a template when templateId is set
// @Tags forms
// @Accept json
// @Produce json
// @Param request body types.CreateFormRequest true "Form definition"
// @Success 200 {object} types.FormResponse
// @Failure 400 {object} types.ErrorBody
// @Failure 401 {object} types.ErrorBody
// @Failure 500 {object} types.ErrorBody
// @Router /forms/create [post]
// @Security BearerAuth
func (h *FormHandler) CreateFormHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req types.CreateFormRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	form, err := h.forms.CreateForm(c.Request.Context(), userID, req)
	if err != nil {
		_ = c.Error(clientErrorOr(err, MsgCreateFormFailed))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "form": form})
}

// ListFormsHandler godoc
// @Summary List forms
// @Tags forms
// @Produce json
// @Param status query string false "draft, published or archived"
// @Success 200 {object} types.FormListResponse
// @Failure 400 {object} types.ErrorBody
// @Router /forms [get]
// @Security BearerAuth
func (h *FormHandler) ListFormsHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var status *types.FormStatus
	if raw := c.Query("status"); raw != "" {
		s := types.FormStatus(raw)
		status = &s
	}

	forms, err := h.forms.ListForms(c.Request.Context(), userID, status)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if forms == nil {
		forms = []types.Form{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "forms": forms})
}

// GetFormHandler godoc
// @Summary Get a form
// @Tags forms
// @Produce json
// @Param id path string true "Form ID"
// @Success 200 {object} types.FormResponse
// @Failure 404 {object} types.ErrorBody
// @Router /forms/{id} [get]
// @Security BearerAuth
func (h *FormHandler) GetFormHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	form, err := h.forms.GetForm(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "form": form})
}

// UpdateFormHandler godoc
// @Summary Replace a form's definition
// @Tags forms
// @Accept json
// @Produce json
// @Param id path string true "Form ID"
// @Param request body types.FormDraft true "Form definition"
// @Success 200 {object} types.FormResponse
// @Failure 400 {object} types.ErrorBody
// @Failure 404 {object} types.ErrorBody
// @Router /forms/{id} [put]
// @Security BearerAuth
func (h *FormHandler) UpdateFormHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var draft types.FormDraft
	if !bindJSONOrError(c, &draft) {
		return
	}

	form, err := h.forms.UpdateForm(c.Request.Context(), c.Param("id"), userID, draft)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "form": form})
}

// UpdateFormStatusHandler godoc
// @Summary Publish, archive or unpublish a form
// @Tags forms
// @Accept json
// @Produce json
// @Param id path string true "Form ID"
// @Param request body types.UpdateFormStatusRequest true "Target status"
// @Success 200 {object} types.FormResponse
// @Failure 400 {object} types.ErrorBody
// @Failure 404 {object} types.ErrorBody
// @Router /forms/{id}/status [patch]
// @Security BearerAuth
func (h *FormHandler) UpdateFormStatusHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req types.UpdateFormStatusRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	form, err := h.forms.UpdateStatus(c.Request.Context(), c.Param("id"), userID, req.Status)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "form": form})
}

// DeleteFormHandler godoc
// @Summary Delete a form and its submissions
// @Tags forms
// @Param id path string true "Form ID"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} types.ErrorBody
// @Router /forms/{id} [delete]
// @Security BearerAuth
func (h *FormHandler) DeleteFormHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	formID := c.Param("id")
	if err := h.forms.DeleteForm(c.Request.Context(), formID, userID); err != nil {
		_ = c.Error(err)
		return
	}
	logger.GetLogger().Infow("Form deleted", "formID", formID, "userID", userID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListSubmissionsHandler godoc
// @Summary List a form's submissions
// @Tags forms
// @Produce json
// @Param id path string true "Form ID"
// @Success 200 {object} types.SubmissionListResponse
// @Failure 404 {object} types.ErrorBody
// @Router /forms/{id}/submissions [get]
// @Security BearerAuth
func (h *FormHandler) ListSubmissionsHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	subs, err := h.forms.ListSubmissions(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if subs == nil {
		subs = []types.Submission{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "submissions": subs})
}

// clientErrorOr keeps 4xx application errors and replaces anything else with
// a generic 500 carrying message.
func clientErrorOr(err error, message string) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.GetHTTPStatus() < http.StatusInternalServerError {
		return err
	}
	return apperrors.Wrap(err, apperrors.ServerError, message)
}
