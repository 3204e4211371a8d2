package handlers

import (
	"net/http"

	"github.com/formcraft/formcraft-backend/models/embed"
	submissionsvc "github.com/formcraft/formcraft-backend/models/submission/service"
	"github.com/formcraft/formcraft-backend/types"
	"github.com/gin-gonic/gin"
)

// IdempotencyKeyHeader lets a client retry a submit without creating a duplicate.
const IdempotencyKeyHeader = "Idempotency-Key"

type SubmissionHandler struct {
	submissions SubmissionServiceInterface
}

func NewSubmissionHandler(submissions SubmissionServiceInterface) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions}
}

// SubmitHandler godoc
// @Summary Submit a form
// @Description Public endpoint. When embedKey is set the request must come from the granted site.
// @Tags submissions
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Retry key"
// @Param request body types.SubmitRequest true "Submission"
// @Success 200 {object} types.SubmitResponse
// @Failure 400 {object} types.ErrorBody "Missing required fields or validation failed"
// @Failure 403 {object} types.ErrorBody "Embed denied or form not accepting submissions"
// @Failure 404 {object} types.ErrorBody
// @Failure 409 {object} types.ErrorBody "Submission already in progress"
// @Failure 500 {object} types.ErrorBody
// @Router /forms/submit [post]
func (h *SubmissionHandler) SubmitHandler(c *gin.Context) {
	var req types.SubmitRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	referer := c.GetHeader("Referer")
	result, err := h.submissions.Submit(c.Request.Context(), submissionsvc.SubmitInput{
		Request:        req,
		Referer:        referer,
		RefererDomain:  embed.RefererHost(referer),
		UserAgent:      c.GetHeader("User-Agent"),
		ForwardedFor:   c.GetHeader("X-Forwarded-For"),
		IdempotencyKey: c.GetHeader(IdempotencyKeyHeader),
	})
	if err != nil {
		_ = c.Error(clientErrorOr(err, submissionsvc.MsgSubmitFailed))
		return
	}

	body := gin.H{"success": true, "submissionId": result.SubmissionID}
	if result.Replayed {
		body["replayed"] = true
	}
	c.JSON(http.StatusOK, body)
}
