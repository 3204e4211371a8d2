package handlers

import (
	"net/http"

	"github.com/formcraft/formcraft-backend/types"
	"github.com/gin-gonic/gin"
)

type CreditHandler struct {
	credits CreditServiceInterface
}

func NewCreditHandler(credits CreditServiceInterface) *CreditHandler {
	return &CreditHandler{credits: credits}
}

// GetCreditsHandler godoc
// @Summary Credit balance and ledger
// @Tags credits
// @Produce json
// @Success 200 {object} types.CreditsResponse
// @Router /credits [get]
// @Security BearerAuth
func (h *CreditHandler) GetCreditsHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	summary, err := h.credits.Summary(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if summary.Transactions == nil {
		summary.Transactions = []types.CreditTransaction{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"balance":      summary.Balance,
		"transactions": summary.Transactions,
	})
}

// AddCreditsHandler godoc
// @Summary Add credits
// @Tags credits
// @Accept json
// @Produce json
// @Param request body types.AddCreditsRequest true "Amount"
// @Success 200 {object} types.CreditsResponse
// @Failure 400 {object} types.ErrorBody
// @Router /credits [post]
// @Security BearerAuth
func (h *CreditHandler) AddCreditsHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req types.AddCreditsRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	balance, err := h.credits.AddCredits(c.Request.Context(), userID, req.Amount, req.Description)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "balance": balance})
}
