package handlers

import (
	"context"
	"net/http"

	"github.com/formcraft/formcraft-backend/types"
	"github.com/gin-gonic/gin"
)

// HealthChecker reports the state of the service's dependencies.
type HealthChecker interface {
	CheckHealth(ctx context.Context) types.HealthCheck
}

// HealthHandler serves the probe and status endpoints. None of them require
// auth.
type HealthHandler struct {
	checker HealthChecker
}

func NewHealthHandler(checker HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// LivenessCheck answers as long as the process can serve HTTP. It never
// touches dependencies, so a database outage does not restart the pod.
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": types.HealthStatusUp})
}

// ReadinessCheck takes the instance out of rotation only when a dependency
// is down.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	report := h.checker.CheckHealth(c.Request.Context())
	status := http.StatusOK
	if !report.Ready() {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, report)
}

// DetailedHealth godoc
// @Summary Service health
// @Tags health
// @Produce json
// @Success 200 {object} types.HealthCheck
// @Router /health [get]
func (h *HealthHandler) DetailedHealth(c *gin.Context) {
	c.JSON(http.StatusOK, h.checker.CheckHealth(c.Request.Context()))
}
