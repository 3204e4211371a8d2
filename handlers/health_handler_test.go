package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/formcraft/formcraft-backend/types"
	"github.com/stretchr/testify/assert"
)

type staticHealth types.HealthStatus

func (s staticHealth) CheckHealth(context.Context) types.HealthCheck {
	return types.HealthCheck{Status: types.HealthStatus(s), Components: map[string]types.HealthComponent{}}
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		status        types.HealthStatus
		wantReadiness int
	}{
		{types.HealthStatusUp, http.StatusOK},
		{types.HealthStatusDegraded, http.StatusOK},
		{types.HealthStatusDown, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			h := NewHealthHandler(staticHealth(tt.status))

			w := httptest.NewRecorder()
			buildRouter(http.MethodGet, "/health/readiness", h.ReadinessCheck, "").
				ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/readiness", nil))
			assert.Equal(t, tt.wantReadiness, w.Code)

			w = httptest.NewRecorder()
			buildRouter(http.MethodGet, "/health", h.DetailedHealth, "").
				ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, http.StatusOK, w.Code)

			w = httptest.NewRecorder()
			buildRouter(http.MethodGet, "/health/liveness", h.LivenessCheck, "").
				ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/liveness", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestFormDefinitionSchemaHandler(t *testing.T) {
	w := httptest.NewRecorder()
	buildRouter(http.MethodGet, "/api/schema/form-definition", FormDefinitionSchemaHandler, testUserID).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/schema/form-definition", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Form definition", body["title"])
	assert.Contains(t, body["properties"], "fields")
}
