package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOverallStatus(t *testing.T) {
	up := HealthComponent{Status: HealthStatusUp}
	degraded := HealthComponent{Status: HealthStatusDegraded}
	down := HealthComponent{Status: HealthStatusDown}

	assert.Equal(t, HealthStatusUp, OverallStatus(nil))
	assert.Equal(t, HealthStatusUp, OverallStatus(map[string]HealthComponent{"a": up, "b": up}))
	assert.Equal(t, HealthStatusDegraded, OverallStatus(map[string]HealthComponent{"a": up, "b": degraded}))
	assert.Equal(t, HealthStatusDown, OverallStatus(map[string]HealthComponent{"a": degraded, "b": down}))
}

func TestHealthCheckReady(t *testing.T) {
	assert.True(t, HealthCheck{Status: HealthStatusDegraded}.Ready())
	assert.False(t, HealthCheck{Status: HealthStatusDown}.Ready())
}
