package types

type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "UP"
	HealthStatusDown     HealthStatus = "DOWN"
	HealthStatusDegraded HealthStatus = "DEGRADED"
)

// Component names reported by the health service.
const (
	HealthComponentDatabase   = "database"
	HealthComponentRedis      = "redis"
	HealthComponentWorkerPool = "workerPool"
)

type HealthComponent struct {
	Status  HealthStatus `json:"status"`
	Details string       `json:"details,omitempty"`
}

// HealthCheck is the body of /health and /health/readiness.
type HealthCheck struct {
	Status     HealthStatus               `json:"status"`
	Components map[string]HealthComponent `json:"components"`
	Version    string                     `json:"version"`
	Timestamp  string                     `json:"timestamp"`
	Uptime     string                     `json:"uptime"`
}

// Ready reports whether the instance should receive traffic. Degraded
// dependencies keep it in rotation.
func (h HealthCheck) Ready() bool {
	return h.Status != HealthStatusDown
}

// OverallStatus is the worst status among components: any DOWN wins, then
// any DEGRADED.
func OverallStatus(components map[string]HealthComponent) HealthStatus {
	overall := HealthStatusUp
	for _, c := range components {
		switch c.Status {
		case HealthStatusDown:
			return HealthStatusDown
		case HealthStatusDegraded:
			overall = HealthStatusDegraded
		}
	}
	return overall
}
