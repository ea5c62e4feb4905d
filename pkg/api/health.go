package api

import (
	"context"
	"net/http"
	"time"
)

// Health statuses.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthCheck probes one dependency. A failing Required check makes the
// service unready; others only degrade it.
type HealthCheck struct {
	Name     string
	Required bool
	Check    func(ctx context.Context) error
}

// HealthStatus is the readiness report.
type HealthStatus struct {
	Status       string            `json:"status"`
	Timestamp    time.Time         `json:"timestamp"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// liveness reports that the process is serving.
// @Summary Liveness probe
// @Produce json
// @Success 200 {object} HealthStatus
// @Router /healthz [get]
func (s *Server) liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthStatus{Status: StatusHealthy, Timestamp: time.Now().UTC()})
}

// readiness runs every dependency check.
// @Summary Readiness probe
// @Produce json
// @Success 200 {object} HealthStatus
// @Failure 503 {object} HealthStatus
// @Router /readyz [get]
func (s *Server) readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := HealthStatus{
		Status:       StatusHealthy,
		Timestamp:    time.Now().UTC(),
		Dependencies: make(map[string]string, len(s.checks)),
	}

	for _, c := range s.checks {
		if err := c.Check(ctx); err != nil {
			s.log.Warn(ctx, "health check failed", "dependency", c.Name, "error", err)
			status.Dependencies[c.Name] = err.Error()
			if c.Required {
				status.Status = StatusUnhealthy
			} else if status.Status != StatusUnhealthy {
				status.Status = StatusDegraded
			}
			continue
		}
		status.Dependencies[c.Name] = StatusHealthy
	}

	code := http.StatusOK
	if status.Status == StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}
