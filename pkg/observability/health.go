package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// HealthStatus represents the health status of the service
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// Pinger is satisfied by *pgxpool.Pool
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck reports "" when healthy or a reason when not
type HealthCheck func(ctx context.Context) string

// HealthChecker manages health checks for the service
type HealthChecker struct {
	db     Pinger
	checks map[string]HealthCheck
}

// NewHealthChecker creates a new HealthChecker. db may be nil when no
// session store is configured.
func NewHealthChecker(db Pinger) *HealthChecker {
	return &HealthChecker{
		db:     db,
		checks: make(map[string]HealthCheck),
	}
}

// AddCheck registers a named check, e.g. the gateway circuit breaker
func (h *HealthChecker) AddCheck(name string, check HealthCheck) {
	h.checks[name] = check
}

// Check performs health checks and returns the status
func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	checks := make(map[string]string)
	overallStatus := "healthy"

	if h.db != nil {
		dbCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		if err := h.db.Ping(dbCtx); err != nil {
			checks["database"] = "unhealthy: " + err.Error()
			overallStatus = "unhealthy"
		} else {
			checks["database"] = "healthy"
		}
	} else {
		checks["database"] = "not configured"
	}

	for name, check := range h.checks {
		if reason := check(ctx); reason != "" {
			checks[name] = "unhealthy: " + reason
			overallStatus = "unhealthy"
		} else {
			checks[name] = "healthy"
		}
	}

	return HealthStatus{
		Status:    overallStatus,
		Timestamp: time.Now(),
		Checks:    checks,
	}
}

// HealthHandler returns an HTTP handler for health checks
func (h *HealthChecker) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := h.Check(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if status.Status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		json.NewEncoder(w).Encode(status)
	}
}
