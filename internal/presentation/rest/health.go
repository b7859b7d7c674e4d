package rest

import (
	"context"
	"net/http"

	"github.com/lendwise/loanrisk/internal/application/dto"
)

// HealthChecker reports model metadata and store reachability.
type HealthChecker interface {
	Execute(ctx context.Context) dto.HealthResponse
	Ready(ctx context.Context) bool
}

// HealthHandler serves the health report and the liveness and readiness probes.
type HealthHandler struct {
	checker     HealthChecker
	serviceName string
}

// NewHealthHandler creates a health check HTTP handler.
func NewHealthHandler(checker HealthChecker, serviceName string) *HealthHandler {
	return &HealthHandler{checker: checker, serviceName: serviceName}
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.checker.Execute(r.Context()))
}

func (h *HealthHandler) liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": h.serviceName,
	})
}

func (h *HealthHandler) readiness(w http.ResponseWriter, r *http.Request) {
	if !h.checker.Ready(r.Context()) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "not ready",
			"service": h.serviceName,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ready",
		"service": h.serviceName,
	})
}
