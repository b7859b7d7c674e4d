package usecase

import (
	"context"
	"time"

	"github.com/lendwise/loanrisk/internal/application/dto"
	"github.com/lendwise/loanrisk/internal/domain/port"
)

// Database status values reported by CheckHealth.
const (
	DatabaseConnected    = "connected"
	DatabaseDisconnected = "disconnected"
	DatabaseDisabled     = "disabled"
)

// CheckHealth reports model metadata and prediction store reachability.
type CheckHealth struct {
	model   port.RiskModel
	repo    port.PredictionRepository
	timeout time.Duration
}

// NewCheckHealth creates a new CheckHealth use case. repo may be nil.
func NewCheckHealth(riskModel port.RiskModel, repo port.PredictionRepository) *CheckHealth {
	return &CheckHealth{
		model:   riskModel,
		repo:    repo,
		timeout: 2 * time.Second,
	}
}

// Execute always reports the service as healthy; an unreachable store shows
// up only in DatabaseStatus.
func (uc *CheckHealth) Execute(ctx context.Context) dto.HealthResponse {
	info := uc.model.Info()
	return dto.HealthResponse{
		Status:         "healthy",
		ModelVersion:   info.Version,
		TrainingDate:   info.TrainingDate,
		DatabaseStatus: uc.DatabaseStatus(ctx),
		Timestamp:      time.Now().UTC(),
	}
}

// Ready reports whether the service can serve traffic: the store, when one
// is configured, must answer a ping.
func (uc *CheckHealth) Ready(ctx context.Context) bool {
	return uc.DatabaseStatus(ctx) != DatabaseDisconnected
}

// DatabaseStatus pings the store.
func (uc *CheckHealth) DatabaseStatus(ctx context.Context) string {
	if uc.repo == nil {
		return DatabaseDisabled
	}
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()
	if err := uc.repo.Ping(ctx); err != nil {
		return DatabaseDisconnected
	}
	return DatabaseConnected
}
