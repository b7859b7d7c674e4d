package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lendwise/loanrisk/internal/application/dto"
	"github.com/lendwise/loanrisk/internal/domain/port"
	"github.com/lendwise/loanrisk/internal/domain/valueobject"
)

// Model metric names stored in model_metrics.
const (
	MetricPredictionCount = "prediction_count"
	MetricApprovalRate    = "approval_rate"
	MetricMeanRiskScore   = "mean_risk_score"
	MetricMeanLoanAmount  = "mean_recommended_loan"
	MetricOutcomeCoverage = "outcome_coverage"
	MetricObservedDefault = "observed_default_rate"
)

// ComputeModelMetrics aggregates predictions in a reporting window and stores
// the resulting monitoring metrics.
type ComputeModelMetrics struct {
	repo   port.MonitoringRepository
	logger *slog.Logger
}

// NewComputeModelMetrics creates a new ComputeModelMetrics use case.
func NewComputeModelMetrics(repo port.MonitoringRepository, logger *slog.Logger) *ComputeModelMetrics {
	return &ComputeModelMetrics{repo: repo, logger: logger}
}

// Execute computes metrics for [From, To). A zero window defaults to the
// last 24 hours.
func (uc *ComputeModelMetrics) Execute(ctx context.Context, req dto.ModelMetricsRequest) (dto.ModelMetricsResponse, error) {
	if uc.repo == nil {
		return dto.ModelMetricsResponse{}, fmt.Errorf("failed to compute model metrics: %w", valueobject.ErrStoreUnavailable)
	}

	to := req.To
	if to.IsZero() {
		to = time.Now().UTC()
	}
	from := req.From
	if from.IsZero() {
		from = to.Add(-24 * time.Hour)
	}
	if !from.Before(to) {
		return dto.ModelMetricsResponse{}, valueobject.NewInvalidInputError("period_start", "must be before period_end")
	}

	stats, err := uc.repo.Stats(ctx, from, to)
	if err != nil {
		return dto.ModelMetricsResponse{}, fmt.Errorf("failed to aggregate predictions: %w", err)
	}

	metrics := modelMetrics(stats)
	if err := uc.repo.RecordModelMetrics(ctx, metrics, from, to); err != nil {
		return dto.ModelMetricsResponse{}, fmt.Errorf("failed to store metrics: %w", err)
	}

	uc.logger.Info("model metrics computed",
		"period_start", from,
		"period_end", to,
		"predictions", stats.Predictions,
	)
	return dto.ModelMetricsResponse{From: from, To: to, Metrics: metrics}, nil
}

func modelMetrics(s port.PredictionStats) map[string]float64 {
	m := map[string]float64{
		MetricPredictionCount: float64(s.Predictions),
		MetricMeanRiskScore:   s.MeanRiskScore,
		MetricMeanLoanAmount:  s.MeanLoanAmount,
	}
	if s.Predictions > 0 {
		m[MetricApprovalRate] = float64(s.Approvals) / float64(s.Predictions)
		m[MetricOutcomeCoverage] = float64(s.Outcomes) / float64(s.Predictions)
	}
	if s.Outcomes > 0 {
		m[MetricObservedDefault] = float64(s.Defaults) / float64(s.Outcomes)
	}
	return m
}
