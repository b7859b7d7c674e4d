package port

import (
	"context"
	"time"

	"github.com/lendwise/loanrisk/internal/domain/event"
	"github.com/lendwise/loanrisk/internal/domain/model"
)

// ModelInfo describes the deployed risk model.
type ModelInfo struct {
	Version      string
	TrainingDate string
	Source       string
}

// RiskModel is the opaque scoring model. Implementations must be safe for
// concurrent use.
type RiskModel interface {
	// Predict returns the probability of default for the borrower.
	Predict(ctx context.Context, features model.BorrowerFeatures) (float64, error)

	// Info returns the model metadata reported alongside predictions.
	Info() ModelInfo
}

// PredictionRepository defines the persistence port for predictions and
// their observed outcomes.
type PredictionRepository interface {
	// Save persists a new prediction.
	Save(ctx context.Context, prediction model.Prediction) error

	// RecordOutcome attaches outcome to the most recent prediction of
	// customerID and returns the number of rows updated (0 or 1).
	RecordOutcome(ctx context.Context, customerID string, outcome model.Outcome) (int64, error)

	// FindByCustomerID returns up to limit predictions, most recent first.
	FindByCustomerID(ctx context.Context, customerID string, limit int) ([]model.Prediction, error)

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
}

// PredictionStats aggregates predictions made within a period.
type PredictionStats struct {
	Predictions    int64
	Approvals      int64
	Outcomes       int64
	Defaults       int64
	MeanRiskScore  float64
	MeanLoanAmount float64
}

// MonitoringRepository computes and stores model-monitoring measurements.
type MonitoringRepository interface {
	// Stats aggregates predictions with timestamps in [from, to).
	Stats(ctx context.Context, from, to time.Time) (PredictionStats, error)

	// RecordModelMetrics stores named measurements for a reporting period.
	// Either all metrics are stored or none are.
	RecordModelMetrics(ctx context.Context, metrics map[string]float64, periodStart, periodEnd time.Time) error
}

// EventPublisher defines the port for publishing domain events.
type EventPublisher interface {
	// Publish sends one or more domain events to the messaging infrastructure.
	Publish(ctx context.Context, events ...event.DomainEvent) error
}
