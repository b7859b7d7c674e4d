package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/lendwise/loanrisk/internal/domain/event"
	"github.com/lendwise/loanrisk/internal/domain/model"
	"github.com/lendwise/loanrisk/internal/domain/port"
	"github.com/lendwise/loanrisk/pkg/testutil"
)

// --- Mock implementations ---

type mockRiskModel struct {
	score       float64
	predictFunc func(ctx context.Context, f model.BorrowerFeatures) (float64, error)
}

func (m *mockRiskModel) Predict(ctx context.Context, f model.BorrowerFeatures) (float64, error) {
	if m.predictFunc != nil {
		return m.predictFunc(ctx, f)
	}
	return m.score, nil
}

func (m *mockRiskModel) Info() port.ModelInfo {
	return port.ModelInfo{Version: "1.1", TrainingDate: "2025-12-19", Source: "mock"}
}

type mockPredictionRepository struct {
	saved             []model.Prediction
	saveFunc          func(ctx context.Context, p model.Prediction) error
	recordOutcomeFunc func(ctx context.Context, customerID string, o model.Outcome) (int64, error)
	findFunc          func(ctx context.Context, customerID string, limit int) ([]model.Prediction, error)
	pingFunc          func(ctx context.Context) error
}

func (m *mockPredictionRepository) Save(ctx context.Context, p model.Prediction) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, p)
	}
	m.saved = append(m.saved, p)
	return nil
}

func (m *mockPredictionRepository) RecordOutcome(ctx context.Context, customerID string, o model.Outcome) (int64, error) {
	if m.recordOutcomeFunc != nil {
		return m.recordOutcomeFunc(ctx, customerID, o)
	}
	return 1, nil
}

func (m *mockPredictionRepository) FindByCustomerID(ctx context.Context, customerID string, limit int) ([]model.Prediction, error) {
	if m.findFunc != nil {
		return m.findFunc(ctx, customerID, limit)
	}
	return nil, nil
}

func (m *mockPredictionRepository) Ping(ctx context.Context) error {
	if m.pingFunc != nil {
		return m.pingFunc(ctx)
	}
	return nil
}

type mockEventPublisher struct {
	published   []event.DomainEvent
	publishFunc func(ctx context.Context, events ...event.DomainEvent) error
}

func (m *mockEventPublisher) Publish(ctx context.Context, events ...event.DomainEvent) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, events...)
	}
	m.published = append(m.published, events...)
	return nil
}

type recordedMetric struct {
	name  string
	value float64
}

type mockMonitoringRepository struct {
	recorded  []recordedMetric
	statsFunc func(ctx context.Context, from, to time.Time) (port.PredictionStats, error)
	recordErr error
}

func (m *mockMonitoringRepository) Stats(ctx context.Context, from, to time.Time) (port.PredictionStats, error) {
	if m.statsFunc != nil {
		return m.statsFunc(ctx, from, to)
	}
	return port.PredictionStats{}, nil
}

func (m *mockMonitoringRepository) RecordModelMetrics(_ context.Context, metrics map[string]float64, _, _ time.Time) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	for name, value := range metrics {
		m.recorded = append(m.recorded, recordedMetric{name: name, value: value})
	}
	return nil
}

// --- Fixtures ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func rawFeatures() map[string]any {
	return testutil.BorrowerFeatures()
}
