package postgres

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lendwise/loanrisk/internal/domain/port"
	pkgpostgres "github.com/lendwise/loanrisk/pkg/postgres"
)

// MonitoringRepo implements port.MonitoringRepository using PostgreSQL.
type MonitoringRepo struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewMonitoringRepo creates a new PostgreSQL-backed monitoring repository.
func NewMonitoringRepo(pool *pgxpool.Pool) *MonitoringRepo {
	return &MonitoringRepo{pool: pool, now: func() time.Time { return time.Now().UTC() }}
}

// Stats aggregates predictions with timestamps in [from, to).
func (r *MonitoringRepo) Stats(ctx context.Context, from, to time.Time) (port.PredictionStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE approval_decision IN ('AUTO_APPROVE', 'APPROVE')),
			COUNT(*) FILTER (WHERE outcome_timestamp IS NOT NULL),
			COUNT(*) FILTER (WHERE actual_default),
			COALESCE(AVG(risk_score), 0),
			COALESCE(AVG(recommended_loan), 0)::DOUBLE PRECISION
		FROM predictions
		WHERE timestamp >= $1 AND timestamp < $2
	`

	var s port.PredictionStats
	err := r.pool.QueryRow(ctx, query, from, to).Scan(
		&s.Predictions, &s.Approvals, &s.Outcomes, &s.Defaults,
		&s.MeanRiskScore, &s.MeanLoanAmount,
	)
	if err != nil {
		return port.PredictionStats{}, fmt.Errorf("failed to aggregate predictions: %w", err)
	}
	return s, nil
}

// RecordModelMetrics inserts all metrics in one transaction.
func (r *MonitoringRepo) RecordModelMetrics(ctx context.Context, metrics map[string]float64, periodStart, periodEnd time.Time) error {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	recordedAt := r.now()
	return pkgpostgres.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		for _, name := range names {
			_, err := tx.Exec(ctx,
				`INSERT INTO model_metrics (timestamp, metric_name, metric_value, period_start, period_end)
				 VALUES ($1, $2, $3, $4, $5)`,
				recordedAt, name, metrics[name], periodStart, periodEnd,
			)
			if err != nil {
				return fmt.Errorf("failed to save metric %s: %w", name, err)
			}
		}
		return nil
	})
}
