package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/lendwise/loanrisk/internal/domain/model"
	"github.com/lendwise/loanrisk/internal/domain/port"
	"github.com/lendwise/loanrisk/internal/infrastructure/persistence"
)

const predictionColumns = `
  id, customer_id, timestamp, input_features, risk_score,
  recommended_loan, approval_decision, tier_code, model_version,
  actual_loan_approved, actual_loan_amount, actual_default,
  days_to_default, outcome_notes, outcome_timestamp`

// Repo implements port.PredictionRepository and port.MonitoringRepository
// on SQLite. Timestamps are stored as Unix nanoseconds and amounts as text.
type Repo struct {
	db  *sql.DB
	now func() time.Time
}

// NewRepo creates a new SQLite-backed repository.
func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Save inserts a prediction. Saving the same prediction twice is a no-op.
func (r *Repo) Save(ctx context.Context, p model.Prediction) error {
	rec, err := persistence.NewPredictionRecord(p)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO predictions (
		  id, customer_id, timestamp, input_features, risk_score,
		  recommended_loan, approval_decision, tier_code, model_version, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.CustomerID,
		rec.Timestamp.UnixNano(),
		string(rec.InputFeatures),
		rec.RiskScore,
		rec.RecommendedLoan.String(),
		rec.ApprovalDecision,
		rec.TierCode,
		rec.ModelVersion,
		r.now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to save prediction: %w", err)
	}
	return nil
}

// RecordOutcome updates the most recent prediction of customerID.
func (r *Repo) RecordOutcome(ctx context.Context, customerID string, outcome model.Outcome) (int64, error) {
	var rec persistence.PredictionRecord
	rec.ApplyOutcome(outcome)

	var amount any
	if rec.ActualLoanAmount.Valid {
		amount = rec.ActualLoanAmount.Decimal.String()
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE predictions
		SET actual_loan_approved = ?,
		    actual_loan_amount = ?,
		    actual_default = ?,
		    days_to_default = ?,
		    outcome_notes = ?,
		    outcome_timestamp = ?
		WHERE id = (
		  SELECT id FROM predictions
		  WHERE customer_id = ?
		  ORDER BY timestamp DESC
		  LIMIT 1
		)`,
		rec.ActualLoanApproved,
		amount,
		rec.ActualDefault,
		rec.DaysToDefault,
		rec.OutcomeNotes,
		rec.OutcomeTimestamp.UnixNano(),
		customerID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to record outcome: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return rows, nil
}

// FindByCustomerID returns up to limit predictions, most recent first.
func (r *Repo) FindByCustomerID(ctx context.Context, customerID string, limit int) ([]model.Prediction, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+predictionColumns+`
		FROM predictions
		WHERE customer_id = ?
		ORDER BY timestamp DESC
		LIMIT ?`, customerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var predictions []model.Prediction
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, err
		}
		predictions = append(predictions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate predictions: %w", err)
	}
	return predictions, nil
}

// Ping reports whether the database is reachable.
func (r *Repo) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: health check: %w", err)
	}
	return nil
}

// Stats aggregates predictions with timestamps in [from, to).
func (r *Repo) Stats(ctx context.Context, from, to time.Time) (port.PredictionStats, error) {
	var s port.PredictionStats
	err := r.db.QueryRowContext(ctx, `
		SELECT
		  COUNT(*),
		  COALESCE(SUM(CASE WHEN approval_decision IN ('AUTO_APPROVE', 'APPROVE') THEN 1 ELSE 0 END), 0),
		  COALESCE(SUM(CASE WHEN outcome_timestamp IS NOT NULL THEN 1 ELSE 0 END), 0),
		  COALESCE(SUM(CASE WHEN actual_default = 1 THEN 1 ELSE 0 END), 0),
		  COALESCE(AVG(risk_score), 0),
		  COALESCE(AVG(CAST(recommended_loan AS REAL)), 0)
		FROM predictions
		WHERE timestamp >= ? AND timestamp < ?`,
		from.UnixNano(), to.UnixNano(),
	).Scan(&s.Predictions, &s.Approvals, &s.Outcomes, &s.Defaults, &s.MeanRiskScore, &s.MeanLoanAmount)
	if err != nil {
		return port.PredictionStats{}, fmt.Errorf("failed to aggregate predictions: %w", err)
	}
	return s, nil
}

// RecordModelMetrics inserts all metrics in one transaction.
func (r *Repo) RecordModelMetrics(ctx context.Context, metrics map[string]float64, periodStart, periodEnd time.Time) error {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := r.now().UnixNano()
	for _, name := range names {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO model_metrics (timestamp, metric_name, metric_value, period_start, period_end, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			now, name, metrics[name], periodStart.UnixNano(), periodEnd.UnixNano(), now,
		)
		if err != nil {
			return fmt.Errorf("failed to save metric %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit tx: %w", err)
	}
	return nil
}

func scanPrediction(rows *sql.Rows) (model.Prediction, error) {
	var (
		rec              persistence.PredictionRecord
		timestamp        int64
		features         string
		recommendedLoan  string
		outcomeTimestamp sql.NullInt64
	)
	err := rows.Scan(
		&rec.ID, &rec.CustomerID, &timestamp, &features, &rec.RiskScore,
		&recommendedLoan, &rec.ApprovalDecision, &rec.TierCode, &rec.ModelVersion,
		&rec.ActualLoanApproved, &rec.ActualLoanAmount, &rec.ActualDefault,
		&rec.DaysToDefault, &rec.OutcomeNotes, &outcomeTimestamp,
	)
	if err != nil {
		return model.Prediction{}, fmt.Errorf("failed to scan prediction: %w", err)
	}

	if err := rec.RecommendedLoan.UnmarshalText([]byte(recommendedLoan)); err != nil {
		return model.Prediction{}, fmt.Errorf("failed to parse recommended loan of %s: %w", rec.ID, err)
	}
	rec.Timestamp = time.Unix(0, timestamp).UTC()
	rec.InputFeatures = []byte(features)
	if outcomeTimestamp.Valid {
		t := time.Unix(0, outcomeTimestamp.Int64).UTC()
		rec.OutcomeTimestamp = &t
	}
	return rec.Prediction()
}
