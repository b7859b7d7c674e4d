package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lendwise/loanrisk/internal/domain/model"
	"github.com/lendwise/loanrisk/internal/infrastructure/persistence"
	pkgpostgres "github.com/lendwise/loanrisk/pkg/postgres"
)

const predictionColumns = `
	id, customer_id, timestamp, input_features, risk_score,
	recommended_loan, approval_decision, tier_code, model_version,
	actual_loan_approved, actual_loan_amount, actual_default,
	days_to_default, outcome_notes, outcome_timestamp`

// PredictionRepo implements port.PredictionRepository using PostgreSQL.
type PredictionRepo struct {
	pool *pgxpool.Pool
}

// NewPredictionRepo creates a new PostgreSQL-backed prediction repository.
func NewPredictionRepo(pool *pgxpool.Pool) *PredictionRepo {
	return &PredictionRepo{pool: pool}
}

// Save inserts a prediction. Saving the same prediction twice is a no-op.
func (r *PredictionRepo) Save(ctx context.Context, p model.Prediction) error {
	rec, err := persistence.NewPredictionRecord(p)
	if err != nil {
		return err
	}
	return insertPrediction(ctx, r.pool, rec)
}

func insertPrediction(ctx context.Context, q pkgpostgres.Querier, rec persistence.PredictionRecord) error {
	query := `
		INSERT INTO predictions (
			id, customer_id, timestamp, input_features, risk_score,
			recommended_loan, approval_decision, tier_code, model_version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := q.Exec(ctx, query,
		rec.ID,
		rec.CustomerID,
		rec.Timestamp,
		rec.InputFeatures,
		rec.RiskScore,
		rec.RecommendedLoan,
		rec.ApprovalDecision,
		rec.TierCode,
		rec.ModelVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to save prediction: %w", err)
	}
	return nil
}

// RecordOutcome updates the most recent prediction of customerID.
func (r *PredictionRepo) RecordOutcome(ctx context.Context, customerID string, outcome model.Outcome) (int64, error) {
	var rec persistence.PredictionRecord
	rec.ApplyOutcome(outcome)

	query := `
		UPDATE predictions
		SET actual_loan_approved = $1,
			actual_loan_amount = $2,
			actual_default = $3,
			days_to_default = $4,
			outcome_notes = $5,
			outcome_timestamp = $6
		WHERE id = (
			SELECT id FROM predictions
			WHERE customer_id = $7
			ORDER BY timestamp DESC
			LIMIT 1
		)
	`

	tag, err := r.pool.Exec(ctx, query,
		rec.ActualLoanApproved,
		rec.ActualLoanAmount,
		rec.ActualDefault,
		rec.DaysToDefault,
		rec.OutcomeNotes,
		rec.OutcomeTimestamp,
		customerID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to record outcome: %w", err)
	}
	return tag.RowsAffected(), nil
}

// FindByCustomerID returns up to limit predictions, most recent first.
func (r *PredictionRepo) FindByCustomerID(ctx context.Context, customerID string, limit int) ([]model.Prediction, error) {
	query := `SELECT ` + predictionColumns + `
		FROM predictions
		WHERE customer_id = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, customerID, limit)
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
func (r *PredictionRepo) Ping(ctx context.Context) error {
	return pkgpostgres.HealthCheck(ctx, r.pool)
}

func scanPrediction(row pgx.Row) (model.Prediction, error) {
	var rec persistence.PredictionRecord
	err := row.Scan(
		&rec.ID, &rec.CustomerID, &rec.Timestamp, &rec.InputFeatures, &rec.RiskScore,
		&rec.RecommendedLoan, &rec.ApprovalDecision, &rec.TierCode, &rec.ModelVersion,
		&rec.ActualLoanApproved, &rec.ActualLoanAmount, &rec.ActualDefault,
		&rec.DaysToDefault, &rec.OutcomeNotes, &rec.OutcomeTimestamp,
	)
	if err != nil {
		return model.Prediction{}, fmt.Errorf("failed to scan prediction: %w", err)
	}
	return rec.Prediction()
}
