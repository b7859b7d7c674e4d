//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lendwise/loanrisk/internal/domain/model"
	"github.com/lendwise/loanrisk/internal/domain/service"
	"github.com/lendwise/loanrisk/internal/infrastructure/persistence/postgres"
	"github.com/lendwise/loanrisk/pkg/testutil"
)

func newPrediction(t *testing.T, customerID string, score float64, at time.Time) model.Prediction {
	t.Helper()
	features, err := model.ParseBorrowerFeatures(testutil.BorrowerFeatures())
	require.NoError(t, err)
	input := features.AssessmentInput(score)
	p, err := model.NewPrediction(customerID, features, score,
		service.ClassifyRiskTier(score),
		service.RecommendLoan(input.RiskScore, input.AnnualIncome, input.ExistingMonthlyDebt, input.CreditScore),
		"1.1", at)
	require.NoError(t, err)
	return p
}

func TestRepositories(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	pc.Migrate(t, "migrations")

	predictions := postgres.NewPredictionRepo(pc.Pool)
	monitoring := postgres.NewMonitoringRepo(pc.Pool)
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	t.Run("save and list most recent first", func(t *testing.T) {
		pc.Truncate(t, "predictions")

		older := newPrediction(t, testutil.TestCustomerID1, 0.2, base)
		newer := newPrediction(t, testutil.TestCustomerID1, 0.6, base.Add(time.Hour))
		other := newPrediction(t, testutil.TestCustomerID2, 0.9, base)
		for _, p := range []model.Prediction{older, newer, other} {
			require.NoError(t, predictions.Save(ctx, p))
		}
		// Saving twice is idempotent.
		require.NoError(t, predictions.Save(ctx, older))

		got, err := predictions.FindByCustomerID(ctx, testutil.TestCustomerID1, 10)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, newer.ID(), got[0].ID())
		assert.Equal(t, older.ID(), got[1].ID())
		assert.Equal(t, "C", got[0].TierCode())
		assert.True(t, newer.RecommendedLoan().Equal(got[0].RecommendedLoan()))
		assert.Equal(t, newer.Features(), got[0].Features())

		limited, err := predictions.FindByCustomerID(ctx, testutil.TestCustomerID1, 1)
		require.NoError(t, err)
		assert.Len(t, limited, 1)
	})

	t.Run("outcome updates only the latest prediction", func(t *testing.T) {
		pc.Truncate(t, "predictions")

		older := newPrediction(t, testutil.TestCustomerID1, 0.2, base)
		newer := newPrediction(t, testutil.TestCustomerID1, 0.3, base.Add(time.Minute))
		require.NoError(t, predictions.Save(ctx, older))
		require.NoError(t, predictions.Save(ctx, newer))

		approved, defaulted := true, false
		amount := decimal.NewFromInt(25000)
		outcome, err := model.NewOutcome(&approved, &amount, &defaulted, nil, "Loan fully repaid", base.Add(24*time.Hour))
		require.NoError(t, err)

		rows, err := predictions.RecordOutcome(ctx, testutil.TestCustomerID1, outcome)
		require.NoError(t, err)
		assert.Equal(t, int64(1), rows)

		got, err := predictions.FindByCustomerID(ctx, testutil.TestCustomerID1, 10)
		require.NoError(t, err)
		require.Len(t, got, 2)
		require.True(t, got[0].HasOutcome())
		assert.True(t, got[0].Outcome().LoanAmount().Equal(amount))
		assert.Equal(t, "Loan fully repaid", got[0].Outcome().Notes())
		assert.False(t, got[1].HasOutcome())
	})

	t.Run("outcome for unknown customer updates nothing", func(t *testing.T) {
		pc.Truncate(t, "predictions")

		outcome, err := model.NewOutcome(nil, nil, nil, nil, "", base)
		require.NoError(t, err)

		rows, err := predictions.RecordOutcome(ctx, "NOBODY", outcome)
		require.NoError(t, err)
		assert.Zero(t, rows)
	})

	t.Run("stats and model metrics", func(t *testing.T) {
		pc.Truncate(t, "predictions", "model_metrics")

		require.NoError(t, predictions.Save(ctx, newPrediction(t, testutil.TestCustomerID1, 0.1, base)))
		require.NoError(t, predictions.Save(ctx, newPrediction(t, testutil.TestCustomerID2, 0.9, base.Add(time.Hour))))
		// Outside the window.
		require.NoError(t, predictions.Save(ctx, newPrediction(t, testutil.TestCustomerID2, 0.5, base.Add(48*time.Hour))))

		defaulted := true
		outcome, err := model.NewOutcome(nil, nil, &defaulted, nil, "", base.Add(2*time.Hour))
		require.NoError(t, err)
		_, err = predictions.RecordOutcome(ctx, testutil.TestCustomerID1, outcome)
		require.NoError(t, err)

		stats, err := monitoring.Stats(ctx, base, base.Add(24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(2), stats.Predictions)
		assert.Equal(t, int64(1), stats.Approvals)
		assert.Equal(t, int64(1), stats.Outcomes)
		assert.Equal(t, int64(1), stats.Defaults)
		assert.InDelta(t, 0.5, stats.MeanRiskScore, 1e-9)

		err = monitoring.RecordModelMetrics(ctx, map[string]float64{"approval_rate": 0.5, "prediction_count": 2}, base, base.Add(24*time.Hour))
		require.NoError(t, err)

		var count int
		require.NoError(t, pc.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM model_metrics`).Scan(&count))
		assert.Equal(t, 2, count)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, predictions.Ping(ctx))
	})
}
