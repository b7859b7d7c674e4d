package ml

import (
	"context"
	"log/slog"
	"math"

	"github.com/lendwise/loanrisk/internal/domain/model"
	"github.com/lendwise/loanrisk/internal/domain/port"
)

// HeuristicModel implements port.RiskModel with a fixed logistic scorecard.
// It is used for development and demos when no model server is configured.
type HeuristicModel struct {
	logger *slog.Logger
	info   port.ModelInfo
}

// NewHeuristicModel creates the built-in scorer.
func NewHeuristicModel(version, trainingDate string, logger *slog.Logger) *HeuristicModel {
	return &HeuristicModel{
		logger: logger,
		info: port.ModelInfo{
			Version:      version,
			TrainingDate: trainingDate,
			Source:       "heuristic",
		},
	}
}

// Predict returns a probability of default in (0, 1). Higher credit scores,
// payment history and tenure lower it; prior defaults, bankruptcy, inquiries
// and debt-to-income raise it.
func (m *HeuristicModel) Predict(ctx context.Context, f model.BorrowerFeatures) (float64, error) {
	z := -0.4
	z -= (f.CreditScore - 650) / 60
	z -= 1.5 * (f.PaymentHistory - 0.5)
	z -= 0.05 * math.Min(f.JobTenure, 20)
	z += 0.9 * f.PreviousLoanDefaults
	z += 1.2 * f.BankruptcyHistory
	z += 0.15 * f.NumberOfCreditInquiries
	z += 2.5 * (f.TotalDebtToIncomeRatio - 0.35)

	score := 1 / (1 + math.Exp(-z))

	m.logger.DebugContext(ctx, "heuristic model prediction",
		slog.Float64("logit", z),
		slog.Float64("risk_score", score),
	)
	return score, nil
}

// Info returns the model metadata.
func (m *HeuristicModel) Info() port.ModelInfo {
	return m.info
}
