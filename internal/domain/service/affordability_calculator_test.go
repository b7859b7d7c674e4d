package service_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lendwise/loanrisk/internal/domain/service"
	"github.com/lendwise/loanrisk/internal/domain/valueobject"
)

func TestRecommendLoan_LowRiskHighIncome(t *testing.T) {
	tier := service.ClassifyRiskTier(0.2)
	rec := service.RecommendLoan(0.2, 1_200_000, 20_000, 780)

	assert.Equal(t, "A", tier.Code())
	assert.InDelta(t, 0.24, rec.RiskAdjustedMultiplier(), 1e-12)
	assert.Equal(t, 1.2, rec.CreditAdjustment())
	assert.InDelta(t, 23_000.0, rec.MonthlyPaymentCapacity(), 1e-6)
	// max_from_income = 1_200_000 * 0.24 * 1.2 binds below both the payment
	// bound (~1.22M) and the absolute cap (600K).
	assert.InDelta(t, 345_600.0, rec.RecommendedMaxLoan(), 1e-6)
	assert.False(t, rec.IsDebtCapacityExhausted())
}

func TestRecommendLoan_HighRiskOverLeveraged(t *testing.T) {
	tier := service.ClassifyRiskTier(0.9)
	rec := service.RecommendLoan(0.9, 500_000, 18_000, 580)

	assert.Equal(t, "E", tier.Code())
	assert.True(t, tier.Recommendation().Equal(valueobject.RecommendationDecline))
	assert.Zero(t, rec.RecommendedMaxLoan())
	assert.Zero(t, rec.MonthlyPaymentCapacity())
	assert.True(t, rec.IsDebtCapacityExhausted())
	assert.Equal(t, "Debt-to-income ratio already at maximum", rec.Reason())
	assert.Equal(t, 0.6, rec.CreditAdjustment())
}

func TestCreditAdjustment_Bands(t *testing.T) {
	calc, err := service.NewAffordabilityCalculator(service.DefaultAffordabilityParams())
	require.NoError(t, err)

	tests := []struct {
		score    int
		expected float64
	}{
		{850, 1.2},
		{750, 1.2},
		{749, 1.1},
		{700, 1.1},
		{699, 1.0},
		{650, 1.0},
		{649, 0.8},
		{600, 0.8},
		{599, 0.6},
		{300, 0.6},
		{0, 0.6},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, calc.CreditAdjustment(tt.score), "credit score %d", tt.score)
	}
}

func TestRecommendLoan_PaymentBound(t *testing.T) {
	// monthly income 10_000, DTI ceiling 4_300, existing debt 4_000 -> 300 left.
	rec := service.RecommendLoan(0.1, 120_000, 4_000, 680)

	assert.InDelta(t, 300.0, rec.MonthlyPaymentCapacity(), 1e-9)
	assert.InDelta(t, 300*52.990706, rec.RecommendedMaxLoan(), 0.01)
	assert.InDelta(t, 270.0, rec.EstimatedMonthlyPayment(), 1e-9)
}

func TestAffordabilityCalculator_AnnuityFactor(t *testing.T) {
	calc, err := service.NewAffordabilityCalculator(service.DefaultAffordabilityParams())
	require.NoError(t, err)
	assert.InDelta(t, 52.990706, calc.AnnuityFactor(), 1e-5)

	params := service.DefaultAffordabilityParams()
	params.AnnualInterestRate = 0
	zeroRate, err := service.NewAffordabilityCalculator(params)
	require.NoError(t, err)
	assert.Equal(t, 60.0, zeroRate.AnnuityFactor())
}

func TestAffordabilityCalculator_AbsoluteCap(t *testing.T) {
	params := service.DefaultAffordabilityParams()
	params.BaseMultiplier = 1.0
	calc, err := service.NewAffordabilityCalculator(params)
	require.NoError(t, err)

	rec := calc.Recommend(valueobject.AssessmentInput{
		RiskScore:           0,
		AnnualIncome:        1_000_000,
		ExistingMonthlyDebt: 0,
		CreditScore:         800,
	})

	assert.InDelta(t, 500_000.0, rec.RecommendedMaxLoan(), 1e-6)
}

func TestRecommendLoan_NeverExceedsHalfIncome(t *testing.T) {
	incomes := []float64{0, 1, 12_000, 55_000, 250_000, 1_200_000, 10_000_000}
	for _, income := range incomes {
		for risk := 0.0; risk <= 1.0; risk += 0.05 {
			for _, credit := range []int{300, 600, 650, 700, 750, 850} {
				rec := service.RecommendLoan(risk, income, 0, credit)
				require.GreaterOrEqual(t, rec.RecommendedMaxLoan(), 0.0)
				require.LessOrEqual(t, rec.RecommendedMaxLoan(), income*0.5+1e-9,
					"income=%v risk=%v credit=%d", income, risk, credit)
			}
		}
	}
}

func TestRecommendLoan_NonIncreasingInRisk(t *testing.T) {
	prev := math.Inf(1)
	for risk := 0.0; risk <= 1.0; risk += 0.01 {
		rec := service.RecommendLoan(risk, 90_000, 500, 720)
		require.LessOrEqual(t, rec.RecommendedMaxLoan(), prev, "risk=%v", risk)
		prev = rec.RecommendedMaxLoan()
	}
}

func TestRecommendLoan_NonIncreasingInDebt(t *testing.T) {
	prev := math.Inf(1)
	for debt := 0.0; debt <= 5_000; debt += 50 {
		rec := service.RecommendLoan(0.35, 120_000, debt, 700)
		require.LessOrEqual(t, rec.RecommendedMaxLoan(), prev, "debt=%v", debt)
		prev = rec.RecommendedMaxLoan()
	}
}

func TestRecommendLoan_DebtExhaustion(t *testing.T) {
	tests := []struct {
		name   string
		income float64
		debt   float64
	}{
		{"debt exactly at ceiling", 120_000, 4_300},
		{"debt above ceiling", 120_000, 9_000},
		{"zero income", 0, 0},
		{"negative income", -50_000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := service.RecommendLoan(0.2, tt.income, tt.debt, 760)
			assert.Zero(t, rec.RecommendedMaxLoan())
			assert.Zero(t, rec.MonthlyPaymentCapacity())
			assert.True(t, rec.IsDebtCapacityExhausted())
		})
	}
}

func TestRecommendLoan_OutOfRangeRiskFloorsLoanAtZero(t *testing.T) {
	rec := service.RecommendLoan(1.7, 100_000, 0, 700)
	assert.Zero(t, rec.RecommendedMaxLoan())
	assert.Less(t, rec.RiskAdjustedMultiplier(), 0.0)
}

func TestAffordabilityParams_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *service.AffordabilityParams)
	}{
		{"zero base multiplier", func(p *service.AffordabilityParams) { p.BaseMultiplier = 0 }},
		{"DTI above one", func(p *service.AffordabilityParams) { p.MaxDTIRatio = 1.5 }},
		{"negative rate", func(p *service.AffordabilityParams) { p.AnnualInterestRate = -0.01 }},
		{"zero term", func(p *service.AffordabilityParams) { p.TermMonths = 0 }},
		{"zero cap", func(p *service.AffordabilityParams) { p.IncomeCapRatio = 0 }},
		{"negative floor", func(p *service.AffordabilityParams) { p.FloorCreditAdjustment = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := service.DefaultAffordabilityParams()
			tt.mutate(&params)
			_, err := service.NewAffordabilityCalculator(params)
			require.Error(t, err)
		})
	}

	require.NoError(t, service.DefaultAffordabilityParams().Validate())
}

func TestNewAffordabilityCalculator_SortsCreditBands(t *testing.T) {
	params := service.DefaultAffordabilityParams()
	params.CreditBands = []service.CreditBand{
		{MinScore: 600, Adjustment: 0.8},
		{MinScore: 750, Adjustment: 1.2},
	}
	calc, err := service.NewAffordabilityCalculator(params)
	require.NoError(t, err)

	assert.Equal(t, 1.2, calc.CreditAdjustment(800))
	assert.Equal(t, 0.8, calc.CreditAdjustment(700))
	assert.Equal(t, 0.6, calc.CreditAdjustment(500))
}

func TestValidateAssessmentInput(t *testing.T) {
	valid := valueobject.AssessmentInput{RiskScore: 0.4, AnnualIncome: 80_000, ExistingMonthlyDebt: 900, CreditScore: 710}
	require.NoError(t, service.ValidateAssessmentInput(valid))

	tests := []struct {
		name   string
		mutate func(in *valueobject.AssessmentInput)
		field  string
	}{
		{"negative risk", func(in *valueobject.AssessmentInput) { in.RiskScore = -0.1 }, "risk_score"},
		{"risk above one", func(in *valueobject.AssessmentInput) { in.RiskScore = 1.01 }, "risk_score"},
		{"NaN risk", func(in *valueobject.AssessmentInput) { in.RiskScore = math.NaN() }, "risk_score"},
		{"negative income", func(in *valueobject.AssessmentInput) { in.AnnualIncome = -1 }, "annual_income"},
		{"infinite income", func(in *valueobject.AssessmentInput) { in.AnnualIncome = math.Inf(1) }, "annual_income"},
		{"negative debt", func(in *valueobject.AssessmentInput) { in.ExistingMonthlyDebt = -5 }, "existing_monthly_debt"},
		{"credit too low", func(in *valueobject.AssessmentInput) { in.CreditScore = 299 }, "credit_score"},
		{"credit too high", func(in *valueobject.AssessmentInput) { in.CreditScore = 851 }, "credit_score"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			err := service.ValidateAssessmentInput(in)
			require.Error(t, err)
			assert.ErrorIs(t, err, valueobject.ErrInvalidInput)

			var inputErr *valueobject.InvalidInputError
			require.True(t, errors.As(err, &inputErr))
			assert.Equal(t, tt.field, inputErr.Field)
		})
	}
}
