package model_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lendwise/loanrisk/internal/domain/event"
	"github.com/lendwise/loanrisk/internal/domain/model"
	"github.com/lendwise/loanrisk/internal/domain/service"
	"github.com/lendwise/loanrisk/internal/domain/valueobject"
)

func sampleRawFeatures() map[string]any {
	return map[string]any{
		"Age":                        35.0,
		"Experience":                 12.0,
		"JobTenure":                  5.0,
		"CreditScore":                780.0,
		"PaymentHistory":             0.95,
		"LengthOfCreditHistory":      14.0,
		"NumberOfOpenCreditLines":    3.0,
		"NumberOfCreditInquiries":    1.0,
		"PreviousLoanDefaults":       0.0,
		"BankruptcyHistory":          0.0,
		"UtilityBillsPaymentHistory": 0.9,
		"LoanDuration":               60.0,
		"BaseInterestRate":           0.05,
		"InterestRate":               0.06,
		"TotalDebtToIncomeRatio":     0.2,
		"MonthlyIncome_log":          math.Log(100_000),
		"AnnualIncome_log":           math.Log(1_200_000),
		"SavingsAccountBalance_log":  math.Log(50_000),
		"CheckingAccountBalance_log": math.Log(8_000),
		"NetWorth_log":               math.Log(400_000),
		"TotalAssets_log":            math.Log(600_000),
		"TotalLiabilities_log":       math.Log(200_000),
		"MonthlyLoanPayment_log":     math.Log(1_500),
		"LoanAmount_log":             math.Log(80_000),
		"MonthlyDebtPayments_log":    math.Log(20_000),
		"EmploymentStatus":           "Employed",
		"EducationLevel":             "Master",
		"MaritalStatus":              "Married",
		"HomeOwnershipStatus":        "Mortgage",
		"LoanPurpose":                "Home",
	}
}

func TestFeatureNames(t *testing.T) {
	names := model.FeatureNames()
	require.Len(t, names, 30)
	assert.Equal(t, "Age", names[0])
	assert.Equal(t, "MonthlyDebtPayments_log", names[24])
	assert.Equal(t, "LoanPurpose", names[29])

	assert.True(t, model.IsNumericFeature("CreditScore"))
	assert.False(t, model.IsNumericFeature("LoanPurpose"))
	assert.False(t, model.IsNumericFeature("Unknown"))
}

func TestParseBorrowerFeatures(t *testing.T) {
	t.Run("complete input", func(t *testing.T) {
		f, err := model.ParseBorrowerFeatures(sampleRawFeatures())
		require.NoError(t, err)

		assert.Equal(t, 780.0, f.CreditScore)
		assert.Equal(t, 780, f.CreditScoreValue())
		assert.InDelta(t, 1_200_000.0, f.AnnualIncome(), 1e-6)
		assert.InDelta(t, 20_000.0, f.MonthlyDebt(), 1e-6)
		assert.Equal(t, "Employed", f.EmploymentStatus)
		assert.Equal(t, "Home", f.LoanPurpose)
	})

	t.Run("numeric strings from a form", func(t *testing.T) {
		raw := sampleRawFeatures()
		raw["CreditScore"] = " 712.9 "
		raw["Age"] = "41"

		f, err := model.ParseBorrowerFeatures(raw)
		require.NoError(t, err)
		assert.Equal(t, 712, f.CreditScoreValue())
		assert.Equal(t, 41.0, f.Age)
	})

	t.Run("json.Number values", func(t *testing.T) {
		raw := sampleRawFeatures()
		raw["NumberOfOpenCreditLines"] = json.Number("7")

		f, err := model.ParseBorrowerFeatures(raw)
		require.NoError(t, err)
		assert.Equal(t, 7.0, f.NumberOfOpenCreditLines)
	})

	tests := []struct {
		name  string
		field string
		value any
	}{
		{"missing numeric", "CreditScore", nil},
		{"non-numeric string", "Age", "thirty"},
		{"boolean for numeric", "JobTenure", true},
		{"empty categorical", "LoanPurpose", "  "},
		{"numeric categorical", "EducationLevel", 3.0},
		{"infinite value", "NetWorth_log", math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := sampleRawFeatures()
			if tt.value == nil {
				delete(raw, tt.field)
			} else {
				raw[tt.field] = tt.value
			}

			_, err := model.ParseBorrowerFeatures(raw)
			require.Error(t, err)

			var inputErr *valueobject.InvalidInputError
			require.True(t, errors.As(err, &inputErr))
			assert.Equal(t, tt.field, inputErr.Field)
		})
	}
}

func TestBorrowerFeatures_ValuesRoundTrip(t *testing.T) {
	f, err := model.ParseBorrowerFeatures(sampleRawFeatures())
	require.NoError(t, err)

	values := f.Values()
	assert.Len(t, values, 30)

	again, err := model.ParseBorrowerFeatures(values)
	require.NoError(t, err)
	assert.Equal(t, f, again)
}

func TestBorrowerFeatures_AssessmentInput(t *testing.T) {
	f, err := model.ParseBorrowerFeatures(sampleRawFeatures())
	require.NoError(t, err)

	in := f.AssessmentInput(0.2)
	assert.Equal(t, 0.2, in.RiskScore)
	assert.InDelta(t, 1_200_000.0, in.AnnualIncome, 1e-6)
	assert.InDelta(t, 20_000.0, in.ExistingMonthlyDebt, 1e-6)
	assert.Equal(t, 780, in.CreditScore)
}

func TestNewPrediction(t *testing.T) {
	f, err := model.ParseBorrowerFeatures(sampleRawFeatures())
	require.NoError(t, err)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tier := service.ClassifyRiskTier(0.2)
	rec := service.RecommendLoan(0.2, 1_200_000, 20_000, 780)

	t.Run("records event and rounds loan", func(t *testing.T) {
		p, err := model.NewPrediction("CUST-42", f, 0.2, tier, rec, "1.1", now)
		require.NoError(t, err)

		assert.NotEmpty(t, p.ID())
		assert.Equal(t, "CUST-42", p.CustomerID())
		assert.Equal(t, "A", p.TierCode())
		assert.True(t, p.Decision().Equal(valueobject.RecommendationAutoApprove))
		assert.True(t, p.RecommendedLoan().Equal(decimal.NewFromInt(345_600)), "got %s", p.RecommendedLoan())
		assert.Equal(t, now, p.PredictedAt())
		assert.False(t, p.HasOutcome())

		evts := p.DomainEvents()
		require.Len(t, evts, 1)
		recorded, ok := evts[0].(event.PredictionRecorded)
		require.True(t, ok)
		assert.Equal(t, event.EventTypePredictionRecorded, recorded.EventType())
		assert.Equal(t, p.ID(), recorded.AggregateID())
		assert.Equal(t, "AUTO_APPROVE", recorded.Decision)

		assert.Empty(t, p.ClearDomainEvents().DomainEvents())
	})

	t.Run("blank customer becomes UNKNOWN", func(t *testing.T) {
		p, err := model.NewPrediction("  ", f, 0.2, tier, rec, "1.1", now)
		require.NoError(t, err)
		assert.Equal(t, model.UnknownCustomerID, p.CustomerID())
	})

	t.Run("rejects NaN score", func(t *testing.T) {
		_, err := model.NewPrediction("c", f, math.NaN(), tier, rec, "1.1", now)
		assert.ErrorIs(t, err, valueobject.ErrInvalidModelOutput)
	})

	t.Run("requires tier and version", func(t *testing.T) {
		_, err := model.NewPrediction("c", f, 0.2, valueobject.RiskTier{}, rec, "1.1", now)
		assert.Error(t, err)
		_, err = model.NewPrediction("c", f, 0.2, tier, rec, "", now)
		assert.Error(t, err)
	})
}

func TestNewOutcome(t *testing.T) {
	yes, no := true, false
	days := 90
	negDays := -1
	amount := decimal.NewFromInt(25_000)
	negAmount := decimal.NewFromInt(-1)
	now := time.Now().UTC()

	t.Run("valid defaulted loan", func(t *testing.T) {
		o, err := model.NewOutcome(&yes, &amount, &yes, &days, "  missed payments ", now)
		require.NoError(t, err)
		assert.True(t, *o.LoanApproved())
		assert.True(t, o.LoanAmount().Equal(amount))
		assert.Equal(t, 90, *o.DaysToDefault())
		assert.Equal(t, "missed payments", o.Notes())
		assert.Equal(t, now, o.RecordedAt())
	})

	t.Run("all fields optional", func(t *testing.T) {
		o, err := model.NewOutcome(nil, nil, nil, nil, "", now)
		require.NoError(t, err)
		assert.Nil(t, o.LoanApproved())
		assert.Nil(t, o.ActualDefault())
	})

	invalid := []struct {
		name          string
		amount        *decimal.Decimal
		actualDefault *bool
		days          *int
		field         string
	}{
		{"negative amount", &negAmount, nil, nil, "loan_amount"},
		{"negative days", nil, &yes, &negDays, "days_to_default"},
		{"days without default", nil, &no, &days, "days_to_default"},
		{"days with unknown default", nil, nil, &days, "days_to_default"},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := model.NewOutcome(&yes, tt.amount, tt.actualDefault, tt.days, "", now)
			var inputErr *valueobject.InvalidInputError
			require.True(t, errors.As(err, &inputErr))
			assert.Equal(t, tt.field, inputErr.Field)
		})
	}
}

func TestPrediction_WithOutcome(t *testing.T) {
	f, err := model.ParseBorrowerFeatures(sampleRawFeatures())
	require.NoError(t, err)
	tier := service.ClassifyRiskTier(0.55)
	p, err := model.NewPrediction("c", f, 0.55, tier, service.RecommendLoan(0.55, 1_200_000, 20_000, 780), "1.1", time.Now())
	require.NoError(t, err)

	approved := false
	o, err := model.NewOutcome(&approved, nil, nil, nil, "declined by underwriter", time.Now())
	require.NoError(t, err)

	next := p.WithOutcome(o)
	assert.False(t, p.HasOutcome(), "original must be unchanged")
	require.True(t, next.HasOutcome())
	assert.Equal(t, "declined by underwriter", next.Outcome().Notes())
	assert.Equal(t, p.ID(), next.ID())
}

func TestBuildRepaymentSchedule(t *testing.T) {
	start := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	t.Run("five year loan at 6 percent", func(t *testing.T) {
		principal := decimal.NewFromInt(100_000)
		s := model.BuildRepaymentSchedule(principal, 6.0, 60, start)

		require.Len(t, s.Instalments, 60)
		// 100K at 6% over 60 months is ~$1,933.28 per month.
		assert.True(t, s.MonthlyPayment.Sub(decimal.NewFromFloat(1933.28)).Abs().LessThan(decimal.NewFromFloat(0.02)),
			"monthly payment = %s", s.MonthlyPayment)

		first := s.Instalments[0]
		assert.Equal(t, 1, first.Period)
		assert.Equal(t, time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC), first.DueDate)
		assert.True(t, first.Interest.Equal(decimal.NewFromInt(500)), "first interest = %s", first.Interest)

		last := s.Instalments[59]
		assert.True(t, last.RemainingBalance.IsZero())

		paid := decimal.Zero
		for _, in := range s.Instalments {
			paid = paid.Add(in.Principal)
		}
		assert.True(t, paid.Equal(principal), "principal repaid = %s", paid)
		assert.True(t, s.TotalPaid().Equal(principal.Add(s.TotalInterest)))
	})

	t.Run("zero rate splits evenly", func(t *testing.T) {
		s := model.BuildRepaymentSchedule(decimal.NewFromInt(1_200), 0, 12, start)
		require.Len(t, s.Instalments, 12)
		assert.True(t, s.MonthlyPayment.Equal(decimal.NewFromInt(100)))
		assert.True(t, s.TotalInterest.IsZero())
	})

	t.Run("degenerate inputs give empty schedule", func(t *testing.T) {
		assert.Empty(t, model.BuildRepaymentSchedule(decimal.Zero, 5, 60, start).Instalments)
		assert.Empty(t, model.BuildRepaymentSchedule(decimal.NewFromInt(10), 5, 0, start).Instalments)
	})
}
