package service

import (
	"math"

	"github.com/lendwise/loanrisk/internal/domain/valueobject"
)

const (
	MinCreditScore = 300
	MaxCreditScore = 850
)

// ValidateAssessmentInput is the strict counterpart of the permissive
// calculator: it rejects out-of-range values and names the first offending
// field. Callers opt in; Recommend itself never validates.
func ValidateAssessmentInput(in valueobject.AssessmentInput) error {
	switch {
	case math.IsNaN(in.RiskScore) || in.RiskScore < 0 || in.RiskScore > 1:
		return valueobject.NewInvalidInputError("risk_score", "must be within [0, 1]")
	case math.IsNaN(in.AnnualIncome) || math.IsInf(in.AnnualIncome, 0) || in.AnnualIncome < 0:
		return valueobject.NewInvalidInputError("annual_income", "must be a finite non-negative number")
	case math.IsNaN(in.ExistingMonthlyDebt) || math.IsInf(in.ExistingMonthlyDebt, 0) || in.ExistingMonthlyDebt < 0:
		return valueobject.NewInvalidInputError("existing_monthly_debt", "must be a finite non-negative number")
	case in.CreditScore < MinCreditScore || in.CreditScore > MaxCreditScore:
		return valueobject.NewInvalidInputError("credit_score", "must be between 300 and 850")
	}
	return nil
}
