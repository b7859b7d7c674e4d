package valueobject

// ReasonDebtCapacityExhausted explains a zero recommendation caused by the
// borrower already being at the debt-to-income ceiling.
const ReasonDebtCapacityExhausted = "Debt-to-income ratio already at maximum"

// estimatedPaymentShare is the fraction of the residual capacity quoted as
// the expected monthly instalment.
const estimatedPaymentShare = 0.9

// AssessmentInput is the immutable input of the affordability calculation.
// Ranges are expected but not enforced; see ValidateAssessmentInput in the
// service package for the opt-in strict check.
type AssessmentInput struct {
	RiskScore           float64
	AnnualIncome        float64
	ExistingMonthlyDebt float64
	CreditScore         int
}

// LoanRecommendation is the immutable result of the affordability calculation.
type LoanRecommendation struct {
	recommendedMaxLoan     float64
	monthlyPaymentCapacity float64
	riskAdjustedMultiplier float64
	creditAdjustment       float64
	reason                 string
}

// NewLoanRecommendation creates a LoanRecommendation with the intermediate
// factors retained for audit.
func NewLoanRecommendation(maxLoan, paymentCapacity, multiplier, creditAdjustment float64) LoanRecommendation {
	return LoanRecommendation{
		recommendedMaxLoan:     maxLoan,
		monthlyPaymentCapacity: paymentCapacity,
		riskAdjustedMultiplier: multiplier,
		creditAdjustment:       creditAdjustment,
	}
}

// DebtCapacityExhausted returns the {0, 0} recommendation issued when the
// borrower has no room left under the debt-to-income ceiling.
func DebtCapacityExhausted(multiplier, creditAdjustment float64) LoanRecommendation {
	return LoanRecommendation{
		riskAdjustedMultiplier: multiplier,
		creditAdjustment:       creditAdjustment,
		reason:                 ReasonDebtCapacityExhausted,
	}
}

func (r LoanRecommendation) RecommendedMaxLoan() float64     { return r.recommendedMaxLoan }
func (r LoanRecommendation) MonthlyPaymentCapacity() float64 { return r.monthlyPaymentCapacity }
func (r LoanRecommendation) RiskAdjustedMultiplier() float64 { return r.riskAdjustedMultiplier }
func (r LoanRecommendation) CreditAdjustment() float64       { return r.creditAdjustment }
func (r LoanRecommendation) Reason() string                  { return r.reason }

// IsDebtCapacityExhausted reports whether the recommendation was cut to zero
// by the debt-to-income ceiling.
func (r LoanRecommendation) IsDebtCapacityExhausted() bool {
	return r.reason == ReasonDebtCapacityExhausted
}

// EstimatedMonthlyPayment is the instalment quoted to the borrower.
func (r LoanRecommendation) EstimatedMonthlyPayment() float64 {
	return r.monthlyPaymentCapacity * estimatedPaymentShare
}
