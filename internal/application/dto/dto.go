package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lendwise/loanrisk/internal/domain/model"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// AssessRequest carries a borrower's model features for scoring. Features is
// keyed by model column name; values may be numbers or numeric strings.
type AssessRequest struct {
	Features        map[string]any `json:"features"`
	CustomerID      string         `json:"customer_id"`
	IncludeSchedule bool           `json:"include_schedule"`
}

// RecordOutcomeRequest carries the observed outcome of a lending decision.
type RecordOutcomeRequest struct {
	LoanApproved  *bool            `json:"loan_approved"`
	LoanAmount    *decimal.Decimal `json:"loan_amount"`
	ActualDefault *bool            `json:"actual_default"`
	DaysToDefault *int             `json:"days_to_default"`
	CustomerID    string           `json:"customer_id" validate:"required,max=128"`
	Notes         string           `json:"notes" validate:"max=2000"`
}

// ListPredictionsRequest identifies a customer's prediction history.
type ListPredictionsRequest struct {
	CustomerID string `json:"customer_id" validate:"required,max=128"`
	Limit      int    `json:"limit" validate:"gte=0,lte=100"`
}

// ModelMetricsRequest selects the reporting window for monitoring metrics.
type ModelMetricsRequest struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// RiskAssessment is the tier view of a risk score.
type RiskAssessment struct {
	RiskTier     string  `json:"risk_tier"`
	RiskTierCode string  `json:"risk_tier_code"`
	Description  string  `json:"description"`
	Color        string  `json:"color"`
	RiskScore    float64 `json:"risk_score"`
}

// LoanRecommendation is the affordability view of a risk score.
type LoanRecommendation struct {
	Reason                  string  `json:"reason,omitempty"`
	MaxApprovedAmount       float64 `json:"max_approved_amount"`
	MonthlyPaymentCapacity  float64 `json:"monthly_payment_capacity"`
	EstimatedMonthlyPayment float64 `json:"estimated_monthly_payment"`
	RiskAdjustedMultiplier  float64 `json:"risk_adjusted_multiplier"`
	CreditAdjustment        float64 `json:"credit_adjustment"`
}

// LendingTerms are the rates and decision offered for the tier.
type LendingTerms struct {
	ApprovalDecision string  `json:"approval_decision"`
	DecisionMessage  string  `json:"decision_message"`
	BaseInterestRate float64 `json:"base_interest_rate"`
	RiskAdjustedRate float64 `json:"risk_adjusted_rate"`
}

// AssessmentMetadata describes how and when the assessment was produced.
type AssessmentMetadata struct {
	PredictionTimestamp time.Time `json:"prediction_timestamp"`
	ModelVersion        string    `json:"model_version"`
	PredictionID        string    `json:"prediction_id"`
	AnnualIncome        float64   `json:"annual_income"`
	CreditScore         int       `json:"credit_score"`
	Logged              bool      `json:"logged"`
}

// Instalment is one period of a repayment schedule.
type Instalment struct {
	DueDate          string          `json:"due_date"`
	Payment          decimal.Decimal `json:"payment"`
	Principal        decimal.Decimal `json:"principal"`
	Interest         decimal.Decimal `json:"interest"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	Period           int             `json:"period"`
}

// RepaymentSchedule is the amortization of the recommended loan at the
// risk-adjusted rate.
type RepaymentSchedule struct {
	Instalments    []Instalment    `json:"instalments"`
	Principal      decimal.Decimal `json:"principal"`
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
	TotalInterest  decimal.Decimal `json:"total_interest"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	AnnualRate     float64         `json:"annual_rate"`
	TermMonths     int             `json:"term_months"`
}

// AssessmentResponse is the full result of a risk assessment.
type AssessmentResponse struct {
	RepaymentSchedule  *RepaymentSchedule `json:"repayment_schedule,omitempty"`
	CustomerID         string             `json:"customer_id"`
	Metadata           AssessmentMetadata `json:"metadata"`
	RiskAssessment     RiskAssessment     `json:"risk_assessment"`
	LendingTerms       LendingTerms       `json:"lending_terms"`
	LoanRecommendation LoanRecommendation `json:"loan_recommendation"`
}

// OutcomeResponse reports how many predictions an outcome was attached to.
type OutcomeResponse struct {
	Timestamp   time.Time `json:"timestamp"`
	Status      string    `json:"status"`
	Message     string    `json:"message"`
	RowsUpdated int64     `json:"rows_updated"`
}

// OutcomeView is the stored outcome of a prediction.
type OutcomeView struct {
	LoanApproved  *bool            `json:"loan_approved,omitempty"`
	LoanAmount    *decimal.Decimal `json:"loan_amount,omitempty"`
	ActualDefault *bool            `json:"actual_default,omitempty"`
	DaysToDefault *int             `json:"days_to_default,omitempty"`
	RecordedAt    time.Time        `json:"recorded_at"`
	Notes         string           `json:"notes,omitempty"`
}

// PredictionView is the external representation of a stored prediction.
type PredictionView struct {
	PredictedAt      time.Time       `json:"timestamp"`
	Outcome          *OutcomeView    `json:"outcome,omitempty"`
	RecommendedLoan  decimal.Decimal `json:"recommended_loan"`
	ID               string          `json:"id"`
	CustomerID       string          `json:"customer_id"`
	TierCode         string          `json:"risk_tier_code"`
	ApprovalDecision string          `json:"approval_decision"`
	ModelVersion     string          `json:"model_version"`
	RiskScore        float64         `json:"risk_score"`
}

// PredictionListResponse is a customer's prediction history.
type PredictionListResponse struct {
	CustomerID  string           `json:"customer_id"`
	Predictions []PredictionView `json:"predictions"`
}

// HealthResponse reports service and store health.
type HealthResponse struct {
	Timestamp      time.Time `json:"timestamp"`
	Status         string    `json:"status"`
	ModelVersion   string    `json:"model_version"`
	TrainingDate   string    `json:"training_date"`
	DatabaseStatus string    `json:"database_status"`
}

// ModelMetricsResponse carries the monitoring metrics computed for a window.
type ModelMetricsResponse struct {
	From    time.Time          `json:"period_start"`
	To      time.Time          `json:"period_end"`
	Metrics map[string]float64 `json:"metrics"`
}

// ---------------------------------------------------------------------------
// Mappers
// ---------------------------------------------------------------------------

// FromPrediction maps a stored prediction to its external view.
func FromPrediction(p model.Prediction) PredictionView {
	view := PredictionView{
		ID:               p.ID(),
		CustomerID:       p.CustomerID(),
		PredictedAt:      p.PredictedAt(),
		RiskScore:        p.RiskScore(),
		TierCode:         p.TierCode(),
		ApprovalDecision: p.Decision().String(),
		RecommendedLoan:  p.RecommendedLoan(),
		ModelVersion:     p.ModelVersion(),
	}
	if o := p.Outcome(); o != nil {
		view.Outcome = &OutcomeView{
			LoanApproved:  o.LoanApproved(),
			LoanAmount:    o.LoanAmount(),
			ActualDefault: o.ActualDefault(),
			DaysToDefault: o.DaysToDefault(),
			Notes:         o.Notes(),
			RecordedAt:    o.RecordedAt(),
		}
	}
	return view
}

// FromRepaymentSchedule maps an amortization plan to its external view.
func FromRepaymentSchedule(s model.RepaymentSchedule) *RepaymentSchedule {
	out := &RepaymentSchedule{
		Principal:      s.Principal,
		MonthlyPayment: s.MonthlyPayment,
		TotalInterest:  s.TotalInterest,
		TotalPaid:      s.TotalPaid(),
		AnnualRate:     s.AnnualRatePct,
		TermMonths:     s.TermMonths,
		Instalments:    make([]Instalment, 0, len(s.Instalments)),
	}
	for _, in := range s.Instalments {
		out.Instalments = append(out.Instalments, Instalment{
			Period:           in.Period,
			DueDate:          in.DueDate.Format(time.DateOnly),
			Payment:          in.Payment,
			Principal:        in.Principal,
			Interest:         in.Interest,
			RemainingBalance: in.RemainingBalance,
		})
	}
	return out
}
