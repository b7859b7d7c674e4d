package event

import (
	"github.com/shopspring/decimal"

	"github.com/lendwise/loanrisk/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

const (
	// EventTypePredictionRecorded is emitted when a risk assessment is produced.
	EventTypePredictionRecorded = "loan_risk.prediction.recorded"

	// EventTypeOutcomeRecorded is emitted when the real-world outcome of a
	// previously assessed customer is logged.
	EventTypeOutcomeRecorded = "loan_risk.outcome.recorded"

	aggregateType = "Prediction"
)

// PredictionRecorded is raised for every completed assessment.
type PredictionRecorded struct {
	events.BaseEvent
	CustomerID      string          `json:"customer_id"`
	TierCode        string          `json:"tier_code"`
	Decision        string          `json:"approval_decision"`
	ModelVersion    string          `json:"model_version"`
	RecommendedLoan decimal.Decimal `json:"recommended_loan"`
	RiskScore       float64         `json:"risk_score"`
}

func NewPredictionRecorded(
	predictionID, customerID string,
	riskScore float64,
	tierCode, decision string,
	recommendedLoan decimal.Decimal,
	modelVersion string,
) PredictionRecorded {
	return PredictionRecorded{
		BaseEvent:       events.NewBaseEvent(EventTypePredictionRecorded, predictionID, aggregateType),
		CustomerID:      customerID,
		RiskScore:       riskScore,
		TierCode:        tierCode,
		Decision:        decision,
		RecommendedLoan: recommendedLoan,
		ModelVersion:    modelVersion,
	}
}

// OutcomeRecorded is raised when a loan outcome is attached to the latest
// prediction of a customer.
type OutcomeRecorded struct {
	events.BaseEvent
	LoanApproved  *bool            `json:"loan_approved,omitempty"`
	LoanAmount    *decimal.Decimal `json:"loan_amount,omitempty"`
	ActualDefault *bool            `json:"actual_default,omitempty"`
	DaysToDefault *int             `json:"days_to_default,omitempty"`
	CustomerID    string           `json:"customer_id"`
	RowsUpdated   int64            `json:"rows_updated"`
}

func NewOutcomeRecorded(customerID string, loanApproved *bool, loanAmount *decimal.Decimal,
	actualDefault *bool, daysToDefault *int, rowsUpdated int64,
) OutcomeRecorded {
	return OutcomeRecorded{
		BaseEvent:     events.NewBaseEvent(EventTypeOutcomeRecorded, customerID, "Customer"),
		CustomerID:    customerID,
		LoanApproved:  loanApproved,
		LoanAmount:    loanAmount,
		ActualDefault: actualDefault,
		DaysToDefault: daysToDefault,
		RowsUpdated:   rowsUpdated,
	}
}
