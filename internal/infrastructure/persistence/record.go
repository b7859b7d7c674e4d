// Package persistence holds the storage shape shared by the prediction stores.
package persistence

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lendwise/loanrisk/internal/domain/model"
	"github.com/lendwise/loanrisk/internal/domain/valueobject"
)

// PredictionRecord is one row of the predictions table.
type PredictionRecord struct {
	Timestamp          time.Time
	OutcomeTimestamp   *time.Time
	ActualLoanApproved *bool
	ActualDefault      *bool
	DaysToDefault      *int
	OutcomeNotes       *string
	ActualLoanAmount   decimal.NullDecimal
	RecommendedLoan    decimal.Decimal
	ID                 string
	CustomerID         string
	ApprovalDecision   string
	TierCode           string
	ModelVersion       string
	InputFeatures      []byte
	RiskScore          float64
}

// NewPredictionRecord flattens a prediction into its row form.
func NewPredictionRecord(p model.Prediction) (PredictionRecord, error) {
	features, err := json.Marshal(p.Features())
	if err != nil {
		return PredictionRecord{}, fmt.Errorf("encode input features: %w", err)
	}

	rec := PredictionRecord{
		ID:               p.ID(),
		CustomerID:       p.CustomerID(),
		Timestamp:        p.PredictedAt(),
		InputFeatures:    features,
		RiskScore:        p.RiskScore(),
		RecommendedLoan:  p.RecommendedLoan(),
		ApprovalDecision: p.Decision().String(),
		TierCode:         p.TierCode(),
		ModelVersion:     p.ModelVersion(),
	}
	if o := p.Outcome(); o != nil {
		rec.ApplyOutcome(*o)
	}
	return rec, nil
}

// ApplyOutcome copies outcome into the outcome columns.
func (r *PredictionRecord) ApplyOutcome(o model.Outcome) {
	recordedAt := o.RecordedAt()
	r.ActualLoanApproved = o.LoanApproved()
	r.ActualDefault = o.ActualDefault()
	r.DaysToDefault = o.DaysToDefault()
	r.OutcomeTimestamp = &recordedAt
	r.ActualLoanAmount = decimal.NullDecimal{}
	if amount := o.LoanAmount(); amount != nil {
		r.ActualLoanAmount = decimal.NewNullDecimal(*amount)
	}
	r.OutcomeNotes = nil
	if notes := o.Notes(); notes != "" {
		r.OutcomeNotes = &notes
	}
}

// Prediction rebuilds the aggregate stored in the row.
func (r PredictionRecord) Prediction() (model.Prediction, error) {
	var features model.BorrowerFeatures
	if len(r.InputFeatures) > 0 {
		if err := json.Unmarshal(r.InputFeatures, &features); err != nil {
			return model.Prediction{}, fmt.Errorf("decode input features of %s: %w", r.ID, err)
		}
	}

	decision, err := valueobject.RecommendationFromString(r.ApprovalDecision)
	if err != nil {
		return model.Prediction{}, fmt.Errorf("parse decision of %s: %w", r.ID, err)
	}

	var outcome *model.Outcome
	if r.OutcomeTimestamp != nil {
		var amount *decimal.Decimal
		if r.ActualLoanAmount.Valid {
			a := r.ActualLoanAmount.Decimal
			amount = &a
		}
		var notes string
		if r.OutcomeNotes != nil {
			notes = *r.OutcomeNotes
		}
		o := model.ReconstructOutcome(r.ActualLoanApproved, amount, r.ActualDefault, r.DaysToDefault, notes, *r.OutcomeTimestamp)
		outcome = &o
	}

	return model.ReconstructPrediction(
		r.ID,
		r.CustomerID,
		features,
		r.RiskScore,
		r.TierCode,
		decision,
		r.RecommendedLoan,
		r.ModelVersion,
		r.Timestamp,
		outcome,
	), nil
}
