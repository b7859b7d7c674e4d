package model

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lendwise/loanrisk/internal/domain/event"
	"github.com/lendwise/loanrisk/internal/domain/valueobject"
)

// UnknownCustomerID is recorded when a request carries no customer reference.
const UnknownCustomerID = "UNKNOWN"

// ---------------------------------------------------------------------------
// Outcome value object
// ---------------------------------------------------------------------------

// Outcome is the observed result of a lending decision, fed back for model
// monitoring. Every field is optional; nil means "not reported".
type Outcome struct {
	loanApproved  *bool
	loanAmount    *decimal.Decimal
	actualDefault *bool
	daysToDefault *int
	notes         string
	recordedAt    time.Time
}

// NewOutcome validates and creates an Outcome.
func NewOutcome(
	loanApproved *bool,
	loanAmount *decimal.Decimal,
	actualDefault *bool,
	daysToDefault *int,
	notes string,
	now time.Time,
) (Outcome, error) {
	if loanAmount != nil && loanAmount.IsNegative() {
		return Outcome{}, valueobject.NewInvalidInputError("loan_amount", "must not be negative")
	}
	if daysToDefault != nil {
		if *daysToDefault < 0 {
			return Outcome{}, valueobject.NewInvalidInputError("days_to_default", "must not be negative")
		}
		if actualDefault == nil || !*actualDefault {
			return Outcome{}, valueobject.NewInvalidInputError("days_to_default", "requires actual_default to be true")
		}
	}

	return Outcome{
		loanApproved:  loanApproved,
		loanAmount:    loanAmount,
		actualDefault: actualDefault,
		daysToDefault: daysToDefault,
		notes:         strings.TrimSpace(notes),
		recordedAt:    now,
	}, nil
}

// ReconstructOutcome rebuilds an Outcome from persistence without validation.
func ReconstructOutcome(
	loanApproved *bool,
	loanAmount *decimal.Decimal,
	actualDefault *bool,
	daysToDefault *int,
	notes string,
	recordedAt time.Time,
) Outcome {
	return Outcome{
		loanApproved:  loanApproved,
		loanAmount:    loanAmount,
		actualDefault: actualDefault,
		daysToDefault: daysToDefault,
		notes:         notes,
		recordedAt:    recordedAt,
	}
}

func (o Outcome) LoanApproved() *bool          { return o.loanApproved }
func (o Outcome) LoanAmount() *decimal.Decimal { return o.loanAmount }
func (o Outcome) ActualDefault() *bool         { return o.actualDefault }
func (o Outcome) DaysToDefault() *int          { return o.daysToDefault }
func (o Outcome) Notes() string                { return o.notes }
func (o Outcome) RecordedAt() time.Time        { return o.recordedAt }

// ---------------------------------------------------------------------------
// Prediction aggregate root
// ---------------------------------------------------------------------------

// Prediction is an immutable record of one risk assessment. Every mutation
// returns a new copy.
type Prediction struct {
	predictedAt     time.Time
	outcome         *Outcome
	recommendedLoan decimal.Decimal
	decision        valueobject.Recommendation
	id              string
	customerID      string
	tierCode        string
	modelVersion    string
	domainEvents    []event.DomainEvent
	features        BorrowerFeatures
	riskScore       float64
}

// NewPrediction records a fresh assessment and emits PredictionRecorded.
func NewPrediction(
	customerID string,
	features BorrowerFeatures,
	riskScore float64,
	tier valueobject.RiskTier,
	recommendation valueobject.LoanRecommendation,
	modelVersion string,
	now time.Time,
) (Prediction, error) {
	if tier.IsZero() {
		return Prediction{}, errors.New("risk tier is required")
	}
	if modelVersion == "" {
		return Prediction{}, errors.New("model version is required")
	}
	if math.IsNaN(riskScore) || math.IsInf(riskScore, 0) {
		return Prediction{}, valueobject.ErrInvalidModelOutput
	}

	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		customerID = UnknownCustomerID
	}

	p := Prediction{
		id:              uuid.New().String(),
		customerID:      customerID,
		features:        features,
		riskScore:       riskScore,
		tierCode:        tier.Code(),
		decision:        tier.Recommendation(),
		recommendedLoan: decimal.NewFromFloat(recommendation.RecommendedMaxLoan()).Round(2),
		modelVersion:    modelVersion,
		predictedAt:     now,
	}

	p.domainEvents = append(p.domainEvents, event.NewPredictionRecorded(
		p.id, p.customerID, p.riskScore, p.tierCode, p.decision.String(), p.recommendedLoan, p.modelVersion,
	))
	return p, nil
}

// ReconstructPrediction rebuilds an aggregate from persistence without side-effects.
func ReconstructPrediction(
	id, customerID string,
	features BorrowerFeatures,
	riskScore float64,
	tierCode string,
	decision valueobject.Recommendation,
	recommendedLoan decimal.Decimal,
	modelVersion string,
	predictedAt time.Time,
	outcome *Outcome,
) Prediction {
	return Prediction{
		id:              id,
		customerID:      customerID,
		features:        features,
		riskScore:       riskScore,
		tierCode:        tierCode,
		decision:        decision,
		recommendedLoan: recommendedLoan,
		modelVersion:    modelVersion,
		predictedAt:     predictedAt,
		outcome:         outcome,
	}
}

// WithOutcome attaches an observed outcome, replacing any earlier one.
func (p Prediction) WithOutcome(o Outcome) Prediction {
	next := p
	next.outcome = &o
	next.domainEvents = copyEvents(p.domainEvents)
	return next
}

func (p Prediction) ID() string                           { return p.id }
func (p Prediction) CustomerID() string                   { return p.customerID }
func (p Prediction) Features() BorrowerFeatures           { return p.features }
func (p Prediction) RiskScore() float64                   { return p.riskScore }
func (p Prediction) TierCode() string                     { return p.tierCode }
func (p Prediction) Decision() valueobject.Recommendation { return p.decision }
func (p Prediction) RecommendedLoan() decimal.Decimal     { return p.recommendedLoan }
func (p Prediction) ModelVersion() string                 { return p.modelVersion }
func (p Prediction) PredictedAt() time.Time               { return p.predictedAt }
func (p Prediction) Outcome() *Outcome                    { return p.outcome }
func (p Prediction) HasOutcome() bool                     { return p.outcome != nil }
func (p Prediction) DomainEvents() []event.DomainEvent    { return copyEvents(p.domainEvents) }

// ClearDomainEvents returns a copy of the prediction without pending events.
func (p Prediction) ClearDomainEvents() Prediction {
	next := p
	next.domainEvents = nil
	return next
}

func copyEvents(src []event.DomainEvent) []event.DomainEvent {
	if len(src) == 0 {
		return nil
	}
	dst := make([]event.DomainEvent, len(src))
	copy(dst, src)
	return dst
}
