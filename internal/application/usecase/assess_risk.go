package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/lendwise/loanrisk/internal/application/dto"
	"github.com/lendwise/loanrisk/internal/domain/model"
	"github.com/lendwise/loanrisk/internal/domain/port"
	"github.com/lendwise/loanrisk/internal/domain/service"
	"github.com/lendwise/loanrisk/internal/domain/valueobject"
	"github.com/lendwise/loanrisk/pkg/observability"
)

// DefaultBaseInterestRate is the annual rate, in percent, before the tier
// adjustment is applied.
const DefaultBaseInterestRate = 5.0

var tracer = otel.Tracer("github.com/lendwise/loanrisk/internal/application/usecase")

// AssessmentSettings tunes the assessment use case.
type AssessmentSettings struct {
	BaseInterestRate float64
	// StrictValidation rejects incomes, debts and credit scores outside their
	// plausible ranges before the affordability calculation runs.
	StrictValidation bool
}

// AssessRisk scores a borrower, classifies the score into a tier, sizes an
// affordable loan and records the prediction.
type AssessRisk struct {
	model      port.RiskModel
	repo       port.PredictionRepository
	publisher  port.EventPublisher
	classifier *service.RiskTierClassifier
	calculator *service.AffordabilityCalculator
	metrics    *observability.AssessmentMetrics
	validate   *validator.Validate
	logger     *slog.Logger
	now        func() time.Time
	settings   AssessmentSettings
}

// NewAssessRisk creates a new AssessRisk use case. repo may be nil when
// persistence is disabled; metrics may be nil.
func NewAssessRisk(
	riskModel port.RiskModel,
	classifier *service.RiskTierClassifier,
	calculator *service.AffordabilityCalculator,
	repo port.PredictionRepository,
	publisher port.EventPublisher,
	metrics *observability.AssessmentMetrics,
	logger *slog.Logger,
	settings AssessmentSettings,
) *AssessRisk {
	if settings.BaseInterestRate == 0 {
		settings.BaseInterestRate = DefaultBaseInterestRate
	}
	return &AssessRisk{
		model:      riskModel,
		repo:       repo,
		publisher:  publisher,
		classifier: classifier,
		calculator: calculator,
		metrics:    metrics,
		validate:   newValidator(),
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
		settings:   settings,
	}
}

// Execute runs a full assessment. Persistence and event publishing are
// best-effort: their failures are logged and reflected in Metadata.Logged.
func (uc *AssessRisk) Execute(ctx context.Context, req dto.AssessRequest) (dto.AssessmentResponse, error) {
	ctx, span := tracer.Start(ctx, "AssessRisk.Execute",
		trace.WithAttributes(attribute.String("customer_id", req.CustomerID)))
	defer span.End()

	resp, err := uc.assess(ctx, req)
	if err != nil {
		uc.metrics.RecordFailure(ctx, failureReason(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return dto.AssessmentResponse{}, err
	}

	span.SetAttributes(
		attribute.String("risk_tier_code", resp.RiskAssessment.RiskTierCode),
		attribute.Float64("risk_score", resp.RiskAssessment.RiskScore),
	)
	return resp, nil
}

func (uc *AssessRisk) assess(ctx context.Context, req dto.AssessRequest) (dto.AssessmentResponse, error) {
	// 1. Parse and validate the model features.
	features, err := model.ParseBorrowerFeatures(req.Features)
	if err != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("failed to parse features: %w", err)
	}
	if err := validateStruct(uc.validate, features); err != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("failed to validate features: %w", err)
	}

	// 2. Score the borrower.
	riskScore, err := uc.model.Predict(ctx, features)
	if err != nil {
		if errors.Is(err, valueobject.ErrInvalidModelOutput) {
			return dto.AssessmentResponse{}, fmt.Errorf("failed to score borrower: %w", err)
		}
		return dto.AssessmentResponse{}, fmt.Errorf("failed to score borrower: %w: %w", valueobject.ErrModelUnavailable, err)
	}
	if math.IsNaN(riskScore) || math.IsInf(riskScore, 0) {
		return dto.AssessmentResponse{}, fmt.Errorf("failed to score borrower: %w", valueobject.ErrInvalidModelOutput)
	}

	input := features.AssessmentInput(riskScore)
	if uc.settings.StrictValidation {
		if err := service.ValidateAssessmentInput(input); err != nil {
			return dto.AssessmentResponse{}, fmt.Errorf("failed to validate assessment input: %w", err)
		}
	}

	// 3. Classify and size the loan.
	tier := uc.classifier.Classify(riskScore)
	recommendation := uc.calculator.Recommend(input)

	// 4. Build the prediction aggregate.
	now := uc.now()
	modelInfo := uc.model.Info()
	prediction, err := model.NewPrediction(req.CustomerID, features, riskScore, tier, recommendation, modelInfo.Version, now)
	if err != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("failed to create prediction: %w", err)
	}

	// 5. Record it, best-effort.
	logged := uc.save(ctx, prediction)
	uc.publish(ctx, prediction)

	uc.metrics.RecordAssessment(ctx, tier.Code(), tier.Recommendation().String(), riskScore, recommendation.RecommendedMaxLoan())

	resp := uc.buildResponse(prediction, tier, recommendation, input, logged)
	if req.IncludeSchedule {
		schedule := model.BuildRepaymentSchedule(
			prediction.RecommendedLoan(),
			resp.LendingTerms.RiskAdjustedRate,
			uc.calculator.Params().TermMonths,
			now,
		)
		resp.RepaymentSchedule = dto.FromRepaymentSchedule(schedule)
	}

	uc.logger.Info("risk assessed",
		"prediction_id", prediction.ID(),
		"customer_id", prediction.CustomerID(),
		"risk_score", riskScore,
		"risk_tier_code", tier.Code(),
		"approval_decision", tier.Recommendation().String(),
		"max_approved_amount", recommendation.RecommendedMaxLoan(),
	)
	return resp, nil
}

func (uc *AssessRisk) save(ctx context.Context, prediction model.Prediction) bool {
	if uc.repo == nil {
		return false
	}
	if err := uc.repo.Save(ctx, prediction); err != nil {
		uc.logger.Warn("failed to log prediction, continuing",
			"prediction_id", prediction.ID(),
			"customer_id", prediction.CustomerID(),
			"error", err,
		)
		return false
	}
	return true
}

func (uc *AssessRisk) publish(ctx context.Context, prediction model.Prediction) {
	events := prediction.DomainEvents()
	if len(events) == 0 || uc.publisher == nil {
		return
	}
	if err := uc.publisher.Publish(ctx, events...); err != nil {
		uc.logger.Warn("failed to publish prediction events, continuing",
			"prediction_id", prediction.ID(),
			"error", err,
		)
	}
}

func (uc *AssessRisk) buildResponse(
	prediction model.Prediction,
	tier valueobject.RiskTier,
	rec valueobject.LoanRecommendation,
	input valueobject.AssessmentInput,
	logged bool,
) dto.AssessmentResponse {
	baseRate := uc.settings.BaseInterestRate
	return dto.AssessmentResponse{
		CustomerID: prediction.CustomerID(),
		RiskAssessment: dto.RiskAssessment{
			RiskScore:    prediction.RiskScore(),
			RiskTier:     tier.Label(),
			RiskTierCode: tier.Code(),
			Description:  tier.Description(),
			Color:        tier.Color(),
		},
		LoanRecommendation: dto.LoanRecommendation{
			MaxApprovedAmount:       rec.RecommendedMaxLoan(),
			MonthlyPaymentCapacity:  rec.MonthlyPaymentCapacity(),
			EstimatedMonthlyPayment: rec.EstimatedMonthlyPayment(),
			RiskAdjustedMultiplier:  rec.RiskAdjustedMultiplier(),
			CreditAdjustment:        rec.CreditAdjustment(),
			Reason:                  rec.Reason(),
		},
		LendingTerms: dto.LendingTerms{
			BaseInterestRate: baseRate,
			RiskAdjustedRate: tier.AdjustedRate(baseRate),
			ApprovalDecision: tier.Recommendation().String(),
			DecisionMessage:  tier.Recommendation().Message(),
		},
		Metadata: dto.AssessmentMetadata{
			ModelVersion:        prediction.ModelVersion(),
			PredictionID:        prediction.ID(),
			PredictionTimestamp: prediction.PredictedAt(),
			AnnualIncome:        input.AnnualIncome,
			CreditScore:         input.CreditScore,
			Logged:              logged,
		},
	}
}

// failureReason maps an assessment error to a low-cardinality metric label.
func failureReason(err error) string {
	switch {
	case errors.Is(err, valueobject.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, valueobject.ErrInvalidModelOutput):
		return "invalid_model_output"
	case errors.Is(err, valueobject.ErrModelUnavailable):
		return "model_unavailable"
	default:
		return "internal"
	}
}
