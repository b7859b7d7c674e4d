package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/lendwise/loanrisk/internal/application/dto"
	"github.com/lendwise/loanrisk/internal/domain/event"
	"github.com/lendwise/loanrisk/internal/domain/model"
	"github.com/lendwise/loanrisk/internal/domain/port"
	"github.com/lendwise/loanrisk/internal/domain/valueobject"
	"github.com/lendwise/loanrisk/pkg/observability"
)

// RecordOutcome attaches an observed lending outcome to a customer's most
// recent prediction.
type RecordOutcome struct {
	repo      port.PredictionRepository
	publisher port.EventPublisher
	metrics   *observability.AssessmentMetrics
	validate  *validator.Validate
	logger    *slog.Logger
	now       func() time.Time
}

// NewRecordOutcome creates a new RecordOutcome use case. A nil repo makes
// every call fail with ErrStoreUnavailable.
func NewRecordOutcome(
	repo port.PredictionRepository,
	publisher port.EventPublisher,
	metrics *observability.AssessmentMetrics,
	logger *slog.Logger,
) *RecordOutcome {
	return &RecordOutcome{
		repo:      repo,
		publisher: publisher,
		metrics:   metrics,
		validate:  newValidator(),
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Execute stores the outcome. A customer with no prediction is not an error:
// the response reports zero rows updated.
func (uc *RecordOutcome) Execute(ctx context.Context, req dto.RecordOutcomeRequest) (dto.OutcomeResponse, error) {
	ctx, span := tracer.Start(ctx, "RecordOutcome.Execute")
	defer span.End()

	if uc.repo == nil {
		span.SetStatus(codes.Error, valueobject.ErrStoreUnavailable.Error())
		return dto.OutcomeResponse{}, fmt.Errorf("failed to record outcome: %w", valueobject.ErrStoreUnavailable)
	}

	req.CustomerID = strings.TrimSpace(req.CustomerID)
	if err := validateStruct(uc.validate, req); err != nil {
		return dto.OutcomeResponse{}, fmt.Errorf("failed to validate outcome: %w", err)
	}

	now := uc.now()
	outcome, err := model.NewOutcome(req.LoanApproved, req.LoanAmount, req.ActualDefault, req.DaysToDefault, req.Notes, now)
	if err != nil {
		return dto.OutcomeResponse{}, fmt.Errorf("failed to create outcome: %w", err)
	}

	rows, err := uc.repo.RecordOutcome(ctx, req.CustomerID, outcome)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return dto.OutcomeResponse{}, fmt.Errorf("failed to record outcome: %w", err)
	}
	span.SetAttributes(attribute.Int64("rows_updated", rows))
	uc.metrics.RecordOutcome(ctx, rows > 0)

	if uc.publisher != nil {
		evt := event.NewOutcomeRecorded(req.CustomerID, req.LoanApproved, req.LoanAmount, req.ActualDefault, req.DaysToDefault, rows)
		if err := uc.publisher.Publish(ctx, evt); err != nil {
			uc.logger.Warn("failed to publish outcome event, continuing",
				"customer_id", req.CustomerID,
				"error", err,
			)
		}
	}

	if rows == 0 {
		uc.logger.Warn("outcome reported for customer without predictions", "customer_id", req.CustomerID)
	} else {
		uc.logger.Info("outcome recorded", "customer_id", req.CustomerID, "rows_updated", rows)
	}

	return dto.OutcomeResponse{
		Status:      "success",
		Message:     "Outcome logged for customer " + req.CustomerID,
		RowsUpdated: rows,
		Timestamp:   now,
	}, nil
}
