package grpc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/lendwise/loanrisk/internal/application/dto"
	"github.com/lendwise/loanrisk/internal/domain/valueobject"
)

// Assessor scores a borrower and sizes a loan.
type Assessor interface {
	Execute(ctx context.Context, req dto.AssessRequest) (dto.AssessmentResponse, error)
}

// OutcomeRecorder stores the observed outcome of a lending decision.
type OutcomeRecorder interface {
	Execute(ctx context.Context, req dto.RecordOutcomeRequest) (dto.OutcomeResponse, error)
}

// PredictionLister returns a customer's prediction history.
type PredictionLister interface {
	Execute(ctx context.Context, req dto.ListPredictionsRequest) (dto.PredictionListResponse, error)
}

// MetricsComputer aggregates monitoring metrics over a window.
type MetricsComputer interface {
	Execute(ctx context.Context, req dto.ModelMetricsRequest) (dto.ModelMetricsResponse, error)
}

// Compile-time assertion that Handler implements RiskAssessmentServiceServer.
var _ RiskAssessmentServiceServer = (*Handler)(nil)

// Handler implements the RiskAssessmentServiceServer gRPC interface.
type Handler struct {
	UnimplementedRiskAssessmentServiceServer
	assessor Assessor
	outcomes OutcomeRecorder
	history  PredictionLister
	metrics  MetricsComputer
	logger   *slog.Logger
}

// NewHandler creates a new gRPC Handler.
func NewHandler(
	assessor Assessor,
	outcomes OutcomeRecorder,
	history PredictionLister,
	metrics MetricsComputer,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		assessor: assessor,
		outcomes: outcomes,
		history:  history,
		metrics:  metrics,
		logger:   logger,
	}
}

// Proto-aligned request/response message types.

// AssessRiskRequest represents the proto AssessRiskRequest message.
type AssessRiskRequest struct {
	Features        map[string]any `json:"features"`
	CustomerID      string         `json:"customer_id"`
	IncludeSchedule bool           `json:"include_schedule"`
}

// AssessRiskResponse represents the proto AssessRiskResponse message.
type AssessRiskResponse struct {
	Assessment dto.AssessmentResponse `json:"assessment"`
}

// RecordOutcomeRequest represents the proto RecordOutcomeRequest message.
// LoanAmount is a decimal string.
type RecordOutcomeRequest struct {
	LoanApproved  *bool  `json:"loan_approved,omitempty"`
	ActualDefault *bool  `json:"actual_default,omitempty"`
	DaysToDefault *int32 `json:"days_to_default,omitempty"`
	CustomerID    string `json:"customer_id"`
	LoanAmount    string `json:"loan_amount,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// RecordOutcomeResponse represents the proto RecordOutcomeResponse message.
type RecordOutcomeResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	Timestamp   string `json:"timestamp"`
	RowsUpdated int64  `json:"rows_updated"`
}

// ListPredictionsRequest represents the proto ListPredictionsRequest message.
type ListPredictionsRequest struct {
	CustomerID string `json:"customer_id"`
	Limit      int32  `json:"limit"`
}

// ListPredictionsResponse represents the proto ListPredictionsResponse message.
type ListPredictionsResponse struct {
	CustomerID  string               `json:"customer_id"`
	Predictions []dto.PredictionView `json:"predictions"`
}

// ComputeModelMetricsRequest represents the proto ComputeModelMetricsRequest
// message. Both bounds are RFC 3339 timestamps and may be empty.
type ComputeModelMetricsRequest struct {
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
}

// ComputeModelMetricsResponse represents the proto ComputeModelMetricsResponse message.
type ComputeModelMetricsResponse struct {
	Metrics     map[string]float64 `json:"metrics"`
	PeriodStart string             `json:"period_start"`
	PeriodEnd   string             `json:"period_end"`
}

// AssessRisk scores a borrower.
func (h *Handler) AssessRisk(ctx context.Context, req *AssessRiskRequest) (*AssessRiskResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if req.Features == nil {
		return nil, status.Error(codes.InvalidArgument, "features is required")
	}

	resp, err := h.assessor.Execute(ctx, dto.AssessRequest{
		CustomerID:      req.CustomerID,
		Features:        req.Features,
		IncludeSchedule: req.IncludeSchedule,
	})
	if err != nil {
		return nil, h.toStatus("AssessRisk", err)
	}
	return &AssessRiskResponse{Assessment: resp}, nil
}

// RecordOutcome attaches an observed outcome to the customer's latest prediction.
func (h *Handler) RecordOutcome(ctx context.Context, req *RecordOutcomeRequest) (*RecordOutcomeResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	dtoReq := dto.RecordOutcomeRequest{
		CustomerID:    req.CustomerID,
		LoanApproved:  req.LoanApproved,
		ActualDefault: req.ActualDefault,
		Notes:         req.Notes,
	}
	if req.LoanAmount != "" {
		amount, err := decimal.NewFromString(req.LoanAmount)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid loan_amount: %v", err)
		}
		dtoReq.LoanAmount = &amount
	}
	if req.DaysToDefault != nil {
		days := int(*req.DaysToDefault)
		dtoReq.DaysToDefault = &days
	}

	resp, err := h.outcomes.Execute(ctx, dtoReq)
	if err != nil {
		return nil, h.toStatus("RecordOutcome", err)
	}
	return &RecordOutcomeResponse{
		Status:      resp.Status,
		Message:     resp.Message,
		RowsUpdated: resp.RowsUpdated,
		Timestamp:   resp.Timestamp.Format(time.RFC3339),
	}, nil
}

// ListPredictions returns a customer's most recent predictions.
func (h *Handler) ListPredictions(ctx context.Context, req *ListPredictionsRequest) (*ListPredictionsResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	resp, err := h.history.Execute(ctx, dto.ListPredictionsRequest{
		CustomerID: req.CustomerID,
		Limit:      int(req.Limit),
	})
	if err != nil {
		return nil, h.toStatus("ListPredictions", err)
	}
	return &ListPredictionsResponse{
		CustomerID:  resp.CustomerID,
		Predictions: resp.Predictions,
	}, nil
}

// ComputeModelMetrics aggregates and stores monitoring metrics for a window.
func (h *Handler) ComputeModelMetrics(ctx context.Context, req *ComputeModelMetricsRequest) (*ComputeModelMetricsResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	var window dto.ModelMetricsRequest
	var err error
	if window.From, err = parseTimestamp("period_start", req.PeriodStart); err != nil {
		return nil, err
	}
	if window.To, err = parseTimestamp("period_end", req.PeriodEnd); err != nil {
		return nil, err
	}

	resp, err := h.metrics.Execute(ctx, window)
	if err != nil {
		return nil, h.toStatus("ComputeModelMetrics", err)
	}
	return &ComputeModelMetricsResponse{
		PeriodStart: resp.From.Format(time.RFC3339),
		PeriodEnd:   resp.To.Format(time.RFC3339),
		Metrics:     resp.Metrics,
	}, nil
}

func parseTimestamp(field, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, status.Errorf(codes.InvalidArgument, "%s must be an RFC 3339 timestamp", field)
	}
	return t, nil
}

// toStatus maps a use case error to a gRPC status.
func (h *Handler) toStatus(method string, err error) error {
	switch {
	case errors.Is(err, valueobject.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, valueobject.ErrModelUnavailable),
		errors.Is(err, valueobject.ErrInvalidModelOutput),
		errors.Is(err, valueobject.ErrStoreUnavailable):
		h.logger.Warn(method+" unavailable", "error", err)
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		h.logger.Error(method+" failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}
