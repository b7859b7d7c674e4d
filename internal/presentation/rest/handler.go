package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lendwise/loanrisk/internal/application/dto"
)

const maxBodyBytes = 1 << 20

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

// AssessmentHandler serves the JSON assessment API.
type AssessmentHandler struct {
	assessor Assessor
	outcomes OutcomeRecorder
	history  PredictionLister
	metrics  MetricsComputer
	logger   *slog.Logger
}

// NewAssessmentHandler creates the JSON API handler.
func NewAssessmentHandler(
	assessor Assessor,
	outcomes OutcomeRecorder,
	history PredictionLister,
	metrics MetricsComputer,
	logger *slog.Logger,
) *AssessmentHandler {
	return &AssessmentHandler{
		assessor: assessor,
		outcomes: outcomes,
		history:  history,
		metrics:  metrics,
		logger:   logger,
	}
}

// Predict handles POST /predict.
func (h *AssessmentHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req dto.AssessRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err, msgPredictionFailed)
		return
	}
	if req.Features == nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing features object", msgPredictionFailed))
		return
	}

	resp, err := h.assessor.Execute(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err, msgPredictionFailed)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// LogOutcome handles POST /log_actual_outcome.
func (h *AssessmentHandler) LogOutcome(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordOutcomeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err, msgOutcomeFailed)
		return
	}

	resp, err := h.outcomes.Execute(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err, msgOutcomeFailed)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListPredictions handles GET /predictions/{customer_id}.
func (h *AssessmentHandler) ListPredictions(w http.ResponseWriter, r *http.Request) {
	req := dto.ListPredictionsRequest{CustomerID: chi.URLParam(r, "customer_id")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			writeBadRequest(w, fmt.Errorf("invalid limit %q", raw), msgRequestFailed)
			return
		}
		req.Limit = limit
	}

	resp, err := h.history.Execute(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err, msgRequestFailed)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ModelMetrics handles GET and POST /model/metrics. The window comes from
// the from/to query parameters (RFC 3339) or, for POST, a JSON body.
func (h *AssessmentHandler) ModelMetrics(w http.ResponseWriter, r *http.Request) {
	var req dto.ModelMetricsRequest
	if r.Method == http.MethodPost && r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeBadRequest(w, err, msgRequestFailed)
			return
		}
	} else {
		var err error
		if req.From, err = queryTime(r, "from"); err != nil {
			writeBadRequest(w, err, msgRequestFailed)
			return
		}
		if req.To, err = queryTime(r, "to"); err != nil {
			writeBadRequest(w, err, msgRequestFailed)
			return
		}
	}

	resp, err := h.metrics.Execute(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err, msgRequestFailed)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func queryTime(r *http.Request, key string) (time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: expected RFC 3339", key, raw)
	}
	return t, nil
}
