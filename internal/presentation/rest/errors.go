package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lendwise/loanrisk/internal/domain/valueobject"
)

// Messages returned alongside error details.
const (
	msgPredictionFailed = "Prediction failed. Please check input format."
	msgOutcomeFailed    = "Outcome could not be logged."
	msgRequestFailed    = "Request failed."
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Field     string    `json:"field,omitempty"`
}

func errorBody(errText, message string) ErrorResponse {
	return ErrorResponse{
		Error:     errText,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// statusFor maps a use case error to an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, valueobject.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, valueobject.ErrInvalidModelOutput),
		errors.Is(err, valueobject.ErrModelUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, valueobject.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, err error, message string) {
	status := statusFor(err)
	body := errorBody(err.Error(), message)

	var invalid *valueobject.InvalidInputError
	if errors.As(err, &invalid) {
		body.Field = invalid.FieldName()
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, body)
}

func writeBadRequest(w http.ResponseWriter, err error, message string) {
	writeJSON(w, http.StatusBadRequest, errorBody(err.Error(), message))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck
}
