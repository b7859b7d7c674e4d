package valueobject

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks a request field that fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrModelUnavailable is returned when the risk model cannot produce a prediction.
	ErrModelUnavailable = errors.New("risk model unavailable")

	// ErrInvalidModelOutput is returned when the risk model returns a non-finite score.
	ErrInvalidModelOutput = errors.New("risk model returned an invalid score")

	// ErrStoreUnavailable is returned when an operation needs the prediction
	// store and none is configured or reachable.
	ErrStoreUnavailable = errors.New("prediction store unavailable")

	// ErrInvalidTierPolicy is returned for tier tables that are empty, unordered,
	// or do not cover the whole real line.
	ErrInvalidTierPolicy = errors.New("invalid tier policy")
)

// InvalidInputError names the offending field of a rejected request.
type InvalidInputError struct {
	Field  string
	Reason string
}

// NewInvalidInputError creates an InvalidInputError for field.
func NewInvalidInputError(field, reason string) *InvalidInputError {
	return &InvalidInputError{Field: field, Reason: reason}
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
}

// FieldName returns the name of the rejected field.
func (e *InvalidInputError) FieldName() string {
	return e.Field
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}
