package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/lendwise/loanrisk/internal/application/dto"
	"github.com/lendwise/loanrisk/internal/domain/port"
	"github.com/lendwise/loanrisk/internal/domain/valueobject"
)

// Prediction history page sizes.
const (
	DefaultPredictionLimit = 20
	MaxPredictionLimit     = 100
)

// ListPredictions returns a customer's most recent predictions.
type ListPredictions struct {
	repo     port.PredictionRepository
	validate *validator.Validate
}

// NewListPredictions creates a new ListPredictions use case.
func NewListPredictions(repo port.PredictionRepository) *ListPredictions {
	return &ListPredictions{
		repo:     repo,
		validate: newValidator(),
	}
}

// Execute lists predictions, most recent first. A zero limit selects
// DefaultPredictionLimit.
func (uc *ListPredictions) Execute(ctx context.Context, req dto.ListPredictionsRequest) (dto.PredictionListResponse, error) {
	if uc.repo == nil {
		return dto.PredictionListResponse{}, fmt.Errorf("failed to list predictions: %w", valueobject.ErrStoreUnavailable)
	}

	req.CustomerID = strings.TrimSpace(req.CustomerID)
	if err := validateStruct(uc.validate, req); err != nil {
		return dto.PredictionListResponse{}, fmt.Errorf("failed to validate request: %w", err)
	}
	if req.Limit == 0 {
		req.Limit = DefaultPredictionLimit
	}

	predictions, err := uc.repo.FindByCustomerID(ctx, req.CustomerID, req.Limit)
	if err != nil {
		return dto.PredictionListResponse{}, fmt.Errorf("failed to list predictions: %w", err)
	}

	views := make([]dto.PredictionView, 0, len(predictions))
	for _, p := range predictions {
		views = append(views, dto.FromPrediction(p))
	}

	return dto.PredictionListResponse{
		CustomerID:  req.CustomerID,
		Predictions: views,
	}, nil
}
