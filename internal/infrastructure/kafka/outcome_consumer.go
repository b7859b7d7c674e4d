package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lendwise/loanrisk/internal/application/dto"
	"github.com/lendwise/loanrisk/internal/domain/valueobject"
	pkgkafka "github.com/lendwise/loanrisk/pkg/kafka"
)

// OutcomeRecorder records an observed loan outcome.
type OutcomeRecorder interface {
	Execute(ctx context.Context, req dto.RecordOutcomeRequest) (dto.OutcomeResponse, error)
}

// OutcomeHandler turns outcome reports published by the loan servicing
// system into RecordOutcome calls. Malformed reports are skipped; storage
// failures are left uncommitted for redelivery.
type OutcomeHandler struct {
	recorder OutcomeRecorder
	logger   *slog.Logger
}

// NewOutcomeHandler creates an OutcomeHandler.
func NewOutcomeHandler(recorder OutcomeRecorder, logger *slog.Logger) *OutcomeHandler {
	return &OutcomeHandler{recorder: recorder, logger: logger}
}

// Handle processes one message. It satisfies pkg/kafka.Handler.
func (h *OutcomeHandler) Handle(ctx context.Context, msg pkgkafka.Message) error {
	var req dto.RecordOutcomeRequest
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		return fmt.Errorf("%w: decode outcome report: %v", pkgkafka.ErrSkipMessage, err)
	}
	if req.CustomerID == "" && len(msg.Key) > 0 {
		req.CustomerID = string(msg.Key)
	}

	resp, err := h.recorder.Execute(ctx, req)
	if err != nil {
		if errors.Is(err, valueobject.ErrInvalidInput) {
			return fmt.Errorf("%w: %v", pkgkafka.ErrSkipMessage, err)
		}
		return fmt.Errorf("failed to record outcome for %s: %w", req.CustomerID, err)
	}

	h.logger.InfoContext(ctx, "outcome consumed",
		"customer_id", req.CustomerID,
		"rows_updated", resp.RowsUpdated,
	)
	return nil
}
