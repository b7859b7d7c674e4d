package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/lendwise/loanrisk/internal/domain/model"
	"github.com/lendwise/loanrisk/internal/domain/port"
	"github.com/lendwise/loanrisk/internal/domain/valueobject"
)

// DefaultTimeout bounds a single call to the model server.
const DefaultTimeout = 5 * time.Second

// maxResponseBytes caps how much of a model server response is read.
const maxResponseBytes = 1 << 20

// HTTPModelClientConfig configures an HTTPModelClient.
type HTTPModelClientConfig struct {
	Endpoint     string
	Version      string
	TrainingDate string
	Timeout      time.Duration
}

// HTTPModelClient implements port.RiskModel against a model server that
// accepts the feature vector as JSON and answers with a single score.
type HTTPModelClient struct {
	httpClient *http.Client
	logger     *slog.Logger
	endpoint   string
	info       port.ModelInfo
}

// NewHTTPModelClient creates a client for the model server at cfg.Endpoint.
func NewHTTPModelClient(cfg HTTPModelClientConfig, logger *slog.Logger) (*HTTPModelClient, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("model endpoint is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPModelClient{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		endpoint:   cfg.Endpoint,
		info: port.ModelInfo{
			Version:      cfg.Version,
			TrainingDate: cfg.TrainingDate,
			Source:       cfg.Endpoint,
		},
	}, nil
}

type predictRequest struct {
	Features     map[string]any `json:"features"`
	FeatureNames []string       `json:"feature_names"`
}

type predictResponse struct {
	RiskScore   *float64  `json:"risk_score"`
	Predictions []float64 `json:"predictions"`
}

// Predict sends the features in training column order and returns the score.
func (c *HTTPModelClient) Predict(ctx context.Context, features model.BorrowerFeatures) (float64, error) {
	body, err := json.Marshal(predictRequest{
		FeatureNames: model.FeatureNames(),
		Features:     features.Values(),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to encode model request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to build model request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("model request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, fmt.Errorf("failed to read model response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("model server returned %d: %s", resp.StatusCode, bytes.TrimSpace(payload))
	}

	var out predictResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return 0, fmt.Errorf("%w: undecodable response: %v", valueobject.ErrInvalidModelOutput, err)
	}

	var score float64
	switch {
	case out.RiskScore != nil:
		score = *out.RiskScore
	case len(out.Predictions) > 0:
		score = out.Predictions[0]
	default:
		return 0, fmt.Errorf("%w: response carries no score", valueobject.ErrInvalidModelOutput)
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, valueobject.ErrInvalidModelOutput
	}

	c.logger.DebugContext(ctx, "model prediction received",
		slog.Float64("risk_score", score),
		slog.Duration("latency", time.Since(start)),
	)
	return score, nil
}

// Info returns the configured model metadata.
func (c *HTTPModelClient) Info() port.ModelInfo {
	return c.info
}
