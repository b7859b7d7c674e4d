package ml

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/lendwise/loanrisk/internal/domain/model"
	"github.com/lendwise/loanrisk/internal/domain/port"
)

// ScoreCache stores model scores keyed by feature fingerprint.
type ScoreCache interface {
	Get(ctx context.Context, key string) (float64, bool, error)
	Set(ctx context.Context, key string, score float64, ttl time.Duration) error
}

// CachedModel memoises the scores of an inner model. Cache failures are
// logged and fall through to the inner model.
type CachedModel struct {
	inner  port.RiskModel
	cache  ScoreCache
	logger *slog.Logger
	ttl    time.Duration
}

// NewCachedModel wraps inner with cache. A zero ttl keeps entries forever.
func NewCachedModel(inner port.RiskModel, cache ScoreCache, ttl time.Duration, logger *slog.Logger) *CachedModel {
	return &CachedModel{inner: inner, cache: cache, ttl: ttl, logger: logger}
}

// Predict returns the cached score for identical features of the same model
// version, calling the inner model on a miss.
func (m *CachedModel) Predict(ctx context.Context, features model.BorrowerFeatures) (float64, error) {
	key, err := m.cacheKey(features)
	if err != nil {
		return 0, err
	}

	score, hit, err := m.cache.Get(ctx, key)
	if err != nil {
		m.logger.WarnContext(ctx, "score cache lookup failed, calling model", "error", err)
	} else if hit {
		return score, nil
	}

	score, err = m.inner.Predict(ctx, features)
	if err != nil {
		return 0, err
	}

	if err := m.cache.Set(ctx, key, score, m.ttl); err != nil {
		m.logger.WarnContext(ctx, "failed to cache model score", "error", err)
	}
	return score, nil
}

// Info returns the inner model's metadata.
func (m *CachedModel) Info() port.ModelInfo {
	return m.inner.Info()
}

func (m *CachedModel) cacheKey(features model.BorrowerFeatures) (string, error) {
	// encoding/json sorts map keys, so equal features hash equally.
	payload, err := json.Marshal(features.Values())
	if err != nil {
		return "", fmt.Errorf("failed to fingerprint features: %w", err)
	}
	sum := sha256.Sum256(payload)
	return "loanrisk:score:" + m.inner.Info().Version + ":" + hex.EncodeToString(sum[:]), nil
}
