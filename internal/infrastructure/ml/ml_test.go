package ml_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lendwise/loanrisk/internal/domain/model"
	"github.com/lendwise/loanrisk/internal/domain/port"
	"github.com/lendwise/loanrisk/internal/domain/valueobject"
	"github.com/lendwise/loanrisk/internal/infrastructure/ml"
	"github.com/lendwise/loanrisk/pkg/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func features(t *testing.T, overrides map[string]any) model.BorrowerFeatures {
	t.Helper()
	raw := testutil.BorrowerFeatures()
	for k, v := range overrides {
		raw[k] = v
	}
	f, err := model.ParseBorrowerFeatures(raw)
	require.NoError(t, err)
	return f
}

func newClient(t *testing.T, handler http.HandlerFunc) *ml.HTTPModelClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := ml.NewHTTPModelClient(ml.HTTPModelClientConfig{
		Endpoint:     srv.URL + "/predict",
		Version:      "1.1",
		TrainingDate: "2025-12-19",
		Timeout:      time.Second,
	}, discardLogger())
	require.NoError(t, err)
	return c
}

func TestHTTPModelClient_SendsFeatureVector(t *testing.T) {
	var got struct {
		FeatureNames []string       `json:"feature_names"`
		Features     map[string]any `json:"features"`
	}
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predict", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"risk_score": 0.42}`))
	})

	score, err := c.Predict(context.Background(), features(t, nil))
	require.NoError(t, err)
	assert.InDelta(t, 0.42, score, 1e-12)

	assert.Equal(t, model.FeatureNames(), got.FeatureNames)
	assert.Len(t, got.Features, 30)
	assert.Equal(t, "Employed", got.Features["EmploymentStatus"])
	assert.InDelta(t, 780.0, got.Features["CreditScore"], 1e-9)
}

func TestHTTPModelClient_Responses(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantScore float64
		wantErr   error
	}{
		{name: "risk_score field", status: 200, body: `{"risk_score": 0.7}`, wantScore: 0.7},
		{name: "predictions array", status: 200, body: `{"predictions": [0.31, 0.9]}`, wantScore: 0.31},
		{name: "no score", status: 200, body: `{"predictions": []}`, wantErr: valueobject.ErrInvalidModelOutput},
		{name: "not json", status: 200, body: `NaN`, wantErr: valueobject.ErrInvalidModelOutput},
		{name: "server error", status: 500, body: `boom`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			score, err := c.Predict(context.Background(), features(t, nil))
			if tt.status != 200 {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "500")
				return
			}
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.wantScore, score, 1e-12)
		})
	}
}

func TestHTTPModelClient_HonoursContext(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Predict(ctx, features(t, nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestHTTPModelClient_Info(t *testing.T) {
	c := newClient(t, func(http.ResponseWriter, *http.Request) {})
	info := c.Info()
	assert.Equal(t, "1.1", info.Version)
	assert.Equal(t, "2025-12-19", info.TrainingDate)
	assert.Contains(t, info.Source, "/predict")
}

func TestNewHTTPModelClient_RequiresEndpoint(t *testing.T) {
	_, err := ml.NewHTTPModelClient(ml.HTTPModelClientConfig{}, discardLogger())
	assert.Error(t, err)
}

func TestHeuristicModel(t *testing.T) {
	m := ml.NewHeuristicModel("1.1", "2025-12-19", discardLogger())
	ctx := context.Background()

	good, err := m.Predict(ctx, features(t, nil))
	require.NoError(t, err)
	assert.Less(t, good, 0.30, "prime borrower should land in tier A")

	risky, err := m.Predict(ctx, features(t, map[string]any{
		"CreditScore":            520.0,
		"PaymentHistory":         0.3,
		"PreviousLoanDefaults":   2.0,
		"BankruptcyHistory":      1.0,
		"TotalDebtToIncomeRatio": 0.7,
	}))
	require.NoError(t, err)
	assert.Greater(t, risky, 0.80)
	assert.Less(t, risky, 1.0)

	again, err := m.Predict(ctx, features(t, nil))
	require.NoError(t, err)
	assert.Equal(t, good, again)

	assert.Equal(t, "heuristic", m.Info().Source)
}

type fakeCache struct {
	entries map[string]float64
	getErr  error
	setErr  error
	sets    int
}

func (c *fakeCache) Get(_ context.Context, key string) (float64, bool, error) {
	if c.getErr != nil {
		return 0, false, c.getErr
	}
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *fakeCache) Set(_ context.Context, key string, score float64, _ time.Duration) error {
	c.sets++
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[key] = score
	return nil
}

type countingModel struct {
	calls int
	score float64
	err   error
}

func (m *countingModel) Predict(context.Context, model.BorrowerFeatures) (float64, error) {
	m.calls++
	return m.score, m.err
}

func (m *countingModel) Info() port.ModelInfo { return port.ModelInfo{Version: "1.1"} }

func TestCachedModel(t *testing.T) {
	ctx := context.Background()

	t.Run("second identical request is served from cache", func(t *testing.T) {
		inner := &countingModel{score: 0.33}
		cache := &fakeCache{entries: map[string]float64{}}
		m := ml.NewCachedModel(inner, cache, time.Minute, discardLogger())

		for i := 0; i < 3; i++ {
			score, err := m.Predict(ctx, features(t, nil))
			require.NoError(t, err)
			assert.InDelta(t, 0.33, score, 1e-12)
		}
		assert.Equal(t, 1, inner.calls)

		_, err := m.Predict(ctx, features(t, map[string]any{"Age": 36.0}))
		require.NoError(t, err)
		assert.Equal(t, 2, inner.calls)
		assert.Len(t, cache.entries, 2)
	})

	t.Run("cache failures fall through", func(t *testing.T) {
		inner := &countingModel{score: 0.5}
		cache := &fakeCache{entries: map[string]float64{}, getErr: errors.New("down"), setErr: errors.New("down")}
		m := ml.NewCachedModel(inner, cache, 0, discardLogger())

		score, err := m.Predict(ctx, features(t, nil))
		require.NoError(t, err)
		assert.InDelta(t, 0.5, score, 1e-12)
		assert.Equal(t, 1, cache.sets)
	})

	t.Run("model errors are not cached", func(t *testing.T) {
		inner := &countingModel{err: errors.New("timeout")}
		cache := &fakeCache{entries: map[string]float64{}}
		m := ml.NewCachedModel(inner, cache, 0, discardLogger())

		_, err := m.Predict(ctx, features(t, nil))
		require.Error(t, err)
		assert.Zero(t, cache.sets)
		assert.Equal(t, "1.1", m.Info().Version)
	})
}
