package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lendwise/loanrisk/internal/application/usecase"
)

func TestCheckHealth(t *testing.T) {
	tests := []struct {
		name      string
		repo      *mockPredictionRepository
		wantDB    string
		wantReady bool
	}{
		{
			name:      "store reachable",
			repo:      &mockPredictionRepository{},
			wantDB:    usecase.DatabaseConnected,
			wantReady: true,
		},
		{
			name: "store unreachable",
			repo: &mockPredictionRepository{
				pingFunc: func(context.Context) error { return errors.New("connection refused") },
			},
			wantDB:    usecase.DatabaseDisconnected,
			wantReady: false,
		},
		{
			name:      "store disabled",
			repo:      nil,
			wantDB:    usecase.DatabaseDisabled,
			wantReady: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var uc *usecase.CheckHealth
			if tt.repo == nil {
				uc = usecase.NewCheckHealth(&mockRiskModel{}, nil)
			} else {
				uc = usecase.NewCheckHealth(&mockRiskModel{}, tt.repo)
			}

			resp := uc.Execute(context.Background())
			assert.Equal(t, "healthy", resp.Status)
			assert.Equal(t, "1.1", resp.ModelVersion)
			assert.Equal(t, "2025-12-19", resp.TrainingDate)
			assert.Equal(t, tt.wantDB, resp.DatabaseStatus)
			assert.False(t, resp.Timestamp.IsZero())
			assert.Equal(t, tt.wantReady, uc.Ready(context.Background()))
		})
	}
}
