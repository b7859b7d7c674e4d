package service_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lendwise/loanrisk/internal/domain/service"
	"github.com/lendwise/loanrisk/internal/domain/valueobject"
)

func TestClassifyRiskTier_Boundaries(t *testing.T) {
	tests := []struct {
		name           string
		score          float64
		code           string
		label          string
		recommendation valueobject.Recommendation
	}{
		{"negative score clamps to A", -0.5, "A", "Low Risk", valueobject.RecommendationAutoApprove},
		{"zero", 0.0, "A", "Low Risk", valueobject.RecommendationAutoApprove},
		{"just below 0.30", 0.2999999, "A", "Low Risk", valueobject.RecommendationAutoApprove},
		{"exactly 0.30", 0.30, "B", "Medium-Low Risk", valueobject.RecommendationApprove},
		{"just below 0.50", 0.4999, "B", "Medium-Low Risk", valueobject.RecommendationApprove},
		{"exactly 0.50", 0.50, "C", "Medium Risk", valueobject.RecommendationManualReview},
		{"exactly 0.65", 0.65, "D", "Medium-High Risk", valueobject.RecommendationManualReviewRequired},
		{"just below 0.80", 0.7999, "D", "Medium-High Risk", valueobject.RecommendationManualReviewRequired},
		{"exactly 0.80", 0.80, "E", "High Risk", valueobject.RecommendationDecline},
		{"one", 1.0, "E", "High Risk", valueobject.RecommendationDecline},
		{"above one clamps to E", 1.5, "E", "High Risk", valueobject.RecommendationDecline},
		{"NaN falls to E", math.NaN(), "E", "High Risk", valueobject.RecommendationDecline},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier := service.ClassifyRiskTier(tt.score)
			assert.Equal(t, tt.code, tier.Code())
			assert.Equal(t, tt.label, tier.Label())
			assert.True(t, tt.recommendation.Equal(tier.Recommendation()),
				"recommendation = %s, want %s", tier.Recommendation(), tt.recommendation)
		})
	}
}

func TestDefaultTierPolicy_Table(t *testing.T) {
	expected := []struct {
		code        string
		rateAdj     float64
		description string
		color       string
	}{
		{"A", 0.0, "Excellent credit profile", "#28a745"},
		{"B", 1.0, "Good credit profile", "#5cb85c"},
		{"C", 2.0, "Acceptable risk", "#ffc107"},
		{"D", 3.5, "Elevated risk", "#ff9800"},
		{"E", 5.0, "Significant risk", "#dc3545"},
	}

	policy := service.DefaultTierPolicy()
	bands := policy.Bands()
	require.Len(t, bands, len(expected))
	assert.Equal(t, "five-tier", policy.Name())

	for i, want := range expected {
		tier := bands[i].Tier
		assert.Equal(t, want.code, tier.Code())
		assert.Equal(t, want.rateAdj, tier.RateAdjustment())
		assert.Equal(t, want.description, tier.Description())
		assert.Equal(t, want.color, tier.Color())
	}
	assert.True(t, math.IsInf(bands[len(bands)-1].UpperBound, 1))
}

func TestClassify_LowRiskRangeAlwaysAutoApproves(t *testing.T) {
	for score := 0.0; score < 0.3; score += 0.001 {
		tier := service.ClassifyRiskTier(score)
		require.Equal(t, "A", tier.Code(), "score %v", score)
		require.True(t, tier.Recommendation().Equal(valueobject.RecommendationAutoApprove))
	}
}

func TestTierPolicy_TierByCode(t *testing.T) {
	policy := service.DefaultTierPolicy()

	tier, ok := policy.TierByCode("C")
	require.True(t, ok)
	assert.Equal(t, "Medium Risk", tier.Label())

	_, ok = policy.TierByCode("Z")
	assert.False(t, ok)
}

func TestNewTierPolicy_Validation(t *testing.T) {
	low := valueobject.MustRiskTier("A", "Low", 0, valueobject.RecommendationApprove, "", "")
	mid := valueobject.MustRiskTier("B", "Mid", 1, valueobject.RecommendationManualReview, "", "")
	high := valueobject.MustRiskTier("C", "High", 2, valueobject.RecommendationDecline, "", "")

	tests := []struct {
		name   string
		policy string
		bands  []service.TierBand
	}{
		{"empty name", "", []service.TierBand{{UpperBound: math.Inf(1), Tier: low}}},
		{"no bands", "p", nil},
		{"bounded last band", "p", []service.TierBand{{UpperBound: 0.5, Tier: low}, {UpperBound: 0.9, Tier: high}}},
		{"unordered bounds", "p", []service.TierBand{
			{UpperBound: 0.6, Tier: low}, {UpperBound: 0.4, Tier: mid}, {UpperBound: math.Inf(1), Tier: high},
		}},
		{"duplicate code", "p", []service.TierBand{{UpperBound: 0.5, Tier: low}, {UpperBound: math.Inf(1), Tier: low}}},
		{"NaN bound", "p", []service.TierBand{{UpperBound: math.NaN(), Tier: low}, {UpperBound: math.Inf(1), Tier: high}}},
		{"zero tier", "p", []service.TierBand{{UpperBound: math.Inf(1)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.NewTierPolicy(tt.policy, tt.bands)
			require.Error(t, err)
			assert.ErrorIs(t, err, valueobject.ErrInvalidTierPolicy)
		})
	}
}

func TestRiskTierClassifier_CustomPolicy(t *testing.T) {
	policy, err := service.NewTierPolicy("three-tier", []service.TierBand{
		{UpperBound: 0.4, Tier: valueobject.MustRiskTier("A", "Low Risk", 0, valueobject.RecommendationApprove, "", "")},
		{UpperBound: 0.7, Tier: valueobject.MustRiskTier("B", "Medium Risk", 2, valueobject.RecommendationManualReview, "", "")},
		{UpperBound: math.Inf(1), Tier: valueobject.MustRiskTier("C", "High Risk", 4, valueobject.RecommendationDecline, "", "")},
	})
	require.NoError(t, err)

	classifier := service.NewRiskTierClassifier(policy)
	assert.Equal(t, "three-tier", classifier.Policy().Name())
	assert.Equal(t, "A", classifier.Classify(0.39).Code())
	assert.Equal(t, "B", classifier.Classify(0.4).Code())
	assert.Equal(t, "C", classifier.Classify(0.7).Code())
	assert.Equal(t, "C", classifier.Classify(42).Code())
}

func TestTierPolicy_BandsReturnsCopy(t *testing.T) {
	policy := service.DefaultTierPolicy()
	bands := policy.Bands()
	bands[0].UpperBound = 0.99

	assert.Equal(t, "A", policy.Tier(0.29).Code())
	assert.Equal(t, "B", policy.Tier(0.31).Code())
}
