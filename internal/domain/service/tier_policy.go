package service

import (
	"fmt"
	"math"

	"github.com/lendwise/loanrisk/internal/domain/valueobject"
)

// TierBand maps every score strictly below UpperBound (and at or above the
// previous band's bound) to Tier.
type TierBand struct {
	UpperBound float64
	Tier       valueobject.RiskTier
}

// TierPolicy is an ordered table of half-open score bands. The last band is
// unbounded so that every real score lands in exactly one tier.
type TierPolicy struct {
	name  string
	bands []TierBand
}

// NewTierPolicy validates bands and returns a TierPolicy.
func NewTierPolicy(name string, bands []TierBand) (TierPolicy, error) {
	if name == "" {
		return TierPolicy{}, fmt.Errorf("policy name is required: %w", valueobject.ErrInvalidTierPolicy)
	}
	if len(bands) == 0 {
		return TierPolicy{}, fmt.Errorf("policy %s has no bands: %w", name, valueobject.ErrInvalidTierPolicy)
	}

	seen := make(map[string]struct{}, len(bands))
	for i, b := range bands {
		if b.Tier.IsZero() {
			return TierPolicy{}, fmt.Errorf("policy %s: band %d has no tier: %w", name, i, valueobject.ErrInvalidTierPolicy)
		}
		if math.IsNaN(b.UpperBound) {
			return TierPolicy{}, fmt.Errorf("policy %s: band %s has NaN bound: %w", name, b.Tier.Code(), valueobject.ErrInvalidTierPolicy)
		}
		if i > 0 && b.UpperBound <= bands[i-1].UpperBound {
			return TierPolicy{}, fmt.Errorf("policy %s: band %s bound %v is not above %v: %w",
				name, b.Tier.Code(), b.UpperBound, bands[i-1].UpperBound, valueobject.ErrInvalidTierPolicy)
		}
		if _, dup := seen[b.Tier.Code()]; dup {
			return TierPolicy{}, fmt.Errorf("policy %s: duplicate tier code %s: %w", name, b.Tier.Code(), valueobject.ErrInvalidTierPolicy)
		}
		seen[b.Tier.Code()] = struct{}{}
	}
	if last := bands[len(bands)-1]; !math.IsInf(last.UpperBound, 1) {
		return TierPolicy{}, fmt.Errorf("policy %s: last band %s must be unbounded: %w", name, last.Tier.Code(), valueobject.ErrInvalidTierPolicy)
	}

	copied := make([]TierBand, len(bands))
	copy(copied, bands)
	return TierPolicy{name: name, bands: copied}, nil
}

// Name returns the policy name.
func (p TierPolicy) Name() string {
	return p.name
}

// Bands returns a copy of the bands in ascending order.
func (p TierPolicy) Bands() []TierBand {
	out := make([]TierBand, len(p.bands))
	copy(out, p.bands)
	return out
}

// Tier returns the tier for score. Bands are scanned in ascending order and
// the first band whose bound exceeds score wins. NaN matches no band and is
// assigned the last (highest-risk) tier.
func (p TierPolicy) Tier(score float64) valueobject.RiskTier {
	for _, b := range p.bands {
		if score < b.UpperBound {
			return b.Tier
		}
	}
	return p.bands[len(p.bands)-1].Tier
}

// TierByCode looks up a tier by its letter code.
func (p TierPolicy) TierByCode(code string) (valueobject.RiskTier, bool) {
	for _, b := range p.bands {
		if b.Tier.Code() == code {
			return b.Tier, true
		}
	}
	return valueobject.RiskTier{}, false
}

// DefaultTierPolicy returns the five-tier A-E table.
func DefaultTierPolicy() TierPolicy {
	p, err := NewTierPolicy("five-tier", []TierBand{
		{UpperBound: 0.30, Tier: valueobject.MustRiskTier("A", "Low Risk", 0.0,
			valueobject.RecommendationAutoApprove, "Excellent credit profile", "#28a745")},
		{UpperBound: 0.50, Tier: valueobject.MustRiskTier("B", "Medium-Low Risk", 1.0,
			valueobject.RecommendationApprove, "Good credit profile", "#5cb85c")},
		{UpperBound: 0.65, Tier: valueobject.MustRiskTier("C", "Medium Risk", 2.0,
			valueobject.RecommendationManualReview, "Acceptable risk", "#ffc107")},
		{UpperBound: 0.80, Tier: valueobject.MustRiskTier("D", "Medium-High Risk", 3.5,
			valueobject.RecommendationManualReviewRequired, "Elevated risk", "#ff9800")},
		{UpperBound: math.Inf(1), Tier: valueobject.MustRiskTier("E", "High Risk", 5.0,
			valueobject.RecommendationDecline, "Significant risk", "#dc3545")},
	})
	if err != nil {
		panic(err)
	}
	return p
}
