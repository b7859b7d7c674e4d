package valueobject

import (
	"fmt"
	"regexp"
)

var tierCodePattern = regexp.MustCompile(`^[A-Z]$`)

// RiskTier is an immutable value object describing the decision band a risk
// score falls into.
type RiskTier struct {
	label          string
	code           string
	recommendation Recommendation
	description    string
	color          string
	rateAdjustment float64
}

// NewRiskTier creates a validated RiskTier.
// rateAdjustment is expressed in percentage points added to the base rate.
func NewRiskTier(
	code, label string,
	rateAdjustment float64,
	recommendation Recommendation,
	description, color string,
) (RiskTier, error) {
	if !tierCodePattern.MatchString(code) {
		return RiskTier{}, fmt.Errorf("tier code %q must be a single letter A-Z: %w", code, ErrInvalidTierPolicy)
	}
	if label == "" {
		return RiskTier{}, fmt.Errorf("tier %s: label is required: %w", code, ErrInvalidTierPolicy)
	}
	if recommendation.IsZero() {
		return RiskTier{}, fmt.Errorf("tier %s: recommendation is required: %w", code, ErrInvalidTierPolicy)
	}
	if rateAdjustment < 0 {
		return RiskTier{}, fmt.Errorf("tier %s: rate adjustment must not be negative: %w", code, ErrInvalidTierPolicy)
	}

	return RiskTier{
		label:          label,
		code:           code,
		rateAdjustment: rateAdjustment,
		recommendation: recommendation,
		description:    description,
		color:          color,
	}, nil
}

// MustRiskTier is like NewRiskTier but panics on invalid input.
// It is intended for package-level tier tables.
func MustRiskTier(
	code, label string,
	rateAdjustment float64,
	recommendation Recommendation,
	description, color string,
) RiskTier {
	t, err := NewRiskTier(code, label, rateAdjustment, recommendation, description, color)
	if err != nil {
		panic(err)
	}
	return t
}

func (t RiskTier) Label() string                  { return t.label }
func (t RiskTier) Code() string                   { return t.code }
func (t RiskTier) RateAdjustment() float64        { return t.rateAdjustment }
func (t RiskTier) Recommendation() Recommendation { return t.recommendation }
func (t RiskTier) Description() string            { return t.description }
func (t RiskTier) Color() string                  { return t.color }

// AdjustedRate returns the lending rate in percent for the given base rate.
func (t RiskTier) AdjustedRate(baseRate float64) float64 {
	return baseRate + t.rateAdjustment
}

// IsZero returns true if the RiskTier has not been set.
func (t RiskTier) IsZero() bool {
	return t.code == ""
}

// Equal checks equality with another RiskTier.
func (t RiskTier) Equal(other RiskTier) bool {
	return t == other
}

// String returns "<code> (<label>)".
func (t RiskTier) String() string {
	return fmt.Sprintf("%s (%s)", t.code, t.label)
}
