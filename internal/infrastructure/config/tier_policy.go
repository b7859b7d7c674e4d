package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lendwise/loanrisk/internal/domain/service"
	"github.com/lendwise/loanrisk/internal/domain/valueobject"
)

// tierPolicyFile is the YAML layout of a tier policy. The last tier may omit
// upper_bound, which then covers every remaining score.
type tierPolicyFile struct {
	Name  string     `yaml:"name"`
	Tiers []tierFile `yaml:"tiers"`
}

type tierFile struct {
	UpperBound     *float64 `yaml:"upper_bound"`
	Code           string   `yaml:"code"`
	Label          string   `yaml:"label"`
	Recommendation string   `yaml:"recommendation"`
	Description    string   `yaml:"description"`
	Color          string   `yaml:"color"`
	RateAdjustment float64  `yaml:"rate_adjustment"`
}

// LoadTierPolicy returns the policy in path, or the default five-tier policy
// when path is empty.
func LoadTierPolicy(path string) (service.TierPolicy, error) {
	if path == "" {
		return service.DefaultTierPolicy(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return service.TierPolicy{}, fmt.Errorf("read tier policy %s: %w", path, err)
	}
	return ParseTierPolicy(data)
}

// ParseTierPolicy decodes a YAML tier policy.
func ParseTierPolicy(data []byte) (service.TierPolicy, error) {
	var file tierPolicyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return service.TierPolicy{}, fmt.Errorf("%w: decode yaml: %v", valueobject.ErrInvalidTierPolicy, err)
	}

	bands := make([]service.TierBand, 0, len(file.Tiers))
	for i, t := range file.Tiers {
		rec, err := valueobject.RecommendationFromString(t.Recommendation)
		if err != nil {
			return service.TierPolicy{}, fmt.Errorf("%w: tier %d: %v", valueobject.ErrInvalidTierPolicy, i, err)
		}
		tier, err := valueobject.NewRiskTier(t.Code, t.Label, t.RateAdjustment, rec, t.Description, t.Color)
		if err != nil {
			return service.TierPolicy{}, fmt.Errorf("tier %d: %w", i, err)
		}

		upper := math.Inf(1)
		if t.UpperBound != nil {
			upper = *t.UpperBound
		}
		bands = append(bands, service.TierBand{UpperBound: upper, Tier: tier})
	}

	return service.NewTierPolicy(file.Name, bands)
}
