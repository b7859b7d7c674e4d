package service

import "github.com/lendwise/loanrisk/internal/domain/valueobject"

// RiskTierClassifier maps a risk probability to a decision tier.
type RiskTierClassifier struct {
	policy TierPolicy
}

// NewRiskTierClassifier creates a classifier over the given policy.
func NewRiskTierClassifier(policy TierPolicy) *RiskTierClassifier {
	return &RiskTierClassifier{policy: policy}
}

// Classify returns the tier for riskScore. It is total: scores below zero
// land in the first tier and scores above one in the last.
func (c *RiskTierClassifier) Classify(riskScore float64) valueobject.RiskTier {
	return c.policy.Tier(riskScore)
}

// Policy returns the policy the classifier was built with.
func (c *RiskTierClassifier) Policy() TierPolicy {
	return c.policy
}

var defaultClassifier = NewRiskTierClassifier(DefaultTierPolicy())

// ClassifyRiskTier classifies riskScore with the default five-tier policy.
func ClassifyRiskTier(riskScore float64) valueobject.RiskTier {
	return defaultClassifier.Classify(riskScore)
}
