package valueobject

import (
	"fmt"
	"strings"
)

// Recommendation is an immutable value object naming the lending action
// attached to a risk tier.
type Recommendation struct {
	value string
}

var (
	RecommendationAutoApprove          = Recommendation{value: "AUTO_APPROVE"}
	RecommendationApprove              = Recommendation{value: "APPROVE"}
	RecommendationManualReview         = Recommendation{value: "MANUAL_REVIEW"}
	RecommendationManualReviewRequired = Recommendation{value: "MANUAL_REVIEW_REQUIRED"}
	RecommendationDecline              = Recommendation{value: "DECLINE"}
)

// RecommendationFromString reconstructs a Recommendation from its string representation.
func RecommendationFromString(s string) (Recommendation, error) {
	switch s {
	case "AUTO_APPROVE":
		return RecommendationAutoApprove, nil
	case "APPROVE":
		return RecommendationApprove, nil
	case "MANUAL_REVIEW":
		return RecommendationManualReview, nil
	case "MANUAL_REVIEW_REQUIRED":
		return RecommendationManualReviewRequired, nil
	case "DECLINE":
		return RecommendationDecline, nil
	default:
		return Recommendation{}, fmt.Errorf("invalid recommendation: %s", s)
	}
}

// String returns the string representation.
func (r Recommendation) String() string {
	return r.value
}

// Message renders the recommendation for display, e.g. "MANUAL REVIEW".
func (r Recommendation) Message() string {
	return strings.ReplaceAll(r.value, "_", " ")
}

// RequiresReview reports whether a human underwriter must look at the case.
func (r Recommendation) RequiresReview() bool {
	return r == RecommendationManualReview || r == RecommendationManualReviewRequired
}

// IsApproval reports whether the recommendation approves without review.
func (r Recommendation) IsApproval() bool {
	return r == RecommendationAutoApprove || r == RecommendationApprove
}

// IsZero returns true if the Recommendation has not been set.
func (r Recommendation) IsZero() bool {
	return r.value == ""
}

// Equal checks equality with another Recommendation.
func (r Recommendation) Equal(other Recommendation) bool {
	return r.value == other.value
}
