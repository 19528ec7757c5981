package scoring

// Business-rule thresholds for AI-assisted assessments. These are fixed at
// design time and shared by the validation engine and the AI adapters.
const (
	// MinJustificationLength is the preferred length of an AI justification.
	MinJustificationLength = 100

	// FallbackMinJustificationLength is the shortest justification accepted
	// before the analysis is rejected.
	FallbackMinJustificationLength = 50

	// MinConfidenceAcceptable is the confidence below which AI output is discarded.
	MinConfidenceAcceptable = 0.6

	// MinConfidenceForNoReview is the confidence below which an analyst must review.
	MinConfidenceForNoReview = 0.7

	// DefaultAIConfidence is assumed when a provider omits its confidence.
	DefaultAIConfidence = 0.7

	// DefaultFallbackConfidence is reported when the baseline is used on its own.
	DefaultFallbackConfidence = 0.5

	// MaxAIAdjustment is the largest move (in CVSS points) the AI may make from the baseline.
	MaxAIAdjustment = 1.5

	// MaxAdjustmentBeforeRejection is the deviation that marks a suggestion as hallucinated.
	MaxAdjustmentBeforeRejection = 3.0

	// MaxScoreMultiplier caps the AI score at baseline times this value.
	MaxScoreMultiplier = 2.0

	// MaxAIWeight is the largest weight the AI score receives when blending.
	MaxAIWeight = 0.7

	// MinDiscrepancyForReview is the AI/baseline gap that forces human review.
	MinDiscrepancyForReview = 2.0
)
