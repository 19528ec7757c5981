package scoring

import (
	"errors"
	"fmt"
	"math"
	"unicode/utf8"
)

// ErrInvalidConfidence is returned when a confidence level is outside [0.0, 1.0].
var ErrInvalidConfidence = errors.New("invalid confidence level")

// RejectReason names the rule that caused an AI analysis to be discarded.
type RejectReason string

// Rejection reasons, in evaluation order.
const (
	RejectLowConfidence       RejectReason = "low_confidence"
	RejectExcessiveAdjustment RejectReason = "excessive_adjustment"
	RejectWeakJustification   RejectReason = "insufficient_justification"
	RejectInvalidScore        RejectReason = "invalid_score"
	RejectProviderError       RejectReason = "provider_error"
)

// ValidateConfidence checks that c is a probability.
func ValidateConfidence(c float64) error {
	if math.IsNaN(c) || c < 0.0 || c > 1.0 {
		return fmt.Errorf("%w: %v is outside [0.0, 1.0]", ErrInvalidConfidence, c)
	}
	return nil
}

// ValidateAndConstrainScore bounds an AI-suggested score against the baseline.
//
// The steps run in a fixed order: additive clamp to baseline ±MaxAIAdjustment,
// critical floor (a critical baseline is never lowered), multiplicative cap at
// baseline×MaxScoreMultiplier, then the global CVSS range. A zero baseline
// therefore always yields 0.0.
func ValidateAndConstrainScore(aiScore, baseline SeverityScore) SeverityScore {
	ai := aiScore.value
	b := baseline.value

	maxAllowed := b + MaxAIAdjustment
	minAllowed := b - MaxAIAdjustment
	if ai > maxAllowed {
		ai = maxAllowed
	} else if ai < minAllowed {
		ai = minAllowed
	}

	if baseline.IsCritical() && ai < b {
		ai = b
	}

	if capped := b * MaxScoreMultiplier; ai > capped {
		ai = capped
	}

	ai = math.Min(MaxScore, math.Max(MinScore, ai))

	return mustScore(ai)
}

// RejectionReason returns the first rule that rejects the AI analysis, or ""
// when the analysis is usable.
func RejectionReason(aiScore, baseline SeverityScore, confidence float64, justification string) RejectReason {
	if confidence < MinConfidenceAcceptable {
		return RejectLowConfidence
	}
	if math.Abs(aiScore.value-baseline.value) > MaxAdjustmentBeforeRejection {
		return RejectExcessiveAdjustment
	}
	if utf8.RuneCountInString(justification) < FallbackMinJustificationLength {
		return RejectWeakJustification
	}
	return ""
}

// ShouldRejectAIAnalysis reports whether the AI result must be discarded in
// favour of the baseline.
func ShouldRejectAIAnalysis(aiScore, baseline SeverityScore, confidence float64, justification string) bool {
	return RejectionReason(aiScore, baseline, confidence, justification) != ""
}

// BlendScores weights the AI score by confidence, capped at MaxAIWeight.
func BlendScores(aiScore, baseline SeverityScore, confidence float64) (SeverityScore, error) {
	if err := ValidateConfidence(confidence); err != nil {
		return SeverityScore{}, err
	}
	aiWeight := math.Min(MaxAIWeight, confidence)
	baselineWeight := 1.0 - aiWeight

	blended := baseline.value*baselineWeight + aiScore.value*aiWeight

	// Rounding may push the weighted sum just past an endpoint.
	lo := math.Min(aiScore.value, baseline.value)
	hi := math.Max(aiScore.value, baseline.value)
	blended = math.Min(hi, math.Max(lo, blended))

	return NewSeverityScore(blended)
}

// RequiresHumanReview reports whether an analyst must confirm the result.
func RequiresHumanReview(finalScore, aiScore, baseline SeverityScore, confidence float64) bool {
	if confidence < MinConfidenceForNoReview {
		return true
	}
	if finalScore.IsCritical() {
		return true
	}
	return math.Abs(aiScore.value-baseline.value) > MinDiscrepancyForReview
}

// Outcome is the result of running the full validation sequence.
type Outcome struct {
	Baseline       SeverityScore
	Suggested      SeverityScore
	Constrained    SeverityScore
	Final          SeverityScore
	Confidence     float64
	Rejected       bool
	Reason         RejectReason
	RequiresReview bool
}

// BaselineOutcome is the outcome used when no AI result can be trusted.
func BaselineOutcome(baseline SeverityScore, reason RejectReason) Outcome {
	return Outcome{
		Baseline:       baseline,
		Suggested:      baseline,
		Constrained:    baseline,
		Final:          baseline,
		Confidence:     DefaultFallbackConfidence,
		Rejected:       true,
		Reason:         reason,
		RequiresReview: RequiresHumanReview(baseline, baseline, baseline, DefaultFallbackConfidence),
	}
}

// Evaluate rejects, constrains and blends an AI suggestion in the order the
// assessment workflow requires.
func Evaluate(aiScore, baseline SeverityScore, confidence float64, justification string) (Outcome, error) {
	if err := ValidateConfidence(confidence); err != nil {
		return Outcome{}, err
	}

	if reason := RejectionReason(aiScore, baseline, confidence, justification); reason != "" {
		out := BaselineOutcome(baseline, reason)
		out.Suggested = aiScore
		return out, nil
	}

	constrained := ValidateAndConstrainScore(aiScore, baseline)
	final, err := BlendScores(constrained, baseline, confidence)
	if err != nil {
		return Outcome{}, fmt.Errorf("blend scores: %w", err)
	}

	return Outcome{
		Baseline:       baseline,
		Suggested:      aiScore,
		Constrained:    constrained,
		Final:          final,
		Confidence:     confidence,
		RequiresReview: RequiresHumanReview(final, constrained, baseline, confidence),
	}, nil
}
