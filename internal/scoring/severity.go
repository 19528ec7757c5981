// Package scoring holds the severity score value type, the contextual risk
// profile of an application and the rules that validate AI-suggested scores
// against a deterministic CVSS baseline.
package scoring

import (
	"errors"
	"fmt"
	"math"

	"github.com/ortelius/pdvd-assess/util"
)

const (
	// MinScore is the lowest valid CVSS score.
	MinScore = 0.0
	// MaxScore is the highest valid CVSS score.
	MaxScore = 10.0
	// CriticalThreshold is the score from which a finding is critical.
	CriticalThreshold = 9.0
)

// ErrInvalidScore is returned when a score falls outside [0.0, 10.0].
var ErrInvalidScore = errors.New("invalid severity score")

// SeverityScore is an immutable CVSS-range score.
type SeverityScore struct {
	value float64
}

// NewSeverityScore validates v and returns it as a SeverityScore. Values are
// never clamped here; out of range input is an error.
func NewSeverityScore(v float64) (SeverityScore, error) {
	if math.IsNaN(v) || v < MinScore || v > MaxScore {
		return SeverityScore{}, fmt.Errorf("%w: %v is outside [%.1f, %.1f]", ErrInvalidScore, v, MinScore, MaxScore)
	}
	return SeverityScore{value: v}, nil
}

// mustScore is used where the arithmetic already guarantees the range.
func mustScore(v float64) SeverityScore {
	s, err := NewSeverityScore(v)
	if err != nil {
		panic(err)
	}
	return s
}

// Value returns the numeric score.
func (s SeverityScore) Value() float64 { return s.value }

// IsCritical reports whether the score is 9.0 or above.
func (s SeverityScore) IsCritical() bool {
	return s.value >= CriticalThreshold
}

// Compare returns -1, 0 or 1 when s is lower than, equal to or higher than o.
func (s SeverityScore) Compare(o SeverityScore) int {
	switch {
	case s.value < o.value:
		return -1
	case s.value > o.value:
		return 1
	default:
		return 0
	}
}

// Rating returns the CVSS qualitative rating (NONE, LOW, MEDIUM, HIGH, CRITICAL).
func (s SeverityScore) Rating() string {
	return util.GetSeverityRating(s.value)
}

func (s SeverityScore) String() string {
	return fmt.Sprintf("%.1f", s.value)
}
