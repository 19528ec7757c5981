package scoring

import (
	"fmt"
	"math"
)

// ContextualBaseline scales a CVSS base score by the application's risk
// factor, capped at 10.0 and rounded to one decimal.
func ContextualBaseline(cvssBase float64, profile RiskProfile) (SeverityScore, error) {
	if _, err := NewSeverityScore(cvssBase); err != nil {
		return SeverityScore{}, fmt.Errorf("cvss base score: %w", err)
	}
	scaled := math.Min(MaxScore, cvssBase*profile.RiskFactor())
	return NewSeverityScore(math.Round(scaled*10) / 10)
}
