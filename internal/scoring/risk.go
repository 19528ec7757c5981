package scoring

import (
	"fmt"
	"math"
	"strings"
)

// DataSensitivity is the classification of the data an application handles.
type DataSensitivity string

// Supported sensitivities, from least to most regulated.
const (
	SensitivityPublic          DataSensitivity = "PUBLIC"
	SensitivityInternal        DataSensitivity = "INTERNAL"
	SensitivityConfidential    DataSensitivity = "CONFIDENTIAL"
	SensitivitySensitive       DataSensitivity = "SENSITIVE"
	SensitivityHighlyRegulated DataSensitivity = "HIGHLY_REGULATED"
)

var sensitivityMultipliers = map[DataSensitivity]float64{
	SensitivityPublic:          1.0,
	SensitivityInternal:        1.1,
	SensitivityConfidential:    1.3,
	SensitivitySensitive:       1.5,
	SensitivityHighlyRegulated: 1.8,
}

// ParseDataSensitivity accepts any case and "-" or " " separators. An empty
// string maps to INTERNAL.
func ParseDataSensitivity(s string) (DataSensitivity, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	if norm == "" {
		return SensitivityInternal, nil
	}
	d := DataSensitivity(norm)
	if _, ok := sensitivityMultipliers[d]; !ok {
		return "", fmt.Errorf("unknown data sensitivity %q", s)
	}
	return d, nil
}

// RiskMultiplier returns the factor applied to contextual risk. Unknown
// values are treated as INTERNAL.
func (d DataSensitivity) RiskMultiplier() float64 {
	if m, ok := sensitivityMultipliers[d]; ok {
		return m
	}
	return sensitivityMultipliers[SensitivityInternal]
}

// RequiresSpecialProtection is true for SENSITIVE and HIGHLY_REGULATED data.
func (d DataSensitivity) RequiresSpecialProtection() bool {
	return d == SensitivitySensitive || d == SensitivityHighlyRegulated
}

// RiskProfile is the contextual snapshot of an application used for scoring.
// It is derived on demand and never stored.
type RiskProfile struct {
	InternetExposed     bool
	DataSensitivity     DataSensitivity
	RuntimeEnvironments []string
	KnownMitigations    []string
	DependencyCount     int
}

// InProduction reports whether any runtime environment is prod or production.
func (p RiskProfile) InProduction() bool {
	for _, env := range p.RuntimeEnvironments {
		e := strings.TrimSpace(env)
		if strings.EqualFold(e, "prod") || strings.EqualFold(e, "production") {
			return true
		}
	}
	return false
}

// RiskFactor multiplies exposure, sensitivity, environment, mitigation and
// dependency-count adjustments starting from 1.0.
func (p RiskProfile) RiskFactor() float64 {
	factor := 1.0

	if p.InternetExposed {
		factor *= 1.3
	}

	factor *= p.DataSensitivity.RiskMultiplier()

	if p.InProduction() {
		factor *= 1.2
	}

	reduction := math.Min(0.2, float64(len(p.KnownMitigations))*0.05)
	factor *= 1.0 - reduction

	switch {
	case p.DependencyCount > 100:
		factor *= 1.1
	case p.DependencyCount > 50:
		factor *= 1.05
	}

	return factor
}

// IsCriticalInfrastructure is true for internet-exposed production systems
// holding sensitive or regulated data.
func (p RiskProfile) IsCriticalInfrastructure() bool {
	return p.InternetExposed && p.DataSensitivity.RequiresSpecialProtection() && p.InProduction()
}
