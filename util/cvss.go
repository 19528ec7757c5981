// Package util provides CVSS scoring, Package URL handling, OSV version range
// matching and logging helpers shared by the assessment backend.
package util

import (
	"strings"

	"github.com/google/osv-scanner/pkg/models"
	gocvss31 "github.com/pandatix/go-cvss/31"
	gocvss40 "github.com/pandatix/go-cvss/40"
)

// CalculateCVSSScore calculates the CVSS base score from a vector string
func CalculateCVSSScore(vectorStr string) float64 {
	if vectorStr == "" || !strings.HasPrefix(vectorStr, "CVSS:") {
		return 0
	}
	if strings.HasPrefix(vectorStr, "CVSS:3.1") || strings.HasPrefix(vectorStr, "CVSS:3.0") {
		if cvss31, err := gocvss31.ParseVector(vectorStr); err == nil {
			return cvss31.BaseScore()
		}
	}
	if strings.HasPrefix(vectorStr, "CVSS:4.0") {
		if cvss40, err := gocvss40.ParseVector(vectorStr); err == nil {
			return cvss40.Score()
		}
	}
	return 0
}

// HighestCVSSScore returns the highest CVSS v3/v4 base score found in an OSV
// record. When no vector can be scored it falls back to the lower bound of the
// advisory's textual severity, and reports whether a vector was used.
func HighestCVSSScore(vuln models.Vulnerability) (float64, bool) {
	var highest float64
	found := false

	for _, sev := range vuln.Severity {
		if sev.Type != models.SeverityCVSSV3 && sev.Type != models.SeverityCVSSV4 {
			continue
		}
		score := CalculateCVSSScore(sev.Score)
		if score <= 0 {
			continue
		}
		found = true
		if score > highest {
			highest = score
		}
	}

	if found {
		return highest, true
	}

	if rating, ok := vuln.DatabaseSpecific["severity"].(string); ok {
		return GetSeverityScore(rating), false
	}
	return 0, false
}

// GetSeverityRating returns the severity rating for a given CVSS score
func GetSeverityRating(score float64) string {
	switch {
	case score == 0:
		return "NONE"
	case score < 4.0:
		return "LOW"
	case score < 7.0:
		return "MEDIUM"
	case score < 9.0:
		return "HIGH"
	default:
		return "CRITICAL"
	}
}

// GetSeverityScore returns the lowest CVSS base score threshold for a given severity rating.
func GetSeverityScore(severity string) float64 {
	switch strings.ToUpper(strings.TrimSpace(severity)) {
	case "LOW":
		return 0.1
	case "MEDIUM", "MODERATE":
		return 4.0
	case "HIGH":
		return 7.0
	case "CRITICAL":
		return 9.0
	default:
		return 0.0
	}
}
