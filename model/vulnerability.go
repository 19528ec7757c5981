// Package model - Vulnerability wraps an OSV advisory with its computed CVSS base score.
package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/osv-scanner/pkg/models"
	"github.com/ortelius/pdvd-assess/util"
)

// ErrInvalidCveID is returned for identifiers not shaped like CVE-YYYY-NNNN.
var ErrInvalidCveID = errors.New("invalid CVE identifier")

var cveIDPattern = regexp.MustCompile(`^CVE-\d{4}-\d{4,}$`)

// ValidateCveID normalizes the identifier to upper case and checks its shape.
func ValidateCveID(id string) (string, error) {
	norm := strings.ToUpper(strings.TrimSpace(id))
	if !cveIDPattern.MatchString(norm) {
		return "", fmt.Errorf("%w: %q", ErrInvalidCveID, id)
	}
	return norm, nil
}

// Vulnerability is the catalog record used during an assessment.
type Vulnerability struct {
	models.Vulnerability
	CVSSBase       float64 `json:"cvss_base"`
	SeverityRating string  `json:"severity_rating"`
	FromVector     bool    `json:"from_vector"`
}

// NewVulnerability scores an OSV record.
func NewVulnerability(osv models.Vulnerability) *Vulnerability {
	score, fromVector := util.HighestCVSSScore(osv)
	return &Vulnerability{
		Vulnerability:  osv,
		CVSSBase:       score,
		SeverityRating: util.GetSeverityRating(score),
		FromVector:     fromVector,
	}
}

// CVEID returns the CVE alias of the record, or its own ID.
func (v *Vulnerability) CVEID() string {
	if strings.HasPrefix(v.ID, "CVE-") {
		return v.ID
	}
	for _, alias := range v.Aliases {
		if strings.HasPrefix(alias, "CVE-") {
			return alias
		}
	}
	return v.ID
}

// Description prefers the summary and falls back to the details.
func (v *Vulnerability) Description() string {
	if s := strings.TrimSpace(v.Summary); s != "" {
		return s
	}
	return strings.TrimSpace(v.Details)
}

// AffectedPackages lists "ecosystem/name" for every affected package.
func (v *Vulnerability) AffectedPackages() []string {
	var pkgs []string
	seen := map[string]bool{}
	for _, a := range v.Affected {
		p := a.Package.Name
		if a.Package.Ecosystem != "" {
			p = string(a.Package.Ecosystem) + "/" + p
		}
		if p != "" && !seen[p] {
			seen[p] = true
			pkgs = append(pkgs, p)
		}
	}
	return pkgs
}
