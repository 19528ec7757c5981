package util

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	npm "github.com/aquasecurity/go-npm-version/pkg"
	pep440 "github.com/aquasecurity/go-pep440-version"
	"github.com/google/osv-scanner/pkg/models"
)

var logger = InitLogger()

// compareFunc orders two versions of one ecosystem. It returns an error when
// either side cannot be parsed.
type compareFunc func(a, b string) (int, error)

func compareSemver(a, b string) (int, error) {
	va, err := semver.NewVersion(a)
	if err != nil {
		return 0, err
	}
	vb, err := semver.NewVersion(b)
	if err != nil {
		return 0, err
	}
	return va.Compare(vb), nil
}

func compareNPM(a, b string) (int, error) {
	va, err := npm.NewVersion(a)
	if err != nil {
		return 0, err
	}
	vb, err := npm.NewVersion(b)
	if err != nil {
		return 0, err
	}
	switch {
	case va.LessThan(vb):
		return -1, nil
	case va.GreaterThan(vb):
		return 1, nil
	}
	return 0, nil
}

func comparePEP440(a, b string) (int, error) {
	va, err := pep440.Parse(a)
	if err != nil {
		return 0, err
	}
	vb, err := pep440.Parse(b)
	if err != nil {
		return 0, err
	}
	switch {
	case va.LessThan(vb):
		return -1, nil
	case va.GreaterThan(vb):
		return 1, nil
	}
	return 0, nil
}

func compareString(a, b string) (int, error) {
	return strings.Compare(a, b), nil
}

// comparerFor picks the version parser for an OSV ecosystem. Maven and the
// rest fall back to coerced semver.
func comparerFor(ecosystem string) compareFunc {
	switch strings.ToLower(ecosystem) {
	case "npm":
		return compareNPM
	case "pypi":
		return comparePEP440
	}
	return compareSemver
}

// IsVersionAffected checks if a version is affected by OSV ranges
// Uses ecosystem-specific version parsers for accurate comparison
func IsVersionAffected(version string, affected models.Affected) bool {
	for _, v := range affected.Versions {
		if version == v {
			return true
		}
	}

	for _, vrange := range affected.Ranges {
		if vrange.Type != models.RangeEcosystem && vrange.Type != models.RangeSemVer {
			continue
		}
		if isVersionInRange(version, vrange, string(affected.Package.Ecosystem)) {
			return true
		}
	}

	return false
}

// IsVersionAffectedAny checks if a version is affected by any of the provided affected ranges
func IsVersionAffectedAny(version string, allAffected []models.Affected) bool {
	for _, affected := range allAffected {
		if IsVersionAffected(version, affected) {
			return true
		}
	}
	return false
}

// rangeBounds holds the raw event boundaries of one OSV range.
type rangeBounds struct {
	introduced   string
	fixed        string
	lastAffected string
}

func boundsOf(vrange models.Range) rangeBounds {
	var b rangeBounds
	for _, event := range vrange.Events {
		if event.Introduced != "" {
			b.introduced = event.Introduced
		}
		if event.Fixed != "" {
			b.fixed = event.Fixed
		}
		if event.LastAffected != "" {
			b.lastAffected = event.LastAffected
		}
	}
	return b
}

// isVersionInRange requires both a lower bound (introduced) and an upper
// bound (fixed or last_affected) to avoid false positives. OSV's introduced
// value "0" means from the beginning.
func isVersionInRange(version string, vrange models.Range, ecosystem string) bool {
	b := boundsOf(vrange)
	if b.introduced == "" || (b.fixed == "" && b.lastAffected == "") {
		logger.Sugar().Debugf("Incomplete range data for version %s (introduced=%q, fixed=%q, last_affected=%q)",
			version, b.introduced, b.fixed, b.lastAffected)
		return false
	}

	cmp := comparerFor(ecosystem)
	if _, err := cmp(version, version); err != nil {
		cmp = compareString
	}

	return inBounds(version, b, cmp)
}

func inBounds(version string, b rangeBounds, cmp compareFunc) bool {
	if b.introduced != "0" {
		c, err := cmp(version, b.introduced)
		if err != nil {
			logger.Sugar().Warnf("Failed to parse introduced version '%s': %v", b.introduced, err)
		} else if c < 0 {
			return false
		}
	}

	if b.fixed != "" {
		c, err := cmp(version, b.fixed)
		if err != nil {
			logger.Sugar().Warnf("Failed to parse fixed version '%s': %v", b.fixed, err)
		} else if c >= 0 {
			return false
		}
	}

	if b.lastAffected != "" {
		c, err := cmp(version, b.lastAffected)
		if err != nil {
			logger.Sugar().Warnf("Failed to parse last_affected version '%s': %v", b.lastAffected, err)
		} else if c > 0 {
			return false
		}
	}

	return true
}

// FixedVersions returns the fix version of the range containing the current
// version. When no range contains it, every fixed version listed is returned.
func FixedVersions(currentVersion string, allAffected []models.Affected) []string {
	for _, affected := range allAffected {
		cmp := comparerFor(string(affected.Package.Ecosystem))
		if _, err := cmp(currentVersion, currentVersion); err != nil {
			continue
		}
		for _, vrange := range affected.Ranges {
			if vrange.Type != models.RangeEcosystem && vrange.Type != models.RangeSemVer {
				continue
			}
			b := boundsOf(vrange)
			if b.introduced == "" {
				b.introduced = "0"
			}
			if b.fixed != "" && inBounds(currentVersion, b, cmp) {
				return []string{b.fixed}
			}
		}
	}

	seen := make(map[string]bool)
	var all []string
	for _, affected := range allAffected {
		for _, vrange := range affected.Ranges {
			for _, event := range vrange.Events {
				if event.Fixed != "" && !seen[event.Fixed] {
					seen[event.Fixed] = true
					all = append(all, event.Fixed)
				}
			}
		}
	}
	return all
}
