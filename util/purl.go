package util

import (
	"fmt"
	"strings"

	"github.com/package-url/packageurl-go"
)

var ecosystemPurlTypes = map[string]string{
	"npm":        "npm",
	"PyPI":       "pypi",
	"Maven":      "maven",
	"Go":         "golang",
	"NuGet":      "nuget",
	"RubyGems":   "gem",
	"crates.io":  "cargo",
	"Packagist":  "composer",
	"Pub":        "pub",
	"CocoaPods":  "cocoapods",
	"Hex":        "hex",
	"Alpine":     "apk",
	"Wolfi":      "apk",
	"Chainguard": "apk",
	"Debian":     "deb",
	"Ubuntu":     "deb",
}

// CleanPURL removes qualifiers (after ?) but preserves the subpath (after #)
// to maintain module identity (e.g. #v2)
func CleanPURL(purlStr string) (string, error) {
	parsed, err := packageurl.FromString(purlStr)
	if err != nil {
		return "", err
	}

	cleaned := packageurl.PackageURL{
		Type:      parsed.Type,
		Namespace: parsed.Namespace,
		Name:      parsed.Name,
		Version:   parsed.Version,
		Subpath:   parsed.Subpath,
	}

	return strings.ToLower(cleaned.ToString()), nil
}

// EcosystemToPurlType converts an OSV ecosystem name to a PURL type.
// Wolfi and Chainguard advisories map to apk.
func EcosystemToPurlType(ecosystem string) string {
	if purlType, exists := ecosystemPurlTypes[ecosystem]; exists {
		return purlType
	}
	for key, value := range ecosystemPurlTypes {
		if strings.EqualFold(key, ecosystem) {
			return value
		}
	}
	return strings.ToLower(ecosystem)
}

// GetBasePURLFromComponents constructs a standardized base PURL from ecosystem and package name.
// Example: ("Wolfi", "wolfi", "glibc") -> "pkg:apk/wolfi/glibc"
func GetBasePURLFromComponents(ecosystem, namespace, name string) string {
	purlType := EcosystemToPurlType(ecosystem)

	var basePurl string
	if namespace != "" {
		basePurl = fmt.Sprintf("pkg:%s/%s/%s", purlType, namespace, name)
	} else {
		basePurl = fmt.Sprintf("pkg:%s/%s", purlType, name)
	}

	return strings.ToLower(basePurl)
}

// GetStandardBasePURL extracts a standardized base PURL (no version/qualifiers)
// Example: "pkg:apk/wolfi/glibc@2.42-r4" -> "pkg:apk/wolfi/glibc"
func GetStandardBasePURL(purlStr string) (string, error) {
	parsed, err := packageurl.FromString(purlStr)
	if err != nil {
		return "", err
	}

	base := packageurl.PackageURL{
		Type:      EcosystemToPurlType(parsed.Type),
		Namespace: parsed.Namespace,
		Name:      parsed.Name,
	}

	return strings.ToLower(base.ToString()), nil
}

// ParsePURL parses a PURL string and returns the parsed PackageURL
func ParsePURL(purlStr string) (*packageurl.PackageURL, error) {
	parsed, err := packageurl.FromString(purlStr)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
