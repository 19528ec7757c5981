// Package model - Application defines the software system a vulnerability is assessed against.
package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/osv-scanner/pkg/models"
	"github.com/ortelius/pdvd-assess/internal/scoring"
	"github.com/ortelius/pdvd-assess/util"
)

// Sentinel errors shared by the store, services and handlers.
var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
	ErrInvalidApplication = errors.New("invalid application")
)

const (
	minApplicationNameLen = 3
	maxApplicationNameLen = 100
)

// Dependency is a third-party package used by an application.
type Dependency struct {
	Name      string `json:"name" yaml:"name"`
	Version   string `json:"version" yaml:"version"`
	Ecosystem string `json:"ecosystem,omitempty" yaml:"ecosystem,omitempty"`
	Purl      string `json:"purl,omitempty" yaml:"purl,omitempty"`
}

// BasePURL returns the versionless package URL of the dependency. An explicit
// purl wins over one built from ecosystem and name.
func (d Dependency) BasePURL() string {
	if d.Purl != "" {
		if base, err := util.GetStandardBasePURL(d.Purl); err == nil {
			return base
		}
	}
	if d.Ecosystem == "" {
		return ""
	}
	namespace, name := "", d.Name
	if i := strings.LastIndex(d.Name, "/"); i > 0 {
		namespace, name = d.Name[:i], d.Name[i+1:]
	} else if i := strings.Index(d.Name, ":"); i > 0 && strings.EqualFold(d.Ecosystem, "Maven") {
		namespace, name = d.Name[:i], d.Name[i+1:]
	}
	return util.GetBasePURLFromComponents(d.Ecosystem, namespace, name)
}

// normalize strips purl qualifiers and takes a missing version from the purl.
func (d *Dependency) normalize() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: dependency name is required", ErrInvalidApplication)
	}
	if d.Purl == "" {
		return nil
	}
	cleaned, err := util.CleanPURL(d.Purl)
	if err != nil {
		return fmt.Errorf("%w: dependency %s has an invalid purl: %v", ErrInvalidApplication, d.Name, err)
	}
	d.Purl = cleaned
	if d.Version == "" {
		if parsed, err := util.ParsePURL(cleaned); err == nil {
			d.Version = parsed.Version
		}
	}
	return nil
}

// Application represents an application object stored in the database.
type Application struct {
	Key                 string       `json:"_key,omitempty" yaml:"key,omitempty"`
	Rev                 string       `json:"_rev,omitempty" yaml:"-"`
	ObjType             string       `json:"objtype,omitempty" yaml:"-"`
	Name                string       `json:"name" yaml:"name"`
	TechStack           []string     `json:"tech_stack" yaml:"tech_stack"`
	Dependencies        []Dependency `json:"dependencies" yaml:"dependencies"`
	InternetExposed     bool         `json:"internet_exposed" yaml:"internet_exposed"`
	DataSensitivity     string       `json:"data_sensitivity" yaml:"data_sensitivity"`
	RuntimeEnvironments []string     `json:"runtime_environments" yaml:"runtime_environments"`
	KnownMitigations    []string     `json:"known_mitigations" yaml:"known_mitigations"`
	CreatedAt           time.Time    `json:"created_at" yaml:"-"`
	UpdatedAt           time.Time    `json:"updated_at" yaml:"-"`
}

// NewApplication creates a new application with defaults applied
func NewApplication(name string) *Application {
	now := time.Now().UTC()
	return &Application{
		ObjType:         "Application",
		Name:            name,
		DataSensitivity: string(scoring.SensitivityInternal),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Validate normalizes the sensitivity and checks the name length.
func (a *Application) Validate() error {
	a.Name = strings.TrimSpace(a.Name)
	n := utf8.RuneCountInString(a.Name)
	if n < minApplicationNameLen || n > maxApplicationNameLen {
		return fmt.Errorf("%w: name must be between %d and %d characters", ErrInvalidApplication, minApplicationNameLen, maxApplicationNameLen)
	}

	sensitivity, err := scoring.ParseDataSensitivity(a.DataSensitivity)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidApplication, err)
	}
	a.DataSensitivity = string(sensitivity)

	for i := range a.Dependencies {
		if err := a.Dependencies[i].normalize(); err != nil {
			return err
		}
	}

	if a.ObjType == "" {
		a.ObjType = "Application"
	}
	return nil
}

// Clone returns a copy that shares no slices with a.
func (a *Application) Clone() *Application {
	c := *a
	c.TechStack = slices.Clone(a.TechStack)
	c.Dependencies = slices.Clone(a.Dependencies)
	c.RuntimeEnvironments = slices.Clone(a.RuntimeEnvironments)
	c.KnownMitigations = slices.Clone(a.KnownMitigations)
	return &c
}

func (a *Application) touch() {
	a.UpdatedAt = time.Now().UTC()
}

// AddMitigation records a security control. Blank and duplicate entries are ignored.
func (a *Application) AddMitigation(mitigation string) bool {
	m := strings.TrimSpace(mitigation)
	if m == "" {
		return false
	}
	for _, existing := range a.KnownMitigations {
		if strings.EqualFold(existing, m) {
			return false
		}
	}
	a.KnownMitigations = append(a.KnownMitigations, m)
	a.touch()
	return true
}

// AddDependency adds or replaces a dependency by name.
func (a *Application) AddDependency(dep Dependency) {
	for i, existing := range a.Dependencies {
		if strings.EqualFold(existing.Name, dep.Name) {
			a.Dependencies[i] = dep
			a.touch()
			return
		}
	}
	a.Dependencies = append(a.Dependencies, dep)
	a.touch()
}

// RemoveDependency drops a dependency by name and reports whether it was present.
func (a *Application) RemoveDependency(name string) bool {
	for i, existing := range a.Dependencies {
		if strings.EqualFold(existing.Name, name) {
			a.Dependencies = append(a.Dependencies[:i], a.Dependencies[i+1:]...)
			a.touch()
			return true
		}
	}
	return false
}

// UsesDependency reports whether a dependency with the given name is present.
func (a *Application) UsesDependency(name string) bool {
	for _, dep := range a.Dependencies {
		if strings.EqualFold(dep.Name, name) {
			return true
		}
	}
	return false
}

// UsesTechnology reports whether the tech stack contains the technology.
func (a *Application) UsesTechnology(tech string) bool {
	for _, t := range a.TechStack {
		if strings.EqualFold(t, tech) {
			return true
		}
	}
	return false
}

// HasEnvironment reports whether the application runs in the environment.
func (a *Application) HasEnvironment(env string) bool {
	for _, e := range a.RuntimeEnvironments {
		if strings.EqualFold(strings.TrimSpace(e), env) {
			return true
		}
	}
	return false
}

// IsInProduction is true when any runtime environment is prod or production.
func (a *Application) IsInProduction() bool {
	return a.RiskProfile().InProduction()
}

// RiskProfile derives the scoring snapshot. Unknown sensitivities score as INTERNAL.
func (a *Application) RiskProfile() scoring.RiskProfile {
	sensitivity, err := scoring.ParseDataSensitivity(a.DataSensitivity)
	if err != nil {
		sensitivity = scoring.SensitivityInternal
	}
	return scoring.RiskProfile{
		InternetExposed:     a.InternetExposed,
		DataSensitivity:     sensitivity,
		RuntimeEnvironments: a.RuntimeEnvironments,
		KnownMitigations:    a.KnownMitigations,
		DependencyCount:     len(a.Dependencies),
	}
}

// RiskFactor is the contextual multiplier applied to CVSS base scores.
func (a *Application) RiskFactor() float64 {
	return a.RiskProfile().RiskFactor()
}

// IsCriticalInfrastructure is true for exposed production systems holding
// sensitive or regulated data.
func (a *Application) IsCriticalInfrastructure() bool {
	return a.RiskProfile().IsCriticalInfrastructure()
}

// AffectedDependencies returns the dependencies whose package and version fall
// inside the vulnerability's affected ranges.
func (a *Application) AffectedDependencies(vuln models.Vulnerability) []Dependency {
	var hits []Dependency
	for _, dep := range a.Dependencies {
		depBase := dep.BasePURL()
		for _, affected := range vuln.Affected {
			if !dependencyMatchesPackage(dep, depBase, affected.Package) {
				continue
			}
			if dep.Version == "" || util.IsVersionAffected(dep.Version, affected) {
				hits = append(hits, dep)
				break
			}
		}
	}
	return hits
}

func dependencyMatchesPackage(dep Dependency, depBase string, pkg models.Package) bool {
	if pkg.Purl != "" && depBase != "" {
		if base, err := util.GetStandardBasePURL(pkg.Purl); err == nil && base == depBase {
			return true
		}
	}
	if !strings.EqualFold(dep.Name, pkg.Name) {
		return false
	}
	return dep.Ecosystem == "" || strings.EqualFold(dep.Ecosystem, string(pkg.Ecosystem))
}
