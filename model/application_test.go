package model

import (
	"strings"
	"testing"

	"github.com/google/osv-scanner/pkg/models"
	"github.com/ortelius/pdvd-assess/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplicationValidate(t *testing.T) {
	app := NewApplication("  payments-api ")
	app.DataSensitivity = "highly-regulated"
	require.NoError(t, app.Validate())
	assert.Equal(t, "payments-api", app.Name)
	assert.Equal(t, "HIGHLY_REGULATED", app.DataSensitivity)
	assert.Equal(t, "Application", app.ObjType)

	short := NewApplication("ab")
	assert.ErrorIs(t, short.Validate(), ErrInvalidApplication)

	long := NewApplication(strings.Repeat("a", 101))
	assert.ErrorIs(t, long.Validate(), ErrInvalidApplication)

	bad := NewApplication("billing")
	bad.DataSensitivity = "top-secret"
	assert.ErrorIs(t, bad.Validate(), ErrInvalidApplication)

	noDepName := NewApplication("billing")
	noDepName.Dependencies = []Dependency{{Version: "1.0.0"}}
	assert.ErrorIs(t, noDepName.Validate(), ErrInvalidApplication)
}

func TestApplicationValidateNormalizesPurls(t *testing.T) {
	app := NewApplication("billing")
	app.Dependencies = []Dependency{{Name: "lodash", Purl: "pkg:npm/lodash@4.17.20?repository_url=https://registry.npmjs.org"}}
	require.NoError(t, app.Validate())
	assert.Equal(t, "pkg:npm/lodash@4.17.20", app.Dependencies[0].Purl)
	assert.Equal(t, "4.17.20", app.Dependencies[0].Version)

	broken := NewApplication("billing")
	broken.Dependencies = []Dependency{{Name: "lodash", Purl: "not-a-purl"}}
	assert.ErrorIs(t, broken.Validate(), ErrInvalidApplication)
}

func TestApplicationMitigations(t *testing.T) {
	app := NewApplication("storefront")
	assert.True(t, app.AddMitigation("WAF"))
	assert.False(t, app.AddMitigation("waf"))
	assert.False(t, app.AddMitigation("   "))
	assert.True(t, app.AddMitigation("mTLS"))
	assert.Equal(t, []string{"WAF", "mTLS"}, app.KnownMitigations)
}

func TestApplicationDependencies(t *testing.T) {
	app := NewApplication("storefront")
	app.AddDependency(Dependency{Name: "lodash", Version: "4.17.20", Ecosystem: "npm"})
	app.AddDependency(Dependency{Name: "Lodash", Version: "4.17.21", Ecosystem: "npm"})
	require.Len(t, app.Dependencies, 1)
	assert.Equal(t, "4.17.21", app.Dependencies[0].Version)

	assert.True(t, app.UsesDependency("LODASH"))
	assert.True(t, app.RemoveDependency("lodash"))
	assert.False(t, app.RemoveDependency("lodash"))
	assert.False(t, app.UsesDependency("lodash"))
}

func TestApplicationEnvironmentAndStack(t *testing.T) {
	app := NewApplication("storefront")
	app.TechStack = []string{"Node.js", "PostgreSQL"}
	app.RuntimeEnvironments = []string{"staging", "Production"}

	assert.True(t, app.UsesTechnology("node.js"))
	assert.False(t, app.UsesTechnology("java"))
	assert.True(t, app.HasEnvironment("staging"))
	assert.True(t, app.IsInProduction())
}

func TestApplicationRiskProfile(t *testing.T) {
	app := NewApplication("patient-portal")
	app.InternetExposed = true
	app.DataSensitivity = "SENSITIVE"
	app.RuntimeEnvironments = []string{"prod"}
	app.KnownMitigations = []string{"waf"}

	p := app.RiskProfile()
	assert.Equal(t, scoring.SensitivitySensitive, p.DataSensitivity)
	assert.InDelta(t, 1.3*1.5*1.2*0.95, app.RiskFactor(), 1e-9)
	assert.True(t, app.IsCriticalInfrastructure())

	app.DataSensitivity = "garbage"
	assert.Equal(t, scoring.SensitivityInternal, app.RiskProfile().DataSensitivity)
}

func TestDependencyBasePURL(t *testing.T) {
	assert.Equal(t, "pkg:npm/lodash", Dependency{Name: "lodash", Ecosystem: "npm"}.BasePURL())
	assert.Equal(t, "pkg:maven/org.apache.logging.log4j/log4j-core",
		Dependency{Name: "org.apache.logging.log4j:log4j-core", Ecosystem: "Maven"}.BasePURL())
	assert.Equal(t, "pkg:pypi/requests",
		Dependency{Name: "requests", Purl: "pkg:pypi/requests@2.28.1"}.BasePURL())
	assert.Equal(t, "", Dependency{Name: "unknown"}.BasePURL())
}

func TestAffectedDependencies(t *testing.T) {
	app := NewApplication("storefront")
	app.Dependencies = []Dependency{
		{Name: "lodash", Version: "4.17.20", Ecosystem: "npm"},
		{Name: "express", Version: "4.18.2", Ecosystem: "npm"},
		{Name: "requests", Version: "2.31.0", Purl: "pkg:pypi/requests@2.31.0"},
	}

	vuln := models.Vulnerability{
		ID: "CVE-2021-23337",
		Affected: []models.Affected{
			{
				Package: models.Package{Name: "lodash", Ecosystem: "npm"},
				Ranges: []models.Range{{
					Type:   models.RangeSemVer,
					Events: []models.Event{{Introduced: "0"}, {Fixed: "4.17.21"}},
				}},
			},
			{
				Package: models.Package{Name: "requests", Ecosystem: "PyPI", Purl: "pkg:pypi/requests"},
				Ranges: []models.Range{{
					Type:   models.RangeEcosystem,
					Events: []models.Event{{Introduced: "2.0"}, {Fixed: "2.31.0"}},
				}},
			},
		},
	}

	hits := app.AffectedDependencies(vuln)
	require.Len(t, hits, 1)
	assert.Equal(t, "lodash", hits[0].Name)
}
