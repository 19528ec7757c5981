package util

import (
	"testing"

	"github.com/google/osv-scanner/pkg/models"
	"github.com/stretchr/testify/assert"
)

func affectedRange(ecosystem string, events ...models.Event) models.Affected {
	return models.Affected{
		Package: models.Package{Name: "pkg", Ecosystem: models.Ecosystem(ecosystem)},
		Ranges:  []models.Range{{Type: models.RangeEcosystem, Events: events}},
	}
}

func TestIsVersionAffectedNPM(t *testing.T) {
	a := affectedRange("npm", models.Event{Introduced: "0"}, models.Event{Fixed: "4.17.21"})

	assert.True(t, IsVersionAffected("4.17.20", a))
	assert.True(t, IsVersionAffected("1.0.0", a))
	assert.False(t, IsVersionAffected("4.17.21", a))
	assert.False(t, IsVersionAffected("5.0.0", a))
}

func TestIsVersionAffectedPyPI(t *testing.T) {
	a := affectedRange("PyPI", models.Event{Introduced: "2.0"}, models.Event{Fixed: "2.31.0"})

	assert.True(t, IsVersionAffected("2.28.1", a))
	assert.False(t, IsVersionAffected("1.9", a))
	assert.False(t, IsVersionAffected("2.31.0", a))
}

func TestIsVersionAffectedLastAffected(t *testing.T) {
	a := affectedRange("Go", models.Event{Introduced: "1.0.0"}, models.Event{LastAffected: "1.2.3"})

	assert.True(t, IsVersionAffected("1.2.3", a))
	assert.False(t, IsVersionAffected("1.2.4", a))
	assert.False(t, IsVersionAffected("0.9.0", a))
}

func TestIsVersionAffectedRequiresUpperBound(t *testing.T) {
	a := affectedRange("Maven", models.Event{Introduced: "0"})
	assert.False(t, IsVersionAffected("2.14.1", a))
}

func TestIsVersionAffectedExplicitVersions(t *testing.T) {
	a := models.Affected{
		Package:  models.Package{Name: "pkg", Ecosystem: "Maven"},
		Versions: []string{"2.14.0", "2.14.1"},
	}
	assert.True(t, IsVersionAffected("2.14.1", a))
	assert.False(t, IsVersionAffected("2.15.0", a))
}

func TestIsVersionAffectedIgnoresGitRanges(t *testing.T) {
	a := models.Affected{
		Package: models.Package{Name: "pkg", Ecosystem: "Go"},
		Ranges: []models.Range{{
			Type:   models.RangeGit,
			Events: []models.Event{{Introduced: "0"}, {Fixed: "abc123"}},
		}},
	}
	assert.False(t, IsVersionAffected("1.0.0", a))
}

func TestIsVersionAffectedAny(t *testing.T) {
	all := []models.Affected{
		affectedRange("npm", models.Event{Introduced: "1.0.0"}, models.Event{Fixed: "1.5.0"}),
		affectedRange("npm", models.Event{Introduced: "2.0.0"}, models.Event{Fixed: "2.3.1"}),
	}
	assert.True(t, IsVersionAffectedAny("2.1.0", all))
	assert.False(t, IsVersionAffectedAny("1.7.0", all))
}

func TestFixedVersions(t *testing.T) {
	all := []models.Affected{
		affectedRange("npm", models.Event{Introduced: "1.0.0"}, models.Event{Fixed: "1.5.0"}),
		affectedRange("npm", models.Event{Introduced: "2.0.0"}, models.Event{Fixed: "2.3.1"}),
	}
	assert.Equal(t, []string{"2.3.1"}, FixedVersions("2.1.0", all))
	assert.Equal(t, []string{"1.5.0", "2.3.1"}, FixedVersions("3.0.0", all))
	assert.Empty(t, FixedVersions("1.0.0", nil))
}
