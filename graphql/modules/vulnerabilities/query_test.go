package vulnerabilities

import (
	"context"
	"fmt"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/google/osv-scanner/pkg/models"
	"github.com/ortelius/pdvd-assess/database"
	"github.com/ortelius/pdvd-assess/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapCatalog map[string]models.Vulnerability

func (m mapCatalog) FetchVulnerability(_ context.Context, cveID string) (*model.Vulnerability, error) {
	osv, ok := m[cveID]
	if !ok {
		return nil, fmt.Errorf("vulnerability %s: %w", cveID, model.ErrNotFound)
	}
	return model.NewVulnerability(osv), nil
}

var lodash = models.Vulnerability{
	ID:      "GHSA-35jh-r3h4-6jhm",
	Aliases: []string{"CVE-2021-23337"},
	Summary: "Command injection in lodash",
	Severity: []models.Severity{
		{Type: models.SeverityCVSSV3, Score: "CVSS:3.1/AV:N/AC:L/PR:H/UI:N/S:U/C:H/I:H/A:H"},
	},
	Affected: []models.Affected{{
		Package: models.Package{Ecosystem: "npm", Name: "lodash"},
		Ranges: []models.Range{{
			Type:   models.RangeSemVer,
			Events: []models.Event{{Introduced: "0"}, {Fixed: "4.17.21"}},
		}},
	}},
}

func setup(t *testing.T) (graphql.Schema, string) {
	t.Helper()
	store := database.NewMemoryStore()
	app := model.NewApplication("storefront")
	app.Dependencies = []model.Dependency{
		{Name: "lodash", Version: "4.17.20", Ecosystem: "npm"},
		{Name: "react", Version: "18.2.0", Ecosystem: "npm"},
	}
	require.NoError(t, store.CreateApplication(context.Background(), app))

	catalog := mapCatalog{"CVE-2021-23337": lodash}
	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{Name: "Query", Fields: GetQueryFields(catalog, store)}),
	})
	require.NoError(t, err)
	return schema, app.Key
}

func do(schema graphql.Schema, query string) *graphql.Result {
	return graphql.Do(graphql.Params{Schema: schema, RequestString: query, Context: context.Background()})
}

func TestVulnerabilityQuery(t *testing.T) {
	schema, _ := setup(t)

	res := do(schema, `{ vulnerability(cveId: "cve-2021-23337") {
		cve_id osv_id summary severity_score severity_rating packages fixed_in
		old: affects(version: "4.17.20") new: affects(version: "4.17.21")
	} }`)
	require.Empty(t, res.Errors)

	v := res.Data.(map[string]interface{})["vulnerability"].(map[string]interface{})
	assert.Equal(t, "CVE-2021-23337", v["cve_id"])
	assert.Equal(t, "GHSA-35jh-r3h4-6jhm", v["osv_id"])
	assert.InDelta(t, 7.2, v["severity_score"], 1e-9)
	assert.Equal(t, "HIGH", v["severity_rating"])
	assert.Equal(t, []interface{}{"npm/lodash"}, v["packages"])
	assert.Equal(t, []interface{}{"4.17.21"}, v["fixed_in"])
	assert.Equal(t, true, v["old"])
	assert.Equal(t, false, v["new"])
}

func TestVulnerabilityQueryUnknownAndInvalid(t *testing.T) {
	schema, _ := setup(t)

	res := do(schema, `{ vulnerability(cveId: "CVE-2099-0001") { cve_id } }`)
	require.Empty(t, res.Errors)
	assert.Nil(t, res.Data.(map[string]interface{})["vulnerability"])

	res = do(schema, `{ vulnerability(cveId: "log4shell") { cve_id } }`)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, "invalid CVE identifier")
}

func TestExposureQuery(t *testing.T) {
	schema, appKey := setup(t)

	res := do(schema, `{ exposure(cveId: "CVE-2021-23337", applicationKey: "`+appKey+`") { package version ecosystem purl fixed_in } }`)
	require.Empty(t, res.Errors)

	list := res.Data.(map[string]interface{})["exposure"].([]interface{})
	require.Len(t, list, 1)
	exp := list[0].(map[string]interface{})
	assert.Equal(t, "lodash", exp["package"])
	assert.Equal(t, "4.17.20", exp["version"])
	assert.Equal(t, "pkg:npm/lodash", exp["purl"])
	assert.Equal(t, []interface{}{"4.17.21"}, exp["fixed_in"])

	res = do(schema, `{ exposure(cveId: "CVE-2021-23337", applicationKey: "missing") { package } }`)
	require.Len(t, res.Errors, 1)
}
