package vulnerabilities

import (
	"context"
	"errors"

	"github.com/graphql-go/graphql"
	"github.com/ortelius/pdvd-assess/model"
	"github.com/ortelius/pdvd-assess/util"
)

// Catalog resolves CVE identifiers.
type Catalog interface {
	FetchVulnerability(ctx context.Context, cveID string) (*model.Vulnerability, error)
}

// ApplicationLookup loads applications.
type ApplicationLookup interface {
	GetApplication(ctx context.Context, key string) (*model.Application, error)
}

// ResolveExposure lists the application's dependencies affected by vuln, each
// with the versions that fix it.
func ResolveExposure(vuln *model.Vulnerability, app *model.Application) []Exposure {
	exposures := []Exposure{}
	for _, dep := range app.AffectedDependencies(vuln.Vulnerability) {
		exposures = append(exposures, Exposure{
			Package:   dep.Name,
			Version:   dep.Version,
			Ecosystem: dep.Ecosystem,
			Purl:      dep.BasePURL(),
			FixedIn:   util.FixedVersions(dep.Version, vuln.Affected),
		})
	}
	return exposures
}

func fetch(ctx context.Context, catalog Catalog, rawID string) (*model.Vulnerability, error) {
	cveID, err := model.ValidateCveID(rawID)
	if err != nil {
		return nil, err
	}
	return catalog.FetchVulnerability(ctx, cveID)
}

// GetQueryFields returns the vulnerability queries to be mounted in the root schema.
func GetQueryFields(catalog Catalog, apps ApplicationLookup) graphql.Fields {
	return graphql.Fields{
		"vulnerability": &graphql.Field{
			Type: VulnerabilityType,
			Args: graphql.FieldConfigArgument{
				"cveId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				vuln, err := fetch(p.Context, catalog, p.Args["cveId"].(string))
				if errors.Is(err, model.ErrNotFound) {
					return nil, nil
				}
				if err != nil {
					return nil, err
				}
				return vuln, nil
			},
		},
		"exposure": &graphql.Field{
			Type: graphql.NewList(ExposureType),
			Args: graphql.FieldConfigArgument{
				"cveId":          &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"applicationKey": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				app, err := apps.GetApplication(p.Context, p.Args["applicationKey"].(string))
				if err != nil {
					return nil, err
				}
				vuln, err := fetch(p.Context, catalog, p.Args["cveId"].(string))
				if err != nil {
					return nil, err
				}
				return ResolveExposure(vuln, app), nil
			},
		},
	}
}
