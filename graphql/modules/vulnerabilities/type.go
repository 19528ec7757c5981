// Package vulnerabilities defines the GraphQL types and queries for OSV vulnerability records
// and their exposure in registered applications.
package vulnerabilities

import (
	"github.com/graphql-go/graphql"
	"github.com/ortelius/pdvd-assess/model"
	"github.com/ortelius/pdvd-assess/util"
)

// Exposure is an application dependency inside a vulnerable range.
type Exposure struct {
	Package   string   `json:"package"`
	Version   string   `json:"version"`
	Ecosystem string   `json:"ecosystem"`
	Purl      string   `json:"purl"`
	FixedIn   []string `json:"fixed_in"`
}

func vulnOf(p graphql.ResolveParams) *model.Vulnerability {
	v, _ := p.Source.(*model.Vulnerability)
	return v
}

func field(get func(v *model.Vulnerability) interface{}) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		if v := vulnOf(p); v != nil {
			return get(v), nil
		}
		return nil, nil
	}
}

// VulnerabilityType is an OSV record with its computed CVSS base score.
var VulnerabilityType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Vulnerability",
	Fields: graphql.Fields{
		"cve_id": &graphql.Field{
			Type:    graphql.String,
			Resolve: field(func(v *model.Vulnerability) interface{} { return v.CVEID() }),
		},
		"osv_id": &graphql.Field{
			Type:    graphql.String,
			Resolve: field(func(v *model.Vulnerability) interface{} { return v.ID }),
		},
		"summary": &graphql.Field{
			Type:    graphql.String,
			Resolve: field(func(v *model.Vulnerability) interface{} { return v.Summary }),
		},
		"details": &graphql.Field{
			Type:    graphql.String,
			Resolve: field(func(v *model.Vulnerability) interface{} { return v.Details }),
		},
		"aliases": &graphql.Field{
			Type:    graphql.NewList(graphql.String),
			Resolve: field(func(v *model.Vulnerability) interface{} { return v.Aliases }),
		},
		"published": &graphql.Field{
			Type:    graphql.DateTime,
			Resolve: field(func(v *model.Vulnerability) interface{} { return v.Published }),
		},
		"modified": &graphql.Field{
			Type:    graphql.DateTime,
			Resolve: field(func(v *model.Vulnerability) interface{} { return v.Modified }),
		},
		"severity_score": &graphql.Field{
			Type:    graphql.Float,
			Resolve: field(func(v *model.Vulnerability) interface{} { return v.CVSSBase }),
		},
		"severity_rating": &graphql.Field{
			Type:    graphql.String,
			Resolve: field(func(v *model.Vulnerability) interface{} { return v.SeverityRating }),
		},
		"packages": &graphql.Field{
			Type:    graphql.NewList(graphql.String),
			Resolve: field(func(v *model.Vulnerability) interface{} { return v.AffectedPackages() }),
		},
		"fixed_in": &graphql.Field{
			Type: graphql.NewList(graphql.String),
			Resolve: field(func(v *model.Vulnerability) interface{} {
				return util.FixedVersions("", v.Affected)
			}),
		},
		"affects": &graphql.Field{
			Type:        graphql.Boolean,
			Description: "Whether the given package version falls inside any affected range",
			Args: graphql.FieldConfigArgument{
				"version": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				v := vulnOf(p)
				if v == nil {
					return nil, nil
				}
				return util.IsVersionAffectedAny(p.Args["version"].(string), v.Affected), nil
			},
		},
	},
})

// ExposureType is a vulnerable dependency with its remediation versions.
var ExposureType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Exposure",
	Fields: graphql.Fields{
		"package":   &graphql.Field{Type: graphql.String},
		"version":   &graphql.Field{Type: graphql.String},
		"ecosystem": &graphql.Field{Type: graphql.String},
		"purl":      &graphql.Field{Type: graphql.String},
		"fixed_in":  &graphql.Field{Type: graphql.NewList(graphql.String)},
	},
})
