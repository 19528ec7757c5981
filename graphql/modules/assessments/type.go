// Package assessments defines the GraphQL types and queries for applications and their CVE assessments.
package assessments

import (
	"github.com/graphql-go/graphql"
	"github.com/ortelius/pdvd-assess/model"
)

// AssessmentStatusEnum lists the assessment lifecycle states.
var AssessmentStatusEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "AssessmentStatus",
	Values: graphql.EnumValueConfigMap{
		"IN_PROGRESS":     &graphql.EnumValueConfig{Value: model.StatusInProgress},
		"COMPLETED":       &graphql.EnumValueConfig{Value: model.StatusCompleted},
		"FAILED":          &graphql.EnumValueConfig{Value: model.StatusFailed},
		"REQUIRES_REVIEW": &graphql.EnumValueConfig{Value: model.StatusRequiresReview},
	},
})

// DependencyType is a library an application ships.
var DependencyType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Dependency",
	Fields: graphql.Fields{
		"name":      &graphql.Field{Type: graphql.String},
		"version":   &graphql.Field{Type: graphql.String},
		"ecosystem": &graphql.Field{Type: graphql.String},
		"purl":      &graphql.Field{Type: graphql.String},
	},
})

func applicationOf(p graphql.ResolveParams) *model.Application {
	app, _ := p.Source.(*model.Application)
	return app
}

// ApplicationType is a registered application with its derived risk context.
var ApplicationType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Application",
	Fields: graphql.Fields{
		"key": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if app := applicationOf(p); app != nil {
					return app.Key, nil
				}
				return nil, nil
			},
		},
		"name":                 &graphql.Field{Type: graphql.String},
		"tech_stack":           &graphql.Field{Type: graphql.NewList(graphql.String)},
		"dependencies":         &graphql.Field{Type: graphql.NewList(DependencyType)},
		"internet_exposed":     &graphql.Field{Type: graphql.Boolean},
		"data_sensitivity":     &graphql.Field{Type: graphql.String},
		"runtime_environments": &graphql.Field{Type: graphql.NewList(graphql.String)},
		"known_mitigations":    &graphql.Field{Type: graphql.NewList(graphql.String)},
		"created_at":           &graphql.Field{Type: graphql.DateTime},
		"updated_at":           &graphql.Field{Type: graphql.DateTime},
		"risk_factor": &graphql.Field{
			Type: graphql.Float,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if app := applicationOf(p); app != nil {
					return app.RiskFactor(), nil
				}
				return nil, nil
			},
		},
		"critical_infrastructure": &graphql.Field{
			Type: graphql.Boolean,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if app := applicationOf(p); app != nil {
					return app.IsCriticalInfrastructure(), nil
				}
				return nil, nil
			},
		},
	},
})

// AssessmentType is the scored result of one CVE in one application.
var AssessmentType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Assessment",
	Fields: graphql.Fields{
		"key": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if a, ok := p.Source.(*model.Assessment); ok {
					return a.Key, nil
				}
				return nil, nil
			},
		},
		"cve_id":             &graphql.Field{Type: graphql.String},
		"application_key":    &graphql.Field{Type: graphql.String},
		"application_name":   &graphql.Field{Type: graphql.String},
		"cvss_base":          &graphql.Field{Type: graphql.Float},
		"risk_factor":        &graphql.Field{Type: graphql.Float},
		"baseline_score":     &graphql.Field{Type: graphql.Float},
		"ai_suggested_score": &graphql.Field{Type: graphql.Float},
		"constrained_score":  &graphql.Field{Type: graphql.Float},
		"final_score":        &graphql.Field{Type: graphql.Float},
		"severity_rating":    &graphql.Field{Type: graphql.String},
		"confidence":         &graphql.Field{Type: graphql.Float},
		"justification":      &graphql.Field{Type: graphql.String},
		"provider":           &graphql.Field{Type: graphql.String},
		"ai_rejected":        &graphql.Field{Type: graphql.Boolean},
		"reject_reason":      &graphql.Field{Type: graphql.String},
		"requires_review":    &graphql.Field{Type: graphql.Boolean},
		"affected_packages":  &graphql.Field{Type: graphql.NewList(graphql.String)},
		"status":             &graphql.Field{Type: AssessmentStatusEnum},
		"requested_by":       &graphql.Field{Type: graphql.String},
		"reviewed_by":        &graphql.Field{Type: graphql.String},
		"review_notes":       &graphql.Field{Type: graphql.String},
		"reviewed_at":        &graphql.Field{Type: graphql.DateTime},
		"created_at":         &graphql.Field{Type: graphql.DateTime},
		"updated_at":         &graphql.Field{Type: graphql.DateTime},
	},
})
