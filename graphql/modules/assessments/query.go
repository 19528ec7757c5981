package assessments

import (
	"context"
	"errors"

	"github.com/graphql-go/graphql"
	"github.com/ortelius/pdvd-assess/model"
	"github.com/ortelius/pdvd-assess/util"
)

// Store is the read side the resolvers need.
type Store interface {
	GetApplication(ctx context.Context, key string) (*model.Application, error)
	ListApplications(ctx context.Context) ([]*model.Application, error)
	GetAssessment(ctx context.Context, key string) (*model.Assessment, error)
	ListAssessmentsByApplication(ctx context.Context, applicationKey string) ([]*model.Assessment, error)
	ListPendingReviews(ctx context.Context, limit int) ([]*model.Assessment, error)
}

func contextOf(p graphql.ResolveParams) context.Context {
	if p.Context != nil {
		return p.Context
	}
	return context.Background()
}

// Missing documents resolve to null rather than an error.
func orNull[T any](v *T, err error) (interface{}, error) {
	if errors.Is(err, model.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// GetQueryFields returns the application and assessment queries to be mounted in the root schema.
func GetQueryFields(store Store) graphql.Fields {
	return graphql.Fields{
		"application": &graphql.Field{
			Type: ApplicationType,
			Args: graphql.FieldConfigArgument{
				"key": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return orNull(store.GetApplication(contextOf(p), p.Args["key"].(string)))
			},
		},
		"applications": &graphql.Field{
			Type: graphql.NewList(ApplicationType),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return store.ListApplications(contextOf(p))
			},
		},
		"assessment": &graphql.Field{
			Type: AssessmentType,
			Args: graphql.FieldConfigArgument{
				"key": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return orNull(store.GetAssessment(contextOf(p), p.Args["key"].(string)))
			},
		},
		"assessments": &graphql.Field{
			Type: graphql.NewList(AssessmentType),
			Args: graphql.FieldConfigArgument{
				"applicationKey": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"minSeverity":    &graphql.ArgumentConfig{Type: graphql.String},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				list, err := store.ListAssessmentsByApplication(contextOf(p), p.Args["applicationKey"].(string))
				if err != nil {
					return nil, err
				}
				severity, _ := p.Args["minSeverity"].(string)
				if severity == "" {
					return list, nil
				}
				floor := util.GetSeverityScore(severity)
				filtered := []*model.Assessment{}
				for _, a := range list {
					if a.FinalScore >= floor {
						filtered = append(filtered, a)
					}
				}
				return filtered, nil
			},
		},
		"pendingReviews": &graphql.Field{
			Type: graphql.NewList(AssessmentType),
			Args: graphql.FieldConfigArgument{
				"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				limit, _ := p.Args["limit"].(int)
				return store.ListPendingReviews(contextOf(p), limit)
			},
		},
	}
}
