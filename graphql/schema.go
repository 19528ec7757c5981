// Package graphql assembles the GraphQL schema from its modules.
package graphql

import (
	"github.com/graphql-go/graphql"
	"github.com/ortelius/pdvd-assess/graphql/modules/assessments"
	"github.com/ortelius/pdvd-assess/graphql/modules/vulnerabilities"
)

// CreateSchema builds the root schema over the store and the vulnerability catalog.
func CreateSchema(store assessments.Store, catalog vulnerabilities.Catalog) (graphql.Schema, error) {
	fields := assessments.GetQueryFields(store)
	for name, f := range vulnerabilities.GetQueryFields(catalog, store) {
		fields[name] = f
	}

	rootQuery := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Query",
		Fields: fields,
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: rootQuery,
	})
}
