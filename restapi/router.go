// Package restapi provides the main router and initialization for REST API endpoints.
package restapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
	"github.com/ortelius/pdvd-assess/restapi/modules/applications"
	"github.com/ortelius/pdvd-assess/restapi/modules/assessments"
	"github.com/ortelius/pdvd-assess/util"
)

var logger = util.InitLogger()

// Store is the persistence the REST handlers read and write.
type Store interface {
	applications.Repository
	assessments.Repository
}

// SetupRoutes configures all REST API routes and the GraphQL endpoint.
// CORS and request logging are handled globally in internal/api/fiber.go.
func SetupRoutes(app *fiber.App, store Store, assessor assessments.Assessor, schema graphql.Schema) {
	// API Group /api/v1
	api := app.Group("/api/v1")

	// GraphQL Route
	api.Post("/graphql", GraphQLHandler(schema))

	// Applications
	apps := api.Group("/applications")
	apps.Post("/", applications.CreateApplication(store))
	apps.Get("/", applications.ListApplications(store))
	apps.Get("/:key", applications.GetApplication(store))
	apps.Post("/:key/mitigations", applications.AddMitigation(store))
	apps.Put("/:key/dependencies", applications.PutDependency(store))
	apps.Delete("/:key/dependencies/:name", applications.DeleteDependency(store))
	apps.Get("/:key/assessments", applications.ListApplicationAssessments(store))

	// Assessments, static paths before :key
	asmt := api.Group("/assessments")
	asmt.Post("/", assessments.PostAssessment(assessor))
	asmt.Get("/pending", assessments.ListPendingReviews(store))
	asmt.Get("/:key", assessments.GetAssessment(store))
	asmt.Post("/:key/review", assessments.PostReview(assessor))

	logger.Sugar().Infof("API routes initialized successfully")
}
