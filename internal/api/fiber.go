// Package api assembles the Fiber application serving the REST, GraphQL and metrics endpoints.
package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/ortelius/pdvd-assess/graphql"
	"github.com/ortelius/pdvd-assess/graphql/modules/vulnerabilities"
	"github.com/ortelius/pdvd-assess/internal/telemetry"
	"github.com/ortelius/pdvd-assess/restapi"
	"github.com/ortelius/pdvd-assess/restapi/modules/assessments"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AppName identifies the service in Fiber and in logs.
const AppName = "pdvd-assess API v1.0"

// NewFiberApp creates and configures a Fiber app with REST, GraphQL and metrics routes
func NewFiberApp(store restapi.Store, assessor assessments.Assessor, catalog vulnerabilities.Catalog) (*fiber.App, error) {
	schema, err := graphql.CreateSchema(store, catalog)
	if err != nil {
		return nil, err
	}

	telemetry.InitMetrics()

	app := fiber.New(fiber.Config{
		AppName:     AppName,
		BodyLimit:   4 * 1024 * 1024,
		ReadTimeout: 60 * time.Second,
		// AI analysis can take up to the provider timeout
		WriteTimeout: 90 * time.Second,
	})

	// Middleware
	app.Use(fiberrecover.New())
	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))

	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000,http://localhost:4000,http://127.0.0.1:3000,http://127.0.0.1:4000",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true,
		AllowMethods:     "GET, POST, HEAD, PUT, DELETE, PATCH, OPTIONS",
	}))

	app.Use(func(c *fiber.Ctx) error {
		c.Locals("graphql_op", "-")
		return c.Next()
	})
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} - ${latency} ${method} ${path} op=${locals:graphql_op}\n",
	}))

	// Health check endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	restapi.SetupRoutes(app, store, assessor, schema)

	return app, nil
}
