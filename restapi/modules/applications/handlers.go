// Package applications implements the REST API handlers for application registration.
package applications

import (
	"context"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/ortelius/pdvd-assess/model"
	"github.com/ortelius/pdvd-assess/restapi/modules/common"
)

// Repository is the storage the handlers need.
type Repository interface {
	CreateApplication(ctx context.Context, app *model.Application) error
	GetApplication(ctx context.Context, key string) (*model.Application, error)
	// ModifyApplication applies mutate atomically and saves the result when
	// mutate reports a change.
	ModifyApplication(ctx context.Context, key string, mutate func(*model.Application) bool) (*model.Application, bool, error)
	ListApplications(ctx context.Context) ([]*model.Application, error)
	ListAssessmentsByApplication(ctx context.Context, applicationKey string) ([]*model.Assessment, error)
}

// ApplicationView adds the derived risk fields to an application.
type ApplicationView struct {
	*model.Application
	RiskFactor             float64 `json:"risk_factor"`
	CriticalInfrastructure bool    `json:"critical_infrastructure"`
}

// NewApplicationView computes the derived fields for app.
func NewApplicationView(app *model.Application) ApplicationView {
	return ApplicationView{
		Application:            app,
		RiskFactor:             app.RiskFactor(),
		CriticalInfrastructure: app.IsCriticalInfrastructure(),
	}
}

type mitigationRequest struct {
	Mitigation string `json:"mitigation"`
}

// CreateApplication registers a new application.
func CreateApplication(repo Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.Application
		if err := c.BodyParser(&req); err != nil {
			return common.BadRequest(c, "Invalid request body: "+err.Error())
		}

		app := model.NewApplication(req.Name)
		app.TechStack = req.TechStack
		app.Dependencies = req.Dependencies
		app.InternetExposed = req.InternetExposed
		if req.DataSensitivity != "" {
			app.DataSensitivity = req.DataSensitivity
		}
		app.RuntimeEnvironments = req.RuntimeEnvironments
		for _, m := range req.KnownMitigations {
			app.AddMitigation(m)
		}

		if err := repo.CreateApplication(c.UserContext(), app); err != nil {
			return common.Error(c, err)
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success":     true,
			"message":     "Application registered",
			"application": NewApplicationView(app),
		})
	}
}

// applicationFilter holds the optional list filters, all case-insensitive.
type applicationFilter struct {
	Technology  string
	Dependency  string
	Environment string
}

func (f applicationFilter) matches(app *model.Application) bool {
	if f.Technology != "" && !app.UsesTechnology(f.Technology) {
		return false
	}
	if f.Dependency != "" && !app.UsesDependency(f.Dependency) {
		return false
	}
	if f.Environment != "" && !app.HasEnvironment(f.Environment) {
		return false
	}
	return true
}

// ListApplications returns registered applications, optionally filtered by
// ?technology=, ?dependency= and ?environment=.
func ListApplications(repo Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter := applicationFilter{
			Technology:  strings.TrimSpace(c.Query("technology")),
			Dependency:  strings.TrimSpace(c.Query("dependency")),
			Environment: strings.TrimSpace(c.Query("environment")),
		}

		apps, err := repo.ListApplications(c.UserContext())
		if err != nil {
			return common.Error(c, err)
		}
		views := make([]ApplicationView, 0, len(apps))
		for _, app := range apps {
			if filter.matches(app) {
				views = append(views, NewApplicationView(app))
			}
		}
		return c.JSON(views)
	}
}

// GetApplication returns one application with its risk factor.
func GetApplication(repo Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		app, err := repo.GetApplication(c.UserContext(), c.Params("key"))
		if err != nil {
			return common.Error(c, err)
		}
		return c.JSON(NewApplicationView(app))
	}
}

// AddMitigation records a compensating control on an application.
func AddMitigation(repo Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req mitigationRequest
		if err := c.BodyParser(&req); err != nil {
			return common.BadRequest(c, "Invalid request body: "+err.Error())
		}
		if strings.TrimSpace(req.Mitigation) == "" {
			return common.BadRequest(c, "mitigation is required")
		}

		app, added, err := repo.ModifyApplication(c.UserContext(), c.Params("key"), func(app *model.Application) bool {
			return app.AddMitigation(req.Mitigation)
		})
		if err != nil {
			return common.Error(c, err)
		}

		message := "Mitigation added"
		if !added {
			message = "Mitigation already recorded"
		}
		return c.JSON(fiber.Map{
			"success":     true,
			"message":     message,
			"application": NewApplicationView(app),
		})
	}
}

// PutDependency adds a dependency, or replaces the one with the same name.
func PutDependency(repo Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var dep model.Dependency
		if err := c.BodyParser(&dep); err != nil {
			return common.BadRequest(c, "Invalid request body: "+err.Error())
		}
		if strings.TrimSpace(dep.Name) == "" {
			return common.BadRequest(c, "dependency name is required")
		}

		app, _, err := repo.ModifyApplication(c.UserContext(), c.Params("key"), func(app *model.Application) bool {
			app.AddDependency(dep)
			return true
		})
		if err != nil {
			return common.Error(c, err)
		}

		return c.JSON(fiber.Map{
			"success":     true,
			"message":     "Dependency recorded",
			"application": NewApplicationView(app),
		})
	}
}

// DeleteDependency removes a dependency by name.
func DeleteDependency(repo Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name, err := url.PathUnescape(c.Params("name"))
		if err != nil {
			return common.BadRequest(c, "Invalid dependency name: "+err.Error())
		}

		_, removed, err := repo.ModifyApplication(c.UserContext(), c.Params("key"), func(app *model.Application) bool {
			return app.RemoveDependency(name)
		})
		if err != nil {
			return common.Error(c, err)
		}
		if !removed {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "dependency " + name + " not found",
			})
		}

		return c.JSON(fiber.Map{
			"success": true,
			"message": "Dependency removed",
		})
	}
}

// ListApplicationAssessments returns an application's assessments.
func ListApplicationAssessments(repo Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		key := c.Params("key")
		if _, err := repo.GetApplication(ctx, key); err != nil {
			return common.Error(c, err)
		}
		assessments, err := repo.ListAssessmentsByApplication(ctx, key)
		if err != nil {
			return common.Error(c, err)
		}
		return c.JSON(assessments)
	}
}
