// Package assessments implements the REST API handlers for CVE assessments and analyst reviews.
package assessments

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/ortelius/pdvd-assess/model"
	"github.com/ortelius/pdvd-assess/restapi/modules/common"
)

// Assessor runs assessments and records reviews.
type Assessor interface {
	Assess(ctx context.Context, req model.AssessmentRequest) (*model.Assessment, error)
	CompleteReview(ctx context.Context, key, reviewer string, finalScore float64, notes string) (*model.Assessment, error)
}

// Repository reads stored assessments.
type Repository interface {
	GetAssessment(ctx context.Context, key string) (*model.Assessment, error)
	ListPendingReviews(ctx context.Context, limit int) ([]*model.Assessment, error)
}

// ReviewRequest is the analyst decision on an assessment.
type ReviewRequest struct {
	Reviewer   string   `json:"reviewer"`
	FinalScore *float64 `json:"final_score"`
	Notes      string   `json:"notes"`
}

// PostAssessment assesses a CVE for a registered application.
func PostAssessment(assessor Assessor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.AssessmentRequest
		if err := c.BodyParser(&req); err != nil {
			return common.BadRequest(c, "Invalid request body: "+err.Error())
		}

		assessment, err := assessor.Assess(c.UserContext(), req)
		if err != nil {
			return common.Error(c, err)
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success":    true,
			"message":    "Assessment " + string(assessment.Status),
			"assessment": assessment,
		})
	}
}

// GetAssessment returns one assessment.
func GetAssessment(repo Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		assessment, err := repo.GetAssessment(c.UserContext(), c.Params("key"))
		if err != nil {
			return common.Error(c, err)
		}
		return c.JSON(assessment)
	}
}

// ListPendingReviews returns the review queue, highest scores first.
func ListPendingReviews(repo Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 0)
		if limit < 0 {
			return common.BadRequest(c, "limit must not be negative")
		}
		pending, err := repo.ListPendingReviews(c.UserContext(), limit)
		if err != nil {
			return common.Error(c, err)
		}
		return c.JSON(pending)
	}
}

// PostReview completes the review of an assessment.
func PostReview(assessor Assessor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req ReviewRequest
		if err := c.BodyParser(&req); err != nil {
			return common.BadRequest(c, "Invalid request body: "+err.Error())
		}
		if req.FinalScore == nil {
			return common.BadRequest(c, "final_score is required")
		}

		assessment, err := assessor.CompleteReview(c.UserContext(), c.Params("key"), req.Reviewer, *req.FinalScore, req.Notes)
		if err != nil {
			return common.Error(c, err)
		}

		return c.JSON(fiber.Map{
			"success":    true,
			"message":    "Review recorded",
			"assessment": assessment,
		})
	}
}
