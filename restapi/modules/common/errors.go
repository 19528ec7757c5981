// Package common holds helpers shared by the REST handler modules.
package common

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/ortelius/pdvd-assess/internal/ai"
	"github.com/ortelius/pdvd-assess/internal/scoring"
	"github.com/ortelius/pdvd-assess/internal/services"
	"github.com/ortelius/pdvd-assess/model"
)

// StatusFor maps a domain error to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, model.ErrConflict),
		errors.Is(err, model.ErrInvalidStateTransition):
		return fiber.StatusConflict
	case errors.Is(err, model.ErrInvalidApplication),
		errors.Is(err, model.ErrInvalidCveID),
		errors.Is(err, scoring.ErrInvalidScore),
		errors.Is(err, scoring.ErrInvalidConfidence),
		errors.Is(err, ai.ErrUnknownProvider),
		errors.Is(err, ai.ErrProviderNotConfigured):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrCatalogUnavailable),
		errors.Is(err, ai.ErrInvalidResponse):
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

// Error writes the standard failure body for err.
func Error(c *fiber.Ctx, err error) error {
	return c.Status(StatusFor(err)).JSON(fiber.Map{
		"success": false,
		"message": err.Error(),
	})
}

// BadRequest writes a 400 failure body.
func BadRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
