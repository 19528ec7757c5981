package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/ortelius/pdvd-assess/internal/ai"
	"github.com/ortelius/pdvd-assess/internal/scoring"
	"github.com/ortelius/pdvd-assess/internal/services"
	"github.com/ortelius/pdvd-assess/model"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("application x: %w", model.ErrNotFound), fiber.StatusNotFound},
		{model.ErrConflict, fiber.StatusConflict},
		{model.ErrInvalidStateTransition, fiber.StatusConflict},
		{model.ErrInvalidApplication, fiber.StatusBadRequest},
		{model.ErrInvalidCveID, fiber.StatusBadRequest},
		{scoring.ErrInvalidScore, fiber.StatusBadRequest},
		{fmt.Errorf("mock: %w", ai.ErrInvalidConfidence), fiber.StatusBadRequest},
		{ai.ErrUnknownProvider, fiber.StatusBadRequest},
		{ai.ErrProviderNotConfigured, fiber.StatusBadRequest},
		{fmt.Errorf("fetch: %w", services.ErrCatalogUnavailable), fiber.StatusBadGateway},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), "error %v", tt.err)
	}
}
