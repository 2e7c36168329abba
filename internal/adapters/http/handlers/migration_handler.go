package handlers

import (
	"errors"

	"brga-members/internal/core/domain"
	"brga-members/internal/core/services"
	"brga-members/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MigrationHandler handles the bulk roster import
type MigrationHandler struct {
	migrationService *services.MigrationService
}

// NewMigrationHandler creates a new migration handler
func NewMigrationHandler(migrationService *services.MigrationService) *MigrationHandler {
	return &MigrationHandler{migrationService: migrationService}
}

// Run imports a batch of legacy roster entries. The batch always
// completes; individual failures come back in the per-user results.
func (h *MigrationHandler) Run(c *fiber.Ctx) error {
	var input services.MigrationInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.migrationService.Run(c.Context(), &input)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return response.BadRequest(c, err.Error())
		}
		return response.InternalServerError(c, "Migration failed")
	}

	return response.Success(c, "Migration completed", result)
}
