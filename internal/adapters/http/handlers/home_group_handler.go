package handlers

import (
	"errors"

	"brga-members/internal/core/domain"
	"brga-members/internal/core/services"
	"brga-members/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// HomeGroupHandler handles home group endpoints
type HomeGroupHandler struct {
	groupService *services.HomeGroupService
}

// NewHomeGroupHandler creates a new home group handler
func NewHomeGroupHandler(groupService *services.HomeGroupService) *HomeGroupHandler {
	return &HomeGroupHandler{groupService: groupService}
}

func groupIDParam(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return 0, errors.New("invalid home group id")
	}
	return uint(id), nil
}

// List lists all home groups
func (h *HomeGroupHandler) List(c *fiber.Ctx) error {
	groups, err := h.groupService.List(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list home groups")
	}
	return response.Success(c, "Home groups retrieved", groups)
}

// Get returns one home group
func (h *HomeGroupHandler) Get(c *fiber.Ctx) error {
	id, err := groupIDParam(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	group, err := h.groupService.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrHomeGroupNotFound) {
			return response.NotFound(c, "Home group not found")
		}
		return response.InternalServerError(c, "Failed to load home group")
	}
	return response.Success(c, "Home group retrieved", group)
}

// Create creates a home group
func (h *HomeGroupHandler) Create(c *fiber.Ctx) error {
	var input services.HomeGroupInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	group, err := h.groupService.Create(c.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, domain.ErrDuplicateEntry):
			return response.Conflict(c, "A home group with that name already exists")
		default:
			return response.InternalServerError(c, "Failed to create home group")
		}
	}

	return response.Created(c, "Home group created", group)
}

// Update updates a home group
func (h *HomeGroupHandler) Update(c *fiber.Ctx) error {
	id, err := groupIDParam(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var input services.HomeGroupInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	group, err := h.groupService.Update(c.Context(), id, &input)
	if err != nil {
		if errors.Is(err, domain.ErrHomeGroupNotFound) {
			return response.NotFound(c, "Home group not found")
		}
		return response.InternalServerError(c, "Failed to update home group")
	}

	return response.Success(c, "Home group updated", group)
}

// Delete removes a home group unless members still reference it
func (h *HomeGroupHandler) Delete(c *fiber.Ctx) error {
	id, err := groupIDParam(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	err = h.groupService.Delete(c.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrHomeGroupNotFound):
			return response.NotFound(c, "Home group not found")
		case errors.Is(err, domain.ErrHomeGroupInUse):
			return response.Conflict(c, "Members still list this home group; reassign them first")
		default:
			return response.InternalServerError(c, "Failed to delete home group")
		}
	}

	return response.Success(c, "Home group deleted", nil)
}

// SeedSamples creates the sample meeting list (dev convenience)
func (h *HomeGroupHandler) SeedSamples(c *fiber.Ctx) error {
	created, err := h.groupService.CreateSampleGroups(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to seed home groups")
	}
	return response.Success(c, "Sample home groups created", fiber.Map{"created": created})
}
