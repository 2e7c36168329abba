package handlers

import (
	"brga-members/internal/core/services"
	"brga-members/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DirectoryHandler serves the member directory
type DirectoryHandler struct {
	directoryService *services.DirectoryService
}

// NewDirectoryHandler creates a new directory handler
func NewDirectoryHandler(directoryService *services.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directoryService: directoryService}
}

// List returns the directory with optional search, filters and sort
func (h *DirectoryHandler) List(c *fiber.Ctx) error {
	filters := services.DirectoryFilters{
		Search:       c.Query("search"),
		SponsorsOnly: c.QueryBool("sponsors_only"),
		SortBy:       c.Query("sort", services.SortByName),
	}
	if groupID := c.QueryInt("home_group_id"); groupID > 0 {
		id := uint(groupID)
		filters.HomeGroupID = &id
	}

	entries, err := h.directoryService.List(c.Context(), filters)
	if err != nil {
		return response.InternalServerError(c, "Failed to load directory")
	}

	return response.Success(c, "Directory retrieved", fiber.Map{
		"members": entries,
		"count":   len(entries),
	})
}
