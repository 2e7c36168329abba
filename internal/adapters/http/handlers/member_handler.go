package handlers

import (
	"errors"

	"brga-members/internal/core/domain"
	"brga-members/internal/core/services"
	"brga-members/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MemberHandler handles the self-service member endpoints
type MemberHandler struct {
	memberService *services.MemberService
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(memberService *services.MemberService) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

// Me returns the caller's membership state. Available to pending
// members so the frontend can show the "awaiting approval" screen.
func (h *MemberHandler) Me(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	membership, err := h.memberService.GetOwnMembership(c.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return response.NotFound(c, "Membership record not found")
		}
		return response.InternalServerError(c, "Failed to load membership")
	}

	return response.Success(c, "Membership retrieved", fiber.Map{
		"user_id":         membership.UserID,
		"role":            membership.Role,
		"approval_status": membership.ApprovalStatus,
	})
}

// GetProfile returns the caller's directory profile
func (h *MemberHandler) GetProfile(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	profile, err := h.memberService.GetOwnProfile(c.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return response.NotFound(c, "Profile not found")
		}
		return response.InternalServerError(c, "Failed to load profile")
	}

	return response.Success(c, "Profile retrieved", profile)
}

// UpdateProfile updates the caller's directory profile
func (h *MemberHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.ProfileInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	profile, err := h.memberService.UpdateOwnProfile(c.Context(), userID, &input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNameRequired):
			return response.BadRequest(c, "A first or last name is required")
		case errors.Is(err, domain.ErrFutureCleanDate):
			return response.BadRequest(c, "Clean date cannot be in the future")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, domain.ErrHomeGroupNotFound):
			return response.BadRequest(c, "Unknown home group")
		default:
			return response.InternalServerError(c, "Failed to update profile")
		}
	}

	return response.Success(c, "Profile updated", profile)
}
