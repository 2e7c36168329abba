package handlers

import (
	"errors"

	"brga-members/internal/core/domain"
	"brga-members/internal/core/services"
	"brga-members/internal/pkg/pagination"
	"brga-members/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles the admin console: member management and the
// approval state machine.
type AdminHandler struct {
	memberService   *services.MemberService
	approvalService *services.ApprovalService
	authService     *services.AuthService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	memberService *services.MemberService,
	approvalService *services.ApprovalService,
	authService *services.AuthService,
) *AdminHandler {
	return &AdminHandler{
		memberService:   memberService,
		approvalService: approvalService,
		authService:     authService,
	}
}

func actorID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("userID").(uint)
	return id, ok
}

func memberIDParam(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return 0, errors.New("invalid member id")
	}
	return uint(id), nil
}

// ListMembers lists members with pagination and email search
func (h *AdminHandler) ListMembers(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	search := c.Query("search")

	out, err := h.memberService.ListMembers(c.Context(), params.Page, params.Limit, search)
	if err != nil {
		return response.InternalServerError(c, "Failed to list members")
	}

	return response.Success(c, "Members retrieved", out)
}

// GetMember returns one member's full record
func (h *AdminHandler) GetMember(c *fiber.Ctx) error {
	userID, err := memberIDParam(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	member, err := h.memberService.GetMember(c.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return response.NotFound(c, "Member not found")
		}
		return response.InternalServerError(c, "Failed to load member")
	}

	return response.Success(c, "Member retrieved", member)
}

// CreateMember provisions a pre-approved member from the admin console
func (h *AdminHandler) CreateMember(c *fiber.Ctx) error {
	actor, ok := actorID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.CreateMemberInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	member, err := h.memberService.CreateMember(c.Context(), actor, &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrWeakPassword):
			return response.BadRequest(c, "Password must be at least 8 characters")
		case errors.Is(err, services.ErrEmailTaken):
			return response.Conflict(c, "Email already registered")
		case errors.Is(err, domain.ErrNameRequired):
			return response.BadRequest(c, "A first or last name is required")
		case errors.Is(err, domain.ErrFutureCleanDate):
			return response.BadRequest(c, "Clean date cannot be in the future")
		case errors.Is(err, domain.ErrHomeGroupNotFound):
			return response.BadRequest(c, "Unknown home group")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, err.Error())
		default:
			return response.InternalServerError(c, "Failed to create member")
		}
	}

	return response.Created(c, "Member created", member)
}

// UpdateMember applies an admin edit to role, status, notes or profile
func (h *AdminHandler) UpdateMember(c *fiber.Ctx) error {
	actor, ok := actorID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	userID, err := memberIDParam(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var input services.UpdateMemberInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	member, err := h.memberService.UpdateMember(c.Context(), actor, userID, &input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMemberNotFound):
			return response.NotFound(c, "Member not found")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, domain.ErrNameRequired):
			return response.BadRequest(c, "A first or last name is required")
		case errors.Is(err, domain.ErrFutureCleanDate):
			return response.BadRequest(c, "Clean date cannot be in the future")
		default:
			return response.InternalServerError(c, "Failed to update member")
		}
	}

	return response.Success(c, "Member updated", member)
}

// AdminResetPasswordRequest is the body for the admin password reset
type AdminResetPasswordRequest struct {
	Password string `json:"password"`
}

// ResetMemberPassword sets a member's password directly
func (h *AdminHandler) ResetMemberPassword(c *fiber.Ctx) error {
	userID, err := memberIDParam(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var req AdminResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	err = h.authService.AdminResetPassword(c.Context(), userID, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrWeakPassword):
			return response.BadRequest(c, "Password must be at least 8 characters")
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "Member not found")
		default:
			return response.InternalServerError(c, "Failed to reset password")
		}
	}

	return response.Success(c, "Password reset", nil)
}

// ReasonRequest carries the mandatory reason for reject / deletion ops
type ReasonRequest struct {
	Reason string `json:"reason"`
	Notes  string `json:"notes"`
}

// Approve moves a pending member to approved
func (h *AdminHandler) Approve(c *fiber.Ctx) error {
	return h.transition(c, func(actor, userID uint, req *ReasonRequest) error {
		return h.approvalService.Approve(c.Context(), actor, userID, req.Notes)
	})
}

// Reject moves a pending member to rejected; a reason is mandatory
func (h *AdminHandler) Reject(c *fiber.Ctx) error {
	return h.transition(c, func(actor, userID uint, req *ReasonRequest) error {
		return h.approvalService.Reject(c.Context(), actor, userID, req.Reason)
	})
}

// RequestDeletion queues an approved member for deletion
func (h *AdminHandler) RequestDeletion(c *fiber.Ctx) error {
	return h.transition(c, func(actor, userID uint, req *ReasonRequest) error {
		return h.approvalService.RequestDeletion(c.Context(), actor, userID, req.Reason)
	})
}

// ApproveDeletion confirms a queued deletion (superadmin)
func (h *AdminHandler) ApproveDeletion(c *fiber.Ctx) error {
	return h.transition(c, func(actor, userID uint, req *ReasonRequest) error {
		return h.approvalService.ApproveDeletion(c.Context(), actor, userID)
	})
}

// RejectDeletion denies a queued deletion and restores the member
func (h *AdminHandler) RejectDeletion(c *fiber.Ctx) error {
	return h.transition(c, func(actor, userID uint, req *ReasonRequest) error {
		return h.approvalService.RejectDeletion(c.Context(), actor, userID, req.Reason)
	})
}

// DeleteMember soft-deletes a member directly (superadmin)
func (h *AdminHandler) DeleteMember(c *fiber.Ctx) error {
	return h.transition(c, func(actor, userID uint, req *ReasonRequest) error {
		return h.approvalService.Delete(c.Context(), actor, userID)
	})
}

// transition is the shared plumbing for state machine endpoints
func (h *AdminHandler) transition(c *fiber.Ctx, fn func(actor, userID uint, req *ReasonRequest) error) error {
	actor, ok := actorID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	userID, err := memberIDParam(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var req ReasonRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}

	if err := fn(actor, userID, &req); err != nil {
		switch {
		case errors.Is(err, domain.ErrMemberNotFound):
			return response.NotFound(c, "Member not found")
		case errors.Is(err, domain.ErrReasonRequired):
			return response.BadRequest(c, "A reason is required")
		case errors.Is(err, domain.ErrInvalidTransition):
			return response.Conflict(c, err.Error())
		default:
			return response.InternalServerError(c, "Failed to update member status")
		}
	}

	return response.Success(c, "Member status updated", nil)
}

// ListByStatus lists members in one approval state
func (h *AdminHandler) ListByStatus(c *fiber.Ctx) error {
	status := domain.ApprovalStatus(c.Query("status", string(domain.StatusPending)))

	roles, err := h.approvalService.ListByStatus(c.Context(), status)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return response.BadRequest(c, err.Error())
		}
		return response.InternalServerError(c, "Failed to list members")
	}

	return response.Success(c, "Members retrieved", roles)
}

// AuditTrail returns the append-only event history for a member
func (h *AdminHandler) AuditTrail(c *fiber.Ctx) error {
	userID, err := memberIDParam(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	events, err := h.approvalService.AuditTrail(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to load audit trail")
	}

	return response.Success(c, "Audit trail retrieved", events)
}
