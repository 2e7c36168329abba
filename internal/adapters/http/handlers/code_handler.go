package handlers

import (
	"errors"

	"brga-members/internal/core/domain"
	"brga-members/internal/core/services"
	"brga-members/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CodeHandler handles approval code endpoints
type CodeHandler struct {
	codeService *services.ApprovalCodeService
}

// NewCodeHandler creates a new code handler
func NewCodeHandler(codeService *services.ApprovalCodeService) *CodeHandler {
	return &CodeHandler{codeService: codeService}
}

// GenerateRequest is the code generation request body
type GenerateRequest struct {
	Count          int `json:"count"`
	ExpirationDays int `json:"expiration_days"`
}

// Generate creates a batch of single-use approval codes
func (h *CodeHandler) Generate(c *fiber.Ctx) error {
	actor, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	req := GenerateRequest{Count: 1, ExpirationDays: 30}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}

	codes, err := h.codeService.Generate(c.Context(), actor, req.Count, req.ExpirationDays)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, services.ErrCodeGenerationFailed):
			return response.InternalServerError(c, "Could not generate unique codes, try again")
		default:
			return response.InternalServerError(c, "Failed to generate codes")
		}
	}

	return response.Created(c, "Codes generated", codes)
}

// ValidateRequest is the public code pre-check body
type ValidateRequest struct {
	Code string `json:"code"`
}

// Validate pre-checks a code for the signup form without consuming it
func (h *CodeHandler) Validate(c *fiber.Ctx) error {
	var req ValidateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	err := h.codeService.Validate(c.Context(), req.Code)
	if err != nil {
		reason := ""
		switch {
		case errors.Is(err, domain.ErrCodeFormatInvalid):
			reason = "Code format is invalid"
		case errors.Is(err, domain.ErrCodeNotFound):
			reason = "Code not recognized"
		case errors.Is(err, domain.ErrCodeAlreadyUsed):
			reason = "Code has already been used"
		case errors.Is(err, domain.ErrCodeExpired):
			reason = "Code has expired"
		default:
			return response.InternalServerError(c, "Failed to check code")
		}
		return response.Success(c, "Code checked", fiber.Map{
			"valid":  false,
			"reason": reason,
		})
	}

	return response.Success(c, "Code checked", fiber.Map{"valid": true})
}

// List lists codes for the admin console, filtered by status bucket and
// code substring
func (h *CodeHandler) List(c *fiber.Ctx) error {
	status := domain.CodeStatus(c.Query("status", string(domain.CodeStatusAll)))
	search := c.Query("search")

	codes, err := h.codeService.List(c.Context(), status, search)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return response.BadRequest(c, err.Error())
		}
		return response.InternalServerError(c, "Failed to list codes")
	}

	return response.Success(c, "Codes retrieved", codes)
}

// DeleteRequest is the bulk delete body
type DeleteRequest struct {
	IDs []uint `json:"ids"`
}

// Delete bulk-deletes unused codes; used codes are silently skipped
func (h *CodeHandler) Delete(c *fiber.Ctx) error {
	var req DeleteRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	deleted, err := h.codeService.DeleteUnused(c.Context(), req.IDs)
	if err != nil {
		return response.InternalServerError(c, "Failed to delete codes")
	}

	return response.Success(c, "Codes deleted", fiber.Map{
		"requested": len(req.IDs),
		"deleted":   deleted,
	})
}
