package handlers

import (
	"strings"

	"brga-members/internal/config"
	"brga-members/internal/core/services"
	"brga-members/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AnnouncementHandler handles outbound chapter email: announcements to
// approved members and the public speaker request form.
type AnnouncementHandler struct {
	emailService  *services.EmailService
	memberService *services.MemberService
	cfg           *config.Config
}

// NewAnnouncementHandler creates a new announcement handler
func NewAnnouncementHandler(
	emailService *services.EmailService,
	memberService *services.MemberService,
	cfg *config.Config,
) *AnnouncementHandler {
	return &AnnouncementHandler{
		emailService:  emailService,
		memberService: memberService,
		cfg:           cfg,
	}
}

// AnnouncementRequest is the announcement body
type AnnouncementRequest struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

// Send fans an announcement out to every approved member. Failures are
// per-recipient; the response reports sent and failed counts.
func (h *AnnouncementHandler) Send(c *fiber.Ctx) error {
	var req AnnouncementRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if strings.TrimSpace(req.Subject) == "" {
		return response.BadRequest(c, "Subject is required")
	}
	if strings.TrimSpace(req.HTML) == "" && strings.TrimSpace(req.Text) == "" {
		return response.BadRequest(c, "A message body is required")
	}

	recipients, err := h.memberService.ApprovedEmails(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load recipients")
	}

	result := h.emailService.Fanout(c.Context(), recipients, req.Subject, req.HTML, req.Text)

	return response.Success(c, "Announcement sent", result)
}

// SpeakerRequestBody is the public speaker request form
type SpeakerRequestBody struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Details string `json:"details"`
}

// SpeakerRequest forwards a speaker request to the chapter contact
func (h *AnnouncementHandler) SpeakerRequest(c *fiber.Ctx) error {
	var req SpeakerRequestBody
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		return response.BadRequest(c, "Name and email are required")
	}

	contact := h.cfg.Email.ContactEmail
	if contact == "" {
		return response.InternalServerError(c, "Chapter contact email is not configured")
	}

	if err := h.emailService.SendSpeakerRequest(c.Context(), contact, req.Name, req.Email, req.Details); err != nil {
		return response.InternalServerError(c, "Failed to send speaker request")
	}

	return response.Success(c, "Speaker request sent", nil)
}
