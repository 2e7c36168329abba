package routes

import (
	"time"

	"brga-members/internal/adapters/http/handlers"
	"brga-members/internal/adapters/http/middleware"
	"brga-members/internal/adapters/persistence/repositories"
	"brga-members/internal/config"
	"brga-members/internal/core/domain"
	"brga-members/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Setup wires repositories, services and handlers and registers every
// route. All dependency injection happens here; nothing is global.
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	resetTokenRepo := repositories.NewPasswordResetTokenRepository(db)
	roleRepo := repositories.NewMemberRoleRepository(db)
	profileRepo := repositories.NewMemberProfileRepository(db)
	groupRepo := repositories.NewHomeGroupRepository(db)
	codeRepo := repositories.NewApprovalCodeRepository(db)
	auditRepo := repositories.NewAuditEventRepository(db)

	// Services
	emailService := services.NewEmailService(services.EmailConfig{
		APIURL:  cfg.Email.APIURL,
		APIKey:  cfg.Email.APIKey,
		From:    cfg.Email.From,
		BaseURL: cfg.Email.PublicBaseURL,
	})
	authService := services.NewAuthService(db, userRepo, refreshTokenRepo, resetTokenRepo, roleRepo, emailService, cfg)
	codeService := services.NewApprovalCodeService(codeRepo)
	approvalService := services.NewApprovalService(roleRepo, auditRepo)
	groupService := services.NewHomeGroupService(groupRepo, profileRepo)
	memberService := services.NewMemberService(db, userRepo, roleRepo, profileRepo, groupRepo, auditRepo, emailService)
	directoryService := services.NewDirectoryService(profileRepo, roleRepo, userRepo)
	migrationService := services.NewMigrationService(db, userRepo, groupService, emailService)

	// Handlers
	healthHandler := handlers.NewHealthHandler(db, cfg)
	authHandler := handlers.NewAuthHandler(authService, cfg)
	memberHandler := handlers.NewMemberHandler(memberService)
	adminHandler := handlers.NewAdminHandler(memberService, approvalService, authService)
	codeHandler := handlers.NewCodeHandler(codeService)
	directoryHandler := handlers.NewDirectoryHandler(directoryService)
	groupHandler := handlers.NewHomeGroupHandler(groupService)
	announcementHandler := handlers.NewAnnouncementHandler(emailService, memberService, cfg)
	migrationHandler := handlers.NewMigrationHandler(migrationService)

	// Route-level middleware
	auth := middleware.AuthMiddleware(cfg)
	requireApproved := middleware.RequireMembership(roleRepo, false)
	requireAny := middleware.RequireMembership(roleRepo, true)
	requireEditor := middleware.RequireMembership(roleRepo, false, domain.RoleEditor, domain.RoleAdmin, domain.RoleSuperadmin)
	requireAdmin := middleware.RequireAdmin(roleRepo)
	requireSuperadmin := middleware.RequireSuperadmin(roleRepo)

	// Health
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	api := app.Group("/api/v1")

	// Public auth endpoints, rate limited
	authGroup := api.Group("/auth")
	authGroup.Post("/register", middleware.AuthRateLimiter(), authHandler.Register)
	authGroup.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	authGroup.Post("/refresh", authHandler.RefreshToken)
	authGroup.Post("/logout", authHandler.Logout)
	authGroup.Post("/logout-all", auth, authHandler.LogoutAll)
	authGroup.Post("/forgot-password", middleware.StrictRateLimiter(), authHandler.ForgotPassword)
	authGroup.Post("/reset-password", middleware.StrictRateLimiter(), authHandler.ResetPassword)

	// Public signup helpers
	api.Post("/codes/validate", middleware.AuthRateLimiter(), codeHandler.Validate)
	api.Post("/speaker-request", middleware.StrictRateLimiter(), announcementHandler.SpeakerRequest)

	// Home group list is public (meeting schedule page)
	api.Get("/home-groups", middleware.PublicCache(time.Hour), groupHandler.List)
	api.Get("/home-groups/:id", middleware.PublicCache(time.Hour), groupHandler.Get)

	// Self-service: pending members can see their status and edit their
	// profile; everything else needs approval.
	me := api.Group("/me", auth, middleware.NoCacheHeaders())
	me.Get("/", requireAny, memberHandler.Me)
	me.Get("/profile", requireAny, memberHandler.GetProfile)
	me.Put("/profile", requireAny, memberHandler.UpdateProfile)

	// Member directory: approved members only
	api.Get("/directory", auth, requireApproved, middleware.NoCacheHeaders(), directoryHandler.List)

	// Admin console
	admin := api.Group("/admin", auth, requireAdmin, middleware.NoCacheHeaders())

	admin.Get("/members", adminHandler.ListMembers)
	admin.Post("/members", adminHandler.CreateMember)
	admin.Get("/members/status", adminHandler.ListByStatus)
	admin.Get("/members/:id", adminHandler.GetMember)
	admin.Put("/members/:id", adminHandler.UpdateMember)
	admin.Post("/members/:id/reset-password", adminHandler.ResetMemberPassword)
	admin.Get("/members/:id/audit", adminHandler.AuditTrail)

	// Approval state machine
	admin.Post("/members/:id/approve", adminHandler.Approve)
	admin.Post("/members/:id/reject", adminHandler.Reject)
	admin.Post("/members/:id/request-deletion", adminHandler.RequestDeletion)

	// Approval codes
	admin.Get("/codes", codeHandler.List)
	admin.Post("/codes", codeHandler.Generate)
	admin.Delete("/codes", codeHandler.Delete)

	// Home group management (editors may maintain the meeting list)
	groups := api.Group("/home-groups", auth, requireEditor)
	groups.Post("/", groupHandler.Create)
	groups.Put("/:id", groupHandler.Update)
	groups.Delete("/:id", groupHandler.Delete)
	groups.Post("/seed", groupHandler.SeedSamples)

	// Announcements
	admin.Post("/announcements", announcementHandler.Send)

	// Superadmin only: deletion confirmation and bulk migration
	super := api.Group("/admin", auth, requireSuperadmin, middleware.NoCacheHeaders())
	super.Post("/members/:id/approve-deletion", adminHandler.ApproveDeletion)
	super.Post("/members/:id/reject-deletion", adminHandler.RejectDeletion)
	super.Delete("/members/:id", adminHandler.DeleteMember)
	super.Post("/migrations", migrationHandler.Run)
}
