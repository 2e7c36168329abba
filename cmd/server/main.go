package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"brga-members/internal/adapters/http/middleware"
	"brga-members/internal/adapters/http/routes"
	"brga-members/internal/adapters/persistence/models"
	"brga-members/internal/adapters/persistence/repositories"
	"brga-members/internal/config"
	"brga-members/internal/core/services"

	"github.com/gofiber/fiber/v2"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase(db)

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed the bootstrap superadmin
	if err := config.NewSeeder(db, cfg).Run(); err != nil {
		log.Printf("⚠️ Warning: Failed to seed database: %v", err)
	}

	// Background jobs: token purge and meeting reminders
	scheduler := services.NewSchedulerService(
		repositories.NewRefreshTokenRepository(db),
		repositories.NewPasswordResetTokenRepository(db),
		repositories.NewHomeGroupRepository(db),
		repositories.NewMemberProfileRepository(db),
		repositories.NewMemberRoleRepository(db),
		services.NewEmailService(services.EmailConfig{
			APIURL:  cfg.Email.APIURL,
			APIKey:  cfg.Email.APIKey,
			From:    cfg.Email.From,
			BaseURL: cfg.Email.PublicBaseURL,
		}),
	)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("❌ Failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "BRGA Members API",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db and cfg for dependency injection)
	routes.Setup(app, db, cfg)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
