package config

import (
	"errors"
	"log"

	"brga-members/internal/adapters/persistence/models"
	"brga-members/internal/core/domain"
	"brga-members/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db  *gorm.DB
	cfg *Config
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, cfg *Config) *Seeder {
	return &Seeder{db: db, cfg: cfg}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedSuperadmin(); err != nil {
		log.Printf("⚠️ Superadmin seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedSuperadmin creates the bootstrap superadmin from ADMIN_EMAIL /
// ADMIN_PASSWORD. Without a superadmin nobody can confirm deletions, so
// a fresh install needs one. Skipped when the account already exists or
// the env vars are unset.
func (s *Seeder) seedSuperadmin() error {
	if s.cfg.Admin.Email == "" || s.cfg.Admin.Password == "" {
		log.Println("⚠️ ADMIN_EMAIL / ADMIN_PASSWORD not set, skipping superadmin seed")
		return nil
	}

	var existing models.User
	err := s.db.Where("email = ?", s.cfg.Admin.Email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := password.Hash(s.cfg.Admin.Password)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		admin := &models.User{
			Email:          s.cfg.Admin.Email,
			Password:       hashed,
			EmailConfirmed: true,
		}
		if err := tx.Create(admin).Error; err != nil {
			return err
		}

		role := &models.MemberRole{
			UserID:         admin.ID,
			Role:           string(domain.RoleSuperadmin),
			ApprovalStatus: string(domain.StatusApproved),
			Notes:          "Bootstrap superadmin",
		}
		if err := tx.Create(role).Error; err != nil {
			return err
		}

		profile := &models.MemberProfile{
			UserID: admin.ID,
			Email:  admin.Email,
		}
		if err := tx.Create(profile).Error; err != nil {
			return err
		}

		log.Printf("✅ Superadmin created: %s", admin.Email)
		return nil
	})
}
