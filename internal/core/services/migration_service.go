package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"brga-members/internal/adapters/persistence/models"
	"brga-members/internal/adapters/persistence/repositories"
	"brga-members/internal/core/domain"
	"brga-members/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// migrationPacing is the delay between users in a batch; a throttle to
// stay under provider rate limits, not a concurrency primitive.
const migrationPacing = 100 * time.Millisecond

// cleanDateLayouts are the formats accepted for migrated clean dates
var cleanDateLayouts = []string{"2006-01-02", "01/02/2006", "1/2/2006"}

// MigrationService imports member rosters from the legacy system.
// Each user gets a generated temporary password, an approved role row,
// a profile, and a welcome email carrying the password.
type MigrationService struct {
	db               *gorm.DB
	userRepo         repositories.UserRepository
	homeGroupService *HomeGroupService
	mailer           Mailer
}

// NewMigrationService creates a new migration service
func NewMigrationService(
	db *gorm.DB,
	userRepo repositories.UserRepository,
	homeGroupService *HomeGroupService,
	mailer Mailer,
) *MigrationService {
	return &MigrationService{
		db:               db,
		userRepo:         userRepo,
		homeGroupService: homeGroupService,
		mailer:           mailer,
	}
}

// MigrationUser is one roster entry in a migration batch
type MigrationUser struct {
	Email         string `json:"email"`
	FirstName     string `json:"first_name"`
	MiddleInitial string `json:"middle_initial"`
	LastName      string `json:"last_name"`
	Phone         string `json:"phone"`
	CleanDate     string `json:"clean_date"`
	HomeGroup     string `json:"home_group"`
}

// MigrationInput is the bulk migration request
type MigrationInput struct {
	Users         []MigrationUser `json:"users"`
	MigrationType string          `json:"migration_type"`
}

// UserResult reports the outcome for one roster entry
type UserResult struct {
	Email   string `json:"email"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	UserID  uint   `json:"user_id,omitempty"`
}

// MigrationResult is the aggregate batch outcome. Partial failure is
// visible per item instead of failing the whole batch.
type MigrationResult struct {
	BatchID    string       `json:"batch_id"`
	Total      int          `json:"total"`
	Successful int          `json:"successful"`
	Failed     int          `json:"failed"`
	Results    []UserResult `json:"results"`
}

// Run migrates a batch of users, pacing 100ms between entries
func (s *MigrationService) Run(ctx context.Context, input *MigrationInput) (*MigrationResult, error) {
	if len(input.Users) == 0 {
		return nil, fmt.Errorf("%w: no users in migration batch", domain.ErrInvalidInput)
	}

	result := &MigrationResult{
		BatchID: uuid.New().String(),
		Total:   len(input.Users),
	}

	log.Printf("🚚 Migration batch %s started: %d users (type: %s)",
		result.BatchID, result.Total, input.MigrationType)

	for i, mu := range input.Users {
		if i > 0 {
			time.Sleep(migrationPacing)
		}

		userID, err := s.migrateOne(ctx, &mu)
		if err != nil {
			result.Failed++
			result.Results = append(result.Results, UserResult{
				Email:   mu.Email,
				Success: false,
				Error:   err.Error(),
			})
			log.Printf("⚠️ Migration failed for %s: %v", mu.Email, err)
			continue
		}

		result.Successful++
		result.Results = append(result.Results, UserResult{
			Email:   mu.Email,
			Success: true,
			UserID:  userID,
		})
	}

	log.Printf("✅ Migration batch %s finished: %d/%d successful",
		result.BatchID, result.Successful, result.Total)
	return result, nil
}

// migrateOne imports a single roster entry. A malformed clean date is
// dropped, not an error: the member record still lands, just without a
// sobriety date.
func (s *MigrationService) migrateOne(ctx context.Context, mu *MigrationUser) (uint, error) {
	email := strings.ToLower(strings.TrimSpace(mu.Email))
	if email == "" {
		return 0, fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, ErrEmailTaken
	}

	tempPassword, err := password.GenerateTemp()
	if err != nil {
		return 0, err
	}
	hashed, err := password.Hash(tempPassword)
	if err != nil {
		return 0, err
	}

	var homeGroupID *uint
	if strings.TrimSpace(mu.HomeGroup) != "" {
		group, err := s.homeGroupService.LookupOrCreate(ctx, mu.HomeGroup)
		if err != nil {
			return 0, err
		}
		homeGroupID = &group.ID
	}

	cleanDate := parseCleanDate(mu.CleanDate)

	var user *models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txUsers := repositories.NewUserRepository(tx)
		txRoles := repositories.NewMemberRoleRepository(tx)
		txProfiles := repositories.NewMemberProfileRepository(tx)

		user = &models.User{
			Email:          email,
			Password:       hashed,
			EmailConfirmed: true,
		}
		if err := txUsers.Create(ctx, user); err != nil {
			return err
		}

		role := &models.MemberRole{
			UserID:         user.ID,
			Role:           string(domain.RoleMember),
			ApprovalStatus: string(domain.StatusApproved),
			Notes:          "Migrated from legacy roster",
		}
		if err := txRoles.Create(ctx, role); err != nil {
			return err
		}

		profile := &models.MemberProfile{
			UserID:        user.ID,
			FirstName:     strings.TrimSpace(mu.FirstName),
			MiddleInitial: strings.TrimSpace(mu.MiddleInitial),
			LastName:      strings.TrimSpace(mu.LastName),
			Phone:         strings.TrimSpace(mu.Phone),
			Email:         email,
			CleanDate:     cleanDate,
			HomeGroupID:   homeGroupID,
		}
		return txProfiles.Create(ctx, profile)
	})
	if err != nil {
		return 0, err
	}

	// Best-effort: a failed welcome email does not undo the account.
	if err := s.mailer.SendWelcome(ctx, email, tempPassword); err != nil {
		log.Printf("⚠️ Welcome email failed for migrated user %s: %v", email, err)
	}

	return user.ID, nil
}

// parseCleanDate tries the accepted layouts and returns nil for
// anything unparseable or in the future.
func parseCleanDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	for _, layout := range cleanDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			if t.After(time.Now()) {
				return nil
			}
			return &t
		}
	}

	return nil
}
