package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"brga-members/internal/adapters/persistence/models"
	"brga-members/internal/adapters/persistence/repositories"
	"brga-members/internal/core/domain"
	"brga-members/internal/pkg/password"

	"gorm.io/gorm"
)

// MemberService handles member management for the admin console and
// the self-service profile.
type MemberService struct {
	db          *gorm.DB
	userRepo    repositories.UserRepository
	roleRepo    repositories.MemberRoleRepository
	profileRepo repositories.MemberProfileRepository
	groupRepo   repositories.HomeGroupRepository
	auditRepo   repositories.AuditEventRepository
	mailer      Mailer
}

// NewMemberService creates a new member service
func NewMemberService(
	db *gorm.DB,
	userRepo repositories.UserRepository,
	roleRepo repositories.MemberRoleRepository,
	profileRepo repositories.MemberProfileRepository,
	groupRepo repositories.HomeGroupRepository,
	auditRepo repositories.AuditEventRepository,
	mailer Mailer,
) *MemberService {
	return &MemberService{
		db:          db,
		userRepo:    userRepo,
		roleRepo:    roleRepo,
		profileRepo: profileRepo,
		groupRepo:   groupRepo,
		auditRepo:   auditRepo,
		mailer:      mailer,
	}
}

// ProfileInput carries profile fields for create and full updates
type ProfileInput struct {
	FirstName             string     `json:"first_name"`
	MiddleInitial         string     `json:"middle_initial"`
	LastName              string     `json:"last_name"`
	Phone                 string     `json:"phone"`
	CleanDate             *time.Time `json:"clean_date"`
	HomeGroupID           *uint      `json:"home_group_id"`
	ListedInDirectory     bool       `json:"listed_in_directory"`
	WillingToSponsor      bool       `json:"willing_to_sponsor"`
	SharePhoneInDirectory bool       `json:"share_phone_in_directory"`
	ShareEmailInDirectory bool       `json:"share_email_in_directory"`
}

// Validate checks profile invariants before any write
func (in *ProfileInput) Validate() error {
	if strings.TrimSpace(in.FirstName) == "" && strings.TrimSpace(in.LastName) == "" {
		return domain.ErrNameRequired
	}
	if len(in.MiddleInitial) > 1 {
		return fmt.Errorf("%w: middle initial must be a single character", domain.ErrInvalidInput)
	}
	if in.CleanDate != nil && in.CleanDate.After(time.Now()) {
		return domain.ErrFutureCleanDate
	}
	return nil
}

// CreateMemberInput is the admin "add member" form
type CreateMemberInput struct {
	Email    string       `json:"email"`
	Password string       `json:"password"`
	Profile  ProfileInput `json:"profile"`
}

// CreateMember provisions a member from the admin console. The account
// comes out approved immediately. Everything is one transaction, so
// there is no window where the identity exists without its role and
// profile rows. The welcome email is best-effort.
func (s *MemberService) CreateMember(ctx context.Context, actorID uint, input *CreateMemberInput) (*models.MemberResponse, error) {
	if !password.Validate(input.Password) {
		return nil, ErrWeakPassword
	}
	if err := input.Profile.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	if input.Profile.HomeGroupID != nil {
		if _, err := s.groupRepo.GetByID(ctx, *input.Profile.HomeGroupID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.ErrHomeGroupNotFound
			}
			return nil, err
		}
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	var user *models.User
	var role *models.MemberRole
	var profile *models.MemberProfile

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txUsers := repositories.NewUserRepository(tx)
		txRoles := repositories.NewMemberRoleRepository(tx)
		txProfiles := repositories.NewMemberProfileRepository(tx)
		txAudit := repositories.NewAuditEventRepository(tx)

		user = &models.User{
			Email:          input.Email,
			Password:       hashed,
			EmailConfirmed: true,
		}
		if err := txUsers.Create(ctx, user); err != nil {
			return err
		}

		role = &models.MemberRole{
			UserID:         user.ID,
			Role:           string(domain.RoleMember),
			ApprovalStatus: string(domain.StatusApproved),
			Notes:          "Manually added by admin",
		}
		if err := txRoles.Create(ctx, role); err != nil {
			return err
		}

		profile = profileFromInput(user, &input.Profile)
		if err := txProfiles.Create(ctx, profile); err != nil {
			return err
		}

		return txAudit.Create(ctx, &models.AuditEvent{
			UserID:  user.ID,
			ActorID: actorID,
			Action:  string(domain.AuditApproved),
			Detail:  "Manually added by admin",
		})
	})
	if err != nil {
		return nil, err
	}

	if err := s.mailer.SendWelcome(ctx, user.Email, ""); err != nil {
		log.Printf("⚠️ Welcome email failed for %s: %v", user.Email, err)
	}

	log.Printf("✅ Member created by admin: %s (by %d)", user.Email, actorID)
	return models.BuildMemberResponse(user, role, profile), nil
}

// UpdateMemberInput is the admin edit panel; nil fields are untouched.
// Role and approval status can be overwritten directly here, which is
// the escape hatch outside the sanctioned state machine transitions.
type UpdateMemberInput struct {
	Role           *string       `json:"role"`
	ApprovalStatus *string       `json:"approval_status"`
	Notes          *string       `json:"notes"`
	Profile        *ProfileInput `json:"profile"`
}

// UpdateMember applies an admin edit. Concurrent edits are
// last-writer-wins; there is no optimistic concurrency check.
func (s *MemberService) UpdateMember(ctx context.Context, actorID, userID uint, input *UpdateMemberInput) (*models.MemberResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}

	role, err := s.roleRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}

	if input.Role != nil {
		if !domain.Role(*input.Role).IsValid() {
			return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, *input.Role)
		}
		role.Role = *input.Role
	}
	if input.ApprovalStatus != nil {
		if !domain.ApprovalStatus(*input.ApprovalStatus).IsValid() {
			return nil, fmt.Errorf("%w: unknown approval status %q", domain.ErrInvalidInput, *input.ApprovalStatus)
		}
		role.ApprovalStatus = *input.ApprovalStatus
	}
	if input.Notes != nil {
		role.Notes = *input.Notes
	}
	if err := s.roleRepo.Update(ctx, role); err != nil {
		return nil, err
	}

	var profile *models.MemberProfile
	if input.Profile != nil {
		if err := input.Profile.Validate(); err != nil {
			return nil, err
		}
		profile = profileFromInput(user, input.Profile)
		// Upsert covers the rare case of a member whose profile stub
		// went missing; the row is recreated instead of erroring.
		if err := s.profileRepo.Upsert(ctx, profile); err != nil {
			return nil, err
		}
	} else {
		profile, err = s.profileRepo.GetByUserID(ctx, userID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if err := s.auditRepo.Create(ctx, &models.AuditEvent{
		UserID:  userID,
		ActorID: actorID,
		Action:  string(domain.AuditNoteAdded),
		Detail:  "member record edited by admin",
	}); err != nil {
		return nil, err
	}

	log.Printf("✅ Member updated: user ID %d (by %d)", userID, actorID)
	return models.BuildMemberResponse(user, role, profile), nil
}

// UpdateOwnProfile lets a member edit their own directory profile.
// Role and approval status are out of reach here.
func (s *MemberService) UpdateOwnProfile(ctx context.Context, userID uint, input *ProfileInput) (*models.MemberProfile, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.HomeGroupID != nil {
		if _, err := s.groupRepo.GetByID(ctx, *input.HomeGroupID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.ErrHomeGroupNotFound
			}
			return nil, err
		}
	}

	profile := profileFromInput(user, input)
	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, err
	}

	return s.profileRepo.GetByUserID(ctx, userID)
}

// GetMember returns the admin view of one member
func (s *MemberService) GetMember(ctx context.Context, userID uint) (*models.MemberResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}

	role, err := s.roleRepo.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return models.BuildMemberResponse(user, role, profile), nil
}

// GetOwnMembership returns the caller's role and approval status
func (s *MemberService) GetOwnMembership(ctx context.Context, userID uint) (*domain.Membership, error) {
	role, err := s.roleRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}
	return &domain.Membership{
		UserID:         userID,
		Role:           domain.Role(role.Role),
		ApprovalStatus: domain.ApprovalStatus(role.ApprovalStatus),
	}, nil
}

// GetOwnProfile returns the caller's profile
func (s *MemberService) GetOwnProfile(ctx context.Context, userID uint) (*models.MemberProfile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}
	return profile, nil
}

// ListMembersOutput is the paginated admin member list
type ListMembersOutput struct {
	Members    []*models.MemberResponse `json:"members"`
	Total      int64                    `json:"total"`
	Page       int                      `json:"page"`
	Limit      int                      `json:"limit"`
	TotalPages int                      `json:"total_pages"`
}

// ListMembers lists members for the admin console with pagination and
// email search, enriching each row with its role and profile.
func (s *MemberService) ListMembers(ctx context.Context, page, limit int, search string) (*ListMembersOutput, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := (page - 1) * limit

	users, total, err := s.userRepo.List(ctx, offset, limit, search)
	if err != nil {
		return nil, err
	}

	members := make([]*models.MemberResponse, 0, len(users))
	for _, user := range users {
		role, err := s.roleRepo.GetByUserID(ctx, user.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		profile, err := s.profileRepo.GetByUserID(ctx, user.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		members = append(members, models.BuildMemberResponse(user, role, profile))
	}

	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}

	return &ListMembersOutput{
		Members:    members,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// ApprovedEmails returns the email address of every approved member,
// used for announcement fan-out.
func (s *MemberService) ApprovedEmails(ctx context.Context) ([]string, error) {
	roles, err := s.roleRepo.ListByStatus(ctx, string(domain.StatusApproved))
	if err != nil {
		return nil, err
	}

	emails := make([]string, 0, len(roles))
	for _, role := range roles {
		user, err := s.userRepo.GetByID(ctx, role.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		emails = append(emails, user.Email)
	}
	return emails, nil
}

func profileFromInput(user *models.User, in *ProfileInput) *models.MemberProfile {
	return &models.MemberProfile{
		UserID:                user.ID,
		FirstName:             strings.TrimSpace(in.FirstName),
		MiddleInitial:         strings.TrimSpace(in.MiddleInitial),
		LastName:              strings.TrimSpace(in.LastName),
		Phone:                 strings.TrimSpace(in.Phone),
		Email:                 user.Email,
		CleanDate:             in.CleanDate,
		HomeGroupID:           in.HomeGroupID,
		ListedInDirectory:     in.ListedInDirectory,
		WillingToSponsor:      in.WillingToSponsor,
		SharePhoneInDirectory: in.SharePhoneInDirectory,
		ShareEmailInDirectory: in.ShareEmailInDirectory,
	}
}
