package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"brga-members/internal/adapters/persistence/models"
	"brga-members/internal/adapters/persistence/repositories"
	"brga-members/internal/config"
	"brga-members/internal/core/domain"
	"brga-members/internal/pkg/jwt"
	"brga-members/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Auth errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrAccountRejected    = errors.New("account has been rejected")
	ErrAccountDeleted     = errors.New("account has been deleted")
	ErrWeakPassword       = errors.New("password does not meet requirements")
)

const resetTokenTTL = time.Hour

// AuthService handles signup, login and token lifecycle. Signup is the
// account provisioner: identity, role row and profile stub are created
// in one transaction so a failed code redemption never leaves an
// orphaned identity behind.
type AuthService struct {
	db               *gorm.DB
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	resetTokenRepo   repositories.PasswordResetTokenRepository
	roleRepo         repositories.MemberRoleRepository
	mailer           Mailer
	cfg              *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(
	db *gorm.DB,
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	resetTokenRepo repositories.PasswordResetTokenRepository,
	roleRepo repositories.MemberRoleRepository,
	mailer Mailer,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		db:               db,
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		resetTokenRepo:   resetTokenRepo,
		roleRepo:         roleRepo,
		mailer:           mailer,
		cfg:              cfg,
	}
}

// RegisterInput represents signup input
type RegisterInput struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	ApprovalCode string `json:"approval_code"`
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	UserID         uint   `json:"user_id"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	ApprovalStatus string `json:"approval_status"`
	AccessToken    string `json:"access_token"`
	RefreshToken   string `json:"refresh_token"`
}

// Register provisions a new account. With a valid approval code the
// member comes out approved; without one the role row stays pending
// until an admin acts. Identity, code redemption, role row and profile
// stub all commit or roll back together.
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*AuthResponse, error) {
	// 1. Check password strength
	if !password.Validate(input.Password) {
		return nil, ErrWeakPassword
	}

	// 2. Check duplicate email before opening the transaction
	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	// 3. Hash password
	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	var user *models.User
	var role *models.MemberRole

	// 4. Provision identity + role + profile atomically
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txUsers := repositories.NewUserRepository(tx)
		txRoles := repositories.NewMemberRoleRepository(tx)
		txProfiles := repositories.NewMemberProfileRepository(tx)
		txCodes := NewApprovalCodeService(repositories.NewApprovalCodeRepository(tx))
		txAudit := repositories.NewAuditEventRepository(tx)

		user = &models.User{
			Email:    input.Email,
			Password: hashed,
		}
		if err := txUsers.Create(ctx, user); err != nil {
			return err
		}

		// Redeem inside the transaction: a lost race rolls the whole
		// signup back instead of leaving an orphaned identity.
		status := string(domain.StatusPending)
		notes := ""
		if NormalizeCode(input.ApprovalCode) != "" {
			if err := txCodes.Redeem(ctx, input.ApprovalCode, user.ID); err != nil {
				return err
			}
			status = string(domain.StatusApproved)
			notes = "Approved via signup code"
		}

		role = &models.MemberRole{
			UserID:         user.ID,
			Role:           string(domain.RoleMember),
			ApprovalStatus: status,
			Notes:          notes,
		}
		if err := txRoles.Create(ctx, role); err != nil {
			return err
		}

		profile := &models.MemberProfile{
			UserID: user.ID,
			Email:  user.Email,
		}
		if err := txProfiles.Create(ctx, profile); err != nil {
			return err
		}

		if status == string(domain.StatusApproved) {
			return txAudit.Create(ctx, &models.AuditEvent{
				UserID:  user.ID,
				ActorID: user.ID,
				Action:  string(domain.AuditApproved),
				Detail:  "approved via signup code",
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 5. Issue tokens
	tokens, err := s.generateTokens(user, role.Role)
	if err != nil {
		return nil, err
	}
	if err := s.storeRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	log.Printf("✅ Member registered: %s (status: %s)", user.Email, role.ApprovalStatus)

	return &AuthResponse{
		UserID:         user.ID,
		Email:          user.Email,
		Role:           role.Role,
		ApprovalStatus: role.ApprovalStatus,
		AccessToken:    tokens.AccessToken,
		RefreshToken:   tokens.RefreshToken,
	}, nil
}

// Login authenticates a member. Pending members may log in (the access
// gate limits what they can reach); rejected and deleted accounts are
// refused outright.
func (s *AuthService) Login(ctx context.Context, email, plaintext string) (*AuthResponse, error) {
	// 1. Find user
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// 2. Verify password
	if !password.Verify(plaintext, user.Password) {
		return nil, ErrInvalidCredentials
	}

	// 3. Check membership state
	role, err := s.roleRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		// Fail closed: without a readable role row nobody gets in.
		return nil, fmt.Errorf("role lookup failed: %w", err)
	}
	switch domain.ApprovalStatus(role.ApprovalStatus) {
	case domain.StatusRejected:
		return nil, ErrAccountRejected
	case domain.StatusDeleted:
		return nil, ErrAccountDeleted
	}

	// 4. Issue tokens
	tokens, err := s.generateTokens(user, role.Role)
	if err != nil {
		return nil, err
	}
	if err := s.storeRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	log.Printf("✅ Member logged in: %s", user.Email)

	return &AuthResponse{
		UserID:         user.ID,
		Email:          user.Email,
		Role:           role.Role,
		ApprovalStatus: role.ApprovalStatus,
		AccessToken:    tokens.AccessToken,
		RefreshToken:   tokens.RefreshToken,
	}, nil
}

// RefreshToken rotates the refresh token and issues a new pair
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	// 1. Validate refresh token JWT
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	// 2. Find the stored token by hash
	tokenHash := password.HashToken(refreshToken)
	storedToken, err := s.refreshTokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	// 3. Check revocation and expiry
	if storedToken.IsRevoked() {
		return nil, ErrTokenRevoked
	}
	if storedToken.IsExpired() {
		return nil, ErrTokenExpired
	}

	// 4. Re-check the account
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	role, err := s.roleRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("role lookup failed: %w", err)
	}
	switch domain.ApprovalStatus(role.ApprovalStatus) {
	case domain.StatusRejected:
		return nil, ErrAccountRejected
	case domain.StatusDeleted:
		return nil, ErrAccountDeleted
	}

	// 5. Rotate: revoke old, issue new
	if err := s.refreshTokenRepo.Revoke(ctx, storedToken.ID); err != nil {
		return nil, err
	}
	tokens, err := s.generateTokens(user, role.Role)
	if err != nil {
		return nil, err
	}
	if err := s.storeRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	return &AuthResponse{
		UserID:         user.ID,
		Email:          user.Email,
		Role:           role.Role,
		ApprovalStatus: role.ApprovalStatus,
		AccessToken:    tokens.AccessToken,
		RefreshToken:   tokens.RefreshToken,
	}, nil
}

// Logout revokes the refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	tokenHash := password.HashToken(refreshToken)
	if err := s.refreshTokenRepo.RevokeByTokenHash(ctx, tokenHash); err != nil {
		return err
	}
	log.Printf("✅ Member logged out")
	return nil
}

// LogoutAll revokes all refresh tokens for a user
func (s *AuthService) LogoutAll(ctx context.Context, userID uint) error {
	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, userID); err != nil {
		return err
	}
	log.Printf("✅ All sessions revoked for user ID: %d", userID)
	return nil
}

// RequestPasswordReset issues a one-time reset token and emails it.
// An unknown email is treated as success so the endpoint cannot be
// used to probe for accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	token, err := password.GenerateResetToken()
	if err != nil {
		return err
	}

	record := &models.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: password.HashToken(token),
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := s.resetTokenRepo.Create(ctx, record); err != nil {
		return err
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, token); err != nil {
		// Token stays valid; the member can request another email.
		log.Printf("⚠️ Failed to send password reset email to %s: %v", user.Email, err)
	}

	return nil
}

// ResetPassword consumes a reset token and sets the new password,
// revoking every open session.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if !password.Validate(newPassword) {
		return ErrWeakPassword
	}

	record, err := s.resetTokenRepo.GetByTokenHash(ctx, password.HashToken(token))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	if time.Now().After(record.ExpiresAt) {
		return ErrTokenExpired
	}

	hashed, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, record.UserID, hashed); err != nil {
		return err
	}
	if err := s.resetTokenRepo.MarkUsed(ctx, record.ID); err != nil {
		return err
	}
	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, record.UserID); err != nil {
		return err
	}

	log.Printf("✅ Password reset for user ID: %d", record.UserID)
	return nil
}

// AdminResetPassword sets a member's password directly (admin console)
func (s *AuthService) AdminResetPassword(ctx context.Context, userID uint, newPassword string) error {
	if !password.Validate(newPassword) {
		return ErrWeakPassword
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	hashed, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hashed); err != nil {
		return err
	}
	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, userID); err != nil {
		return err
	}

	log.Printf("✅ Admin reset password for user ID: %d", userID)
	return nil
}

// ValidateAccessToken validates an access token
func (s *AuthService) ValidateAccessToken(accessToken string) (*jwt.Claims, error) {
	return jwt.ValidateAccessToken(accessToken, s.cfg.JWT.Secret)
}

// generateTokens generates access and refresh tokens
func (s *AuthService) generateTokens(user *models.User, role string) (*TokenPair, error) {
	accessToken, err := jwt.GenerateAccessToken(
		user.ID,
		user.Email,
		role,
		s.cfg.JWT.Secret,
		s.cfg.JWT.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	tokenID := uuid.New().String()
	refreshToken, err := jwt.GenerateRefreshToken(
		user.ID,
		tokenID,
		s.cfg.JWT.RefreshSecret,
		s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// storeRefreshToken stores a refresh token in the database
func (s *AuthService) storeRefreshToken(ctx context.Context, userID uint, refreshToken string) error {
	token := &models.RefreshToken{
		UserID:    userID,
		TokenHash: password.HashToken(refreshToken),
		ExpiresAt: jwt.GetExpiryTime(s.cfg.JWT.RefreshTokenDays),
	}
	return s.refreshTokenRepo.Create(ctx, token)
}
