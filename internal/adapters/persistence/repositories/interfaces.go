package repositories

import (
	"context"
	"time"

	"brga-members/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, userID uint, passwordHash string) error
	List(ctx context.Context, offset, limit int, search string) ([]*models.User, int64, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// PasswordResetTokenRepository defines reset token repository interface
type PasswordResetTokenRepository interface {
	Create(ctx context.Context, token *models.PasswordResetToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error)
	MarkUsed(ctx context.Context, id uint) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// MemberRoleRepository defines member role repository interface
type MemberRoleRepository interface {
	Create(ctx context.Context, role *models.MemberRole) error
	GetByUserID(ctx context.Context, userID uint) (*models.MemberRole, error)
	Update(ctx context.Context, role *models.MemberRole) error
	ListByStatus(ctx context.Context, status string) ([]*models.MemberRole, error)
	ListAll(ctx context.Context) ([]*models.MemberRole, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}

// MemberProfileRepository defines member profile repository interface
type MemberProfileRepository interface {
	Create(ctx context.Context, profile *models.MemberProfile) error
	GetByUserID(ctx context.Context, userID uint) (*models.MemberProfile, error)
	Update(ctx context.Context, profile *models.MemberProfile) error
	Upsert(ctx context.Context, profile *models.MemberProfile) error
	ListListed(ctx context.Context) ([]*models.MemberProfile, error)
	ListByHomeGroup(ctx context.Context, homeGroupID uint) ([]*models.MemberProfile, error)
	CountByHomeGroup(ctx context.Context, homeGroupID uint) (int64, error)
}

// HomeGroupRepository defines home group repository interface
type HomeGroupRepository interface {
	Create(ctx context.Context, group *models.HomeGroup) error
	GetByID(ctx context.Context, id uint) (*models.HomeGroup, error)
	GetByName(ctx context.Context, name string) (*models.HomeGroup, error)
	List(ctx context.Context) ([]*models.HomeGroup, error)
	Update(ctx context.Context, group *models.HomeGroup) error
	Delete(ctx context.Context, id uint) error
}

// ApprovalCodeRepository defines approval code repository interface
type ApprovalCodeRepository interface {
	CreateBatch(ctx context.Context, codes []*models.ApprovalCode) error
	GetByCode(ctx context.Context, code string) (*models.ApprovalCode, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	// Redeem conditionally sets used_by/used_at on a row where used_by is
	// still NULL and returns the number of rows affected. Zero rows means
	// the race was lost.
	Redeem(ctx context.Context, code string, userID uint, at time.Time) (int64, error)
	List(ctx context.Context, search string) ([]*models.ApprovalCode, error)
	// DeleteUnused deletes only rows whose used_by is NULL; used ids are
	// silently skipped. Returns the number of rows deleted.
	DeleteUnused(ctx context.Context, ids []uint) (int64, error)
}

// AuditEventRepository defines audit event repository interface
type AuditEventRepository interface {
	Create(ctx context.Context, event *models.AuditEvent) error
	ListByUserID(ctx context.Context, userID uint) ([]*models.AuditEvent, error)
}
