package repositories

import (
	"context"
	"time"

	"brga-members/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// resetTokenRepository implements PasswordResetTokenRepository interface
type resetTokenRepository struct {
	db *gorm.DB
}

// NewPasswordResetTokenRepository creates a new reset token repository
func NewPasswordResetTokenRepository(db *gorm.DB) PasswordResetTokenRepository {
	return &resetTokenRepository{db: db}
}

// Create creates a new password reset token
func (r *resetTokenRepository) Create(ctx context.Context, token *models.PasswordResetToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

// GetByTokenHash gets an unused reset token by its hash
func (r *resetTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error) {
	var token models.PasswordResetToken
	err := r.db.WithContext(ctx).
		Where("token_hash = ?", tokenHash).
		Where("used_at IS NULL").
		First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// MarkUsed marks a reset token as consumed
func (r *resetTokenRepository) MarkUsed(ctx context.Context, id uint) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.PasswordResetToken{}).
		Where("id = ?", id).
		Update("used_at", &now).Error
}

// DeleteExpired deletes all expired reset tokens
func (r *resetTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&models.PasswordResetToken{})
	return result.RowsAffected, result.Error
}
