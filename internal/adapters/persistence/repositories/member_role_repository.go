package repositories

import (
	"context"

	"brga-members/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// memberRoleRepository implements MemberRoleRepository interface
type memberRoleRepository struct {
	db *gorm.DB
}

// NewMemberRoleRepository creates a new member role repository
func NewMemberRoleRepository(db *gorm.DB) MemberRoleRepository {
	return &memberRoleRepository{db: db}
}

// Create creates a new member role row
func (r *memberRoleRepository) Create(ctx context.Context, role *models.MemberRole) error {
	return r.db.WithContext(ctx).Create(role).Error
}

// GetByUserID gets the role row for a user
func (r *memberRoleRepository) GetByUserID(ctx context.Context, userID uint) (*models.MemberRole, error) {
	var role models.MemberRole
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// Update updates a member role row
func (r *memberRoleRepository) Update(ctx context.Context, role *models.MemberRole) error {
	return r.db.WithContext(ctx).Save(role).Error
}

// ListByStatus lists role rows with a given approval status
func (r *memberRoleRepository) ListByStatus(ctx context.Context, status string) ([]*models.MemberRole, error) {
	var roles []*models.MemberRole
	err := r.db.WithContext(ctx).
		Where("approval_status = ?", status).
		Order("updated_at DESC").
		Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

// ListAll lists every role row
func (r *memberRoleRepository) ListAll(ctx context.Context) ([]*models.MemberRole, error) {
	var roles []*models.MemberRole
	err := r.db.WithContext(ctx).Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

// CountByStatus counts role rows with a given approval status
func (r *memberRoleRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.MemberRole{}).
		Where("approval_status = ?", status).
		Count(&count).Error
	return count, err
}
