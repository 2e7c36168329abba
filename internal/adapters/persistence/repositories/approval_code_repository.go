package repositories

import (
	"context"
	"time"

	"brga-members/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// approvalCodeRepository implements ApprovalCodeRepository interface
type approvalCodeRepository struct {
	db *gorm.DB
}

// NewApprovalCodeRepository creates a new approval code repository
func NewApprovalCodeRepository(db *gorm.DB) ApprovalCodeRepository {
	return &approvalCodeRepository{db: db}
}

// CreateBatch inserts a batch of generated codes in one statement
func (r *approvalCodeRepository) CreateBatch(ctx context.Context, codes []*models.ApprovalCode) error {
	return r.db.WithContext(ctx).Create(&codes).Error
}

// GetByCode gets a code row by its normalized code string
func (r *approvalCodeRepository) GetByCode(ctx context.Context, code string) (*models.ApprovalCode, error) {
	var row models.ApprovalCode
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ExistsByCode checks if a code string is already taken
func (r *approvalCodeRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ApprovalCode{}).
		Where("code = ?", code).
		Count(&count).Error
	return count > 0, err
}

// Redeem conditionally consumes a code. The WHERE used_by IS NULL clause
// is what makes concurrent redemptions of the same code yield exactly
// one winner; the row-level atomicity of the UPDATE is relied on, no
// application lock is taken.
func (r *approvalCodeRepository) Redeem(ctx context.Context, code string, userID uint, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ApprovalCode{}).
		Where("code = ?", code).
		Where("used_by IS NULL").
		Updates(map[string]interface{}{
			"used_by": userID,
			"used_at": at,
		})
	return result.RowsAffected, result.Error
}

// List lists codes, optionally filtered by code substring, newest first
func (r *approvalCodeRepository) List(ctx context.Context, search string) ([]*models.ApprovalCode, error) {
	var rows []*models.ApprovalCode

	query := r.db.WithContext(ctx).Model(&models.ApprovalCode{})
	if search != "" {
		query = query.Where("code LIKE ?", "%"+search+"%")
	}

	err := query.Order("created_at DESC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteUnused deletes the given codes, skipping any that have been
// used. Deleting a used code is forbidden, so used ids fall out of the
// WHERE clause rather than erroring.
func (r *approvalCodeRepository) DeleteUnused(ctx context.Context, ids []uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Where("used_by IS NULL").
		Delete(&models.ApprovalCode{})
	return result.RowsAffected, result.Error
}
