package repositories

import (
	"context"

	"brga-members/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// memberProfileRepository implements MemberProfileRepository interface
type memberProfileRepository struct {
	db *gorm.DB
}

// NewMemberProfileRepository creates a new member profile repository
func NewMemberProfileRepository(db *gorm.DB) MemberProfileRepository {
	return &memberProfileRepository{db: db}
}

// Create creates a new member profile
func (r *memberProfileRepository) Create(ctx context.Context, profile *models.MemberProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

// GetByUserID gets the profile for a user
func (r *memberProfileRepository) GetByUserID(ctx context.Context, userID uint) (*models.MemberProfile, error) {
	var profile models.MemberProfile
	err := r.db.WithContext(ctx).
		Preload("HomeGroup").
		Where("user_id = ?", userID).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Update updates a member profile
func (r *memberProfileRepository) Update(ctx context.Context, profile *models.MemberProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

// Upsert creates the profile or replaces the existing row for the user
func (r *memberProfileRepository) Upsert(ctx context.Context, profile *models.MemberProfile) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(profile).Error
}

// ListListed lists profiles opted into the directory
func (r *memberProfileRepository) ListListed(ctx context.Context) ([]*models.MemberProfile, error) {
	var profiles []*models.MemberProfile
	err := r.db.WithContext(ctx).
		Preload("HomeGroup").
		Where("listed_in_directory = ?", true).
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

// ListByHomeGroup lists profiles belonging to a home group
func (r *memberProfileRepository) ListByHomeGroup(ctx context.Context, homeGroupID uint) ([]*models.MemberProfile, error) {
	var profiles []*models.MemberProfile
	err := r.db.WithContext(ctx).
		Where("home_group_id = ?", homeGroupID).
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

// CountByHomeGroup counts profiles referencing a home group
func (r *memberProfileRepository) CountByHomeGroup(ctx context.Context, homeGroupID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.MemberProfile{}).
		Where("home_group_id = ?", homeGroupID).
		Count(&count).Error
	return count, err
}
