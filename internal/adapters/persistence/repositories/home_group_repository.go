package repositories

import (
	"context"

	"brga-members/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// homeGroupRepository implements HomeGroupRepository interface
type homeGroupRepository struct {
	db *gorm.DB
}

// NewHomeGroupRepository creates a new home group repository
func NewHomeGroupRepository(db *gorm.DB) HomeGroupRepository {
	return &homeGroupRepository{db: db}
}

// Create creates a new home group
func (r *homeGroupRepository) Create(ctx context.Context, group *models.HomeGroup) error {
	return r.db.WithContext(ctx).Create(group).Error
}

// GetByID gets a home group by ID
func (r *homeGroupRepository) GetByID(ctx context.Context, id uint) (*models.HomeGroup, error) {
	var group models.HomeGroup
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// GetByName gets a home group by its exact name
func (r *homeGroupRepository) GetByName(ctx context.Context, name string) (*models.HomeGroup, error) {
	var group models.HomeGroup
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// List lists all home groups ordered by name
func (r *homeGroupRepository) List(ctx context.Context) ([]*models.HomeGroup, error) {
	var groups []*models.HomeGroup
	err := r.db.WithContext(ctx).Order("name ASC").Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// Update updates a home group
func (r *homeGroupRepository) Update(ctx context.Context, group *models.HomeGroup) error {
	return r.db.WithContext(ctx).Save(group).Error
}

// Delete soft deletes a home group
func (r *homeGroupRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.HomeGroup{}, id).Error
}
