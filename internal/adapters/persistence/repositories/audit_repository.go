package repositories

import (
	"context"

	"brga-members/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// auditEventRepository implements AuditEventRepository interface
type auditEventRepository struct {
	db *gorm.DB
}

// NewAuditEventRepository creates a new audit event repository
func NewAuditEventRepository(db *gorm.DB) AuditEventRepository {
	return &auditEventRepository{db: db}
}

// Create appends an audit event. Events are never updated or deleted.
func (r *auditEventRepository) Create(ctx context.Context, event *models.AuditEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// ListByUserID lists the audit trail for a member, newest first
func (r *auditEventRepository) ListByUserID(ctx context.Context, userID uint) ([]*models.AuditEvent, error) {
	var events []*models.AuditEvent
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
