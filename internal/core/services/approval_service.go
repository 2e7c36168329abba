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

	"gorm.io/gorm"
)

// ApprovalService drives the member approval state machine:
//
//	pending -> approved | rejected
//	approved -> pending_deletion (admin request) | deleted (superadmin direct)
//	pending_deletion -> deleted (superadmin) | approved (superadmin rejects the request)
//
// rejected and deleted are terminal. Every transition appends an audit
// event, so rejecting a deletion request no longer erases the original
// deletion reason the way a single notes column would.
type ApprovalService struct {
	roleRepo  repositories.MemberRoleRepository
	auditRepo repositories.AuditEventRepository
}

// NewApprovalService creates a new approval service
func NewApprovalService(
	roleRepo repositories.MemberRoleRepository,
	auditRepo repositories.AuditEventRepository,
) *ApprovalService {
	return &ApprovalService{
		roleRepo:  roleRepo,
		auditRepo: auditRepo,
	}
}

// Approve moves a pending member to approved
func (s *ApprovalService) Approve(ctx context.Context, actorID, userID uint, notes string) error {
	role, err := s.getRole(ctx, userID)
	if err != nil {
		return err
	}
	if role.ApprovalStatus != string(domain.StatusPending) {
		return fmt.Errorf("%w: %s -> approved", domain.ErrInvalidTransition, role.ApprovalStatus)
	}

	role.ApprovalStatus = string(domain.StatusApproved)
	if notes != "" {
		role.Notes = notes
	}
	if err := s.roleRepo.Update(ctx, role); err != nil {
		return err
	}

	log.Printf("✅ Member approved: user ID %d (by %d)", userID, actorID)
	return s.audit(ctx, userID, actorID, domain.AuditApproved, notes)
}

// Reject moves a pending member to rejected. A reason is mandatory and
// is stored in both rejection_reason and notes.
func (s *ApprovalService) Reject(ctx context.Context, actorID, userID uint, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return domain.ErrReasonRequired
	}

	role, err := s.getRole(ctx, userID)
	if err != nil {
		return err
	}
	if role.ApprovalStatus != string(domain.StatusPending) {
		return fmt.Errorf("%w: %s -> rejected", domain.ErrInvalidTransition, role.ApprovalStatus)
	}

	role.ApprovalStatus = string(domain.StatusRejected)
	role.RejectionReason = reason
	role.Notes = reason
	if err := s.roleRepo.Update(ctx, role); err != nil {
		return err
	}

	log.Printf("✅ Member rejected: user ID %d (by %d)", userID, actorID)
	return s.audit(ctx, userID, actorID, domain.AuditRejected, reason)
}

// RequestDeletion puts an approved member into the two-tier deletion
// queue. Regular admins go through here; only a superadmin can confirm.
func (s *ApprovalService) RequestDeletion(ctx context.Context, actorID, userID uint, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return domain.ErrReasonRequired
	}

	role, err := s.getRole(ctx, userID)
	if err != nil {
		return err
	}
	if role.ApprovalStatus != string(domain.StatusApproved) {
		return fmt.Errorf("%w: %s -> pending_deletion", domain.ErrInvalidTransition, role.ApprovalStatus)
	}

	now := time.Now()
	role.ApprovalStatus = string(domain.StatusPendingDeletion)
	role.DeletionRequestedBy = &actorID
	role.DeletionRequestedAt = &now
	role.Notes = reason
	if err := s.roleRepo.Update(ctx, role); err != nil {
		return err
	}

	log.Printf("✅ Deletion requested: user ID %d (by %d)", userID, actorID)
	return s.audit(ctx, userID, actorID, domain.AuditDeletionRequested, reason)
}

// ApproveDeletion confirms a queued deletion request. This is a soft
// delete: the identity row stays, the access gate keys off the status.
func (s *ApprovalService) ApproveDeletion(ctx context.Context, actorID, userID uint) error {
	role, err := s.getRole(ctx, userID)
	if err != nil {
		return err
	}
	if role.ApprovalStatus != string(domain.StatusPendingDeletion) {
		return fmt.Errorf("%w: %s -> deleted", domain.ErrInvalidTransition, role.ApprovalStatus)
	}

	return s.markDeleted(ctx, role, actorID, domain.AuditDeletionApproved)
}

// Delete soft-deletes an approved member directly, bypassing the
// two-tier flow. Superadmin only.
func (s *ApprovalService) Delete(ctx context.Context, actorID, userID uint) error {
	role, err := s.getRole(ctx, userID)
	if err != nil {
		return err
	}
	switch role.ApprovalStatus {
	case string(domain.StatusApproved), string(domain.StatusPendingDeletion):
	default:
		return fmt.Errorf("%w: %s -> deleted", domain.ErrInvalidTransition, role.ApprovalStatus)
	}

	return s.markDeleted(ctx, role, actorID, domain.AuditDeleted)
}

// RejectDeletion denies a queued deletion request and restores the
// member to approved. The original deletion reason survives in the
// audit trail even though notes is overwritten.
func (s *ApprovalService) RejectDeletion(ctx context.Context, actorID, userID uint, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return domain.ErrReasonRequired
	}

	role, err := s.getRole(ctx, userID)
	if err != nil {
		return err
	}
	if role.ApprovalStatus != string(domain.StatusPendingDeletion) {
		return fmt.Errorf("%w: %s -> approved", domain.ErrInvalidTransition, role.ApprovalStatus)
	}

	role.ApprovalStatus = string(domain.StatusApproved)
	role.DeletionRequestedBy = nil
	role.DeletionRequestedAt = nil
	role.Notes = reason
	if err := s.roleRepo.Update(ctx, role); err != nil {
		return err
	}

	log.Printf("✅ Deletion request rejected: user ID %d (by %d)", userID, actorID)
	return s.audit(ctx, userID, actorID, domain.AuditDeletionRejected, reason)
}

// ListByStatus lists role rows in a given state for the admin console
func (s *ApprovalService) ListByStatus(ctx context.Context, status domain.ApprovalStatus) ([]*models.MemberRole, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown approval status %q", domain.ErrInvalidInput, status)
	}
	return s.roleRepo.ListByStatus(ctx, string(status))
}

// AuditTrail returns the append-only history for a member
func (s *ApprovalService) AuditTrail(ctx context.Context, userID uint) ([]*models.AuditEvent, error) {
	return s.auditRepo.ListByUserID(ctx, userID)
}

func (s *ApprovalService) markDeleted(ctx context.Context, role *models.MemberRole, actorID uint, action domain.AuditAction) error {
	role.ApprovalStatus = string(domain.StatusDeleted)
	role.Notes = "DELETED by superadmin"
	role.DeletionRequestedBy = nil
	role.DeletionRequestedAt = nil
	if err := s.roleRepo.Update(ctx, role); err != nil {
		return err
	}

	log.Printf("✅ Member soft-deleted: user ID %d (by %d)", role.UserID, actorID)
	return s.audit(ctx, role.UserID, actorID, action, "DELETED by superadmin")
}

func (s *ApprovalService) getRole(ctx context.Context, userID uint) (*models.MemberRole, error) {
	role, err := s.roleRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}
	return role, nil
}

func (s *ApprovalService) audit(ctx context.Context, userID, actorID uint, action domain.AuditAction, detail string) error {
	return s.auditRepo.Create(ctx, &models.AuditEvent{
		UserID:  userID,
		ActorID: actorID,
		Action:  string(action),
		Detail:  detail,
	})
}
