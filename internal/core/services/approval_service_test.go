package services

import (
	"context"
	"testing"

	"brga-members/internal/adapters/persistence/models"
	"brga-members/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRole(t *testing.T, repo *fakeRoleRepo, userID uint, status domain.ApprovalStatus) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &models.MemberRole{
		UserID:         userID,
		Role:           string(domain.RoleMember),
		ApprovalStatus: string(status),
	}))
}

func TestApprove(t *testing.T) {
	ctx := context.Background()
	roleRepo := newFakeRoleRepo()
	auditRepo := newFakeAuditRepo()
	svc := NewApprovalService(roleRepo, auditRepo)

	seedRole(t, roleRepo, 10, domain.StatusPending)

	require.NoError(t, svc.Approve(ctx, 1, 10, "spoke at tuesday meeting"))

	role, err := roleRepo.GetByUserID(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusApproved), role.ApprovalStatus)
	assert.Equal(t, "spoke at tuesday meeting", role.Notes)

	events, err := auditRepo.ListByUserID(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(domain.AuditApproved), events[0].Action)
	assert.Equal(t, uint(1), events[0].ActorID)

	// Approving twice is an invalid transition
	err = svc.Approve(ctx, 1, 10, "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestApproveUnknownMember(t *testing.T) {
	svc := NewApprovalService(newFakeRoleRepo(), newFakeAuditRepo())
	err := svc.Approve(context.Background(), 1, 999, "")
	assert.ErrorIs(t, err, domain.ErrMemberNotFound)
}

func TestReject(t *testing.T) {
	ctx := context.Background()
	roleRepo := newFakeRoleRepo()
	svc := NewApprovalService(roleRepo, newFakeAuditRepo())

	seedRole(t, roleRepo, 11, domain.StatusPending)

	// Reason is mandatory
	err := svc.Reject(ctx, 1, 11, "   ")
	assert.ErrorIs(t, err, domain.ErrReasonRequired)

	require.NoError(t, svc.Reject(ctx, 1, 11, "not a chapter member"))

	role, err := roleRepo.GetByUserID(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusRejected), role.ApprovalStatus)
	assert.Equal(t, "not a chapter member", role.RejectionReason)
	assert.Equal(t, "not a chapter member", role.Notes)

	// rejected is terminal
	assert.ErrorIs(t, svc.Approve(ctx, 1, 11, ""), domain.ErrInvalidTransition)
	assert.ErrorIs(t, svc.Reject(ctx, 1, 11, "again"), domain.ErrInvalidTransition)
	assert.ErrorIs(t, svc.Delete(ctx, 1, 11), domain.ErrInvalidTransition)
}

func TestTransitionTable(t *testing.T) {
	// Every disallowed (from, op) pair fails with ErrInvalidTransition
	ops := map[string]func(svc *ApprovalService, userID uint) error{
		"approve": func(svc *ApprovalService, userID uint) error {
			return svc.Approve(context.Background(), 1, userID, "")
		},
		"reject": func(svc *ApprovalService, userID uint) error {
			return svc.Reject(context.Background(), 1, userID, "reason")
		},
		"request_deletion": func(svc *ApprovalService, userID uint) error {
			return svc.RequestDeletion(context.Background(), 1, userID, "reason")
		},
		"approve_deletion": func(svc *ApprovalService, userID uint) error {
			return svc.ApproveDeletion(context.Background(), 1, userID)
		},
		"reject_deletion": func(svc *ApprovalService, userID uint) error {
			return svc.RejectDeletion(context.Background(), 1, userID, "reason")
		},
		"delete": func(svc *ApprovalService, userID uint) error {
			return svc.Delete(context.Background(), 1, userID)
		},
	}

	allowed := map[domain.ApprovalStatus]map[string]bool{
		domain.StatusPending:         {"approve": true, "reject": true},
		domain.StatusApproved:        {"request_deletion": true, "delete": true},
		domain.StatusPendingDeletion: {"approve_deletion": true, "reject_deletion": true, "delete": true},
		domain.StatusRejected:        {},
		domain.StatusDeleted:         {},
	}

	for from, ok := range allowed {
		for op, fn := range ops {
			t.Run(string(from)+"/"+op, func(t *testing.T) {
				roleRepo := newFakeRoleRepo()
				svc := NewApprovalService(roleRepo, newFakeAuditRepo())
				seedRole(t, roleRepo, 1, from)

				err := fn(svc, 1)
				if ok[op] {
					assert.NoError(t, err)
				} else {
					assert.ErrorIs(t, err, domain.ErrInvalidTransition)
				}
			})
		}
	}
}

func TestDeletionFlow(t *testing.T) {
	ctx := context.Background()
	roleRepo := newFakeRoleRepo()
	auditRepo := newFakeAuditRepo()
	svc := NewApprovalService(roleRepo, auditRepo)

	seedRole(t, roleRepo, 20, domain.StatusApproved)

	require.NoError(t, svc.RequestDeletion(ctx, 2, 20, "moved out of state"))

	role, err := roleRepo.GetByUserID(ctx, 20)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusPendingDeletion), role.ApprovalStatus)
	require.NotNil(t, role.DeletionRequestedBy)
	assert.Equal(t, uint(2), *role.DeletionRequestedBy)
	assert.NotNil(t, role.DeletionRequestedAt)

	require.NoError(t, svc.ApproveDeletion(ctx, 3, 20))

	role, err = roleRepo.GetByUserID(ctx, 20)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusDeleted), role.ApprovalStatus)
	assert.Nil(t, role.DeletionRequestedBy)
	assert.Nil(t, role.DeletionRequestedAt)

	// deleted is terminal, even for a direct superadmin delete
	assert.ErrorIs(t, svc.Delete(ctx, 3, 20), domain.ErrInvalidTransition)

	events, err := auditRepo.ListByUserID(ctx, 20)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, string(domain.AuditDeletionRequested), events[0].Action)
	assert.Equal(t, string(domain.AuditDeletionApproved), events[1].Action)
}

func TestRejectDeletionRestoresAccess(t *testing.T) {
	ctx := context.Background()
	roleRepo := newFakeRoleRepo()
	auditRepo := newFakeAuditRepo()
	svc := NewApprovalService(roleRepo, auditRepo)

	seedRole(t, roleRepo, 21, domain.StatusApproved)
	require.NoError(t, svc.RequestDeletion(ctx, 2, 21, "duplicate account"))
	require.NoError(t, svc.RejectDeletion(ctx, 3, 21, "accounts are distinct"))

	role, err := roleRepo.GetByUserID(ctx, 21)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusApproved), role.ApprovalStatus)
	assert.Nil(t, role.DeletionRequestedBy)
	assert.Nil(t, role.DeletionRequestedAt)
	assert.Equal(t, "accounts are distinct", role.Notes)

	// The original deletion reason survives in the audit trail even
	// though the notes column was overwritten.
	events, err := auditRepo.ListByUserID(ctx, 21)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, string(domain.AuditDeletionRequested), events[0].Action)
	assert.Equal(t, "duplicate account", events[0].Detail)
	assert.Equal(t, string(domain.AuditDeletionRejected), events[1].Action)
}

func TestDirectDelete(t *testing.T) {
	ctx := context.Background()
	roleRepo := newFakeRoleRepo()
	svc := NewApprovalService(roleRepo, newFakeAuditRepo())

	seedRole(t, roleRepo, 22, domain.StatusApproved)
	require.NoError(t, svc.Delete(ctx, 1, 22))

	role, err := roleRepo.GetByUserID(ctx, 22)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusDeleted), role.ApprovalStatus)
	assert.Equal(t, "DELETED by superadmin", role.Notes)
}

func TestListByStatus(t *testing.T) {
	ctx := context.Background()
	roleRepo := newFakeRoleRepo()
	svc := NewApprovalService(roleRepo, newFakeAuditRepo())

	seedRole(t, roleRepo, 1, domain.StatusPending)
	seedRole(t, roleRepo, 2, domain.StatusPending)
	seedRole(t, roleRepo, 3, domain.StatusApproved)

	pending, err := svc.ListByStatus(ctx, domain.StatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	_, err = svc.ListByStatus(ctx, domain.ApprovalStatus("bogus"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
