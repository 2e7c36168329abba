package domain

import "time"

// Role represents a member's role in the system
type Role string

const (
	RoleMember     Role = "member"
	RoleEditor     Role = "editor"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

// IsValid checks if the role is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleMember, RoleEditor, RoleAdmin, RoleSuperadmin:
		return true
	}
	return false
}

// IsAdmin returns true for roles that bypass the approval gate
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperadmin
}

// ApprovalStatus represents the membership approval state
type ApprovalStatus string

const (
	StatusPending         ApprovalStatus = "pending"
	StatusApproved        ApprovalStatus = "approved"
	StatusRejected        ApprovalStatus = "rejected"
	StatusPendingDeletion ApprovalStatus = "pending_deletion"
	StatusDeleted         ApprovalStatus = "deleted"
)

// IsValid checks if the status is a known approval status
func (s ApprovalStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusPendingDeletion, StatusDeleted:
		return true
	}
	return false
}

// Identity represents an authenticated principal
type Identity struct {
	ID             uint
	Email          string
	EmailConfirmed bool
	CreatedAt      time.Time
}

// Membership couples a role with its approval state for access decisions
type Membership struct {
	UserID         uint
	Role           Role
	ApprovalStatus ApprovalStatus
}

// ApprovalCode represents a single-use invitation token
type ApprovalCode struct {
	ID        uint
	Code      string
	CreatedBy uint
	CreatedAt time.Time
	ExpiresAt time.Time
	UsedBy    *uint
	UsedAt    *time.Time
}

// IsUsed returns true if the code has been redeemed
func (c *ApprovalCode) IsUsed() bool {
	return c.UsedBy != nil
}

// IsExpired returns true if the code has passed its expiry.
// A used code is classified as used, never expired.
func (c *ApprovalCode) IsExpired(now time.Time) bool {
	return !c.IsUsed() && now.After(c.ExpiresAt)
}

// CodeStatus is the admin-facing classification of an approval code
type CodeStatus string

const (
	CodeStatusAll     CodeStatus = "all"
	CodeStatusUnused  CodeStatus = "unused"
	CodeStatusUsed    CodeStatus = "used"
	CodeStatusExpired CodeStatus = "expired"
)

// Classify returns the status bucket for a code at the given time.
// Used takes precedence over expired.
func (c *ApprovalCode) Classify(now time.Time) CodeStatus {
	if c.IsUsed() {
		return CodeStatusUsed
	}
	if now.After(c.ExpiresAt) {
		return CodeStatusExpired
	}
	return CodeStatusUnused
}

// DirectoryEntry is the read view of an approved, opted-in member
type DirectoryEntry struct {
	UserID           uint       `json:"user_id"`
	FirstName        string     `json:"first_name"`
	MiddleInitial    string     `json:"middle_initial,omitempty"`
	LastName         string     `json:"last_name"`
	DisplayName      string     `json:"display_name"`
	Phone            string     `json:"phone,omitempty"`
	Email            string     `json:"email,omitempty"`
	HomeGroupID      *uint      `json:"home_group_id,omitempty"`
	HomeGroupName    string     `json:"home_group_name,omitempty"`
	WillingToSponsor bool       `json:"willing_to_sponsor"`
	CleanDate        *time.Time `json:"clean_date,omitempty"`
	Sobriety         string     `json:"sobriety,omitempty"`
	JoinedAt         time.Time  `json:"joined_at"`
}

// AuditAction identifies a recorded approval-state transition
type AuditAction string

const (
	AuditApproved          AuditAction = "approved"
	AuditRejected          AuditAction = "rejected"
	AuditDeletionRequested AuditAction = "deletion_requested"
	AuditDeletionApproved  AuditAction = "deletion_approved"
	AuditDeletionRejected  AuditAction = "deletion_rejected"
	AuditDeleted           AuditAction = "deleted"
	AuditNoteAdded         AuditAction = "note_added"
)
