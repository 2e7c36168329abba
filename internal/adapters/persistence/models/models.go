package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Auth Tables
// ============================================================

// User represents the users table (the authentication identity).
// Accounts are never hard-deleted; removal is a soft state on the
// member_roles row so the access gate can keep the account out.
type User struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Email          string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password       string         `gorm:"size:255;not null" json:"-"`
	EmailConfirmed bool           `gorm:"default:false" json:"email_confirmed"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// RefreshToken represents the refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// PasswordResetToken represents the password_reset_tokens table
type PasswordResetToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	UsedAt    *time.Time `json:"used_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}

// ============================================================
// Membership Tables
// ============================================================

// MemberRole represents the member_roles table, one row per user.
// Role and approval status are orthogonal: an admin can be pending and
// still get in, but rejected always denies.
type MemberRole struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	UserID              uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	Role                string     `gorm:"size:20;not null;default:'member'" json:"role"`
	ApprovalStatus      string     `gorm:"size:20;not null;default:'pending';index" json:"approval_status"`
	Notes               string     `gorm:"type:text" json:"notes"`
	RejectionReason     string     `gorm:"type:text" json:"rejection_reason,omitempty"`
	DeletionRequestedBy *uint      `json:"deletion_requested_by"`
	DeletionRequestedAt *time.Time `json:"deletion_requested_at"`
	CreatedAt           time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (MemberRole) TableName() string {
	return "member_roles"
}

// MemberProfile represents the member_profiles table, one row per user
type MemberProfile struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	UserID                uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	FirstName             string     `gorm:"size:50" json:"first_name"`
	MiddleInitial         string     `gorm:"size:1" json:"middle_initial"`
	LastName              string     `gorm:"size:50" json:"last_name"`
	Phone                 string     `gorm:"size:20" json:"phone"`
	Email                 string     `gorm:"size:100" json:"email"`
	CleanDate             *time.Time `gorm:"type:date" json:"clean_date"`
	HomeGroupID           *uint      `gorm:"index" json:"home_group_id"`
	ListedInDirectory     bool       `gorm:"default:false" json:"listed_in_directory"`
	WillingToSponsor      bool       `gorm:"default:false" json:"willing_to_sponsor"`
	SharePhoneInDirectory bool       `gorm:"default:false" json:"share_phone_in_directory"`
	ShareEmailInDirectory bool       `gorm:"default:false" json:"share_email_in_directory"`
	CreatedAt             time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	User      User       `gorm:"foreignKey:UserID" json:"-"`
	HomeGroup *HomeGroup `gorm:"foreignKey:HomeGroupID" json:"home_group,omitempty"`
}

func (MemberProfile) TableName() string {
	return "member_profiles"
}

// FullName formats the profile name as "First M. Last". The components
// can be recovered by splitting on single spaces as long as none of
// them contain a space themselves.
func (p *MemberProfile) FullName() string {
	parts := make([]string, 0, 3)
	if p.FirstName != "" {
		parts = append(parts, p.FirstName)
	}
	if p.MiddleInitial != "" {
		parts = append(parts, p.MiddleInitial+".")
	}
	if p.LastName != "" {
		parts = append(parts, p.LastName)
	}
	return strings.Join(parts, " ")
}

// SortKey returns a last-name-first key for name sorting. Empty means
// no name; callers sort those entries last.
func (p *MemberProfile) SortKey() string {
	return strings.ToLower(strings.TrimSpace(p.LastName + " " + p.FirstName))
}

// HasName reports whether either name component is set
func (p *MemberProfile) HasName() bool {
	return strings.TrimSpace(p.FirstName) != "" || strings.TrimSpace(p.LastName) != ""
}

// HomeGroup represents the home_groups table
type HomeGroup struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:100;uniqueIndex;not null" json:"name"`
	DayOfWeek string         `gorm:"size:10" json:"day_of_week"`
	StartTime string         `gorm:"size:10" json:"start_time"`
	Address   string         `gorm:"size:200" json:"address"`
	City      string         `gorm:"size:50" json:"city"`
	State     string         `gorm:"size:2" json:"state"`
	Zip       string         `gorm:"size:10" json:"zip"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (HomeGroup) TableName() string {
	return "home_groups"
}

// ApprovalCode represents the approval_codes table. used_by is set at
// most once, via a conditional update keyed on it being NULL.
type ApprovalCode struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Code      string     `gorm:"size:64;uniqueIndex;not null" json:"code"`
	CreatedBy uint       `gorm:"not null" json:"created_by"`
	ExpiresAt time.Time  `gorm:"not null;index" json:"expires_at"`
	UsedBy    *uint      `gorm:"index" json:"used_by"`
	UsedAt    *time.Time `json:"used_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`

	Creator User `gorm:"foreignKey:CreatedBy" json:"-"`
}

func (ApprovalCode) TableName() string {
	return "approval_codes"
}

// AuditEvent represents the audit_events table, an append-only record of
// approval-state transitions. Unlike the notes column, rows here are
// never overwritten.
type AuditEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	ActorID   uint      `gorm:"not null" json:"actor_id"`
	Action    string    `gorm:"size:30;not null" json:"action"`
	Detail    string    `gorm:"type:text" json:"detail"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}

// ============================================================
// DTOs
// ============================================================

// MemberResponse is the admin-facing view of a member
type MemberResponse struct {
	UserID              uint       `json:"user_id"`
	Email               string     `json:"email"`
	Role                string     `json:"role"`
	ApprovalStatus      string     `json:"approval_status"`
	Notes               string     `json:"notes,omitempty"`
	DeletionRequestedBy *uint      `json:"deletion_requested_by,omitempty"`
	DeletionRequestedAt *time.Time `json:"deletion_requested_at,omitempty"`
	FirstName           string     `json:"first_name"`
	MiddleInitial       string     `json:"middle_initial,omitempty"`
	LastName            string     `json:"last_name"`
	FullName            string     `json:"full_name"`
	Phone               string     `json:"phone,omitempty"`
	CleanDate           *time.Time `json:"clean_date,omitempty"`
	HomeGroupID         *uint      `json:"home_group_id,omitempty"`
	HomeGroupName       string     `json:"home_group_name,omitempty"`
	ListedInDirectory   bool       `json:"listed_in_directory"`
	WillingToSponsor    bool       `json:"willing_to_sponsor"`
	JoinedAt            time.Time  `json:"joined_at"`
}

// BuildMemberResponse joins a role and profile into the admin view
func BuildMemberResponse(user *User, role *MemberRole, profile *MemberProfile) *MemberResponse {
	resp := &MemberResponse{
		UserID:   user.ID,
		Email:    user.Email,
		JoinedAt: user.CreatedAt,
	}

	if role != nil {
		resp.Role = role.Role
		resp.ApprovalStatus = role.ApprovalStatus
		resp.Notes = role.Notes
		resp.DeletionRequestedBy = role.DeletionRequestedBy
		resp.DeletionRequestedAt = role.DeletionRequestedAt
	}

	if profile != nil {
		resp.FirstName = profile.FirstName
		resp.MiddleInitial = profile.MiddleInitial
		resp.LastName = profile.LastName
		resp.FullName = profile.FullName()
		resp.Phone = profile.Phone
		resp.CleanDate = profile.CleanDate
		resp.HomeGroupID = profile.HomeGroupID
		resp.ListedInDirectory = profile.ListedInDirectory
		resp.WillingToSponsor = profile.WillingToSponsor
		if profile.HomeGroup != nil {
			resp.HomeGroupName = profile.HomeGroup.Name
		}
	}

	return resp
}

// CodeResponse is the admin-facing view of an approval code
type CodeResponse struct {
	ID        uint       `json:"id"`
	Code      string     `json:"code"`
	Status    string     `json:"status"`
	CreatedBy uint       `json:"created_by"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedBy    *uint      `json:"used_by,omitempty"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ToResponse classifies the code at the given time. Used wins over
// expired.
func (c *ApprovalCode) ToResponse(now time.Time) *CodeResponse {
	status := "unused"
	switch {
	case c.UsedBy != nil:
		status = "used"
	case now.After(c.ExpiresAt):
		status = "expired"
	}

	return &CodeResponse{
		ID:        c.ID,
		Code:      c.Code,
		Status:    status,
		CreatedBy: c.CreatedBy,
		ExpiresAt: c.ExpiresAt,
		UsedBy:    c.UsedBy,
		UsedAt:    c.UsedAt,
		CreatedAt: c.CreatedAt,
	}
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&PasswordResetToken{},
		&MemberRole{},
		&MemberProfile{},
		&HomeGroup{},
		&ApprovalCode{},
		&AuditEvent{},
	)
}

// MeetingLabel formats a home group's meeting slot for reminders,
// e.g. "Tuesday 7:00 PM"
func (g *HomeGroup) MeetingLabel() string {
	if g.DayOfWeek == "" {
		return g.Name
	}
	if g.StartTime == "" {
		return g.DayOfWeek
	}
	return fmt.Sprintf("%s %s", g.DayOfWeek, g.StartTime)
}
