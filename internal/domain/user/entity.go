package user

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Roles. POLL_MANAGER is the delegated moderation role: it can manage polls
// and view results but cannot touch settings, roles, or data export.
const (
	RoleAdmin       = "ADMIN"
	RolePollManager = "POLL_MANAGER"
	RoleUser        = "USER"
)

// Capability names an admin-side action. Access control is always an
// explicit capability check, never a route-name comparison.
type Capability string

const (
	CapManagePolls    Capability = "manage_polls"
	CapViewResults    Capability = "view_results"
	CapApproveContent Capability = "approve_content"
	CapManageSettings Capability = "manage_settings"
	CapManageRoles    Capability = "manage_roles"
	CapExportData     Capability = "export_data"
)

var roleCapabilities = map[string][]Capability{
	RoleAdmin:       {CapManagePolls, CapViewResults, CapApproveContent, CapManageSettings, CapManageRoles, CapExportData},
	RolePollManager: {CapManagePolls, CapViewResults},
}

// HasCapability reports whether a role grants the capability.
func HasCapability(role string, cap Capability) bool {
	for _, c := range roleCapabilities[role] {
		if c == cap {
			return true
		}
	}
	return false
}

// User represents the users table
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	Username     string    `gorm:"type:varchar(50);not null;uniqueIndex"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	Role         string    `gorm:"type:varchar(20);not null;default:'USER'"`
	IsActive     bool      `gorm:"default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (User) TableName() string {
	return "users"
}

// InvitationTTL is how long a manager invitation stays acceptable. The
// expiry is stored and checked in the acceptance path, not just mentioned
// in the invitation email.
const InvitationTTL = 7 * 24 * time.Hour

// RoleInvitation represents the role_invitations table. The token doubles
// as the primary key.
type RoleInvitation struct {
	Token      uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email      string    `gorm:"type:varchar(255);not null;index"`
	Role       string    `gorm:"type:varchar(20);not null"`
	InvitedBy  uuid.UUID `gorm:"type:uuid;not null"`
	ExpiresAt  time.Time `gorm:"not null"`
	AcceptedAt sql.NullTime
	CreatedAt  time.Time
}

func (RoleInvitation) TableName() string {
	return "role_invitations"
}

// Expired reports whether the invitation is past its expiry.
func (i RoleInvitation) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// PopupDismissal represents the popup_dismissals table: a per-user flag that
// the popup for a poll was closed and should not reappear.
type PopupDismissal struct {
	UserID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	PollID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	DismissedAt time.Time
}

func (PopupDismissal) TableName() string {
	return "popup_dismissals"
}
