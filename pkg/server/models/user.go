package models

import (
	"fmt"
	"strings"
	"time"
)

// UserRole represents the role of a user in the system.
type UserRole string

const (
	// RoleRanger is a field user assigned to a single checkpost; reads and
	// writes are scoped to that checkpost's segment.
	RoleRanger UserRole = "ranger"
	// RoleAdmin is an administrator with unrestricted access.
	RoleAdmin UserRole = "admin"
)

// IsValid checks if the role is a valid UserRole.
func (r UserRole) IsValid() bool {
	return r == RoleRanger || r == RoleAdmin
}

// User represents a ranger or administrator account.
//
// Rangers carry a checkpost assignment that scopes every read and write they
// perform. The phone number identifies the sender of SMS fallback messages:
// the webhook resolves rangers by phone-number suffix, so phones should stay
// unique per deployment in their trailing digits.
type User struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	Username     string     `gorm:"uniqueIndex;not null;size:255" json:"username"`
	PasswordHash string     `gorm:"not null" json:"-"`
	DisplayName  string     `gorm:"size:255" json:"display_name,omitempty"`
	Phone        string     `gorm:"size:32;index" json:"phone,omitempty"`
	Role         string     `gorm:"default:ranger;size:50" json:"role"`
	CheckpostID  string     `gorm:"size:36;index" json:"checkpost_id,omitempty"`
	Active       bool       `gorm:"default:true" json:"active"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

// TableName returns the table name for User.
func (User) TableName() string {
	return "users"
}

// GetDisplayName returns the display name, or username if not set.
func (u *User) GetDisplayName() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// IsAdmin checks if the user has admin role.
func (u *User) IsAdmin() bool {
	return u.Role == string(RoleAdmin)
}

// GetRole returns the user's role as a UserRole type.
func (u *User) GetRole() UserRole {
	return UserRole(u.Role)
}

// PhoneMatchesSuffix reports whether the user's phone number ends with the
// given digits. Non-digit separators in the stored phone are ignored.
func (u *User) PhoneMatchesSuffix(suffix string) bool {
	if suffix == "" || u.Phone == "" {
		return false
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, u.Phone)
	return strings.HasSuffix(digits, suffix)
}

// Validate checks if the user has valid configuration.
func (u *User) Validate() error {
	if u.Username == "" {
		return fmt.Errorf("username is required")
	}
	if u.Role != "" && !UserRole(u.Role).IsValid() {
		return fmt.Errorf("invalid role %q", u.Role)
	}
	if u.Role == string(RoleRanger) && u.CheckpostID == "" {
		return fmt.Errorf("ranger requires a checkpost assignment")
	}
	return nil
}
