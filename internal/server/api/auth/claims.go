package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/gatewatch/gatewatch/pkg/server/models"
)

// TokenType distinguishes access tokens from refresh tokens.
type TokenType string

const (
	// TokenTypeAccess is the short-lived token presented on API calls.
	TokenTypeAccess TokenType = "access"

	// TokenTypeRefresh is the long-lived token exchanged for new pairs.
	TokenTypeRefresh TokenType = "refresh"
)

// Claims are the JWT claims carried by gatewatch tokens.
//
// The checkpost and segment assignment is snapshotted at token issue time, so
// a reassigned ranger keeps acting for the old checkpost until the next
// refresh. Handlers scope ranger reads and writes by these fields.
type Claims struct {
	jwt.RegisteredClaims

	// UserID is the account's unique identifier.
	UserID string `json:"user_id"`

	// Username is the account's login name.
	Username string `json:"username"`

	// Role is the account's role ("ranger" or "admin").
	Role string `json:"role"`

	// CheckpostID is the ranger's assigned checkpost. Empty for admins.
	CheckpostID string `json:"checkpost_id,omitempty"`

	// SegmentID is the segment the assigned checkpost belongs to. Empty for
	// admins and for rangers whose checkpost could not be resolved.
	SegmentID string `json:"segment_id,omitempty"`

	// TokenType is either "access" or "refresh".
	TokenType TokenType `json:"token_type"`
}

// IsAccessToken checks if this is an access token.
func (c *Claims) IsAccessToken() bool {
	return c.TokenType == TokenTypeAccess
}

// IsRefreshToken checks if this is a refresh token.
func (c *Claims) IsRefreshToken() bool {
	return c.TokenType == TokenTypeRefresh
}

// IsAdmin checks if the token belongs to an administrator.
func (c *Claims) IsAdmin() bool {
	return c.Role == string(models.RoleAdmin)
}

// IsRanger checks if the token belongs to a ranger.
func (c *Claims) IsRanger() bool {
	return c.Role == string(models.RoleRanger)
}
