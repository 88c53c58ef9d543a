// Package credentials stores gatewatchctl's login state: one named
// context per server, with the current context marking where commands
// go. An operator who manages more than one deployment (say, separate
// park gates) keeps one context per server and switches with
// 'context use'.
package credentials

import (
	"net/url"
	"time"
)

// tokenExpirySkew treats a token as expired slightly early so a request
// sent right at the boundary does not land with a stale bearer.
const tokenExpirySkew = 60 * time.Second

// Context is the stored login state for one server.
type Context struct {
	ServerURL    string    `json:"server_url"`
	Username     string    `json:"username,omitempty"`
	AccessToken  string    `json:"access_token,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
}

// IsExpired reports whether the access token is expired or about to be.
// A context that never recorded an expiry counts as expired.
func (c *Context) IsExpired() bool {
	if c.ExpiresAt.IsZero() {
		return true
	}
	return time.Now().Add(tokenExpirySkew).After(c.ExpiresAt)
}

// HasRefreshToken reports whether the context can re-authenticate
// without prompting for a password.
func (c *Context) HasRefreshToken() bool {
	return c.RefreshToken != ""
}

// Preferences holds per-operator display defaults. There is no command
// to set them; operators edit the config file directly.
type Preferences struct {
	DefaultOutput string `json:"default_output,omitempty"` // table, json, yaml
	Color         string `json:"color,omitempty"`          // auto, always, never
	Editor        string `json:"editor,omitempty"`
}

// DeriveContextName names a first login's context after the server's
// host, so a second server's login reads naturally in 'context list'.
func DeriveContextName(serverURL string) string {
	u, err := url.Parse(serverURL)
	if err != nil || u.Hostname() == "" {
		return "default"
	}
	return u.Hostname()
}
