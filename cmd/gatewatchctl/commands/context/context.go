// Package context implements context management subcommands for gatewatchctl.
package context

import (
	"time"

	"github.com/gatewatch/gatewatch/internal/cli/credentials"
	"github.com/spf13/cobra"
)

// Cmd is the context subcommand.
var Cmd = &cobra.Command{
	Use:   "context",
	Short: "Manage server contexts",
	Long: `Manage connection contexts for multiple gatewatch servers.

An operator overseeing several districts keeps one context per server
and switches between them with 'context use', kubectl-style.

Subcommands:
  list     List all configured contexts
  use      Switch to a different context
  current  Show current context
  rename   Rename a context
  delete   Delete a context`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(useCmd)
	Cmd.AddCommand(currentCmd)
	Cmd.AddCommand(renameCmd)
	Cmd.AddCommand(deleteCmd)
}

// Info describes one saved context for display.
type Info struct {
	Name      string `json:"name" yaml:"name"`
	Current   bool   `json:"current" yaml:"current"`
	ServerURL string `json:"server_url" yaml:"server_url"`
	Username  string `json:"username,omitempty" yaml:"username,omitempty"`
	LoggedIn  bool   `json:"logged_in" yaml:"logged_in"`
	ExpiresAt string `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
}

// describe builds the display record for a stored context. A context
// with an expired or missing token shows as logged out.
func describe(name string, current bool, ctx *credentials.Context) Info {
	info := Info{
		Name:      name,
		Current:   current,
		ServerURL: ctx.ServerURL,
		Username:  ctx.Username,
		LoggedIn:  ctx.AccessToken != "" && !ctx.IsExpired(),
	}
	if info.LoggedIn && !ctx.ExpiresAt.IsZero() {
		info.ExpiresAt = ctx.ExpiresAt.Local().Format(time.RFC3339)
	}
	return info
}
