// Package cmdutil holds the plumbing shared by gatewatchctl commands:
// global flags, authenticated client construction, and output helpers.
package cmdutil

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gatewatch/gatewatch/internal/cli/credentials"
	"github.com/gatewatch/gatewatch/internal/cli/output"
	"github.com/gatewatch/gatewatch/internal/cli/prompt"
	"github.com/gatewatch/gatewatch/pkg/apiclient"
)

// Flags stores global flag values accessible by subcommands.
var Flags = &GlobalFlags{}

// GlobalFlags holds the global flag values bound in the root command.
type GlobalFlags struct {
	ServerURL string
	Token     string
	Output    string
	NoColor   bool
	Verbose   bool
}

// GetAuthenticatedClient builds an API client for the current context.
// Explicit --server and --token flags win over stored credentials. An
// expired access token is refreshed transparently when the context
// still holds a refresh token.
func GetAuthenticatedClient() (*apiclient.Client, error) {
	if Flags.ServerURL != "" && Flags.Token != "" {
		traceServer(Flags.ServerURL)
		return apiclient.New(Flags.ServerURL).WithToken(Flags.Token), nil
	}

	store, err := credentials.NewStore()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize credential store: %w", err)
	}
	ctx, err := store.GetCurrentContext()
	if err != nil {
		return nil, fmt.Errorf("not logged in. Run 'gatewatchctl login' first")
	}

	url := ctx.ServerURL
	if Flags.ServerURL != "" {
		url = Flags.ServerURL
	}
	if url == "" {
		return nil, fmt.Errorf("no server URL configured. Run 'gatewatchctl login --server <url>' first")
	}

	tok := Flags.Token
	if tok == "" {
		tok = ctx.AccessToken
		if ctx.IsExpired() && ctx.HasRefreshToken() {
			tok, err = refreshSession(store, ctx.RefreshToken, url)
			if err != nil {
				return nil, err
			}
		}
	}
	if tok == "" {
		return nil, fmt.Errorf("no access token. Run 'gatewatchctl login' first")
	}

	traceServer(url)
	return apiclient.New(url).WithToken(tok), nil
}

// traceServer notes which server a command talks to when --verbose is set.
func traceServer(url string) {
	if Flags.Verbose {
		fmt.Fprintf(os.Stderr, "gatewatchctl: using server %s\n", url)
	}
}

// refreshSession exchanges the refresh token and persists the new pair.
func refreshSession(store *credentials.Store, refreshToken, url string) (string, error) {
	tokens, err := apiclient.New(url).RefreshToken(refreshToken)
	if err != nil {
		return "", fmt.Errorf("session expired. Run 'gatewatchctl login' to re-authenticate")
	}
	if err := store.UpdateTokens(tokens.AccessToken, tokens.RefreshToken, tokens.ExpiresAt); err != nil {
		return "", fmt.Errorf("failed to save refreshed tokens: %w", err)
	}
	return tokens.AccessToken, nil
}

// GetOutputFormatParsed returns the parsed --output format.
func GetOutputFormatParsed() (output.Format, error) {
	return output.ParseFormat(Flags.Output)
}

// writeFormatted renders data as JSON or YAML, or calls table for the
// human-readable default. Every Print* helper funnels through here so
// the format switch lives in one place.
func writeFormatted(w io.Writer, data any, table func() error) error {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return err
	}
	switch format {
	case output.FormatJSON:
		return output.PrintJSON(w, data)
	case output.FormatYAML:
		return output.PrintYAML(w, data)
	default:
		return table()
	}
}

// PrintOutput prints data in the selected format. In table format an
// empty result prints emptyMsg instead of a bare header row.
func PrintOutput(w io.Writer, data any, isEmpty bool, emptyMsg string, tableRenderer output.TableRenderer) error {
	return writeFormatted(w, data, func() error {
		if isEmpty {
			_, _ = fmt.Fprintln(w, emptyMsg)
			return nil
		}
		return output.PrintTable(w, tableRenderer)
	})
}

// PrintResource prints a single resource in the selected format.
func PrintResource(w io.Writer, data any, tableRenderer output.TableRenderer) error {
	return writeFormatted(w, data, func() error {
		return output.PrintTable(w, tableRenderer)
	})
}

// PrintResourceWithSuccess prints the resource for JSON/YAML output, or
// just a success line in table mode. Create and update commands use
// this so scripts get the full document back.
func PrintResourceWithSuccess(w io.Writer, data any, successMsg string) error {
	return writeFormatted(w, data, func() error {
		PrintSuccess(successMsg)
		return nil
	})
}

// PrintSuccess prints a success message in table format. JSON and YAML
// output stays machine-readable, so the message is dropped there.
func PrintSuccess(msg string) {
	format, err := GetOutputFormatParsed()
	if err != nil || format != output.FormatTable {
		return
	}
	output.Success(os.Stdout, msg, !Flags.NoColor)
}

// RunDeleteWithConfirmation prompts before running deleteFn. force
// skips the prompt for scripted use.
func RunDeleteWithConfirmation(resourceType, name string, force bool, deleteFn func() error) error {
	confirmed, err := prompt.ConfirmWithForce(fmt.Sprintf("Delete %s '%s'?", resourceType, name), force)
	if err != nil {
		return HandleAbort(err)
	}
	if !confirmed {
		fmt.Println("Aborted.")
		return nil
	}

	if err := deleteFn(); err != nil {
		return err
	}
	PrintSuccess(fmt.Sprintf("%s '%s' deleted successfully", resourceType, name))
	return nil
}

// BoolToYesNo renders a boolean for table cells.
func BoolToYesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// EmptyOr substitutes fallback for an empty value, so optional table
// fields show "-" instead of nothing.
func EmptyOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// HandleAbort turns a Ctrl+C during a prompt into a clean exit, passing
// every other error through.
func HandleAbort(err error) error {
	if prompt.IsAborted(err) {
		fmt.Println("\nAborted.")
		return nil
	}
	return err
}

// ParseTimeFlag parses a time flag value. Accepts a relative duration
// ("24h", "30m") interpreted as that long ago, or an absolute RFC3339
// timestamp. Returns the zero time for an empty value.
func ParseTimeFlag(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if d, err := time.ParseDuration(value); err == nil {
		return time.Now().Add(-d), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: use a duration like 24h or an RFC3339 timestamp", value)
	}
	return t, nil
}
