package context

import (
	"fmt"
	"os"

	"github.com/gatewatch/gatewatch/cmd/gatewatchctl/cmdutil"
	"github.com/gatewatch/gatewatch/internal/cli/credentials"
	"github.com/gatewatch/gatewatch/internal/cli/output"
	"github.com/spf13/cobra"
)

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show current context",
	Long: `Display the active context and its login state.

Examples:
  # Show current context
  gatewatchctl context current

  # Show as JSON
  gatewatchctl context current -o json`,
	RunE: runContextCurrent,
}

func runContextCurrent(cmd *cobra.Command, args []string) error {
	store, err := credentials.NewStore()
	if err != nil {
		return fmt.Errorf("failed to initialize credential store: %w", err)
	}

	name := store.GetCurrentContextName()
	if name == "" {
		return fmt.Errorf("no current context set\n\n" +
			"Login to a server first:\n" +
			"  gatewatchctl login --server http://localhost:8080")
	}
	ctx, err := store.GetContext(name)
	if err != nil {
		return fmt.Errorf("failed to get context: %w", err)
	}

	info := describe(name, true, ctx)

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}
	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, info)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, info)
	}

	fmt.Printf("Current context: %s\n", info.Name)
	fmt.Printf("  Server:    %s\n", info.ServerURL)
	fmt.Printf("  User:      %s\n", cmdutil.EmptyOr(info.Username, "-"))
	if info.LoggedIn {
		fmt.Printf("  Status:    Logged in (until %s)\n", info.ExpiresAt)
	} else {
		fmt.Printf("  Status:    Not logged in\n")
	}
	return nil
}
