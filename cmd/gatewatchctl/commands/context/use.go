package context

import (
	"errors"
	"fmt"

	"github.com/gatewatch/gatewatch/internal/cli/credentials"
	"github.com/spf13/cobra"
)

var useCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Switch to a different context",
	Long: `Make another saved context the active one for subsequent
commands.

Examples:
  # Switch to the headquarters server
  gatewatchctl context use headquarters`,
	Args: cobra.ExactArgs(1),
	RunE: runContextUse,
}

func runContextUse(cmd *cobra.Command, args []string) error {
	name := args[0]

	store, err := credentials.NewStore()
	if err != nil {
		return fmt.Errorf("failed to initialize credential store: %w", err)
	}

	if err := store.UseContext(name); err != nil {
		if errors.Is(err, credentials.ErrContextNotFound) {
			return fmt.Errorf("context '%s' not found\n\n"+
				"List available contexts:\n"+
				"  gatewatchctl context list", name)
		}
		return fmt.Errorf("failed to switch context: %w", err)
	}

	ctx, err := store.GetContext(name)
	if err == nil {
		fmt.Printf("Switched to context %s (%s)\n", name, ctx.ServerURL)
	} else {
		fmt.Printf("Switched to context %s\n", name)
	}
	return nil
}
