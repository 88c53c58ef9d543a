package config

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/gatewatch/gatewatch/pkg/config"
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit the configuration file",
	Long: `Open the configuration file in an editor and validate the result.

The editor is taken from $EDITOR, then $VISUAL, then 'vi'. After the
editor exits the file is loaded again, so a typo is caught now rather
than at the next server restart.

Examples:
  # Edit the default config
  gatewatch config edit

  # Edit a specific file
  gatewatch config edit --config /etc/gatewatch/config.yaml`,
	RunE: runEdit,
}

func runEdit(cmd *cobra.Command, args []string) error {
	path := resolvePath(cmd)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("configuration file not found: %s\n\n"+
			"Create it first with:\n  gatewatch init --config %s", path, path)
	}

	editor := pickEditor()
	editorCmd := exec.Command(editor, path)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr
	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("editor %s failed: %w", editor, err)
	}

	// The edit is already on disk; a validation failure only means the
	// file needs another pass.
	if _, err := config.MustLoad(path); err != nil {
		return fmt.Errorf("configuration saved but failed validation: %w\n\n"+
			"Run 'gatewatch config edit' again to fix it", err)
	}

	fmt.Println("Configuration saved and validated.")
	return nil
}

func pickEditor() string {
	for _, env := range []string{"EDITOR", "VISUAL"} {
		if editor := os.Getenv(env); editor != "" {
			return editor
		}
	}
	return "vi"
}
