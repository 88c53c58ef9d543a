// Package shellcomp provides the shell completion command shared by the
// gatewatch binaries.
package shellcomp

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Command returns the completion command for the named binary. The root
// command should disable cobra's generated completion command in its
// favor.
func Command(binary string) *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion script",
		Long: fmt.Sprintf(`Generate the shell completion script for %[1]s.

To load completions:

Bash:
  # Linux:
  $ %[1]s completion bash > /etc/bash_completion.d/%[1]s
  # macOS:
  $ %[1]s completion bash > $(brew --prefix)/etc/bash_completion.d/%[1]s

Zsh:
  # Enable shell completion once if your environment does not already:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # Then install the script:
  # Linux:
  $ %[1]s completion zsh > "${fpath[1]}/_%[1]s"
  # macOS:
  $ %[1]s completion zsh > $(brew --prefix)/share/zsh/site-functions/_%[1]s

  # Start a new shell for the setup to take effect.

Fish:
  $ %[1]s completion fish > ~/.config/fish/completions/%[1]s.fish

PowerShell:
  PS> %[1]s completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> %[1]s completion powershell > %[1]s.ps1
  # and source this file from your PowerShell profile.
`, binary),
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
		},
	}
}
