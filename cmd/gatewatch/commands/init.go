package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gatewatch/gatewatch/pkg/config"
	"github.com/gatewatch/gatewatch/pkg/server/api"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a commented configuration file",
	Long: `Create a gatewatch configuration file with every setting spelled out.

The file is written to $XDG_CONFIG_HOME/gatewatch/config.yaml unless
--config points somewhere else. An existing file is never overwritten
without --force.

Examples:
  # Create the config at the default location
  gatewatch init

  # Create it at a custom path
  gatewatch init --config /etc/gatewatch/config.yaml

  # Overwrite an existing file
  gatewatch init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := GetConfigFile()

	var err error
	if path == "" {
		path, err = config.InitConfig(initForce)
	} else {
		err = config.InitConfigToPath(path, initForce)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", path)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Review the generated file; every setting is commented.")
	fmt.Println("  2. Start the server: gatewatch start")
	fmt.Println("     The first start creates the admin user and prints its password once.")
	fmt.Println("\nSecurity note:")
	fmt.Println("  The file holds a freshly generated JWT secret, which is why it is written 0600.")
	fmt.Println("  For production, move the secret out of the file entirely:")
	fmt.Printf("    export %s=$(openssl rand -hex 32)\n", api.EnvServerSecret)

	return nil
}
