package user

import (
	"fmt"
	"os"

	"github.com/gatewatch/gatewatch/cmd/gatewatchctl/cmdutil"
	"github.com/gatewatch/gatewatch/internal/cli/prompt"
	"github.com/gatewatch/gatewatch/pkg/apiclient"
	"github.com/spf13/cobra"
)

var (
	createUsername    string
	createPassword    string
	createDisplayName string
	createPhone       string
	createRole        string
	createCheckpost   string
	createActive      bool
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new user",
	Long: `Create a new user on the gatewatch server.

If username or password are not provided via flags, you will be prompted
to enter them interactively. Rangers must be assigned to a checkpost;
their phone number is used to match SMS-submitted passages.

Examples:
  # Create user interactively
  gatewatchctl user create

  # Create a ranger at a checkpost
  gatewatchctl user create --username asha --password secret --role ranger --checkpost 1f3a...

  # Create an admin
  gatewatchctl user create --username ops --password secret --role admin

  # Create a ranger with phone number for SMS fallback
  gatewatchctl user create --username asha --password secret --role ranger --checkpost 1f3a... --phone +9779812345678`,
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVarP(&createUsername, "username", "u", "", "Username (required)")
	createCmd.Flags().StringVarP(&createPassword, "password", "p", "", "Password (prompts if not provided)")
	createCmd.Flags().StringVar(&createDisplayName, "display-name", "", "Display name")
	createCmd.Flags().StringVar(&createPhone, "phone", "", "Phone number (for SMS fallback matching)")
	createCmd.Flags().StringVar(&createRole, "role", "ranger", "Role (ranger|admin)")
	createCmd.Flags().StringVar(&createCheckpost, "checkpost", "", "Checkpost ID (required for rangers)")
	createCmd.Flags().BoolVar(&createActive, "active", true, "Activate account")
}

func runCreate(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	// Check if running interactively (no flags provided)
	interactive := !cmd.Flags().Changed("username")

	username := createUsername
	if username == "" {
		username, err = prompt.InputRequired("Username")
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	password := createPassword
	if password == "" {
		password, err = prompt.PasswordWithConfirmation("Password", "Confirm password", 8)
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	// Prompt for optional fields if running interactively
	displayName := createDisplayName
	if interactive && !cmd.Flags().Changed("display-name") {
		displayName, err = prompt.InputOptional("Display name")
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	phone := createPhone
	if interactive && !cmd.Flags().Changed("phone") {
		phone, err = prompt.InputOptional("Phone (international format, e.g. +9779812345678)")
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	role := createRole
	if interactive && !cmd.Flags().Changed("role") {
		role, err = prompt.Select("Role", []prompt.SelectOption{
			{Label: "ranger", Value: "ranger", Description: "Field user tied to a single checkpost"},
			{Label: "admin", Value: "admin", Description: "Administrator with full access"},
		})
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	checkpost := createCheckpost
	if role == "ranger" && checkpost == "" {
		if !interactive {
			return fmt.Errorf("--checkpost is required for ranger accounts")
		}
		checkpost, err = prompt.InputRequired("Checkpost ID")
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	req := &apiclient.CreateUserRequest{
		Username:    username,
		Password:    password,
		DisplayName: displayName,
		Phone:       phone,
		Role:        role,
		CheckpostID: checkpost,
		Active:      &createActive,
	}

	user, err := client.CreateUser(req)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return cmdutil.PrintResourceWithSuccess(os.Stdout, user, fmt.Sprintf("User '%s' created successfully", user.Username))
}
