package user

import (
	"fmt"
	"os"
	"strings"

	"github.com/gatewatch/gatewatch/cmd/gatewatchctl/cmdutil"
	"github.com/gatewatch/gatewatch/internal/cli/prompt"
	"github.com/gatewatch/gatewatch/pkg/apiclient"
	"github.com/spf13/cobra"
)

var (
	editDisplayName string
	editPhone       string
	editRole        string
	editCheckpost   string
	editActive      string // "true", "false", or "" for unchanged
)

var editCmd = &cobra.Command{
	Use:   "edit <username>",
	Short: "Edit a user",
	Long: `Edit an existing user on the gatewatch server.

When run without flags, opens an interactive editor to modify user properties.
When flags are provided, only the specified fields are updated. Moving a
ranger to a different checkpost takes effect on their next login.

Examples:
  # Edit user interactively
  gatewatchctl user edit asha

  # Reassign a ranger to another checkpost
  gatewatchctl user edit asha --checkpost 9c2b...

  # Update phone number
  gatewatchctl user edit asha --phone +9779812345678

  # Deactivate user
  gatewatchctl user edit asha --active false`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	editCmd.Flags().StringVar(&editDisplayName, "display-name", "", "Display name")
	editCmd.Flags().StringVar(&editPhone, "phone", "", "Phone number")
	editCmd.Flags().StringVar(&editRole, "role", "", "Role (ranger|admin)")
	editCmd.Flags().StringVar(&editCheckpost, "checkpost", "", "Checkpost ID")
	editCmd.Flags().StringVar(&editActive, "active", "", "Activate/deactivate account (true|false)")
}

func runEdit(cmd *cobra.Command, args []string) error {
	username := args[0]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	// Check if any flags were provided
	hasFlags := cmd.Flags().Changed("display-name") || cmd.Flags().Changed("phone") ||
		cmd.Flags().Changed("role") || cmd.Flags().Changed("checkpost") ||
		cmd.Flags().Changed("active")

	// If no flags provided, run interactive mode
	if !hasFlags {
		return runEditInteractive(client, username)
	}

	req := &apiclient.UpdateUserRequest{}
	hasUpdate := false

	if editDisplayName != "" {
		req.DisplayName = &editDisplayName
		hasUpdate = true
	}

	if editPhone != "" {
		req.Phone = &editPhone
		hasUpdate = true
	}

	if editRole != "" {
		req.Role = &editRole
		hasUpdate = true
	}

	if editCheckpost != "" {
		req.CheckpostID = &editCheckpost
		hasUpdate = true
	}

	if editActive != "" {
		active := strings.ToLower(editActive) == "true"
		req.Active = &active
		hasUpdate = true
	}

	if !hasUpdate {
		return fmt.Errorf("no fields specified. Use --display-name, --phone, --role, --checkpost, or --active")
	}

	user, err := client.UpdateUser(username, req)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	return cmdutil.PrintResourceWithSuccess(os.Stdout, user, fmt.Sprintf("User '%s' updated successfully", user.Username))
}

func runEditInteractive(client *apiclient.Client, username string) error {
	// Fetch current user
	current, err := client.GetUser(username)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	fmt.Printf("Editing user: %s\n", current.Username)
	fmt.Println("Press Enter to keep current value, or enter a new value.")
	fmt.Println("Press Ctrl+C to abort.")
	fmt.Println()

	req := &apiclient.UpdateUserRequest{}
	hasUpdate := false

	// Display name
	newDisplayName, err := prompt.Input("Display name", current.DisplayName)
	if err != nil {
		return cmdutil.HandleAbort(err)
	}
	if newDisplayName != current.DisplayName {
		req.DisplayName = &newDisplayName
		hasUpdate = true
	}

	// Phone
	newPhone, err := prompt.Input("Phone", current.Phone)
	if err != nil {
		return cmdutil.HandleAbort(err)
	}
	if newPhone != current.Phone {
		req.Phone = &newPhone
		hasUpdate = true
	}

	// Role
	roleOptions := []prompt.SelectOption{
		{Label: "ranger", Value: "ranger", Description: "Field user tied to a single checkpost"},
		{Label: "admin", Value: "admin", Description: "Administrator with full access"},
	}
	fmt.Printf("Current role: %s\n", current.Role)
	newRole, err := prompt.Select("Role", roleOptions)
	if err != nil {
		return cmdutil.HandleAbort(err)
	}
	if newRole != current.Role {
		req.Role = &newRole
		hasUpdate = true
	}

	// Checkpost
	newCheckpost, err := prompt.Input("Checkpost ID", current.CheckpostID)
	if err != nil {
		return cmdutil.HandleAbort(err)
	}
	if newCheckpost != current.CheckpostID {
		req.CheckpostID = &newCheckpost
		hasUpdate = true
	}

	// Active
	activeOptions := []prompt.SelectOption{
		{Label: "active", Value: "true", Description: "User can log in"},
		{Label: "inactive", Value: "false", Description: "User cannot log in"},
	}
	currentStatus := "active"
	if !current.Active {
		currentStatus = "inactive"
	}
	fmt.Printf("Currently: %s\n", currentStatus)
	newActiveStr, err := prompt.Select("Account status", activeOptions)
	if err != nil {
		return cmdutil.HandleAbort(err)
	}
	newActive := newActiveStr == "true"
	if newActive != current.Active {
		req.Active = &newActive
		hasUpdate = true
	}

	if !hasUpdate {
		fmt.Println("No changes made.")
		return nil
	}

	user, err := client.UpdateUser(username, req)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	return cmdutil.PrintResourceWithSuccess(os.Stdout, user, fmt.Sprintf("User '%s' updated successfully", user.Username))
}
