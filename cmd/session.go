package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// loginCmd checks the configured credentials
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the iiko server",
	Long: `Log in with the configured credentials to check that they are accepted.
The session is released again on exit unless server.logout_on_exit is false.`,
	RunE: runLogin,
}

// logoutCmd ends a session explicitly
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out of the iiko server",
	RunE:  runLogout,
}

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test connection to the iiko server",
	Long:  `Log in, report the server type and count the departments the login can see.`,
	RunE:  runTest,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(testCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	if _, err := client.Authenticate(cmd.Context()); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	logger.Info().Str("login", cfg.Server.Login).Msg("Logged in")
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Logged in to %s as %s\n", client.BaseURL(), cfg.Server.Login)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	result, err := client.Logout(cmd.Context())
	if err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "✓ Logged out")
	if result != "" {
		logger.Debug().Str("response", result).Msg("Logout response")
	}
	return nil
}

func runTest(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	fmt.Fprintf(out, "Testing connection to iiko at %s...\n", client.BaseURL())

	if _, err := client.Authenticate(ctx); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	fmt.Fprintln(out, "✓ Authentication successful!")

	serverType, err := client.GetServerType(ctx)
	if err != nil {
		return fmt.Errorf("failed to get server type: %w", err)
	}

	departments, err := client.GetDepartments(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to get departments: %w", err)
	}

	fmt.Fprintf(out, "\niiko Server:\n")
	fmt.Fprintf(out, "- Server type: %s\n", serverType)
	fmt.Fprintf(out, "- Departments: %d\n", len(departments))
	fmt.Fprintf(out, "- Logout on exit: %s\n", yesNo(cfg.Server.LogoutOnExit))

	return nil
}
