package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/doidoi-app/doidoi-cli/internal/auth"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the stored access token",
	Long:  `Manage the access token used to talk to the DoiDoi backend.`,
}

var setTokenCmd = &cobra.Command{
	Use:   "set-token [token]",
	Short: "Store an access token",
	Long: `Store the access token sent as a Bearer token with every request.

When no token is given it is read from stdin, without echo on a terminal.

Examples:
  doidoi auth set-token eyJhbGciOi...
  echo "$TOKEN" | doidoi auth set-token`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSetToken,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and clear stored credentials",
	RunE:  runLogout,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current authentication status",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(setTokenCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(statusCmd)
}

func runSetToken(cmd *cobra.Command, args []string) error {
	var token string
	if len(args) == 1 {
		token = args[0]
	} else {
		var err error
		token, err = readToken()
		if err != nil {
			return err
		}
	}

	tokenStore, err := auth.NewTokenStore()
	if err != nil {
		return fmt.Errorf("failed to initialize token store: %w", err)
	}

	if err := tokenStore.SaveToken(token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	if !IsQuiet() {
		fmt.Println("✓ Token saved")
	}
	return nil
}

// readToken reads a token from stdin, hiding input on a terminal
func readToken() (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, "Access token: ")
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read token from stdin: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	tokenStore, err := auth.NewTokenStore()
	if err != nil {
		return fmt.Errorf("failed to initialize token store: %w", err)
	}

	if err := tokenStore.Delete(); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}

	fmt.Println("✓ Logged out successfully")
	return nil
}

type authStatus struct {
	LoggedIn bool       `json:"loggedIn" yaml:"loggedIn"`
	Path     string     `json:"path" yaml:"path"`
	SavedAt  *time.Time `json:"savedAt,omitempty" yaml:"savedAt,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	tokenStore, err := auth.NewTokenStore()
	if err != nil {
		return fmt.Errorf("failed to initialize token store: %w", err)
	}

	status := authStatus{Path: tokenStore.Path()}

	creds, err := tokenStore.Load()
	switch {
	case errors.Is(err, auth.ErrNoToken):
	case err != nil:
		return err
	case creds.AccessToken != "":
		status.LoggedIn = true
		if !creds.SavedAt.IsZero() {
			status.SavedAt = &creds.SavedAt
		}
	}

	if done, err := structured(status); done {
		return err
	}

	if !status.LoggedIn {
		fmt.Println("Not logged in")
		fmt.Println()
		fmt.Println("Run 'doidoi auth set-token' to store an access token.")
		return nil
	}

	fmt.Println("✓ Logged in")
	fmt.Printf("  Credentials: %s\n", status.Path)
	if status.SavedAt != nil {
		fmt.Printf("  Saved:       %s\n", status.SavedAt.Format(time.RFC3339))
	}
	fmt.Println()

	return nil
}
