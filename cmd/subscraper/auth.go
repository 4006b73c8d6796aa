package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"subscraper/pkg/auth"
	"subscraper/pkg/config"
)

var credentialBackend string

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Reddit API credentials",
	Long: `Manage stored Reddit API credentials.

Credentials consist of five fields: client ID, client secret, application
name (sent as the User-Agent), username, and password. They are stored in a
plain JSON credentials file by default; the keyring and encrypted backends
are available for operators who prefer not to keep the password on disk in
the clear.`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store Reddit API credentials",
	Long: `Prompt for the five credential fields and store them.

To create API credentials, open https://www.reddit.com/prefs/apps, create a
"script" application, and note the client ID and secret.`,
	Example: `  # Store credentials in the default JSON file
  subscraper auth login

  # Store credentials in the system keychain
  subscraper auth login --backend keyring

  # Store credentials encrypted (requires SUBSCRAPER_PASSPHRASE)
  subscraper auth login --backend encrypted`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

// statusCmd represents the auth status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored credentials with secrets masked",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored credentials from every backend",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(statusCmd)
	authCmd.AddCommand(logoutCmd)

	loginCmd.Flags().StringVar(&credentialBackend, "backend", "file", "credential backend (file, keyring, encrypted)")
}

func loadAuthConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile, map[string]interface{}{"log-level": logLevel})
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func selectStore(cfg *config.Config) (auth.Store, error) {
	switch credentialBackend {
	case "file":
		return auth.NewFileStore(cfg.Output.CredentialsFile), nil
	case "keyring":
		return auth.NewKeyringStore()
	case "encrypted":
		return auth.NewEncryptedFileStore(cfg.Output.CredentialsFile + ".enc")
	default:
		return nil, fmt.Errorf("unknown credential backend: %q (use 'file', 'keyring', or 'encrypted')", credentialBackend)
	}
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := loadAuthConfig()
	if err != nil {
		return err
	}

	store, err := selectStore(cfg)
	if err != nil {
		return err
	}

	creds, err := auth.PromptCredentials(auth.NewTerminalPrompter())
	if err != nil {
		return fmt.Errorf("failed to read credentials: %w", err)
	}
	if err := creds.Validate(); err != nil {
		return fmt.Errorf("incomplete credentials: %w", err)
	}

	if err := store.Save(creds); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}

	fmt.Printf("Credentials stored for %s.\n", creds.Username)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadAuthConfig()
	if err != nil {
		return err
	}

	mgr := auth.NewManager(cfg.Output.CredentialsFile)
	creds, err := mgr.Load()
	if err != nil {
		if errors.Is(err, auth.ErrCredentialsNotFound) {
			fmt.Println("No stored credentials. Run 'subscraper auth login' first.")
			return nil
		}
		return err
	}

	masked := auth.Sanitize(creds)
	fmt.Printf("Client ID:     %s\n", masked.ClientID)
	fmt.Printf("Client secret: %s\n", masked.ClientSecret)
	fmt.Printf("User agent:    %s\n", masked.UserAgent)
	fmt.Printf("Username:      %s\n", masked.Username)
	fmt.Printf("Password:      %s\n", masked.Password)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	cfg, err := loadAuthConfig()
	if err != nil {
		return err
	}

	mgr := auth.NewManager(cfg.Output.CredentialsFile)
	if err := mgr.Delete(); err != nil {
		if errors.Is(err, auth.ErrCredentialsNotFound) {
			fmt.Println("No stored credentials.")
			return nil
		}
		return err
	}

	fmt.Println("Credentials removed.")
	return nil
}
