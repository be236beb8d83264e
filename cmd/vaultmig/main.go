package main

import (
	"fmt"
	"os"

	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"
	"github.com/systmms/vaultmig/cmd/vaultmig/commands"
	"github.com/systmms/vaultmig/internal/config"
	"github.com/systmms/vaultmig/internal/logging"
	"github.com/systmms/vaultmig/internal/secure"
	"github.com/systmms/vaultmig/internal/vault"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Wipe every credential enclave, whatever the exit path.
	defer memguard.Purge()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		memguard.Purge()
		os.Exit(1)
	}
}

func run() error {
	// Global flags
	var (
		username   string
		password   string
		vaultURL   string
		namespace  string
		mountpoint string
		authMethod string
		logLevel   string
		noColor    bool
	)

	// Create config placeholder
	cfg := &config.Config{}

	rootCmd := &cobra.Command{
		Use:   "vaultmig",
		Short: "Migrate, back up, and manage secrets in Vault KV v2",
		Long: `vaultmig reorganizes secret trees in HashiCorp Vault's KV version 2
engine: plan and execute regex-driven migrations between subtrees, dump
and restore JSON backups, and read or edit secrets in bulk.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logging.ParseLevel(logLevel)
			if err != nil {
				return err
			}

			cfg.Logger = logging.New(level, noColor)
			cfg.VaultURL = vaultURL
			cfg.VaultNamespace = namespace
			cfg.VaultMountpoint = mountpoint
			cfg.AuthMethod = authMethod
			cfg.Username = username

			// The password leaves plain memory as early as possible;
			// the env var covers CI where the flag would end up in
			// shell history anyway.
			if password != "" {
				cfg.Password = secure.NewCredentialFromString(password)
				password = ""
			} else if env := os.Getenv("VAULT_PASSWORD"); env != "" {
				cfg.Password = secure.NewCredentialFromString(env)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&username, "username", "u", os.Getenv("USER"), "Vault username for ldap/userpass auth")
	rootCmd.PersistentFlags().StringVarP(&password, "password", "p", "", "Vault password (prefer VAULT_PASSWORD or 'vaultmig login')")
	rootCmd.PersistentFlags().StringVar(&vaultURL, "vault-url", "https://vault.example.com:8200", "Vault server URL")
	rootCmd.PersistentFlags().StringVar(&namespace, "vault-namespace", "", "Vault namespace (Vault Enterprise)")
	rootCmd.PersistentFlags().StringVar(&mountpoint, "vault-mountpoint", "secrets", "KV v2 engine mountpoint")
	rootCmd.PersistentFlags().StringVar(&authMethod, "auth-method", vault.AuthMethodLDAP, "Vault auth method: ldap, userpass or token")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	// Add commands
	rootCmd.AddCommand(
		commands.NewMigrateCommand(cfg),
		commands.NewGetCommand(cfg),
		commands.NewSetCommand(cfg),
		commands.NewAddCommand(cfg),
		commands.NewDestroyCommand(cfg),
		commands.NewBackupCommand(cfg),
		commands.NewLoginCommand(cfg),
		commands.NewCompletionCommand(cfg),
	)

	return rootCmd.Execute()
}
