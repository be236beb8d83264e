package commands

import (
	"github.com/spf13/cobra"
	"github.com/systmms/vaultmig/internal/config"
	"github.com/systmms/vaultmig/internal/credentials"
	dserrors "github.com/systmms/vaultmig/internal/errors"
)

func NewLoginCommand(cfg *config.Config) *cobra.Command {
	var erase bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the Vault password in the OS keyring",
		Long: `Store the Vault password for the configured username in the operating
system's keyring. Subsequent commands pick it up automatically, so the
password no longer has to travel on the command line.

Examples:
  VAULT_PASSWORD=... vaultmig login
  vaultmig login --username alice --password ...
  vaultmig login --erase`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Username == "" {
				return dserrors.ConfigError{
					Field:      "username",
					Message:    "username is required",
					Suggestion: "Pass --username or set the USER environment variable",
				}
			}

			if erase {
				if err := credentials.Erase(cfg.Username); err != nil {
					return err
				}
				cfg.Logger.Info("removed stored password for %s", cfg.Username)
				return nil
			}

			if cfg.Password == nil {
				return dserrors.UserError{
					Message:    "No password to store",
					Suggestion: "Pass --password or set the VAULT_PASSWORD environment variable",
				}
			}

			err := cfg.Password.Reveal(func(password []byte) error {
				return credentials.Store(cfg.Username, string(password))
			})
			if err != nil {
				return err
			}
			cfg.Logger.Info("stored password for %s in the OS keyring", cfg.Username)
			return nil
		},
	}

	cmd.Flags().BoolVar(&erase, "erase", false, "Remove the stored password instead")

	return cmd
}
