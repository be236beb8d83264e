package commands

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/systmms/vaultmig/internal/backup"
	"github.com/systmms/vaultmig/internal/config"
	"github.com/systmms/vaultmig/internal/migrate"
)

func NewBackupCommand(cfg *config.Config) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "backup <path>",
		Short: "Dump a secret subtree into a JSON file",
		Long: `Recursively read every secret at and below the given path and write
the result to a JSON file. An existing file is never overwritten.
The file can be restored with 'set' or merged back with 'add'.

Examples:
  vaultmig backup app
  vaultmig backup app/db --output db-secrets.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := newStore(cfg)
			if err != nil {
				return err
			}

			walker := migrate.NewWalker(store, cfg.Logger)
			secrets, err := walker.Collect(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if output == "" {
				output = backup.DefaultFilename(time.Now())
			}
			if err := backup.WriteFile(output, secrets); err != nil {
				return err
			}
			cfg.Logger.Info("backed up %d secrets to %s", len(secrets), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Backup file name (default backup_vault_<timestamp>.json)")

	return cmd
}
