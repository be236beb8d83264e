package commands

import (
	"github.com/spf13/cobra"
	"github.com/systmms/vaultmig/internal/backup"
	"github.com/systmms/vaultmig/internal/config"
	"github.com/systmms/vaultmig/internal/logging"
	"github.com/systmms/vaultmig/pkg/secretstore"
)

func NewAddCommand(cfg *config.Config) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "add <jsonfile>",
		Short: "Merge secrets from a JSON file into existing values",
		Long: `Merge every secret in the JSON file into Vault. Existing fields not
named in the file survive into the new version; fields named in the
file are overwritten. Paths that do not exist yet are created.

The file format is the one 'get' and 'backup' produce:
  {"<path>": {"<field>": "<value>"}}`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secrets, err := backup.LoadFile(args[0])
			if err != nil {
				return err
			}

			store, err := newStore(cfg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			for _, path := range sortedPaths(secrets) {
				existing, err := store.Read(ctx, path)
				if err != nil {
					if !secretstore.IsNotFound(err) {
						return err
					}
					existing = map[string]string{}
				}
				for field, value := range secrets[path] {
					existing[field] = value
				}

				if dryRun {
					cfg.Logger.Info("would add to %s: %v", path, logging.RedactValues(existing))
					continue
				}
				version, err := store.Write(ctx, path, existing)
				if err != nil {
					return err
				}
				cfg.Logger.Info("added to %s (version %d)", path, version)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be written without writing")

	return cmd
}
