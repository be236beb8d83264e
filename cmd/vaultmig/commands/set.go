package commands

import (
	"sort"

	"github.com/spf13/cobra"
	"github.com/systmms/vaultmig/internal/backup"
	"github.com/systmms/vaultmig/internal/config"
	"github.com/systmms/vaultmig/internal/logging"
)

func NewSetCommand(cfg *config.Config) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "set <jsonfile>",
		Short: "Write secrets from a JSON file, replacing existing values",
		Long: `Write every secret in the JSON file to Vault. Each path gets a new
version containing exactly the file's value-map; fields not present in
the file are dropped from the new version. Use 'add' to merge instead.

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

			for _, path := range sortedPaths(secrets) {
				if dryRun {
					cfg.Logger.Info("would set %s: %v", path, logging.RedactValues(secrets[path]))
					continue
				}
				version, err := store.Write(cmd.Context(), path, secrets[path])
				if err != nil {
					return err
				}
				cfg.Logger.Info("set %s (version %d)", path, version)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be written without writing")

	return cmd
}

func sortedPaths(secrets backup.SecretsByPath) []string {
	paths := make([]string, 0, len(secrets))
	for path := range secrets {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
