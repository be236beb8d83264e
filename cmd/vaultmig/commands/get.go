package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/systmms/vaultmig/internal/config"
	"github.com/systmms/vaultmig/internal/migrate"
)

func NewGetCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <path>",
		Short: "Read a secret subtree and print it as JSON",
		Long: `Recursively read every secret at and below the given path and print
the result to stdout as JSON, keyed by full secret path. The output is
the same format 'backup' writes and 'set'/'add' read.

Examples:
  vaultmig get app/db
  vaultmig get app | jq 'keys'`,
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

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(secrets); err != nil {
				return fmt.Errorf("failed to encode JSON: %w", err)
			}
			return nil
		},
	}

	return cmd
}
