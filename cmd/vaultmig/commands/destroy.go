package commands

import (
	"github.com/spf13/cobra"
	"github.com/systmms/vaultmig/internal/config"
	"github.com/systmms/vaultmig/internal/migrate"
	"github.com/systmms/vaultmig/pkg/secretstore"
)

func NewDestroyCommand(cfg *config.Config) *cobra.Command {
	var (
		dryRun    bool
		recursive bool
	)

	cmd := &cobra.Command{
		Use:   "destroy <path>",
		Short: "Permanently destroy a secret, all versions included",
		Long: `Destroy the secret at the given path: metadata and every version are
removed and cannot be recovered. By default only the exact path is
destroyed; --recursive destroys the whole subtree.

Examples:
  vaultmig destroy app/db --dry-run
  vaultmig destroy app/old --recursive`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := newStore(cfg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			targets := []string{args[0]}
			if recursive {
				walker := migrate.NewWalker(store, cfg.Logger)
				targets = targets[:0]
				err := walker.Walk(ctx, args[0], func(sec secretstore.Secret) error {
					targets = append(targets, sec.FullPath())
					return nil
				})
				if err != nil {
					return err
				}
			}

			for _, path := range targets {
				if dryRun {
					cfg.Logger.Info("would destroy %s", path)
					continue
				}
				if err := store.Delete(ctx, path); err != nil {
					return err
				}
				cfg.Logger.Info("destroyed %s", path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be destroyed without destroying")
	cmd.Flags().BoolVar(&recursive, "recursive", false, "Destroy every secret below the path as well")

	return cmd
}
