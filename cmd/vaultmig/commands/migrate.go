package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/systmms/vaultmig/internal/config"
	dserrors "github.com/systmms/vaultmig/internal/errors"
	"github.com/systmms/vaultmig/internal/migrate"
)

func NewMigrateCommand(cfg *config.Config) *cobra.Command {
	var (
		dryRun      bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "migrate <scheme-file>",
		Short: "Move secrets between subtrees following a scheme file",
		Long: `Plan and execute a secrets migration.

The scheme file (YAML or JSON) maps source subtrees to destination
subtrees; optional subschemes route secrets into subfolders by regex
match on the secret name. Every discovered source secret is planned
first, then written to its destination and destroyed at the source.
A source is never destroyed unless its replacement was written.

Examples:
  vaultmig migrate schemes.yaml --dry-run   # show the plan, touch nothing
  vaultmig migrate schemes.yaml             # execute
  vaultmig migrate schemes.yaml --metrics-addr :9090`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schemes, err := config.LoadSchemes(args[0])
			if err != nil {
				return err
			}

			store, err := newStore(cfg)
			if err != nil {
				return err
			}

			var metrics *migrate.Metrics
			if metricsAddr != "" {
				metrics = migrate.InitMetrics()
				stop := migrate.StartMetricsServer(metricsAddr, cfg.Logger)
				defer stop()
			}

			ctx := cmd.Context()
			planner := migrate.NewPlanner(store, cfg.Logger, metrics)
			plan, err := planner.Plan(ctx, schemes)
			if err != nil {
				return err
			}
			if plan.Len() == 0 {
				cfg.Logger.Warn("nothing to migrate")
				return nil
			}
			cfg.Logger.Info("planned %d secrets", plan.Len())

			executor := migrate.NewExecutor(store, cfg.Logger, metrics)
			report := executor.Execute(ctx, plan, dryRun)

			if dryRun {
				cfg.Logger.Info("dry run: %d secrets would be migrated", plan.Len())
				return nil
			}

			cfg.Logger.Info("migrated %d of %d secrets", report.Migrated(), plan.Len())
			if failed := report.Failed(); failed > 0 {
				return dserrors.UserError{
					Message:    fmt.Sprintf("%d of %d secrets failed to migrate", failed, plan.Len()),
					Suggestion: "Sources of failed secrets are untouched; fix the cause and re-run the same migration",
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the plan without touching any secret")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address during the run")

	return cmd
}
