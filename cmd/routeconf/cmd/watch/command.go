// Package watch provides the watch command, which reconciles again whenever
// a routers file changes.
package watch

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/routeconf/cmd/application"
	"github.com/agentstation/routeconf/cmd/routeconf/cmd/reconcile"
	"github.com/agentstation/routeconf/internal/metrics"
	internalwatch "github.com/agentstation/routeconf/internal/watch"
	"github.com/agentstation/routeconf/pkg/constants"
	"github.com/agentstation/routeconf/pkg/errors"
	"github.com/agentstation/routeconf/pkg/logging"
)

// NewCommand creates the watch command.
func NewCommand(app application.Application) *cobra.Command {
	var (
		flags    *reconcile.Flags
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:     "watch",
		GroupID: "core",
		Short:   "Reconcile whenever a routers file changes",
		Long: `Watch runs a reconciliation at start and again each time one of the
--routers-file files is written. Changes are debounced and runs never
overlap. A failed run is logged and watching continues until interrupted.`,
		Example: `  routeconf watch -f routers.yaml --program ./apply.sh --store routers.csv \
    --username admin --password secret`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(flags.RoutersFiles) == 0 {
				return errors.NewValidationError("routers-file", nil, "at least one routers file is required to watch")
			}
			base := app.RunConfig()
			metricsFile := flags.MetricsPath(app.MetricsFile())
			m := metrics.New()

			// Routers files are reloaded on every run.
			run := func(ctx context.Context) error {
				cfg, err := flags.Config(cmd, base)
				if err != nil {
					return err
				}
				_, err = reconcile.Execute(ctx, app, m, cfg, metricsFile, cmd.OutOrStdout())
				return err
			}

			w, err := internalwatch.New(flags.RoutersFiles, debounce, run)
			if err != nil {
				return err
			}

			ctx := logging.WithLogger(cmd.Context(), app.Logger())
			app.Logger().Info().Strs("files", flags.RoutersFiles).Msg("Watching routers files")
			return w.Run(ctx)
		},
	}

	flags = reconcile.AddFlags(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", constants.WatchDebounce, "wait this long after the last change before running")

	return cmd
}
