// Package reconcile provides the reconcile command, which appends missing
// routers to the store and runs the configuration program on change.
package reconcile

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/routeconf"
	"github.com/agentstation/routeconf/cmd/application"
	"github.com/agentstation/routeconf/internal/cmd/output"
	"github.com/agentstation/routeconf/internal/metrics"
	"github.com/agentstation/routeconf/pkg/errors"
	"github.com/agentstation/routeconf/pkg/logging"
)

// NewCommand creates the reconcile command.
func NewCommand(app application.Application) *cobra.Command {
	var flags *Flags

	cmd := &cobra.Command{
		Use:     "reconcile",
		Aliases: []string{"run"},
		GroupID: "core",
		Short:   "Append missing routers to the store and apply the change",
		Long: `Reconcile reads the router store, appends every requested router whose
address is not already present, and, when anything was appended, runs the
configuration program with the global credentials and the store path.

Routers come from --routers-file (YAML, JSON or HCL) and --router flags.
Without either, nothing is requested and the store is left untouched.`,
		Example: `  routeconf reconcile --program ./route.py --interpreter python3 \
    --store routers.csv --username admin --password secret \
    --router 10.0.0.1,admin,pw1 --router 10.0.0.2
  routeconf run -f routers.yaml --dry-run
  routeconf reconcile -f routers.hcl --no-run-program -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.Config(cmd, app.RunConfig())
			if err != nil {
				return err
			}
			_, err = Execute(cmd.Context(), app, metrics.New(), cfg, flags.MetricsPath(app.MetricsFile()), cmd.OutOrStdout())
			return err
		},
	}

	flags = AddFlags(cmd)

	return cmd
}

// Execute performs one run, records it in m, and writes the result to w in
// the application's output format. On failure a structured failure record
// is written for json and yaml output and the error is returned. Callers
// that run repeatedly pass the same m so counters accumulate.
func Execute(ctx context.Context, app application.Application, m *metrics.Metrics, cfg routeconf.Config, metricsFile string, w io.Writer) (*routeconf.Result, error) {
	logger := app.Logger()
	ctx = logging.WithLogger(ctx, logger)

	result, err := routeconf.Run(ctx, cfg, m.Options()...)
	if err == nil {
		m.ObserveSuccess()
	}

	if metricsFile != "" {
		if werr := m.WriteTextfile(metricsFile); werr != nil {
			logger.Warn().Err(werr).Str("file", metricsFile).Msg("Failed to write metrics")
		}
	}

	format := output.DetectFormat(app.OutputFormat())
	formatter := output.NewFormatter(format)

	if err != nil {
		if format == output.FormatJSON || format == output.FormatYAML {
			failure := output.NewFailure(err, programExitCode(err))
			if ferr := formatter.Format(w, failure); ferr != nil {
				logger.Warn().Err(ferr).Msg("Failed to write failure output")
			}
		}
		return nil, err
	}

	if err := formatter.Format(w, output.Result{Result: result}); err != nil {
		return result, err
	}
	return result, nil
}

// programExitCode returns the program's own exit code when err carries one.
func programExitCode(err error) *int {
	if code, ok := errors.ExitCode(err); ok && code >= 0 {
		return &code
	}
	return nil
}
