// Package list provides the list command, which prints the routers in a store.
package list

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/routeconf/cmd/application"
	"github.com/agentstation/routeconf/internal/cmd/output"
	"github.com/agentstation/routeconf/pkg/errors"
	"github.com/agentstation/routeconf/pkg/store"
)

// NewCommand creates the list command.
func NewCommand(app application.Application) *cobra.Command {
	var (
		storePath     string
		storeFormat   string
		showPasswords bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		GroupID: "core",
		Short:   "List routers in the store",
		Long: `List prints the routers recorded in the store file. Passwords are
masked unless --show-passwords is given, and only shown in wide or
structured output.`,
		Example: `  routeconf list --store routers.csv
  routeconf list --store routers.txt --store-format legacy -o wide --show-passwords`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := app.Logger()
			cfg := app.RunConfig()

			if cmd.Flags().Changed("store") {
				cfg.StorePath = storePath
			}
			if cfg.StorePath == "" {
				return errors.NewValidationError("store_path", nil, "is required")
			}
			format := cfg.Format
			if cmd.Flags().Changed("store-format") {
				f, err := store.ParseFormat(storeFormat)
				if err != nil {
					return err
				}
				format = f
			}
			if format == "" {
				format = store.FormatCSV
			}

			records, exists, err := store.Load(cfg.StorePath, store.WithFormat(format))
			if err != nil {
				return err
			}
			if !exists {
				logger.Warn().Str("store", cfg.StorePath).Msg("Store does not exist")
			}
			logger.Debug().Str("store", cfg.StorePath).Int("routers", len(records)).Msg("Store loaded")

			formatter := output.NewFormatter(output.DetectFormat(app.OutputFormat()))
			return formatter.Format(cmd.OutOrStdout(), output.NewRouters(records, showPasswords))
		},
	}

	cmd.Flags().StringVar(&storePath, "store", "", "router store file")
	cmd.Flags().StringVar(&storeFormat, "store-format", "", "store format: csv or legacy")
	cmd.Flags().BoolVar(&showPasswords, "show-passwords", false, "show passwords instead of masking them")

	return cmd
}
