package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/routeconf/cmd/routeconf/cmd/list"
	"github.com/agentstation/routeconf/cmd/routeconf/cmd/reconcile"
	"github.com/agentstation/routeconf/cmd/routeconf/cmd/version"
	"github.com/agentstation/routeconf/cmd/routeconf/cmd/watch"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(reconcile.NewCommand(a))
	rootCmd.AddCommand(list.NewCommand(a))
	rootCmd.AddCommand(watch.NewCommand(a))
	rootCmd.AddCommand(version.NewCommand(a))
}
