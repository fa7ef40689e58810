// Package application provides the application interface for routeconf commands.
//
// The Application interface is the contract between the application layer and
// command implementations, so commands can be tested with a Mock instead of
// a fully configured App.
//
// Usage in Commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            cfg := app.RunConfig()
//	            // ... apply flags, run
//	            return nil
//	        },
//	    }
//	}
package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/routeconf"
)

// Application provides the application interface that commands need.
// The App struct from cmd/routeconf/app implements it.
type Application interface {
	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml, wide).
	OutputFormat() string

	// RunConfig returns the run configuration built from the config file,
	// .env files and environment. Commands layer their flags on top.
	RunConfig() routeconf.Config

	// MetricsFile returns the path for the Prometheus textfile, or "".
	MetricsFile() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
