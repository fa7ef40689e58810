// Package main provides the entry point for the routeconf CLI tool.
package main

import (
	"context"
	"os"

	"github.com/agentstation/routeconf/cmd/routeconf/app"
	"github.com/agentstation/routeconf/pkg/constants"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	application, err := app.New(version, commit, date, builtBy)
	if err != nil {
		app.ExitOnError(err)
	}

	// SIGINT and SIGTERM cancel the run and terminate a running program.
	ctx, cancel := app.ContextWithSignals(context.Background())

	err = application.Execute(ctx, os.Args[1:])
	cancel()
	if err != nil {
		// The signal context may already be canceled, so shutdown gets its own.
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		if shutdownErr := application.Shutdown(shutdownCtx); shutdownErr != nil {
			application.Logger().Error().Err(shutdownErr).Msg("Shutdown error during error handling")
		}
		shutdownCancel()
		app.ExitOnError(err)
	}
}
