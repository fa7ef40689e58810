// Package app provides the application context and dependency management
// for the routeconf CLI. It centralizes configuration, logging and lifecycle
// so that commands only depend on the application.Application interface.
package app

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/routeconf"
	"github.com/agentstation/routeconf/cmd/application"
	"github.com/agentstation/routeconf/pkg/logging"
)

// App represents the routeconf application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger
}

// Ensure App implements application.Application at compile time.
var _ application.Application = (*App)(nil)

// New creates a new App instance with the given version information.
// Configuration is loaded from the environment and the default config file
// locations; a --config flag reloads it before any command runs.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, err
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// RunConfig returns the run configuration from config file and environment.
func (a *App) RunConfig() routeconf.Config {
	return a.config.RunConfig()
}

// MetricsFile returns the configured Prometheus textfile path.
func (a *App) MetricsFile() string {
	return a.config.MetricsFile
}

// Shutdown performs graceful shutdown of the application.
// Nothing outlives a command today; the hook is kept for main's error path.
func (a *App) Shutdown(_ context.Context) error {
	a.logger.Debug().Msg("Shutting down")
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		if logger == nil {
			logger = logging.NewNopLogger()
		}
		a.logger = logger
		return nil
	}
}
