package logging

import (
	"context"

	"github.com/rs/zerolog"
)

type contextKey struct{}

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext extracts the logger from context, or returns the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}
	if logger, ok := ctx.Value(contextKey{}).(*zerolog.Logger); ok && logger != nil {
		return logger
	}
	return Default()
}

func withField(ctx context.Context, key, value string) context.Context {
	logger := FromContext(ctx).With().Str(key, value).Logger()
	return WithLogger(ctx, &logger)
}

// WithRunID tags the context logger with the ID of one invocation.
func WithRunID(ctx context.Context, runID string) context.Context {
	return withField(ctx, "run_id", runID)
}

// WithStore adds the store path to the logger.
func WithStore(ctx context.Context, path string) context.Context {
	return withField(ctx, "store", path)
}

// WithRouter adds a router address to the logger.
func WithRouter(ctx context.Context, address string) context.Context {
	return withField(ctx, "router", address)
}

// WithProgram adds the external program path to the logger.
func WithProgram(ctx context.Context, path string) context.Context {
	return withField(ctx, "program", path)
}

// WithOperation adds operation context to the logger.
func WithOperation(ctx context.Context, operation string) context.Context {
	return withField(ctx, "operation", operation)
}
