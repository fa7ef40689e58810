// Package exitcode maps command errors to process exit codes.
package exitcode

import "github.com/agentstation/routeconf/pkg/errors"

// Exit codes returned by the routeconf binary.
const (
	// OK indicates success.
	OK = 0
	// General indicates an unclassified failure.
	General = 1
	// Validation indicates invalid configuration, flags or routers.
	Validation = 2
	// Store indicates the store could not be read, parsed or written.
	Store = 3
	// ProgramNotFound indicates the program path does not resolve to a file.
	ProgramNotFound = 4
	// ProgramFailed indicates the program exited non-zero or timed out.
	ProgramFailed = 5
)

// For returns the exit code for err.
func For(err error) int {
	switch {
	case err == nil:
		return OK
	case errors.IsProgramNotFound(err):
		return ProgramNotFound
	case errors.IsProgramFailed(err):
		return ProgramFailed
	case errors.IsIO(err), errors.IsParse(err):
		return Store
	case errors.IsValidationError(err):
		return Validation
	default:
		return General
	}
}
