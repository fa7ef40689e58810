// Package apply runs the external configuration program after the router
// store has changed.
//
// The program is invoked as
//
//	program username password storePath
//
// optionally behind an interpreter. Exit status 0 is success; anything else is
// reported as an errors.ProcessError carrying the exit code.
package apply

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/routeconf/pkg/constants"
	"github.com/agentstation/routeconf/pkg/errors"
	"github.com/agentstation/routeconf/pkg/logging"
)

// Credentials are the global credentials passed to the program.
type Credentials struct {
	Username string
	Password string
}

// Outcome describes one program run.
type Outcome struct {
	Attempted bool          `json:"attempted" yaml:"attempted"`
	Succeeded bool          `json:"succeeded" yaml:"succeeded"`
	Stdout    string        `json:"stdout" yaml:"stdout"`
	Stderr    string        `json:"stderr,omitempty" yaml:"stderr,omitempty"`
	ExitCode  int           `json:"exit_code" yaml:"exit_code"`
	Command   string        `json:"command" yaml:"command"`
	StartedAt utc.Time      `json:"started_at" yaml:"started_at"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}

// Applier runs the external program.
type Applier struct {
	program     string
	interpreter string
	timeout     time.Duration
	env         []string
}

// New creates an Applier for the program at programPath. The path is checked
// when Apply runs, not here, so a missing program only matters when a run is
// actually needed.
func New(programPath string, opts ...Option) (*Applier, error) {
	if programPath == "" {
		return nil, errors.NewValidationError("program_path", programPath, "program path is required")
	}
	o, err := defaultOptions().apply(opts...)
	if err != nil {
		return nil, err
	}
	return &Applier{
		program:     programPath,
		interpreter: o.interpreter,
		timeout:     o.timeout,
		env:         o.env,
	}, nil
}

// Program returns the configured program path.
func (a *Applier) Program() string { return a.program }

// Apply runs the program once with creds and storePath. On a nonzero exit the
// returned Outcome is populated alongside the error.
func (a *Applier) Apply(ctx context.Context, creds Credentials, storePath string) (*Outcome, error) {
	ctx = logging.WithProgram(logging.WithOperation(ctx, "apply"), a.program)
	logger := logging.FromContext(ctx)

	if err := a.checkProgram(); err != nil {
		logger.Error().Msg("Program not found")
		return nil, err
	}

	name, args := a.command(creds, storePath)
	outcome := &Outcome{
		Attempted: true,
		Command:   a.display(creds, storePath),
		StartedAt: utc.Now(),
	}

	runCtx := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, name, args...) //nolint:gosec // program path is operator supplied
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = constants.ShutdownTimeout
	if len(a.env) > 0 {
		cmd.Env = append(os.Environ(), a.env...)
	}

	logger.Info().Str("command", outcome.Command).Msg("Running program")
	start := time.Now()
	err := cmd.Run()
	outcome.Duration = time.Since(start)
	outcome.Stdout = stdout.String()
	outcome.Stderr = stderr.String()

	if err == nil {
		outcome.Succeeded = true
		logger.Info().Dur("duration", outcome.Duration).Msg("Program succeeded")
		return outcome, nil
	}

	outcome.ExitCode = -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		outcome.ExitCode = exitErr.ExitCode()
	} else if errors.Is(err, fs.ErrPermission) || errors.Is(err, fs.ErrNotExist) || errors.Is(err, exec.ErrNotFound) {
		// The program could not be started at all.
		logger.Error().Err(err).Msg("Program not executable")
		return nil, errors.NewNotFoundError(errors.ResourceProgram, a.program)
	}

	if a.timeout > 0 && runCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
		logger.Error().Dur("timeout", a.timeout).Msg("Program timed out")
		return outcome, errors.NewTimeoutError("apply", a.timeout.String(), "program was terminated")
	}
	if ctx.Err() != nil {
		err = ctx.Err()
	}

	logger.Error().Int("exit_code", outcome.ExitCode).Msg("Program failed")
	return outcome, &errors.ProcessError{
		Operation: "apply",
		Command:   outcome.Command,
		Output:    strings.TrimSpace(outcome.Stdout),
		Stderr:    strings.TrimSpace(outcome.Stderr),
		ExitCode:  outcome.ExitCode,
		Err:       err,
	}
}

// checkProgram requires a regular file, and an executable one unless it is
// run through an interpreter.
func (a *Applier) checkProgram() error {
	info, err := os.Stat(a.program)
	if err != nil || !info.Mode().IsRegular() {
		return errors.NewNotFoundError(errors.ResourceProgram, a.program)
	}
	if a.interpreter == "" && runtime.GOOS != "windows" && info.Mode().Perm()&0o111 == 0 {
		return errors.NewNotFoundError(errors.ResourceProgram, a.program)
	}
	return nil
}

func (a *Applier) command(creds Credentials, storePath string) (string, []string) {
	args := []string{creds.Username, creds.Password, storePath}
	if a.interpreter != "" {
		return a.interpreter, append([]string{a.program}, args...)
	}
	return a.program, args
}

// display renders the command line with the password masked.
func (a *Applier) display(creds Credentials, storePath string) string {
	masked := creds
	if masked.Password != "" {
		masked.Password = constants.MaskedSecret
	}
	name, args := a.command(masked, storePath)
	return strings.Join(append([]string{name}, args...), " ")
}
