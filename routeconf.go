// Package routeconf keeps a router store in step with a declared list of
// routers and runs an external configuration program when the store changes.
//
// A run has two sequential stages. The reconciler appends every requested
// router whose address is not yet stored. If that changed the store, and the
// caller asked for it, the applier then runs the program as
//
//	program username password storePath
//
// The store is fully written, synced and closed before the program starts.
//
// Example:
//
//	cfg := routeconf.DefaultConfig()
//	cfg.ProgramPath = "/opt/route.py"
//	cfg.StorePath = "/etc/route/routers.csv"
//	cfg.GlobalUsername = "admin"
//	cfg.GlobalPassword = secret
//	cfg.Routers = []routers.Record{{Address: "10.0.0.1"}}
//
//	result, err := routeconf.Run(ctx, cfg)
package routeconf

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/agentstation/routeconf/pkg/apply"
	"github.com/agentstation/routeconf/pkg/errors"
	"github.com/agentstation/routeconf/pkg/logging"
	"github.com/agentstation/routeconf/pkg/reconcile"
	"github.com/agentstation/routeconf/pkg/routers"
	"github.com/agentstation/routeconf/pkg/store"
)

// Config holds the inputs of one run.
type Config struct {
	// ProgramPath is the external configuration program. Required.
	ProgramPath string `json:"program_path" yaml:"program_path"`

	// StorePath is the router store file. Required.
	StorePath string `json:"store_path" yaml:"store_path"`

	// GlobalUsername and GlobalPassword are passed to the program. Required.
	GlobalUsername string `json:"global_username" yaml:"global_username"`
	GlobalPassword string `json:"-" yaml:"-"`

	// RunProgram runs the program when the store changed. DefaultConfig sets it.
	RunProgram bool `json:"run_program" yaml:"run_program"`

	// Routers is the requested router list. Nil means no request was made
	// and the run does nothing; an empty slice is a request for no routers.
	Routers []routers.Record `json:"routers,omitempty" yaml:"routers,omitempty"`

	// Format is the store format, FormatCSV when empty.
	Format store.Format `json:"format,omitempty" yaml:"format,omitempty"`

	// DryRun reports what would be appended without touching the store or
	// running the program.
	DryRun bool `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`

	// Deduplicate appends a new address once even if the request repeats it.
	Deduplicate bool `json:"deduplicate,omitempty" yaml:"deduplicate,omitempty"`

	// Lenient treats an unparseable store as empty instead of failing.
	Lenient bool `json:"lenient,omitempty" yaml:"lenient,omitempty"`

	// Interpreter, when set, runs the program through it (e.g. "python3").
	Interpreter string `json:"interpreter,omitempty" yaml:"interpreter,omitempty"`

	// ProgramTimeout bounds the program run. Zero means no limit.
	ProgramTimeout time.Duration `json:"program_timeout,omitempty" yaml:"program_timeout,omitempty"`

	// ProgramEnv holds KEY=value pairs added to the program's environment.
	ProgramEnv []string `json:"program_env,omitempty" yaml:"program_env,omitempty"`
}

// DefaultConfig returns a Config with RunProgram enabled and the canonical store format.
func DefaultConfig() Config {
	return Config{
		RunProgram: true,
		Format:     store.FormatCSV,
	}
}

// Validate checks the required fields.
func (c Config) Validate() error {
	required := []struct {
		field, value string
	}{
		{"program_path", c.ProgramPath},
		{"store_path", c.StorePath},
		{"global_username", c.GlobalUsername},
		{"global_password", c.GlobalPassword},
	}
	for _, r := range required {
		if r.value == "" {
			return errors.NewValidationError(r.field, nil, "is required")
		}
	}
	if c.Format != "" && !c.Format.IsValid() {
		return errors.NewValidationError("format", c.Format, "must be one of: csv, legacy")
	}
	if c.ProgramTimeout < 0 {
		return errors.NewValidationError("program_timeout", c.ProgramTimeout, "must not be negative")
	}
	for _, kv := range c.ProgramEnv {
		if !apply.ValidEnv(kv) {
			return errors.NewValidationError("program_env", kv, "must be KEY=value")
		}
	}
	return nil
}

// Result is the outcome of a successful run.
type Result struct {
	// Changed is true when routers were appended to the store.
	Changed bool `json:"changed" yaml:"changed"`

	// Message summarizes the reconciliation.
	Message string `json:"msg" yaml:"msg"`

	// ProgramOutput is the program's standard output, empty when it did not run.
	ProgramOutput string `json:"program_output" yaml:"program_output"`

	// RunID identifies the run in logs.
	RunID string `json:"run_id" yaml:"run_id"`

	Reconcile *reconcile.Result `json:"reconcile,omitempty" yaml:"reconcile,omitempty"`
	Apply     *apply.Outcome    `json:"apply,omitempty" yaml:"apply,omitempty"`
}

// ProgramRan reports whether the program was executed.
func (r *Result) ProgramRan() bool {
	return r != nil && r.Apply != nil && r.Apply.Attempted
}

// Run reconciles cfg.Routers into the store and, when the store changed and
// cfg.RunProgram is set, runs the program. Any failure aborts the run and no
// Result is returned.
func Run(ctx context.Context, cfg Config, opts ...Option) (*Result, error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		o.hooks.triggerFailed(err)
		return nil, err
	}

	runID := o.runID
	if runID == "" {
		runID = uuid.NewString()
	}
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.FromContext(ctx)

	// Step 1: reconcile
	rec, err := reconcile.New(
		reconcile.WithFormat(cfg.Format),
		reconcile.WithDryRun(cfg.DryRun),
		reconcile.WithDeduplicate(cfg.Deduplicate),
		reconcile.WithLenient(cfg.Lenient),
	)
	if err != nil {
		o.hooks.triggerFailed(err)
		return nil, err
	}
	reconciled, err := rec.Reconcile(ctx, cfg.StorePath, cfg.Routers)
	if err != nil {
		o.hooks.triggerFailed(err)
		return nil, err
	}
	o.hooks.triggerReconciled(reconciled)

	result := &Result{
		Changed:   reconciled.Changed,
		Message:   reconciled.Message,
		RunID:     runID,
		Reconcile: reconciled,
	}

	// Step 2: apply, only after the store is closed
	if !reconciled.Changed || !cfg.RunProgram || cfg.DryRun {
		logger.Debug().
			Bool("changed", reconciled.Changed).
			Bool("run_program", cfg.RunProgram).
			Bool("dry_run", cfg.DryRun).
			Msg("Skipping program run")
		return result, nil
	}

	applier, err := apply.New(cfg.ProgramPath,
		apply.WithInterpreter(cfg.Interpreter),
		apply.WithTimeout(cfg.ProgramTimeout),
		apply.WithEnv(cfg.ProgramEnv...),
	)
	if err != nil {
		o.hooks.triggerFailed(err)
		return nil, err
	}
	outcome, err := applier.Apply(ctx, apply.Credentials{
		Username: cfg.GlobalUsername,
		Password: cfg.GlobalPassword,
	}, cfg.StorePath)
	o.hooks.triggerApplied(outcome, err)
	if err != nil {
		o.hooks.triggerFailed(err)
		return nil, err
	}

	result.Apply = outcome
	result.ProgramOutput = outcome.Stdout
	return result, nil
}
