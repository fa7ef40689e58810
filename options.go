package routeconf

import (
	"github.com/agentstation/routeconf/pkg/errors"
)

// Option configures a run beyond its Config.
type Option func(*options) error

type options struct {
	runID string
	hooks *hooks
}

func newOptions(opts ...Option) (*options, error) {
	o := &options{hooks: newHooks()}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithRunID sets the run ID attached to logs. A random UUID is used otherwise.
func WithRunID(id string) Option {
	return func(o *options) error {
		o.runID = id
		return nil
	}
}

// OnReconciled registers a callback invoked after the store was reconciled.
func OnReconciled(fn ReconciledHook) Option {
	return func(o *options) error {
		if fn == nil {
			return &errors.ValidationError{Field: "hook", Message: "cannot be nil"}
		}
		o.hooks.onReconciled = append(o.hooks.onReconciled, fn)
		return nil
	}
}

// OnApplied registers a callback invoked after the program ran, whatever its result.
func OnApplied(fn AppliedHook) Option {
	return func(o *options) error {
		if fn == nil {
			return &errors.ValidationError{Field: "hook", Message: "cannot be nil"}
		}
		o.hooks.onApplied = append(o.hooks.onApplied, fn)
		return nil
	}
}

// OnFailed registers a callback invoked when the run fails.
func OnFailed(fn FailedHook) Option {
	return func(o *options) error {
		if fn == nil {
			return &errors.ValidationError{Field: "hook", Message: "cannot be nil"}
		}
		o.hooks.onFailed = append(o.hooks.onFailed, fn)
		return nil
	}
}
