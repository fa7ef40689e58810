package reconcile

import (
	"github.com/agentstation/routeconf/pkg/errors"
	"github.com/agentstation/routeconf/pkg/store"
)

// options configures a reconciler.
type options struct {
	format      store.Format
	dryRun      bool
	deduplicate bool
	lenient     bool
}

func defaultOptions() *options {
	return &options{
		format: store.FormatCSV,
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// newOptions returns reconciler options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithFormat selects the store format.
func WithFormat(format store.Format) Option {
	return func(o *options) error {
		if format == "" {
			format = store.FormatCSV
		}
		if !format.IsValid() {
			return &errors.ValidationError{
				Field:   "format",
				Value:   format,
				Message: "unknown store format",
			}
		}
		o.format = format
		return nil
	}
}

// WithDryRun computes the result without creating or writing the store.
func WithDryRun(enabled bool) Option {
	return func(o *options) error {
		o.dryRun = enabled
		return nil
	}
}

// WithDeduplicate appends only the first occurrence of an address that is
// repeated within one request. By default every occurrence of a new address
// is appended.
func WithDeduplicate(enabled bool) Option {
	return func(o *options) error {
		o.deduplicate = enabled
		return nil
	}
}

// WithLenient treats a store that fails to parse as having no records.
// A warning is logged instead of failing the run.
func WithLenient(enabled bool) Option {
	return func(o *options) error {
		o.lenient = enabled
		return nil
	}
}
