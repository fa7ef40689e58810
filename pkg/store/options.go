package store

import "github.com/agentstation/routeconf/pkg/errors"

type options struct {
	format  Format
	lenient bool
}

func defaultOptions() *options {
	return &options{format: FormatCSV}
}

// Option configures how a store is opened.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithFormat selects the store format.
func WithFormat(f Format) Option {
	return func(o *options) error {
		if f == "" {
			f = FormatCSV
		}
		if !f.IsValid() {
			return errors.NewValidationError("format", f, "unknown store format")
		}
		o.format = f
		return nil
	}
}

// WithLenient makes a store that fails to parse open as empty instead of
// failing. The parse error is kept and reported by Store.ParseFailure.
func WithLenient(enabled bool) Option {
	return func(o *options) error {
		o.lenient = enabled
		return nil
	}
}
