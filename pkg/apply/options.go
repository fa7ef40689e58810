package apply

import (
	"os/exec"
	"strings"
	"time"

	"github.com/agentstation/routeconf/pkg/errors"
)

type options struct {
	interpreter string
	timeout     time.Duration
	env         []string
}

func defaultOptions() *options {
	return &options{}
}

// Option configures an Applier.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithInterpreter runs the program through an interpreter, for example
// "python3". The interpreter is resolved on PATH when the Applier is created.
func WithInterpreter(name string) Option {
	return func(o *options) error {
		if name == "" {
			o.interpreter = ""
			return nil
		}
		path, err := exec.LookPath(name)
		if err != nil {
			return errors.NewNotFoundError(errors.ResourceInterpreter, name)
		}
		o.interpreter = path
		return nil
	}
}

// WithTimeout limits how long the program may run. Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return errors.NewValidationError("program_timeout", d, "must not be negative")
		}
		o.timeout = d
		return nil
	}
}

// WithEnv sets extra environment variables (KEY=value) for the program,
// added to the current process environment.
func WithEnv(env ...string) Option {
	return func(o *options) error {
		for _, kv := range env {
			if !ValidEnv(kv) {
				return errors.NewValidationError("program_env", kv, "must be KEY=value")
			}
		}
		o.env = append(o.env, env...)
		return nil
	}
}

// ValidEnv reports whether kv is a KEY=value pair with a non-empty key.
func ValidEnv(kv string) bool {
	key, _, ok := strings.Cut(kv, "=")
	return ok && key != ""
}
