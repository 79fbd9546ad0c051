package relayconn

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// StalePolicy decides what a well-formed cursor resolves to when its record
// is not in the current view (deleted, or filtered out).
type StalePolicy int

const (
	// StaleReset moves the bound to the edge of the source: a stale after
	// becomes offset 0, a stale before becomes offset 0.
	StaleReset StalePolicy = iota
	// StaleEmpty yields an empty window.
	StaleEmpty
	// StaleError fails the resolution with ErrStaleCursor.
	StaleError
)

// ParseStalePolicy maps "reset", "empty" and "error" to a policy.
func ParseStalePolicy(s string) (StalePolicy, error) {
	switch s {
	case "", "reset":
		return StaleReset, nil
	case "empty":
		return StaleEmpty, nil
	case "error":
		return StaleError, nil
	default:
		return 0, fmt.Errorf("unknown stale cursor policy '%s'", s)
	}
}

type options struct {
	logger   logrus.FieldLogger
	policy   ArgsPolicy
	stale    StalePolicy
	maxLimit int
	err      error
}

func defaultOptions() options {
	return options{
		logger:   logrus.StandardLogger(),
		policy:   PolicyUnbounded,
		stale:    StaleReset,
		maxLimit: NoLimit,
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// Option configures offset computation and resolution.
type Option func(*options)

// WithLogger sets the logger. Nil keeps the standard logrus logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithArgsPolicy sets what happens when neither first nor last is supplied.
func WithArgsPolicy(policy ArgsPolicy) Option {
	return func(o *options) {
		o.policy = policy
	}
}

// WithStalePolicy sets how stale cursors are resolved.
func WithStalePolicy(policy StalePolicy) Option {
	return func(o *options) {
		o.stale = policy
	}
}

// WithMaxLimit clamps first and last to maxLimit. NoLimit disables clamping;
// any other value must be more than 0.
func WithMaxLimit(maxLimit int) Option {
	return func(o *options) {
		if err := ValidateMaxLimit(maxLimit); err != nil {
			o.err = err
			return
		}

		o.maxLimit = maxLimit
	}
}
