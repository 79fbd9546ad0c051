package relayconn

import "fmt"

const (
	// NoLimit disables clamping of first/last.
	NoLimit      = -1
	MaxLimit     = 100
	DefaultLimit = 10
)

// ArgsPolicy decides what happens when neither first nor last is supplied.
type ArgsPolicy int

const (
	// PolicyUnbounded returns the whole eligible window.
	PolicyUnbounded ArgsPolicy = iota
	// PolicyRequireBound rejects the request with an InvalidArgumentError.
	PolicyRequireBound
	// PolicyDefaultFirst behaves as if first = DefaultLimit was supplied.
	PolicyDefaultFirst
)

// ParseArgsPolicy maps "unbounded", "require" and "default-first" to a policy.
func ParseArgsPolicy(s string) (ArgsPolicy, error) {
	switch s {
	case "", "unbounded":
		return PolicyUnbounded, nil
	case "require":
		return PolicyRequireBound, nil
	case "default-first":
		return PolicyDefaultFirst, nil
	default:
		return 0, fmt.Errorf("unknown args policy '%s'", s)
	}
}

// IsClampedLimit bounds a positive amount by maxLimit and reports whether the
// amount was kept as is. NoLimit as maxLimit keeps every amount.
func IsClampedLimit(amount int, maxLimit int) (int, bool) {
	if maxLimit == NoLimit || amount <= maxLimit {
		return amount, true
	}

	return maxLimit, false
}

func ClampLimit(amount int, maxLimit int) int {
	ret, _ := IsClampedLimit(amount, maxLimit)
	return ret
}

// ValidateMaxLimit accepts NoLimit and any positive maximum.
func ValidateMaxLimit(maxLimit int) error {
	if maxLimit != NoLimit && maxLimit <= 0 {
		return &InvalidArgumentError{Arg: "maxLimit", Reason: fmt.Sprintf("max limit must be more than 0 or NoLimit, got %d", maxLimit)}
	}

	return nil
}
