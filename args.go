package relayconn

import (
	"fmt"
	"math"
	"strconv"

	"github.com/samber/lo"
)

// Args holds the Relay connection arguments of one request. The zero value
// and nil both mean "no arguments".
type Args struct {
	first  *int
	last   *int
	after  string
	before string
}

func NewArgs() *Args {
	return new(Args)
}

// ParseArgs reads connection arguments from a GraphQL argument map. Numbers
// may arrive as int, int64, float64 or numeric strings.
func ParseArgs(args map[string]any) (*Args, error) {
	ret := new(Args)

	for _, name := range []string{"first", "last"} {
		raw, ok := args[name]
		if !ok || raw == nil {
			continue
		}

		n, err := parseAmount(raw)
		if err != nil {
			return nil, &InvalidArgumentError{Arg: name, Reason: err.Error()}
		}

		if name == "first" {
			ret.first = &n
		} else {
			ret.last = &n
		}
	}

	for _, name := range []string{"after", "before"} {
		raw, ok := args[name]
		if !ok || raw == nil {
			continue
		}

		s, ok := raw.(string)
		if !ok {
			return nil, &InvalidArgumentError{Arg: name, Reason: fmt.Sprintf("cannot cast %v to a string", raw)}
		}

		if name == "after" {
			ret.after = s
		} else {
			ret.before = s
		}
	}

	return ret, nil
}

func parseAmount(raw any) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%v is not an integer", v)
		}
		return int(v), nil
	case string:
		return strconv.Atoi(v)
	default:
		return 0, fmt.Errorf("unsupported amount type %T", raw)
	}
}

// WithFirst sets first.
func (a *Args) WithFirst(first int) *Args {
	if a == nil {
		a = new(Args)
	}

	a.first = &first

	return a
}

// WithLast sets last.
func (a *Args) WithLast(last int) *Args {
	if a == nil {
		a = new(Args)
	}

	a.last = &last

	return a
}

// WithAfter sets the after cursor. An empty cursor means "absent".
func (a *Args) WithAfter(cursor string) *Args {
	if a == nil {
		a = new(Args)
	}

	a.after = cursor

	return a
}

// WithBefore sets the before cursor. An empty cursor means "absent".
func (a *Args) WithBefore(cursor string) *Args {
	if a == nil {
		a = new(Args)
	}

	a.before = cursor

	return a
}

func (a *Args) First() (int, bool) {
	if a == nil || a.first == nil {
		return 0, false
	}

	return *a.first, true
}

func (a *Args) Last() (int, bool) {
	if a == nil || a.last == nil {
		return 0, false
	}

	return *a.last, true
}

func (a *Args) After() string {
	if a == nil {
		return ""
	}

	return a.after
}

func (a *Args) Before() string {
	if a == nil {
		return ""
	}

	return a.before
}

// normalized returns a copy of the arguments with the policy and the maximum
// limit applied. The receiver is not modified.
func (a *Args) normalized(policy ArgsPolicy, maxLimit int) (*Args, error) {
	ret := lo.FromPtr(a)

	if err := AssertConnectionArgs(ret.first, ret.last); err != nil {
		return nil, err
	}

	if ret.first == nil && ret.last == nil {
		switch policy {
		case PolicyRequireBound:
			return nil, &InvalidArgumentError{Reason: "first or last must be supplied"}
		case PolicyDefaultFirst:
			ret.first = lo.ToPtr(DefaultLimit)
		}
	}

	if ret.first != nil {
		ret.first = lo.ToPtr(ClampLimit(*ret.first, maxLimit))
	}
	if ret.last != nil {
		ret.last = lo.ToPtr(ClampLimit(*ret.last, maxLimit))
	}

	return &ret, nil
}

// AssertConnectionArgs rejects a first or last that is supplied and not
// positive.
func AssertConnectionArgs(first, last *int) error {
	if first != nil && *first <= 0 {
		return &InvalidArgumentError{Arg: "first", Reason: "first and last must be more than 0"}
	}

	if last != nil && *last <= 0 {
		return &InvalidArgumentError{Arg: "last", Reason: "first and last must be more than 0"}
	}

	return nil
}
