package relayconn

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is matched by every *InvalidArgumentError.
	ErrInvalidArgument = errors.New("invalid connection argument")
	// ErrDecode is matched by every *DecodeError.
	ErrDecode = errors.New("malformed cursor")
	// ErrStaleCursor is returned under StaleError when a well-formed cursor
	// points at a record missing from the current view.
	ErrStaleCursor = errors.New("stale cursor")
)

// InvalidArgumentError reports a rejected first/last argument.
type InvalidArgumentError struct {
	Arg    string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	if e.Arg == "" {
		return e.Reason
	}

	return fmt.Sprintf("invalid argument '%s': %s", e.Arg, e.Reason)
}

func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// DecodeError reports a cursor or global id that cannot be decoded.
type DecodeError struct {
	Cursor string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode cursor '%s': %s", e.Cursor, e.Reason)
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}
