package pipeline

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is returned when the caller passes input or options
// that can never produce a result
var ErrInvalidArgument = errors.New("invalid argument")

// ArgumentError names the offending argument
type ArgumentError struct {
	Argument string
	Reason   string
	// Err is the underlying validation error, if any
	Err error
}

func (e *ArgumentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s: %s: %v", e.Argument, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid %s: %s", e.Argument, e.Reason)
}

func (e *ArgumentError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidArgument, e.Err}
	}
	return []error{ErrInvalidArgument}
}

// NewArgumentError creates a new ArgumentError
func NewArgumentError(argument, reason string, err error) *ArgumentError {
	return &ArgumentError{Argument: argument, Reason: reason, Err: err}
}
