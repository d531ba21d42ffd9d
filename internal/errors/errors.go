// Package errors contains helper functions for wrapping errors with stack traces, stack output, and panic recovery.
package errors

import (
	"errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

// New creates a new error carrying a stack trace. `val` can be an error, in which case it is wrapped
// unless it already carries a stack trace, or any other value which becomes the error message.
func New(val any) error {
	if val == nil {
		return nil
	}

	if err, ok := val.(error); ok {
		if ContainsStackTrace(err) {
			return err
		}

		return goerrors.Wrap(err, 1)
	}

	return goerrors.Wrap(fmt.Errorf("%v", val), 1) //nolint:err113
}

// Errorf creates a new error and wraps in an Error type that contains the stack trace.
func Errorf(message string, args ...any) error {
	err := fmt.Errorf(message, args...) //nolint:err113
	return goerrors.Wrap(err, 1)
}

// ErrorWithExitCode is a custom error that is used to specify the app exit code.
type ErrorWithExitCode struct {
	Err      error
	ExitCode int
}

func (err ErrorWithExitCode) Error() string {
	return err.Err.Error()
}

func (err ErrorWithExitCode) Unwrap() error {
	return err.Err
}

// ExitCode returns the exit code carried by the error chain, 1 for any other error and 0 for nil.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr ErrorWithExitCode
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode
	}

	return 1
}

// WithStackTrace wraps the given error in an Error type that contains the stack trace. If the given error already has a stack trace,
// it is used directly. If the given error is nil, return nil.
func WithStackTrace(err error) error {
	if err == nil {
		return nil
	}

	if ContainsStackTrace(err) {
		return err
	}

	return goerrors.Wrap(err, 1)
}

// WithStackTraceAndPrefix wraps the given error in an Error type that contains the stack trace and has the given message prepended.
func WithStackTraceAndPrefix(err error, message string, args ...any) error {
	if err == nil {
		return nil
	}

	return goerrors.WrapPrefix(err, fmt.Sprintf(message, args...), 1)
}
