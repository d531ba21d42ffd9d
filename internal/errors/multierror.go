package errors

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// MultiError collects several errors, for example one per restored file or per failed package.
// The zero value is empty and ready to use.
type MultiError struct {
	inner *multierror.Error
}

// Error renders every wrapped error as an indented bullet.
func (errs *MultiError) Error() string {
	wrapped := UnwrapMultiErrors(errs)

	lines := make([]string, 0, len(wrapped))
	for _, err := range wrapped {
		lines = append(lines, addIndent(err.Error()))
	}

	header := "error occurred"
	if len(wrapped) != 1 {
		header = fmt.Sprintf("%d errors occurred", len(wrapped))
	}

	return header + ":\n\n" + strings.Join(lines, "\n\n") + "\n"
}

// WrappedErrors returns the error slice that this Error is wrapping.
func (errs *MultiError) WrappedErrors() []error {
	if errs == nil || errs.inner == nil {
		return nil
	}

	return errs.inner.WrappedErrors()
}

func (errs *MultiError) Unwrap() []error {
	return errs.WrappedErrors()
}

// Len returns the number of collected errors.
func (errs *MultiError) Len() int {
	return len(errs.WrappedErrors())
}

// ErrorOrNil returns errs when it holds at least one error, nil otherwise.
func (errs *MultiError) ErrorOrNil() error {
	if errs.Len() == 0 {
		return nil
	}

	return errs
}

// Append returns a MultiError holding the errors of errs followed by appendErrs. Nil errors are skipped.
func (errs *MultiError) Append(appendErrs ...error) *MultiError {
	var inner *multierror.Error
	if errs != nil {
		inner = errs.inner
	}

	return &MultiError{inner: multierror.Append(inner, appendErrs...)}
}

func addIndent(str string) string {
	str = strings.ReplaceAll(str, "\r\n", "\n")

	lines := strings.Split(str, "\n")
	for i, line := range lines {
		if i == 0 {
			lines[i] = "* " + line
		} else {
			lines[i] = "  " + line
		}
	}

	return strings.Join(lines, "\n")
}
