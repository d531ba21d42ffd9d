package git

import (
	"fmt"

	"github.com/monorel/monorel/internal/errors"
)

// WrappedError provides additional context for errors
type WrappedError struct {
	Err     error  // Original error
	Op      string // Operation that failed
	Context string // Additional context, usually git's stderr
}

func (e *WrappedError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Context, e.Err)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *WrappedError) Unwrap() error {
	return e.Err
}

// Git operation errors
var (
	ErrCommandSpawn = errors.New("failed to spawn git command")
	ErrGitNotFound  = errors.New("git executable not found")
	ErrNoWorkDir    = errors.New("working directory not set")
	ErrUnknownRef   = errors.New("reference cannot be resolved")
	ErrFetch        = errors.New("failed to fetch from remote")
)
