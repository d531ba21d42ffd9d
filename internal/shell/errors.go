package shell

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/monorel/monorel/internal/errors"
)

// ProcessExecutionError is returned when a command cannot be started or exits with a failure.
type ProcessExecutionError struct {
	Err        error
	Output     *CmdOutput
	WorkingDir string
	Command    string
	Args       []string
}

func (err ProcessExecutionError) Error() string {
	msg := fmt.Sprintf("Failed to execute %q in %s", strings.TrimSpace(err.Command+" "+strings.Join(err.Args, " ")), err.WorkingDir)

	if err.Output != nil {
		if stderr := strings.TrimSpace(err.Output.Stderr.String()); stderr != "" {
			msg += "\n" + stderr
		}
	}

	return msg + "\n" + err.Err.Error()
}

func (err ProcessExecutionError) Unwrap() error {
	return err.Err
}

// ExitStatus returns the exit code of the command, or -1 when it did not exit normally.
func (err ProcessExecutionError) ExitStatus() int {
	var exitErr *exec.ExitError
	if errors.As(err.Err, &exitErr) {
		return exitErr.ExitCode()
	}

	return -1
}
