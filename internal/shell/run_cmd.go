// Package shell runs external commands such as the package manager.
package shell

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"os/exec"
	"slices"
	"strings"
	"time"

	"github.com/monorel/monorel/internal/errors"
	"github.com/monorel/monorel/internal/telemetry"
	"github.com/monorel/monorel/pkg/log"
)

// SignalForwardingDelay is the time a command gets to exit after being interrupted before it is killed.
const SignalForwardingDelay = time.Second * 15

// RunOptions contains the configuration needed to run shell commands.
type RunOptions struct {
	Writer    io.Writer
	ErrWriter io.Writer
	// Env is added to the environment of the current process.
	Env        map[string]string
	WorkingDir string
}

// CmdOutput captures the output of a command.
type CmdOutput struct {
	Stdout bytes.Buffer
	Stderr bytes.Buffer
}

// RunCommand runs the given shell command.
func RunCommand(ctx context.Context, l log.Logger, runOpts *RunOptions, command string, args ...string) error {
	_, err := RunCommandWithOutput(ctx, l, runOpts, "", false, command, args...)

	return err
}

// RunCommandWithOutput runs the specified shell command with the specified arguments.
//
// The command output is copied to the writers of runOpts and captured in the returned output.
// The command runs in `workingDir`, or in runOpts.WorkingDir when workingDir is empty.
func RunCommandWithOutput(
	ctx context.Context,
	l log.Logger,
	runOpts *RunOptions,
	workingDir string,
	suppressStdout bool,
	command string,
	args ...string,
) (*CmdOutput, error) {
	var (
		output     = CmdOutput{}
		commandDir = workingDir
	)

	if workingDir == "" {
		commandDir = runOpts.WorkingDir
	}

	err := telemetry.TelemeterFromContext(ctx).Collect(ctx, "run_"+command, map[string]any{
		"command": command,
		"args":    fmt.Sprintf("%v", args),
		"dir":     commandDir,
	}, func(ctx context.Context) error {
		l.Debugf("Running command: %s %s", command, strings.Join(args, " "))

		var (
			cmdStderr = io.MultiWriter(writerOrDiscard(runOpts.ErrWriter), &output.Stderr)
			cmdStdout = io.MultiWriter(writerOrDiscard(runOpts.Writer), &output.Stdout)
		)

		if suppressStdout {
			l.Debugf("Command output will be suppressed.")

			cmdStdout = &output.Stdout
		}

		env := maps.Clone(runOpts.Env)
		if env == nil {
			env = map[string]string{}
		}

		// Pass the traceparent to the child process if it is available in the context.
		if traceParent := telemetry.TraceParentFromContext(ctx); traceParent != "" {
			env[telemetry.TraceParentEnv] = traceParent
		}

		cmd := exec.CommandContext(ctx, command, args...)
		cmd.Dir = commandDir
		cmd.Stdout = cmdStdout
		cmd.Stderr = cmdStderr
		cmd.Env = mergeEnv(os.Environ(), env)
		cmd.Cancel = func() error {
			return cmd.Process.Signal(os.Interrupt)
		}
		cmd.WaitDelay = SignalForwardingDelay

		if err := cmd.Start(); err != nil {
			return errors.New(ProcessExecutionError{
				Err:        err,
				Args:       args,
				Command:    command,
				WorkingDir: cmd.Dir,
			})
		}

		if err := cmd.Wait(); err != nil {
			return errors.New(ProcessExecutionError{
				Err:        err,
				Args:       args,
				Command:    command,
				Output:     &output,
				WorkingDir: cmd.Dir,
			})
		}

		return nil
	})

	return &output, err
}

func writerOrDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}

	return w
}

// mergeEnv overrides entries of environ, a list of `key=value` pairs, with env.
func mergeEnv(environ []string, env map[string]string) []string {
	merged := make([]string, 0, len(environ)+len(env))

	for _, kv := range environ {
		key, _, _ := strings.Cut(kv, "=")
		if _, ok := env[key]; !ok {
			merged = append(merged, kv)
		}
	}

	for _, key := range slices.Sorted(maps.Keys(env)) {
		merged = append(merged, key+"="+env[key])
	}

	return merged
}
