package main

import (
	"context"
	"os"

	"github.com/monorel/monorel/cli"
	"github.com/monorel/monorel/internal/errors"
	"github.com/monorel/monorel/options"
	"github.com/monorel/monorel/pkg/log"
)

// The main entrypoint for monorel
func main() {
	opts := options.NewOptions()
	l := log.New(log.WithOutput(opts.ErrWriter))

	defer errors.Recover(checkForErrorsAndExit(l))

	app := cli.NewApp(l, opts)
	err := app.RunContext(context.Background(), os.Args)

	checkForErrorsAndExit(l)(err)
}

// If there is an error, display it in the console and exit with a non-zero exit code. Otherwise, exit 0.
func checkForErrorsAndExit(l log.Logger) func(error) {
	return func(err error) {
		if err == nil {
			os.Exit(0)
		}

		l.Error(err.Error())

		if errStack := errors.ErrorStack(err); errStack != "" {
			l.Trace(errStack)
		}

		os.Exit(errors.ExitCode(err))
	}
}
