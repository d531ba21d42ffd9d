// Package cli configures the monorel CLI app and its commands.
package cli

import (
	"context"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/monorel/monorel/cli/commands"
	"github.com/monorel/monorel/cli/commands/run"
	"github.com/monorel/monorel/cli/commands/version"
	"github.com/monorel/monorel/cli/flags/global"
	"github.com/monorel/monorel/internal/errors"
	"github.com/monorel/monorel/internal/telemetry"
	"github.com/monorel/monorel/internal/util"
	"github.com/monorel/monorel/options"
	"github.com/monorel/monorel/pkg/env"
	"github.com/monorel/monorel/pkg/log"
)

const AppName = "monorel"

// NewApp creates the monorel CLI app. l is configured from the log flags before any command runs.
func NewApp(l log.Logger, opts *options.Options) *cli.App {
	app := cli.NewApp()
	app.Name = AppName
	app.Usage = "Build, version and publish the changed packages of a JavaScript monorepo from CI."
	app.UsageText = "monorel [global options] <command> [options]"
	app.Version = version.Version
	app.Writer = opts.Writer
	app.ErrWriter = opts.ErrWriter
	app.Flags = global.NewFlags(opts)
	app.Commands = commands.New(opts)
	app.DefaultCommand = run.CommandName
	app.Before = beforeRunningCommand(l, opts)
	app.After = afterRunningCommand
	app.ExitErrHandler = func(*cli.Context, error) {}

	return app
}

func beforeRunningCommand(l log.Logger, opts *options.Options) cli.BeforeFunc {
	return func(cliCtx *cli.Context) error {
		if err := initialSetup(l, opts); err != nil {
			return err
		}

		runLogger := l.WithField(log.FieldKeyRunID, opts.RunID)

		tlm, err := telemetry.NewTelemeter(cliCtx.Context, AppName, version.Version, opts.ErrWriter, opts.Telemetry)
		if err != nil {
			return err
		}

		ctx := cliCtx.Context
		ctx = log.ContextWithLogger(ctx, runLogger)
		ctx = options.ContextWithOptions(ctx, opts)
		ctx = telemetry.ContextWithTelemeter(ctx, tlm)
		cliCtx.Context = ctx

		runLogger.Debugf("%s %s, workspace %s", AppName, version.Version, opts.WorkingDir)

		return nil
	}
}

func afterRunningCommand(cliCtx *cli.Context) error {
	return telemetry.TelemeterFromContext(cliCtx.Context).Shutdown(context.WithoutCancel(cliCtx.Context))
}

func initialSetup(l log.Logger, opts *options.Options) error {
	formatter, err := log.NewFormatter(opts.LogFormat, opts.ErrWriter)
	if err != nil {
		return err
	}

	l.SetOptions(
		log.WithLevel(opts.LogLevel),
		log.WithOutput(opts.ErrWriter),
		log.WithFormatter(formatter),
	)

	if len(opts.Env) == 0 {
		opts.Env = env.Parse(os.Environ())
	}

	currentDir, err := os.Getwd()
	if err != nil {
		return errors.New(err)
	}

	if opts.WorkingDir == "" {
		opts.WorkingDir = currentDir
	}

	if opts.WorkingDir, err = util.ExpandPath(opts.WorkingDir, currentDir); err != nil {
		return err
	}

	if opts.OutputFile != "" {
		if opts.OutputFile, err = util.ExpandPath(opts.OutputFile, currentDir); err != nil {
			return err
		}
	}

	return nil
}
