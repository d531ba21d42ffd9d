// Package changed provides the `monorel changed` command, which lists the packages touched by the triggering event.
package changed

import (
	"github.com/urfave/cli/v2"

	"github.com/monorel/monorel/cli/commands/common"
	"github.com/monorel/monorel/cli/flags"
	"github.com/monorel/monorel/internal/output"
	"github.com/monorel/monorel/options"
	"github.com/monorel/monorel/pkg/log"
)

const (
	CommandName = "changed"

	AllFlagName = "all"
)

func NewFlags(opts *options.Options, evOpts *common.EventOptions) []cli.Flag {
	prefix := flags.Prefix{flags.MonorelPrefix}

	return append([]cli.Flag{
		&cli.BoolFlag{
			Name:        AllFlagName,
			EnvVars:     prefix.EnvVars(AllFlagName),
			Destination: &opts.All,
			Usage:       "Consider every package changed without consulting git.",
		},
	}, common.NewEventFlags(evOpts)...)
}

func NewCommand(opts *options.Options) *cli.Command {
	evOpts := new(common.EventOptions)

	return &cli.Command{
		Name:  CommandName,
		Usage: "List the packages changed by the triggering event as `changed-packages`.",
		Flags: NewFlags(opts, evOpts),
		Action: func(ctx *cli.Context) error {
			return Run(ctx, opts, evOpts)
		},
	}
}

// Run discovers the workspace packages and emits those changed by the event.
func Run(ctx *cli.Context, opts *options.Options, evOpts *common.EventOptions) error {
	l := log.LoggerFromContext(ctx.Context)
	sink := output.NewSink(opts.OutputFile, opts.Writer)

	event, err := common.Event(opts, evOpts)
	if err != nil {
		return err
	}

	pkgs, err := common.Discover(ctx.Context, l, opts, sink)
	if err != nil {
		return err
	}

	_, err = common.DetectChanges(ctx.Context, l, opts, event, pkgs, sink)

	return err
}
