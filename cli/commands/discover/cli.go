// Package discover provides the `monorel discover` command, which lists the publishable packages of the workspace.
package discover

import (
	"github.com/urfave/cli/v2"

	"github.com/monorel/monorel/cli/commands/common"
	"github.com/monorel/monorel/internal/output"
	"github.com/monorel/monorel/options"
	"github.com/monorel/monorel/pkg/log"
)

const CommandName = "discover"

func NewCommand(opts *options.Options) *cli.Command {
	return &cli.Command{
		Name:  CommandName,
		Usage: "List the publishable packages of the workspace as `discovered-packages`.",
		Action: func(ctx *cli.Context) error {
			return Run(ctx, opts)
		},
	}
}

// Run discovers the workspace packages and emits them.
func Run(ctx *cli.Context, opts *options.Options) error {
	l := log.LoggerFromContext(ctx.Context)
	sink := output.NewSink(opts.OutputFile, opts.Writer)

	_, err := common.Discover(ctx.Context, l, opts, sink)

	return err
}
