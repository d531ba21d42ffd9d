// Package order provides the `monorel order` command, which prints the changed packages in build order.
package order

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/monorel/monorel/cli/commands/changed"
	"github.com/monorel/monorel/cli/commands/common"
	"github.com/monorel/monorel/internal/output"
	"github.com/monorel/monorel/options"
	"github.com/monorel/monorel/pkg/log"
)

const CommandName = "order"

func NewCommand(opts *options.Options) *cli.Command {
	evOpts := new(common.EventOptions)

	return &cli.Command{
		Name:  CommandName,
		Usage: "Print the changed packages so that dependencies come before their dependents.",
		Flags: changed.NewFlags(opts, evOpts),
		Action: func(ctx *cli.Context) error {
			return Run(ctx, opts, evOpts)
		},
	}
}

// Run prints one package name per line in build order. Outputs go to the output file only, so the
// printed list stays machine readable.
func Run(ctx *cli.Context, opts *options.Options, evOpts *common.EventOptions) error {
	l := log.LoggerFromContext(ctx.Context)

	var sink output.Sink = output.NewMemorySink()
	if opts.OutputFile != "" {
		sink = output.NewGitHubOutputSink(opts.OutputFile)
	}

	event, err := common.Event(opts, evOpts)
	if err != nil {
		return err
	}

	pkgs, err := common.Discover(ctx.Context, l, opts, sink)
	if err != nil {
		return err
	}

	changedPkgs, err := common.DetectChanges(ctx.Context, l, opts, event, pkgs, sink)
	if err != nil {
		return err
	}

	ordered, err := common.Order(ctx.Context, l, opts, changedPkgs)
	if err != nil {
		return err
	}

	for _, pkg := range ordered {
		if _, err := fmt.Fprintln(opts.Writer, pkg.Name); err != nil {
			return err
		}
	}

	return nil
}
