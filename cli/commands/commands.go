// Package commands assembles the monorel CLI commands.
package commands

import (
	"github.com/urfave/cli/v2"

	"github.com/monorel/monorel/cli/commands/changed"
	"github.com/monorel/monorel/cli/commands/discover"
	"github.com/monorel/monorel/cli/commands/order"
	"github.com/monorel/monorel/cli/commands/run"
	"github.com/monorel/monorel/cli/commands/schema"
	"github.com/monorel/monorel/cli/commands/version"
	"github.com/monorel/monorel/options"
)

// New returns the commands of the app. `run` is the default command.
func New(opts *options.Options) []*cli.Command {
	return []*cli.Command{
		run.NewCommand(opts),
		discover.NewCommand(opts),
		changed.NewCommand(opts),
		order.NewCommand(opts),
		schema.NewCommand(),
		version.NewCommand(),
	}
}
