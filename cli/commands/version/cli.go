// Package version represents the version CLI command that works the same as the `--version` flag.
package version

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

const CommandName = "version"

// Version is set at build time with `-ldflags "-X github.com/monorel/monorel/cli/commands/version.Version=v1.2.3"`.
var Version = "v0.0.0-dev"

func NewCommand() *cli.Command {
	return &cli.Command{
		Name:  CommandName,
		Usage: "Show monorel version.",
		Action: func(ctx *cli.Context) error {
			_, err := fmt.Fprintf(ctx.App.Writer, "%s version %s\n", ctx.App.Name, Version)
			return err
		},
	}
}
