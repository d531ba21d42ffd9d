package run

import (
	"github.com/monorel/monorel/cli/commands/common"
	"github.com/monorel/monorel/options"
)

// Options are the settings of the run command.
type Options struct {
	*options.Options
	Event common.EventOptions

	// PackageManager overrides the detection from the workspace lockfiles.
	PackageManager string
	// BuildCommand replaces the build script of every package.
	BuildCommand string
	// ShowPackageSummary lists every package in the run summary.
	ShowPackageSummary bool
}

func NewOptions(opts *options.Options) *Options {
	return &Options{
		Options:            opts,
		ShowPackageSummary: true,
	}
}
