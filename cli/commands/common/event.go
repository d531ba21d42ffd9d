// Package common holds the steps and flags shared by the commands that inspect a workspace.
package common

import (
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/monorel/monorel/cli/flags"
	"github.com/monorel/monorel/internal/flow"
	"github.com/monorel/monorel/options"
)

const (
	EventNameFlagName  = "event-name"
	RefNameFlagName    = "ref-name"
	BaseRefFlagName    = "base-ref"
	HeadRefFlagName    = "head-ref"
	SHAFlagName        = "sha"
	ReleaseTagFlagName = "release-tag"
	PrereleaseFlagName = "prerelease"
	RunNumberFlagName  = "run-number"
)

// EventOptions override the event read from the GitHub Actions environment.
type EventOptions struct {
	EventName  string
	RefName    string
	BaseRef    string
	HeadRef    string
	SHA        string
	ReleaseTag string
	RunNumber  int
	Prerelease bool
}

// NewEventFlags returns the flags describing the triggering event. Each falls back to the
// environment variable GitHub Actions sets for it.
func NewEventFlags(evOpts *EventOptions) []cli.Flag {
	prefix := flags.Prefix{flags.MonorelPrefix}

	return []cli.Flag{
		&cli.StringFlag{
			Name:        EventNameFlagName,
			EnvVars:     prefix.EnvVars(EventNameFlagName),
			Destination: &evOpts.EventName,
			Usage:       "The triggering event: release, pull_request, push or any other name. Defaults to $" + flow.EnvEventName + ".",
		},
		&cli.StringFlag{
			Name:        RefNameFlagName,
			EnvVars:     prefix.EnvVars(RefNameFlagName),
			Destination: &evOpts.RefName,
			Usage:       "The pushed branch. Defaults to $" + flow.EnvRefName + ".",
		},
		&cli.StringFlag{
			Name:        BaseRefFlagName,
			EnvVars:     prefix.EnvVars(BaseRefFlagName),
			Destination: &evOpts.BaseRef,
			Usage:       "The target branch of a pull request. Defaults to $" + flow.EnvBaseRef + ".",
		},
		&cli.StringFlag{
			Name:        HeadRefFlagName,
			EnvVars:     prefix.EnvVars(HeadRefFlagName),
			Destination: &evOpts.HeadRef,
			Usage:       "The source branch of a pull request. Defaults to $" + flow.EnvHeadRef + ".",
		},
		&cli.StringFlag{
			Name:        SHAFlagName,
			EnvVars:     prefix.EnvVars(SHAFlagName),
			Destination: &evOpts.SHA,
			Usage:       "The commit being built. Defaults to the pull request head or $" + flow.EnvSHA + ".",
		},
		&cli.StringFlag{
			Name:        ReleaseTagFlagName,
			EnvVars:     prefix.EnvVars(ReleaseTagFlagName),
			Destination: &evOpts.ReleaseTag,
			Usage:       "The tag of a release event. Defaults to the tag of the event payload.",
		},
		&cli.BoolFlag{
			Name:        PrereleaseFlagName,
			EnvVars:     prefix.EnvVars(PrereleaseFlagName),
			Destination: &evOpts.Prerelease,
			Usage:       "Marks the release as a prerelease.",
		},
		&cli.IntFlag{
			Name:        RunNumberFlagName,
			EnvVars:     prefix.EnvVars(RunNumberFlagName),
			Destination: &evOpts.RunNumber,
			Usage:       "Unique build number of staging versions. Defaults to $" + flow.EnvRunNumber + ".",
		},
	}
}

// Event builds the event context from the environment of opts, then applies the non-empty overrides.
func Event(opts *options.Options, evOpts *EventOptions) (flow.Context, error) {
	event, err := flow.ContextFromEnv(opts.Env)
	if err != nil {
		return event, err
	}

	if evOpts.EventName != "" {
		event.EventType = flow.ParseEventType(evOpts.EventName)
	}

	overrides := []struct {
		dst *string
		val string
	}{
		{&event.RefName, evOpts.RefName},
		{&event.BaseRef, evOpts.BaseRef},
		{&event.HeadRef, evOpts.HeadRef},
		{&event.CommitSHA, evOpts.SHA},
		{&event.ReleaseTag, evOpts.ReleaseTag},
		{&event.MainBranch, opts.MainBranch},
		{&event.DevBranch, opts.DevBranch},
	}

	for _, override := range overrides {
		if override.val != "" {
			*override.dst = override.val
		}
	}

	if evOpts.Prerelease {
		event.ReleasePrerelease = true
	}

	if evOpts.RunNumber > 0 {
		event.RunNumber = evOpts.RunNumber
	}

	return event, nil
}

// EventFields describes event for logging.
func EventFields(event flow.Context) map[string]any {
	return map[string]any{
		"event":      string(event.EventType),
		"ref":        event.RefName,
		"base":       event.BaseRef,
		"head":       event.HeadRef,
		"commit":     event.CommitSHA,
		"run_number": strconv.Itoa(event.RunNumber),
	}
}
