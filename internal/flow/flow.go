// Package flow classifies a CI event into a build flow and computes the version and
// distribution tag a package is published with.
package flow

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/hashicorp/go-version"

	"github.com/monorel/monorel/internal/errors"
)

// Type is the build/publish intent of a run.
type Type string

const (
	TypeRelease Type = "release"
	TypePR      Type = "pr"
	TypeDev     Type = "dev"
	TypePatch   Type = "patch"
	TypeStaging Type = "staging"
	TypeWIP     Type = "wip"
)

const (
	// TagLatest is the distribution tag of stable releases.
	TagLatest = "latest"
	// TagPrerelease is used for prereleases whose version has no parseable identifier.
	TagPrerelease = "prerelease"
)

var (
	// releaseTagVersionPrefix matches tags such as `v1.2.3` whose leading `v` is stripped.
	releaseTagVersionPrefix = regexp.MustCompile(`^v[0-9]`)
	// prereleaseIdentifier captures the first prerelease identifier segment, e.g. `beta` in `2.0.0-beta.1`.
	prereleaseIdentifier = regexp.MustCompile(`^[^-]*-([0-9A-Za-z-]+)`)
)

var (
	ErrMissingReleaseTag = errors.New("release event without a release tag")
	ErrMissingCommit     = errors.New("commit id is required to build a pre-release version")
	ErrInvalidVersion    = errors.New("invalid base version")
)

// Flow is the outcome of classifying an event for one package.
type Flow struct {
	Type    Type   `json:"flow"`
	Version string `json:"version"`
	Tag     string `json:"tag"`
}

// Resolver computes flows. Now is only consulted for the staging flow when the host
// does not provide a run number.
type Resolver struct {
	Now func() time.Time
}

// NewResolver returns a Resolver using the wall clock.
func NewResolver() *Resolver {
	return &Resolver{Now: time.Now}
}

// Resolve classifies the event with the default resolver.
func Resolve(ctx Context, baseVersion, shortSHA string) (Flow, error) {
	return NewResolver().Resolve(ctx, baseVersion, shortSHA)
}

// Resolve evaluates the flow rules in priority order; the first match wins.
func (r *Resolver) Resolve(ctx Context, baseVersion, shortSHA string) (Flow, error) {
	if ctx.EventType == EventRelease {
		return releaseFlow(ctx)
	}

	if _, err := version.NewSemver(baseVersion); err != nil {
		return Flow{}, errors.Errorf("%w %q: %v", ErrInvalidVersion, baseVersion, err)
	}

	if ctx.EventType == EventPush && ctx.RefName == ctx.MainBranch {
		return Flow{
			Type:    TypeStaging,
			Version: fmt.Sprintf("%s-%s.%s", baseVersion, TypeStaging, r.uniqueNumber(ctx)),
			Tag:     string(TypeStaging),
		}, nil
	}

	if shortSHA == "" {
		return Flow{}, errors.New(ErrMissingCommit)
	}

	flowType := classify(ctx)

	return Flow{
		Type:    flowType,
		Version: fmt.Sprintf("%s-%s.%s", baseVersion, flowType, shortSHA),
		Tag:     string(flowType),
	}, nil
}

// classify implements the non-release, non-staging rules.
func classify(ctx Context) Type {
	switch ctx.EventType {
	case EventPullRequest:
		switch {
		case ctx.BaseRef == ctx.DevBranch:
			return TypePR
		case ctx.BaseRef == ctx.MainBranch && ctx.HeadRef == ctx.DevBranch:
			return TypeDev
		case ctx.BaseRef == ctx.MainBranch:
			return TypePatch
		}
	case EventPush:
		if ctx.RefName == ctx.DevBranch {
			return TypeDev
		}
	case EventRelease, EventOther:
	}

	return TypeWIP
}

func releaseFlow(ctx Context) (Flow, error) {
	if ctx.ReleaseTag == "" {
		return Flow{}, errors.New(ErrMissingReleaseTag)
	}

	ver := ReleaseVersion(ctx.ReleaseTag)

	if !ctx.ReleasePrerelease {
		return Flow{Type: TypeRelease, Version: ver, Tag: TagLatest}, nil
	}

	return Flow{Type: TypeRelease, Version: ver, Tag: PrereleaseTag(ver)}, nil
}

// ReleaseVersion strips the leading `v` of tags such as `v1.2.3`. Other tags are used verbatim.
func ReleaseVersion(tag string) string {
	if releaseTagVersionPrefix.MatchString(tag) {
		return tag[1:]
	}

	return tag
}

// PrereleaseTag returns the first prerelease identifier of ver, or TagPrerelease when there is none.
func PrereleaseTag(ver string) string {
	if match := prereleaseIdentifier.FindStringSubmatch(ver); len(match) > 1 {
		return match[1]
	}

	return TagPrerelease
}

// uniqueNumber identifies a staging build. The host run number is unique per workflow and
// survives re-runs through the attempt suffix; the timestamp is the fallback outside CI.
func (r *Resolver) uniqueNumber(ctx Context) string {
	if ctx.RunNumber > 0 {
		if ctx.RunAttempt > 1 {
			return fmt.Sprintf("%d.%d", ctx.RunNumber, ctx.RunAttempt)
		}

		return strconv.Itoa(ctx.RunNumber)
	}

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}

	return strconv.FormatInt(now().UTC().Unix(), 10)
}
