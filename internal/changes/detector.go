package changes

import (
	"context"
	"slices"

	"github.com/hashicorp/go-version"

	"github.com/monorel/monorel/internal/flow"
	"github.com/monorel/monorel/internal/git"
	"github.com/monorel/monorel/internal/util"
	"github.com/monorel/monorel/internal/workspace"
	"github.com/monorel/monorel/pkg/log"
)

// RootConfigFiles are repository root files whose modification affects every package.
var RootConfigFiles = []string{
	"package.json",
	"package-lock.json",
	"npm-shrinkwrap.json",
	"yarn.lock",
	"pnpm-lock.yaml",
	"pnpm-workspace.yaml",
	"bun.lockb",
	"bun.lock",
	"tsconfig.json",
	"tsconfig.base.json",
	".npmrc",
	".yarnrc.yml",
}

const (
	headRef      = "HEAD"
	parentRef    = "HEAD^"
	remotePrefix = "origin/"
)

// VCS is the version control oracle the detector queries.
type VCS interface {
	RevParse(ctx context.Context, ref string) (string, error)
	Diff(ctx context.Context, fromRef, toRef string) ([]string, error)
	TagsByVersion(ctx context.Context) ([]string, error)
	FetchRef(ctx context.Context, ref string, depth int) error
	Deepen(ctx context.Context, depth int) error
	FetchTags(ctx context.Context) error
}

// Detector computes the ChangeSet of a run.
type Detector struct {
	vcs      VCS
	forceAll bool
}

// Option configures a Detector.
type Option func(*Detector)

// WithForceAll makes the detector select every package without consulting the VCS.
func WithForceAll(forceAll bool) Option {
	return func(d *Detector) {
		d.forceAll = forceAll
	}
}

func NewDetector(vcs VCS, opts ...Option) *Detector {
	d := &Detector{vcs: vcs}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Detect never fails: whenever the affected packages cannot be determined it returns AllChanged.
func (d *Detector) Detect(ctx context.Context, l log.Logger, event flow.Context, pkgs workspace.Packages) ChangeSet {
	if d.forceAll {
		return AllChanged("all packages requested")
	}

	if d.vcs == nil {
		return AllChanged("version control unavailable")
	}

	base, ok := d.resolveBase(ctx, l, event)
	if !ok {
		if !d.fetchHistory(ctx, l, event) {
			return AllChanged("no diff base for " + string(event.EventType) + " event")
		}

		if base, ok = d.resolveBase(ctx, l, event); !ok {
			return AllChanged("no diff base for " + string(event.EventType) + " event after fetching history")
		}
	}

	files, err := d.vcs.Diff(ctx, base, headRef)
	if err != nil {
		l.Warnf("Could not compute diff against %s: %v", git.ShortSHA(base), err)
		return AllChanged("diff failed")
	}

	l.Debugf("%d files changed since %s", len(files), git.ShortSHA(base))

	return mapFiles(files, pkgs)
}

// resolveBase picks the commit to diff against for the event kind.
func (d *Detector) resolveBase(ctx context.Context, l log.Logger, event flow.Context) (string, bool) {
	var candidates []string

	switch event.EventType {
	case flow.EventPullRequest:
		candidates = []string{event.BaseSHA, remotePrefix + event.BaseRef, event.BaseRef}
		if event.BaseRef == "" {
			candidates = []string{event.BaseSHA}
		}
	case flow.EventPush:
		candidates = []string{parentRef}
	case flow.EventRelease:
		tag, err := d.previousTag(ctx, event.ReleaseTag)
		if err != nil {
			l.Debugf("Could not list tags: %v", err)
			return "", false
		}

		candidates = []string{tag}
	case flow.EventOther:
		return "", false
	}

	for _, ref := range candidates {
		if ref == "" {
			continue
		}

		sha, err := d.vcs.RevParse(ctx, ref)
		if err != nil {
			l.Debugf("Diff base candidate %s is not resolvable: %v", ref, err)
			continue
		}

		return sha, true
	}

	return "", false
}

// previousTag returns the highest version tag ordered strictly before releaseTag, or "" when there is none.
func (d *Detector) previousTag(ctx context.Context, releaseTag string) (string, error) {
	tags, err := d.vcs.TagsByVersion(ctx)
	if err != nil {
		return "", err
	}

	// An unparseable release tag falls back to the highest other tag.
	current, _ := version.NewVersion(releaseTag)

	for _, tag := range slices.Backward(tags) {
		if tag == releaseTag {
			continue
		}

		if current == nil {
			return tag, nil
		}

		if v, err := version.NewVersion(tag); err == nil && v.LessThan(current) {
			return tag, nil
		}
	}

	return "", nil
}

// fetchHistory performs the single corrective fetch for the event kind. It reports whether a retry is worthwhile.
func (d *Detector) fetchHistory(ctx context.Context, l log.Logger, event flow.Context) bool {
	var err error

	switch event.EventType {
	case flow.EventPullRequest:
		if event.BaseRef == "" {
			return false
		}

		l.Debugf("Fetching base branch %s", event.BaseRef)
		err = d.vcs.FetchRef(ctx, event.BaseRef, 1)
	case flow.EventPush:
		l.Debugf("Deepening history by one commit")
		err = d.vcs.Deepen(ctx, 1)
	case flow.EventRelease:
		l.Debugf("Fetching tags")
		err = d.vcs.FetchTags(ctx)
	case flow.EventOther:
		return false
	}

	if err != nil {
		l.Warnf("Could not fetch history: %v", err)
		return false
	}

	return true
}

// mapFiles assigns changed files to packages by directory prefix or manifest path.
func mapFiles(files []string, pkgs workspace.Packages) ChangeSet {
	for _, file := range files {
		if slices.Contains(RootConfigFiles, file) {
			return AllChanged("root config file " + file + " changed")
		}
	}

	changed := workspace.Packages{}

	for _, pkg := range pkgs {
		for _, file := range files {
			if file == pkg.ManifestPath || util.HasPathPrefix(file, pkg.Dir) {
				changed = append(changed, pkg)
				break
			}
		}
	}

	return Subset(changed)
}
