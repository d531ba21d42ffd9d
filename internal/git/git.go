// Package git provides the version control operations monorel needs: diffs between commits,
// tag history, reference resolution and fetching extra history in shallow CI clones.
package git

import (
	"bytes"
	"context"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	"github.com/hashicorp/go-version"

	"github.com/monorel/monorel/pkg/log"
)

// DefaultRemote is the remote used for fetches and remote-tracking refs.
const DefaultRemote = "origin"

// ShortSHALength is the length of abbreviated commit ids embedded in versions.
const ShortSHALength = 7

// GitRunner handles git command execution
type GitRunner struct {
	logger  log.Logger
	GitPath string
	WorkDir string
}

// NewGitRunner creates a new GitRunner instance
func NewGitRunner(l log.Logger) (*GitRunner, error) {
	gitPath, err := exec.LookPath("git")
	if err != nil {
		return nil, &WrappedError{
			Op:      "git",
			Context: err.Error(),
			Err:     ErrGitNotFound,
		}
	}

	return &GitRunner{
		logger:  l,
		GitPath: gitPath,
	}, nil
}

// WithWorkDir returns a new GitRunner with the specified working directory
func (g *GitRunner) WithWorkDir(workDir string) *GitRunner {
	copy := *g
	copy.WorkDir = workDir

	return &copy
}

// RequiresWorkDir returns an error if no working directory is set
func (g *GitRunner) RequiresWorkDir() error {
	if g.WorkDir == "" {
		return &WrappedError{
			Op:      "git",
			Context: "no working directory set",
			Err:     ErrNoWorkDir,
		}
	}

	return nil
}

// RevParse resolves a reference to a full commit id.
func (g *GitRunner) RevParse(ctx context.Context, ref string) (string, error) {
	out, err := g.output(ctx, "git_rev_parse", "rev-parse", "--verify", "--quiet", ref+"^{commit}")
	if err != nil {
		return "", &WrappedError{
			Op:      "git_rev_parse",
			Context: ref,
			Err:     ErrUnknownRef,
		}
	}

	return strings.TrimSpace(out), nil
}

// Diff returns the paths, relative to the repository root, that differ between fromRef and toRef.
func (g *GitRunner) Diff(ctx context.Context, fromRef, toRef string) ([]string, error) {
	out, err := g.output(ctx, "git_diff", "diff", "--name-only", "--diff-filter=ACDMRT", fromRef, toRef)
	if err != nil {
		return nil, err
	}

	var files []string

	for line := range strings.SplitSeq(strings.TrimSpace(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}

	return files, nil
}

// TagsByVersion returns the repository tags that parse as versions, sorted in ascending version order.
// Tags that are not versions are left out.
func (g *GitRunner) TagsByVersion(ctx context.Context) ([]string, error) {
	out, err := g.output(ctx, "git_tag", "tag", "--list")
	if err != nil {
		return nil, err
	}

	return SortTagsByVersion(strings.Split(strings.TrimSpace(out), "\n")), nil
}

// SortTagsByVersion filters out tags that are not versions and sorts the rest in ascending order.
func SortTagsByVersion(tags []string) []string {
	type parsedTag struct {
		version *version.Version
		name    string
	}

	parsed := make([]parsedTag, 0, len(tags))

	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}

		v, err := version.NewVersion(tag)
		if err != nil {
			continue
		}

		parsed = append(parsed, parsedTag{version: v, name: tag})
	}

	sort.SliceStable(parsed, func(i, j int) bool {
		return parsed[i].version.LessThan(parsed[j].version)
	})

	sorted := make([]string, len(parsed))
	for i, tag := range parsed {
		sorted[i] = tag.name
	}

	return sorted
}

// FetchRef fetches a single ref from the default remote, limited to `depth` commits when depth > 0.
func (g *GitRunner) FetchRef(ctx context.Context, ref string, depth int) error {
	args := []string{"fetch", "--no-tags", DefaultRemote}
	if depth > 0 {
		args = append(args, "--depth", strconv.Itoa(depth))
	}

	args = append(args, ref+":refs/remotes/"+DefaultRemote+"/"+ref)

	return g.fetch(ctx, "git_fetch_ref", args...)
}

// Deepen fetches `depth` more commits of history for the current shallow clone.
func (g *GitRunner) Deepen(ctx context.Context, depth int) error {
	return g.fetch(ctx, "git_fetch_deepen", "fetch", "--deepen", strconv.Itoa(depth), DefaultRemote)
}

// FetchTags fetches all tags from the default remote.
func (g *GitRunner) FetchTags(ctx context.Context) error {
	return g.fetch(ctx, "git_fetch_tags", "fetch", "--tags", "--force", DefaultRemote)
}

// ShortSHA abbreviates a commit id to ShortSHALength characters.
func ShortSHA(sha string) string {
	if len(sha) <= ShortSHALength {
		return sha
	}

	return sha[:ShortSHALength]
}

func (g *GitRunner) fetch(ctx context.Context, op string, args ...string) error {
	if _, err := g.output(ctx, op, args...); err != nil {
		return &WrappedError{
			Op:      op,
			Context: err.Error(),
			Err:     ErrFetch,
		}
	}

	return nil
}

func (g *GitRunner) output(ctx context.Context, op string, args ...string) (string, error) {
	if err := g.RequiresWorkDir(); err != nil {
		return "", err
	}

	cmd := g.prepareCommand(ctx, args...)

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if g.logger != nil {
		g.logger.Tracef("Running git %s", strings.Join(args, " "))
	}

	if err := cmd.Run(); err != nil {
		return "", &WrappedError{
			Op:      op,
			Context: strings.TrimSpace(stderr.String()),
			Err:     ErrCommandSpawn,
		}
	}

	return stdout.String(), nil
}

func (g *GitRunner) prepareCommand(ctx context.Context, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, g.GitPath, args...)
	cmd.Dir = g.WorkDir

	return cmd
}
