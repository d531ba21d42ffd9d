// Package workspace resolves the workspace patterns declared by a root manifest into the
// list of publishable packages.
package workspace

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mattn/go-zglob"
	"gopkg.in/yaml.v3"

	"github.com/monorel/monorel/internal/errors"
	"github.com/monorel/monorel/internal/util"
	"github.com/monorel/monorel/pkg/log"
)

// PnpmWorkspaceFilename declares workspace patterns for pnpm when the root manifest has none.
const PnpmWorkspaceFilename = "pnpm-workspace.yaml"

const (
	negationPrefix = "!"
	wildcardChars  = "*?[{"
	nodeModulesDir = "node_modules"
)

// Discovery finds the publishable packages of a workspace.
type Discovery struct {
	rootDir string

	// excludeNegated applies `!` patterns as exclusions instead of skipping them.
	excludeNegated bool
}

// NewDiscovery creates a Discovery rooted at rootDir.
func NewDiscovery(rootDir string) *Discovery {
	return &Discovery{rootDir: rootDir}
}

// WithExcludeNegated makes negated patterns remove the directories they match.
func (d *Discovery) WithExcludeNegated(exclude bool) *Discovery {
	d.excludeNegated = exclude
	return d
}

// Discover returns the publishable packages in pattern order. Within a glob expansion, directories
// are ordered lexically, so repeated runs over an unchanged tree return identical lists.
func (d *Discovery) Discover(ctx context.Context, l log.Logger) (Packages, error) {
	rootManifestPath := filepath.Join(d.rootDir, ManifestFilename)

	if !util.IsFile(rootManifestPath) {
		return nil, errors.Errorf("%w: %s", ErrRootManifestNotFound, rootManifestPath)
	}

	rootManifest, err := ReadManifest(rootManifestPath)
	if err != nil {
		return nil, errors.WithStackTraceAndPrefix(err, "reading root manifest %s", rootManifestPath)
	}

	patterns, err := d.workspacePatterns(rootManifest)
	if err != nil {
		return nil, err
	}

	dirs, excludes := d.expandPatterns(l, patterns)

	var (
		pkgs      Packages
		seen      = make(map[string]struct{})
		pathsByID = make(map[string][]string)
	)

	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, errors.New(err)
		}

		if isExcluded(dir, excludes) {
			l.Debugf("Skipping %s, excluded by a negated workspace pattern", dir)
			continue
		}

		manifestPath := path.Join(dir, ManifestFilename)
		if _, ok := seen[manifestPath]; ok {
			continue
		}

		seen[manifestPath] = struct{}{}

		absManifestPath := filepath.Join(d.rootDir, filepath.FromSlash(manifestPath))
		if !util.IsFile(absManifestPath) {
			l.Debugf("Skipping %s, no %s found", dir, ManifestFilename)
			continue
		}

		manifest, err := ReadManifest(absManifestPath)
		if err != nil {
			l.Warnf("Skipping %s, unreadable manifest: %v", manifestPath, err)
			continue
		}

		if manifest.Private {
			l.Debugf("Skipping private package %s", util.FirstNonEmpty([]string{manifest.Name, dir}))
			continue
		}

		if manifest.Name == "" {
			l.Warnf("Skipping %s, manifest declares no name", manifestPath)
			continue
		}

		pathsByID[manifest.Name] = append(pathsByID[manifest.Name], manifestPath)
		if len(pathsByID[manifest.Name]) > 1 {
			return nil, errors.New(DuplicatePackageError{Name: manifest.Name, Paths: pathsByID[manifest.Name]})
		}

		pkgs = append(pkgs, NewPackage(dir, manifest))
	}

	if len(pkgs) == 0 {
		return nil, errors.New(ErrNoPublishablePackages)
	}

	l.Debugf("Discovered %d publishable packages: %s", len(pkgs), strings.Join(pkgs.Names(), ", "))

	return pkgs, nil
}

// workspacePatterns returns the patterns of the root manifest, falling back to pnpm-workspace.yaml.
func (d *Discovery) workspacePatterns(rootManifest *Manifest) ([]string, error) {
	patterns := rootManifest.Workspaces.Packages

	if len(patterns) == 0 {
		pnpmPath := filepath.Join(d.rootDir, PnpmWorkspaceFilename)

		if util.IsFile(pnpmPath) {
			data, err := os.ReadFile(pnpmPath)
			if err != nil {
				return nil, errors.New(err)
			}

			var pnpm struct {
				Packages []string `yaml:"packages"`
			}

			if err := yaml.Unmarshal(data, &pnpm); err != nil {
				return nil, errors.WithStackTraceAndPrefix(err, "parsing %s", PnpmWorkspaceFilename)
			}

			patterns = pnpm.Packages
		}
	}

	var cleaned []string

	for _, pattern := range patterns {
		if pattern = strings.TrimSpace(pattern); pattern != "" {
			cleaned = append(cleaned, pattern)
		}
	}

	if len(cleaned) == 0 {
		return nil, errors.New(ErrNoWorkspaces)
	}

	return util.RemoveDuplicatesKeepFirst(cleaned), nil
}

// expandPatterns turns patterns into candidate directories relative to the root. Negated patterns are
// returned separately when exclusion is enabled and are otherwise logged and dropped.
func (d *Discovery) expandPatterns(l log.Logger, patterns []string) (dirs, excludes []string) {
	for _, pattern := range patterns {
		pattern = strings.TrimPrefix(filepath.ToSlash(pattern), "./")

		if strings.HasPrefix(pattern, negationPrefix) {
			if d.excludeNegated {
				excludes = append(excludes, strings.TrimPrefix(pattern, negationPrefix))
				continue
			}

			l.Warnf("Negated workspace pattern %q is not supported and will be ignored", pattern)

			continue
		}

		pattern = strings.TrimSuffix(pattern, "/")

		if !hasWildcard(pattern) {
			dirs = append(dirs, path.Clean(pattern))
			continue
		}

		matches, err := d.glob(pattern)
		if err != nil {
			l.Warnf("Unable to expand workspace pattern %q: %v", pattern, err)
			continue
		}

		if len(matches) == 0 {
			l.Debugf("Workspace pattern %q matched no directories", pattern)
		}

		dirs = append(dirs, matches...)
	}

	return dirs, excludes
}

// glob expands pattern from its parent segment, the leading part without wildcards, and returns the
// matched directories relative to the root in lexical order.
func (d *Discovery) glob(pattern string) ([]string, error) {
	base := patternBase(pattern)
	if !util.IsDir(filepath.Join(d.rootDir, filepath.FromSlash(base))) {
		return nil, nil
	}

	matches, err := zglob.Glob(filepath.Join(d.rootDir, filepath.FromSlash(pattern)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, errors.New(err)
	}

	var dirs []string

	for _, match := range matches {
		if !util.IsDir(match) {
			continue
		}

		rel, err := util.RelPath(match, d.rootDir)
		if err != nil {
			return nil, err
		}

		if slices.Contains(strings.Split(rel, "/"), nodeModulesDir) {
			continue
		}

		dirs = append(dirs, rel)
	}

	slices.Sort(dirs)

	return dirs, nil
}

// patternBase returns the leading segments of pattern that contain no wildcard.
func patternBase(pattern string) string {
	var base []string

	for _, segment := range strings.Split(pattern, "/") {
		if hasWildcard(segment) {
			break
		}

		base = append(base, segment)
	}

	if len(base) == 0 {
		return "."
	}

	return path.Join(base...)
}

func hasWildcard(pattern string) bool {
	return strings.ContainsAny(pattern, wildcardChars)
}

func isExcluded(dir string, excludes []string) bool {
	for _, exclude := range excludes {
		exclude = strings.TrimSuffix(strings.TrimPrefix(exclude, "./"), "/")

		if matched, err := zglob.Match(exclude, dir); err == nil && matched {
			return true
		}
	}

	return false
}
