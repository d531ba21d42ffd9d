package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/monorel/monorel/internal/errors"
	"github.com/monorel/monorel/internal/manifest"
	"github.com/monorel/monorel/internal/workspace"
	"github.com/monorel/monorel/options"
	"github.com/monorel/monorel/pkg/log"
)

// NPMRCFilename is the registry configuration file of npm compatible package managers.
const NPMRCFilename = ".npmrc"

// NPMRCConfigurer appends registry and token settings to the `.npmrc` of the workspace root. The token
// itself is never written: the file references the environment variable holding it.
type NPMRCConfigurer struct {
	RootDir string
}

func NewNPMRCConfigurer(rootDir string) *NPMRCConfigurer {
	return &NPMRCConfigurer{RootDir: rootDir}
}

// Configure writes the registry settings. The returned RestoreFunc puts back the previous file, or
// removes it when there was none.
func (c *NPMRCConfigurer) Configure(_ context.Context, l log.Logger, pkg *workspace.Package, registry options.RegistryOptions) (RestoreFunc, error) {
	path := filepath.Join(c.RootDir, NPMRCFilename)

	snap, err := manifest.Take(path)
	if err != nil {
		return nil, err
	}

	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, errors.New(err)
	}

	settings, err := NPMRC(registry)
	if err != nil {
		return nil, err
	}

	content := string(existing)
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}

	if err := os.WriteFile(path, []byte(content+settings), 0o600); err != nil {
		return nil, errors.New(err)
	}

	l.Debugf("Configured registry %s for %s", registry.RegistryURL(), pkg.Name)

	return snap.Restore, nil
}

// NPMRC renders the `.npmrc` settings selecting the registry and its token.
func NPMRC(registry options.RegistryOptions) (string, error) {
	registryURL := registry.RegistryURL()

	parsed, err := url.Parse(registryURL)
	if err != nil || parsed.Host == "" {
		return "", errors.New(options.InvalidRegistryError{Err: fmt.Errorf("registry url %q has no host", registryURL)})
	}

	var sb strings.Builder

	if registry.Scope != "" {
		fmt.Fprintf(&sb, "%s:registry=%s\n", registry.Scope, registryURL)
	} else {
		fmt.Fprintf(&sb, "registry=%s\n", registryURL)
	}

	fmt.Fprintf(&sb, "//%s%s:_authToken=${%s}\n", parsed.Host, parsed.Path, registry.TokenEnv)

	return sb.String(), nil
}
