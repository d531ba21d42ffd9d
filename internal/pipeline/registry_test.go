package pipeline_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/monorel/monorel/internal/pipeline"
	"github.com/monorel/monorel/internal/workspace"
	"github.com/monorel/monorel/options"
	"github.com/monorel/monorel/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNPMRC(t *testing.T) {
	t.Parallel()

	content, err := pipeline.NPMRC(options.RegistryOptions{Target: "npm", TokenEnv: "NODE_AUTH_TOKEN"})
	require.NoError(t, err)
	assert.Equal(t, "registry=https://registry.npmjs.org/\n//registry.npmjs.org/:_authToken=${NODE_AUTH_TOKEN}\n", content)

	content, err = pipeline.NPMRC(options.RegistryOptions{Target: "github", Scope: "@acme", TokenEnv: "GITHUB_TOKEN"})
	require.NoError(t, err)
	assert.Equal(t, "@acme:registry=https://npm.pkg.github.com/\n//npm.pkg.github.com/:_authToken=${GITHUB_TOKEN}\n", content)

	content, err = pipeline.NPMRC(options.RegistryOptions{Target: "custom", URL: "https://npm.example.com/repo", TokenEnv: "NPM_TOKEN"})
	require.NoError(t, err)
	assert.Contains(t, content, "//npm.example.com/repo/:_authToken=${NPM_TOKEN}\n")
}

func TestNPMRCConfigurerRestores(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, ".npmrc")
	pkg := &workspace.Package{Name: "core", Dir: "core"}
	registry := options.RegistryOptions{Target: "npm", TokenEnv: "NODE_AUTH_TOKEN"}
	l := log.New(log.WithOutput(io.Discard))

	restore, err := pipeline.NewNPMRCConfigurer(root).Configure(context.Background(), l, pkg, registry)
	require.NoError(t, err)
	assert.FileExists(t, path)
	require.NoError(t, restore())
	assert.NoFileExists(t, path)

	require.NoError(t, os.WriteFile(path, []byte("engine-strict=true"), 0o644))

	restore, err = pipeline.NewNPMRCConfigurer(root).Configure(context.Background(), l, pkg, registry)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "engine-strict=true\nregistry=https://registry.npmjs.org/\n//registry.npmjs.org/:_authToken=${NODE_AUTH_TOKEN}\n", string(content))

	require.NoError(t, restore())

	content, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "engine-strict=true", string(content))
}
