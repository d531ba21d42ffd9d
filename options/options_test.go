package options_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/monorel/monorel/internal/errors"
	"github.com/monorel/monorel/options"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryOptionsValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		opts        options.RegistryOptions
		expectedURL string
		expectError bool
	}{
		{
			name:        "npm",
			opts:        options.RegistryOptions{Target: "npm", TokenEnv: "NODE_AUTH_TOKEN"},
			expectedURL: "https://registry.npmjs.org/",
		},
		{
			name:        "github",
			opts:        options.RegistryOptions{Target: "github", Scope: "@acme", TokenEnv: "GITHUB_TOKEN"},
			expectedURL: "https://npm.pkg.github.com/",
		},
		{
			name:        "github without scope",
			opts:        options.RegistryOptions{Target: "github", TokenEnv: "GITHUB_TOKEN"},
			expectError: true,
		},
		{
			name:        "github with malformed scope",
			opts:        options.RegistryOptions{Target: "github", Scope: "acme", TokenEnv: "GITHUB_TOKEN"},
			expectError: true,
		},
		{
			name:        "custom",
			opts:        options.RegistryOptions{Target: "custom", URL: "https://npm.example.com/repo", TokenEnv: "NPM_TOKEN"},
			expectedURL: "https://npm.example.com/repo/",
		},
		{
			name:        "custom without url",
			opts:        options.RegistryOptions{Target: "custom", TokenEnv: "NPM_TOKEN"},
			expectError: true,
		},
		{
			name:        "unknown target",
			opts:        options.RegistryOptions{Target: "artifactory", TokenEnv: "NPM_TOKEN"},
			expectError: true,
		},
		{
			name:        "missing token env",
			opts:        options.RegistryOptions{Target: "npm"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.opts.Validate()
			if tt.expectError {
				var registryErr options.InvalidRegistryError
				require.True(t, errors.As(err, &registryErr))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedURL, tt.opts.RegistryURL())
		})
	}
}

func TestOptionsValidateAudit(t *testing.T) {
	t.Parallel()

	opts := options.NewOptionsForTest(t.TempDir())
	require.NoError(t, opts.Validate())

	opts.Audit.Enabled = true
	opts.Audit.Level = "severe"
	require.Error(t, opts.Validate())

	opts.Audit.Level = "critical"
	require.NoError(t, opts.Validate())
}

func TestOptionsClone(t *testing.T) {
	t.Parallel()

	opts := options.NewOptionsForTest(t.TempDir())
	opts.Env["GITHUB_SHA"] = "abc"

	clone := opts.Clone()
	clone.Env["GITHUB_SHA"] = "def"
	clone.Telemetry.TraceExporter = "console"

	assert.Equal(t, "abc", opts.Env["GITHUB_SHA"])
	assert.Empty(t, opts.Telemetry.TraceExporter)
	assert.Equal(t, opts.RunID, clone.RunID)
	assert.NotEmpty(t, opts.RunID)
}

func TestOptionsContext(t *testing.T) {
	t.Parallel()

	opts := options.NewOptionsForTest(t.TempDir())
	ctx := options.ContextWithOptions(context.Background(), opts)

	assert.Same(t, opts, options.FromContext(ctx))
	assert.Nil(t, options.FromContext(context.Background()))
}

func TestOptionsArtifactPath(t *testing.T) {
	t.Parallel()

	opts := options.NewOptionsForTest("/repo")
	assert.Equal(t, filepath.Join("/repo", ".monorel", "audit", "core.json"), opts.ArtifactPath("audit", "core.json"))

	opts.ArtifactsDir = "/tmp/artifacts"
	assert.Equal(t, filepath.Join("/tmp/artifacts", "build-results.json"), opts.ArtifactPath("build-results.json"))
}
