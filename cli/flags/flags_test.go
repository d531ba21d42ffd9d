package flags_test

import (
	"testing"

	"github.com/monorel/monorel/cli/flags"
	"github.com/stretchr/testify/assert"
)

func TestPrefix(t *testing.T) {
	t.Parallel()

	prefix := flags.Prefix{flags.MonorelPrefix}

	assert.Equal(t, "MONOREL_LOG_LEVEL", prefix.EnvVar("log-level"))
	assert.Equal(t, []string{"MONOREL_OUTPUT_FILE", "GITHUB_OUTPUT"}, prefix.EnvVars("output-file", "GITHUB_OUTPUT"))
	assert.Equal(t, "MONOREL_AUDIT_LEVEL", prefix.Append("audit").EnvVar("level"))
	assert.Equal(t, "audit-level", flags.Prefix{"audit"}.FlagName("level"))
	assert.Equal(t, flags.Prefix{"run", "audit"}, flags.Prefix{"audit"}.Prepend("run"))
}
