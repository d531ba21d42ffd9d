package flags

import (
	"strings"
)

// MonorelPrefix starts the names of every environment variable read by the CLI.
const MonorelPrefix = "MONOREL"

// Prefix combines names into flag names or environment variables, e.g. `MONOREL_REGISTRY_TARGET`.
type Prefix []string

// Prepend adds a value to the beginning of the prefix.
func (prefix Prefix) Prepend(val string) Prefix {
	return append([]string{val}, prefix...)
}

// Append adds a value to the end of the prefix.
func (prefix Prefix) Append(val string) Prefix {
	return append(prefix, val)
}

// EnvVar returns the environment variable of the flag name.
func (prefix Prefix) EnvVar(name string) string {
	name = strings.Join(append(prefix, name), "_")

	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// EnvVars returns the environment variable of name followed by fallbacks, which are used verbatim.
// The first set variable wins.
func (prefix Prefix) EnvVars(name string, fallbacks ...string) []string {
	return append([]string{prefix.EnvVar(name)}, fallbacks...)
}

// FlagName returns the dash-joined flag name.
func (prefix Prefix) FlagName(name string) string {
	return strings.Join(append(prefix, name), "-")
}
