// Package env reads the process environment into maps the rest of the program can be tested with.
package env

import (
	"strconv"
	"strings"
)

// Parse converts `KEY=value` entries, as returned by os.Environ, into a map.
// Entries without `=` are ignored.
func Parse(environ []string) map[string]string {
	envs := make(map[string]string, len(environ))

	for _, entry := range environ {
		key, val, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			continue
		}

		envs[key] = val
	}

	return envs
}

// Lookup returns the first non-blank value among keys, trimmed of spaces.
func Lookup(envs map[string]string, keys ...string) (string, bool) {
	for _, key := range keys {
		if val := strings.TrimSpace(envs[key]); val != "" {
			return val, true
		}
	}

	return "", false
}

// GetString returns the first non-blank value among keys, or fallback.
func GetString(envs map[string]string, fallback string, keys ...string) string {
	if val, ok := Lookup(envs, keys...); ok {
		return val
	}

	return fallback
}

// GetBool returns the first non-blank value among keys converted to a boolean, or fallback when it
// is missing or not a boolean.
func GetBool(envs map[string]string, fallback bool, keys ...string) bool {
	if val, ok := Lookup(envs, keys...); ok {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}

	return fallback
}
