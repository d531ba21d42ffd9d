package pipeline

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"

	"github.com/monorel/monorel/internal/errors"
	"github.com/monorel/monorel/internal/util"
)

const workspaceProtocol = "workspace:"

var dependencyFields = []string{"dependencies", "peerDependencies", "devDependencies", "optionalDependencies"}

// ManifestRewrite describes the edits applied to a manifest before it is published.
type ManifestRewrite struct {
	// Versions maps workspace package names to the versions `workspace:` specifiers resolve to.
	Versions map[string]string
	Version  string
	// Scope, e.g. `@acme`, replaces the scope of the package name and of workspace dependency names.
	Scope string
}

// ScopedName returns name moved into scope. An empty scope leaves name untouched.
func ScopedName(name, scope string) string {
	if scope == "" {
		return name
	}

	if strings.HasPrefix(name, "@") {
		if _, bare, ok := strings.Cut(name, "/"); ok {
			name = bare
		}
	}

	return scope + "/" + name
}

// ResolveWorkspaceSpecifier turns a `workspace:` specifier into a registry range for version.
// Other specifiers are returned unchanged.
func ResolveWorkspaceSpecifier(spec, version string) string {
	rangeSpec, ok := strings.CutPrefix(spec, workspaceProtocol)
	if !ok {
		return spec
	}

	switch rangeSpec {
	case "*", "":
		return version
	case "^", "~":
		return rangeSpec + version
	}

	return rangeSpec
}

// RewriteManifest applies rewrite to the manifest at path, keeping fields it does not touch.
func RewriteManifest(path string, rewrite ManifestRewrite) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.New(err)
	}

	content, err := rewrite.Apply(data)
	if err != nil {
		return errors.WithStackTraceAndPrefix(err, "rewriting %s", path)
	}

	return util.WriteFileWithSamePermissions(path, content)
}

// Apply rewrites manifest content.
func (rewrite ManifestRewrite) Apply(data []byte) ([]byte, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, errors.New(err)
	}

	var name string
	if err := json.Unmarshal(fields["name"], &name); err != nil {
		return nil, errors.Errorf("manifest has no name: %w", err)
	}

	if err := setField(fields, "name", ScopedName(name, rewrite.Scope)); err != nil {
		return nil, err
	}

	if rewrite.Version != "" {
		if err := setField(fields, "version", rewrite.Version); err != nil {
			return nil, err
		}
	}

	for _, field := range dependencyFields {
		raw, ok := fields[field]
		if !ok {
			continue
		}

		var deps map[string]string
		if err := json.Unmarshal(raw, &deps); err != nil {
			return nil, errors.Errorf("%s: %w", field, err)
		}

		if err := setField(fields, field, rewrite.dependencies(deps)); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer

	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(fields); err != nil {
		return nil, errors.New(err)
	}

	return buf.Bytes(), nil
}

func (rewrite ManifestRewrite) dependencies(deps map[string]string) map[string]string {
	rewritten := make(map[string]string, len(deps))

	for name, spec := range deps {
		version, isWorkspacePackage := rewrite.Versions[name]

		if strings.HasPrefix(spec, workspaceProtocol) && isWorkspacePackage {
			spec = ResolveWorkspaceSpecifier(spec, version)
		}

		if isWorkspacePackage {
			name = ScopedName(name, rewrite.Scope)
		}

		rewritten[name] = spec
	}

	return rewritten
}

func setField(fields map[string]json.RawMessage, key string, value any) error {
	var buf bytes.Buffer

	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(value); err != nil {
		return errors.New(err)
	}

	fields[key] = bytes.TrimSpace(buf.Bytes())

	return nil
}
