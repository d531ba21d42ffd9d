package workspace

import (
	"encoding/json"
	"os"
	"slices"

	"github.com/monorel/monorel/internal/errors"
)

// ManifestFilename is the name of the package manifest file.
const ManifestFilename = "package.json"

// Manifest holds the fields of a package manifest that monorel reads.
type Manifest struct {
	Dependencies     map[string]string `json:"dependencies,omitempty"`
	PeerDependencies map[string]string `json:"peerDependencies,omitempty"`
	DevDependencies  map[string]string `json:"devDependencies,omitempty"`
	Scripts          map[string]string `json:"scripts,omitempty"`
	Workspaces       Workspaces        `json:"workspaces"`
	Name             string            `json:"name"`
	Version          string            `json:"version"`
	PackageManager   string            `json:"packageManager,omitempty"`
	Private          bool              `json:"private"`
}

// Workspaces is the `workspaces` field, which is either an array of patterns or
// an object with a `packages` array.
type Workspaces struct {
	Packages []string
}

// UnmarshalJSON accepts both supported shapes of the `workspaces` field.
func (w *Workspaces) UnmarshalJSON(data []byte) error {
	var patterns []string
	if err := json.Unmarshal(data, &patterns); err == nil {
		w.Packages = patterns
		return nil
	}

	var object struct {
		Packages []string `json:"packages"`
	}

	if err := json.Unmarshal(data, &object); err != nil {
		return errors.Errorf("workspaces must be an array of patterns or an object with a packages array: %w", err)
	}

	w.Packages = object.Packages

	return nil
}

// ReadManifest reads and parses the manifest at path.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(err)
	}

	return ParseManifest(data)
}

// ParseManifest parses manifest content.
func ParseManifest(data []byte) (*Manifest, error) {
	manifest := &Manifest{}

	if err := json.Unmarshal(data, manifest); err != nil {
		return nil, errors.New(err)
	}

	return manifest, nil
}

// DependencyNames returns the sorted, de-duplicated names declared in the normal, peer and dev dependency fields.
// Version ranges, including `workspace:` specifiers, are ignored.
func (m *Manifest) DependencyNames() []string {
	var names []string

	for _, deps := range []map[string]string{m.Dependencies, m.PeerDependencies, m.DevDependencies} {
		for name := range deps {
			names = append(names, name)
		}
	}

	slices.Sort(names)

	return slices.Compact(names)
}

// HasScript returns true if the manifest declares the given script.
func (m *Manifest) HasScript(name string) bool {
	_, ok := m.Scripts[name]
	return ok
}
