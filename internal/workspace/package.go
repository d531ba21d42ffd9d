package workspace

import (
	"encoding/json"
	"path"

	"github.com/invopop/jsonschema"

	"github.com/monorel/monorel/internal/schema"
)

// Package describes a publishable workspace package. ManifestPath and Dir are slash separated
// and relative to the workspace root, which is also the repository root.
type Package struct {
	// Manifest is the manifest parsed during discovery. It is shared by later phases so the
	// manifest is read once per run.
	Manifest *Manifest `json:"-"`

	Name         string `json:"name" jsonschema:"minLength=1"`
	Version      string `json:"version"`
	ManifestPath string `json:"path" jsonschema:"minLength=1"`
	Dir          string `json:"dir"`
}

// Packages is an ordered list of packages.
type Packages []*Package

// NewPackage builds a package descriptor for the manifest found in dir.
func NewPackage(dir string, manifest *Manifest) *Package {
	return &Package{
		Name:         manifest.Name,
		Version:      manifest.Version,
		ManifestPath: path.Join(dir, ManifestFilename),
		Dir:          dir,
		Manifest:     manifest,
	}
}

// Names returns the package names in order.
func (pkgs Packages) Names() []string {
	names := make([]string, len(pkgs))
	for i, pkg := range pkgs {
		names[i] = pkg.Name
	}

	return names
}

// Find returns the package with the given name, or nil.
func (pkgs Packages) Find(name string) *Package {
	for _, pkg := range pkgs {
		if pkg.Name == name {
			return pkg
		}
	}

	return nil
}

// MarshalJSON renders the list as the `discovered-packages` document. An empty list renders as `[]`.
func (pkgs Packages) MarshalJSON() ([]byte, error) {
	if pkgs == nil {
		return []byte("[]"), nil
	}

	return json.Marshal([]*Package(pkgs))
}

// DiscoveredPackagesSchema returns the schema of the `discovered-packages` document.
func DiscoveredPackagesSchema() *jsonschema.Schema {
	return schema.Array("discovered-packages", "Discovered packages", "Publishable workspace packages in discovery order", &Package{})
}
