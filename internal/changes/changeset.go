// Package changes maps a version-control diff onto the discovered workspace packages.
package changes

import (
	"encoding/json"

	"github.com/invopop/jsonschema"

	"github.com/monorel/monorel/internal/schema"
	"github.com/monorel/monorel/internal/workspace"
)

// Kind discriminates a ChangeSet.
type Kind int

const (
	// KindAll means every package must be processed, either because a root config file changed
	// or because the diff could not be computed.
	KindAll Kind = iota
	// KindNone means the diff succeeded and touched no package.
	KindNone
	// KindSubset means only the packages in the set changed.
	KindSubset
)

func (k Kind) String() string {
	switch k {
	case KindAll:
		return "all"
	case KindNone:
		return "none"
	case KindSubset:
		return "subset"
	}

	return "unknown"
}

// ChangeSet is the outcome of change detection.
type ChangeSet struct {
	reason   string
	packages workspace.Packages
	kind     Kind
}

// AllChanged returns a ChangeSet selecting every package. Reason is kept for logging.
func AllChanged(reason string) ChangeSet {
	return ChangeSet{kind: KindAll, reason: reason}
}

// NoneChanged returns a ChangeSet selecting no package.
func NoneChanged() ChangeSet {
	return ChangeSet{kind: KindNone, reason: "no package affected by the diff"}
}

// Subset returns a ChangeSet selecting exactly pkgs. An empty subset is NoneChanged.
func Subset(pkgs workspace.Packages) ChangeSet {
	if len(pkgs) == 0 {
		return NoneChanged()
	}

	return ChangeSet{kind: KindSubset, packages: pkgs}
}

func (set ChangeSet) Kind() Kind {
	return set.kind
}

func (set ChangeSet) Reason() string {
	return set.reason
}

// Select returns the packages of all that the change set selects, in the order of all.
func (set ChangeSet) Select(all workspace.Packages) workspace.Packages {
	switch set.kind {
	case KindAll:
		return all
	case KindNone:
		return workspace.Packages{}
	case KindSubset:
	}

	selected := workspace.Packages{}

	for _, pkg := range all {
		if set.packages.Find(pkg.Name) != nil {
			selected = append(selected, pkg)
		}
	}

	return selected
}

// ChangedPackage is an entry of the `changed-packages` document.
type ChangedPackage struct {
	Name string `json:"name" jsonschema:"minLength=1"`
	// Path is the package directory.
	Path string `json:"path"`
}

// MarshalChangedPackages renders pkgs as the `changed-packages` document. Path is the package directory.
func MarshalChangedPackages(pkgs workspace.Packages) ([]byte, error) {
	changed := make([]ChangedPackage, 0, len(pkgs))
	for _, pkg := range pkgs {
		changed = append(changed, ChangedPackage{Name: pkg.Name, Path: pkg.Dir})
	}

	return json.Marshal(changed)
}

// ChangedPackagesSchema returns the schema of the `changed-packages` document.
func ChangedPackagesSchema() *jsonschema.Schema {
	return schema.Array("changed-packages", "Changed packages", "Packages affected by the triggering event", &ChangedPackage{})
}
