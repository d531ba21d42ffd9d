package workspace

import (
	"fmt"
	"strings"

	"github.com/monorel/monorel/internal/errors"
)

var (
	// ErrRootManifestNotFound is returned when the workspace root has no manifest.
	ErrRootManifestNotFound = errors.New("root manifest not found")
	// ErrNoWorkspaces is returned when the root manifest declares no workspace patterns.
	ErrNoWorkspaces = errors.New("no workspace patterns declared")
	// ErrNoPublishablePackages is returned when every discovered package is private or none were found.
	ErrNoPublishablePackages = errors.New("no publishable packages found")
)

// DuplicatePackageError is returned when two workspace packages share a name.
type DuplicatePackageError struct {
	Name  string
	Paths []string
}

func (err DuplicatePackageError) Error() string {
	return fmt.Sprintf("package name %q is declared by more than one manifest: %s", err.Name, strings.Join(err.Paths, ", "))
}
