// Package pipeline holds the external collaborators driven for each package: registry
// configuration, build and publish, and vulnerability audit.
package pipeline

import (
	"path/filepath"
	"strings"

	"github.com/monorel/monorel/internal/util"
	"github.com/monorel/monorel/internal/workspace"
)

// PackageManager describes how to drive one JavaScript package manager.
type PackageManager struct {
	Name      string
	Lockfiles []string
}

var (
	NPM  = PackageManager{Name: "npm", Lockfiles: []string{"package-lock.json", "npm-shrinkwrap.json"}}
	PNPM = PackageManager{Name: "pnpm", Lockfiles: []string{"pnpm-lock.yaml"}}
	Yarn = PackageManager{Name: "yarn", Lockfiles: []string{"yarn.lock"}}
	Bun  = PackageManager{Name: "bun", Lockfiles: []string{"bun.lock", "bun.lockb"}}

	// PackageManagers are checked in order when detecting the package manager from lockfiles.
	PackageManagers = []PackageManager{PNPM, Yarn, Bun, NPM}
)

// DetectPackageManager picks the package manager of the workspace at rootDir. The `packageManager`
// field of the root manifest wins, then the first lockfile found. npm is the default.
func DetectPackageManager(rootDir string, rootManifest *workspace.Manifest) PackageManager {
	if rootManifest != nil && rootManifest.PackageManager != "" {
		name, _, _ := strings.Cut(rootManifest.PackageManager, "@")
		if pm, ok := PackageManagerByName(name); ok {
			return pm
		}
	}

	for _, pm := range PackageManagers {
		for _, lockfile := range pm.Lockfiles {
			if util.FileExists(filepath.Join(rootDir, lockfile)) {
				return pm
			}
		}
	}

	return NPM
}

// PackageManagerByName returns the package manager with the given name.
func PackageManagerByName(name string) (PackageManager, bool) {
	for _, pm := range PackageManagers {
		if pm.Name == name {
			return pm, true
		}
	}

	return PackageManager{}, false
}

// InstallArgs returns the arguments of a clean, lockfile-respecting install.
func (pm PackageManager) InstallArgs() []string {
	switch pm.Name {
	case PNPM.Name, Bun.Name:
		return []string{"install", "--frozen-lockfile"}
	case Yarn.Name:
		return []string{"install", "--immutable"}
	}

	return []string{"ci"}
}

// RunArgs returns the arguments running a manifest script.
func (pm PackageManager) RunArgs(script string) []string {
	return []string{"run", script}
}

// PublishCommand returns the command and arguments publishing the package in the current directory.
// Workspace specifiers are resolved before publishing, so yarn and bun workspaces publish with npm.
func (pm PackageManager) PublishCommand(tag, registryURL string, access bool, dryRun bool) (string, []string) {
	command := pm.Name
	args := []string{"publish", "--tag", tag}

	switch pm.Name {
	case PNPM.Name:
		args = append(args, "--no-git-checks")
	case Yarn.Name, Bun.Name:
		command = NPM.Name
	}

	if registryURL != "" {
		args = append(args, "--registry", registryURL)
	}

	if access {
		args = append(args, "--access", "public")
	}

	if dryRun {
		args = append(args, "--dry-run")
	}

	return command, args
}

// AuditCommand returns the command and arguments auditing the dependencies of the named workspace
// package as JSON. It runs from the workspace root.
func (pm PackageManager) AuditCommand(pkgName, level string) (string, []string) {
	switch pm.Name {
	case PNPM.Name:
		return pm.Name, []string{"--filter", pkgName, "audit", "--json", "--audit-level", level}
	case Yarn.Name, Bun.Name:
		return NPM.Name, []string{"audit", "--json", "--audit-level=" + level, "--workspace=" + pkgName}
	}

	return pm.Name, []string{"audit", "--json", "--audit-level=" + level, "--workspace=" + pkgName}
}
