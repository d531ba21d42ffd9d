// Package graph orders workspace packages so that every package comes after the packages it depends on.
package graph

import (
	"path/filepath"
	"slices"

	"github.com/monorel/monorel/internal/errors"
	"github.com/monorel/monorel/internal/queue"
	"github.com/monorel/monorel/internal/workspace"
)

// Edge points from a dependency to the package depending on it.
type Edge struct {
	Dependency string `json:"dependency"`
	Dependent  string `json:"dependent"`
}

type node struct {
	pkg *workspace.Package
	// dependents are the names of packages depending on this one, in input order.
	dependents []string
	// dependencies are the workspace dependencies of this package, sorted by name.
	dependencies []string
}

// Graph is the workspace dependency graph of one run.
type Graph struct {
	nodes map[string]*node
	order []string
}

// Build reads the workspace dependencies of pkgs and returns their graph. Dependencies on
// packages outside pkgs are ignored whatever their version range. Manifests not parsed during
// discovery are read from rootDir.
func Build(rootDir string, pkgs workspace.Packages) (*Graph, error) {
	g := &Graph{
		nodes: make(map[string]*node, len(pkgs)),
		order: make([]string, 0, len(pkgs)),
	}

	for _, pkg := range pkgs {
		if existing, ok := g.nodes[pkg.Name]; ok {
			return nil, errors.New(workspace.DuplicatePackageError{
				Name:  pkg.Name,
				Paths: []string{existing.pkg.ManifestPath, pkg.ManifestPath},
			})
		}

		g.nodes[pkg.Name] = &node{pkg: pkg}
		g.order = append(g.order, pkg.Name)
	}

	for _, pkg := range pkgs {
		manifest := pkg.Manifest
		if manifest == nil {
			var err error

			manifest, err = workspace.ReadManifest(filepath.Join(rootDir, filepath.FromSlash(pkg.ManifestPath)))
			if err != nil {
				return nil, err
			}
		}

		for _, dep := range manifest.DependencyNames() {
			if dep == pkg.Name {
				continue
			}

			depNode, ok := g.nodes[dep]
			if !ok {
				continue
			}

			g.nodes[pkg.Name].dependencies = append(g.nodes[pkg.Name].dependencies, dep)
			depNode.dependents = append(depNode.dependents, pkg.Name)
		}
	}

	return g, nil
}

// Edges returns all edges, grouped by dependent in input order.
func (g *Graph) Edges() []Edge {
	var edges []Edge

	for _, name := range g.order {
		for _, dep := range g.nodes[name].dependencies {
			edges = append(edges, Edge{Dependency: dep, Dependent: name})
		}
	}

	return edges
}

// Dependencies returns the workspace dependencies of the named package.
func (g *Graph) Dependencies(name string) []string {
	if n, ok := g.nodes[name]; ok {
		return slices.Clone(n.dependencies)
	}

	return nil
}

// Sort returns the packages in topological order using Kahn's algorithm. Packages become ready
// in input order, so independent packages keep their relative order. A cycle fails the sort
// with a *CycleError and no order.
func (g *Graph) Sort() (workspace.Packages, error) {
	inDegree := make(map[string]int, len(g.nodes))

	ready := queue.NewQueue[string]()

	for _, name := range g.order {
		inDegree[name] = len(g.nodes[name].dependencies)
		if inDegree[name] == 0 {
			ready.Enqueue(name)
		}
	}

	sorted := make(workspace.Packages, 0, len(g.order))

	for name, ok := ready.Dequeue(); ok; name, ok = ready.Dequeue() {
		n := g.nodes[name]
		sorted = append(sorted, n.pkg)

		for _, dependent := range n.dependents {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				ready.Enqueue(dependent)
			}
		}
	}

	if len(sorted) < len(g.order) {
		return nil, errors.New(g.cycleError(inDegree))
	}

	return sorted, nil
}

func (g *Graph) cycleError(inDegree map[string]int) *CycleError {
	cycle := &CycleError{}

	for _, name := range g.order {
		if inDegree[name] == 0 {
			continue
		}

		cycle.Packages = append(cycle.Packages, name)

		for _, dep := range g.nodes[name].dependencies {
			if inDegree[dep] > 0 {
				cycle.Edges = append(cycle.Edges, Edge{Dependency: dep, Dependent: name})
			}
		}
	}

	return cycle
}

// Order builds the graph of pkgs and sorts it.
func Order(rootDir string, pkgs workspace.Packages) (workspace.Packages, error) {
	g, err := Build(rootDir, pkgs)
	if err != nil {
		return nil, err
	}

	return g.Sort()
}
