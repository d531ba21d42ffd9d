package graph

import (
	"fmt"
	"strings"
)

// CycleError lists the packages left unsorted because of a dependency cycle and the edges among them.
type CycleError struct {
	Packages []string
	Edges    []Edge
}

func (err *CycleError) Error() string {
	edges := make([]string, len(err.Edges))
	for i, edge := range err.Edges {
		edges[i] = edge.Dependent + " -> " + edge.Dependency
	}

	return fmt.Sprintf("dependency cycle between packages %s: %s", strings.Join(err.Packages, ", "), strings.Join(edges, ", "))
}
