// Package deps builds the dependency graph among declared formulas.
package deps

import (
	"fmt"
	"io"
	"strings"

	"github.com/adamancini/brewfile/internal/manifest"
)

// Lister lists the dependencies of a formula.
type Lister interface {
	Deps(name string, oneLevel bool) ([]string, error)
}

// Graph maps each declared formula to the declared formulas it directly
// depends on.
type Graph struct {
	order []string
	edges map[string][]string
}

// Build queries the direct dependencies of every formula and keeps only
// those that are themselves in formulas.
func Build(formulas []string, lister Lister) (*Graph, error) {
	g := &Graph{edges: make(map[string][]string, len(formulas))}
	declared := make(map[string]bool, len(formulas))
	for _, f := range formulas {
		name := manifest.BaseName(f)
		if declared[name] {
			continue
		}
		declared[name] = true
		g.order = append(g.order, name)
	}

	for _, name := range g.order {
		found, err := lister.Deps(name, true)
		if err != nil {
			return nil, fmt.Errorf("failed to list dependencies of %s: %w", name, err)
		}
		g.edges[name] = []string{}
		for _, d := range found {
			d = manifest.BaseName(d)
			if declared[d] {
				g.edges[name] = append(g.edges[name], d)
			}
		}
	}
	return g, nil
}

// Map returns the graph as a map of formula to dependencies.
func (g *Graph) Map() map[string][]string {
	out := make(map[string][]string, len(g.edges))
	for k, v := range g.edges {
		out[k] = append([]string{}, v...)
	}
	return out
}

// Dependencies returns the declared direct dependencies of name.
func (g *Graph) Dependencies(name string) []string {
	return g.edges[name]
}

// Top returns the formulas no other formula depends on, in declaration order.
func (g *Graph) Top() []string {
	used := map[string]bool{}
	for _, deps := range g.edges {
		for _, d := range deps {
			used[d] = true
		}
	}
	var top []string
	for _, name := range g.order {
		if !used[name] {
			top = append(top, name)
		}
	}
	return top
}

// WriteTree prints each top formula followed by its dependencies, depth
// first. Nested lines are indented two spaces per level and commented out.
func (g *Graph) WriteTree(w io.Writer) error {
	var walk func(name string, depth int, path map[string]bool) error
	walk = func(name string, depth int, path map[string]bool) error {
		line := name
		if depth > 0 {
			line = "#" + strings.Repeat("  ", depth-1) + name
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		path[name] = true
		defer delete(path, name)
		for _, d := range g.edges[name] {
			if path[d] {
				continue
			}
			if err := walk(d, depth+1, path); err != nil {
				return err
			}
		}
		return nil
	}

	for _, name := range g.Top() {
		if err := walk(name, 0, map[string]bool{}); err != nil {
			return err
		}
	}
	return nil
}
