package depgraph

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// MissingGraphError is returned when the dependency graph file does not exist.
type MissingGraphError struct {
	Path string
}

func (e *MissingGraphError) Error() string {
	return fmt.Sprintf("dependency graph not found at %s: run the dependency graph generation step first", e.Path)
}

// Graph maps a project name to the names of the projects it depends on.
type Graph map[string][]string

// Load reads the dependency graph stored at path. YAML is a superset of
// JSON, so both encodings are accepted.
func Load(path string) (Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &MissingGraphError{Path: path}
		}
		return nil, fmt.Errorf("read dependency graph: %w", err)
	}
	return Parse(data)
}

// Parse decodes a dependency graph document.
func Parse(data []byte) (Graph, error) {
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse dependency graph: %w", err)
	}

	g := make(Graph, len(raw))
	for name, deps := range raw {
		if name == "" {
			return nil, errors.New("parse dependency graph: empty project name")
		}
		g[name] = dedupe(deps)
	}
	return g, nil
}

// dedupe drops repeated names while keeping the first occurrence order.
func dedupe(deps []string) []string {
	out := make([]string, 0, len(deps))
	seen := make(map[string]struct{}, len(deps))
	for _, d := range deps {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}

// Dependencies returns the direct dependencies of name. Unknown names have
// none.
func (g Graph) Dependencies(name string) []string {
	return g[name]
}

// Has reports whether name appears as a key of the graph.
func (g Graph) Has(name string) bool {
	_, ok := g[name]
	return ok
}

// Names returns every project name in the graph, sorted.
func (g Graph) Names() []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Inverse returns the graph of dependents: for every edge P -> D in g the
// result holds D -> P. Dependents are listed in name order and every name
// that appears anywhere in g is a key of the result.
func (g Graph) Inverse() Graph {
	inv := make(Graph, len(g))
	for _, name := range g.Names() {
		if _, ok := inv[name]; !ok {
			inv[name] = []string{}
		}
		for _, dep := range g[name] {
			inv[dep] = append(inv[dep], name)
		}
	}
	return inv
}
