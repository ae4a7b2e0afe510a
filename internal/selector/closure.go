package selector

import (
	"sort"

	"github.com/specialistvlad/taskgrid/internal/depgraph"
)

// Set is an unordered set of project names.
type Set map[string]struct{}

// Add inserts name into the set.
func (s Set) Add(name string) { s[name] = struct{}{} }

// Has reports whether name is in the set.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Union adds every member of other to s.
func (s Set) Union(other Set) {
	for name := range other {
		s[name] = struct{}{}
	}
}

// Sorted returns the members of the set in name order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Upstream returns name together with everything it transitively depends on
// in g. Results are cached in memo, which the caller owns; a memo must only
// be reused with the same graph.
func Upstream(g depgraph.Graph, name string, memo map[string]Set) Set {
	return closure(g, name, memo)
}

// Downstream returns name together with everything that transitively
// depends on it. inverse must be the inverse of the dependency graph (see
// depgraph.Graph.Inverse).
func Downstream(inverse depgraph.Graph, name string, memo map[string]Set) Set {
	return closure(inverse, name, memo)
}

// closure walks g from name. Memoized entries are always complete closures,
// so they are merged wholesale instead of walked again. Cycles terminate
// because a name is expanded at most once per walk.
func closure(g depgraph.Graph, name string, memo map[string]Set) Set {
	if cached, ok := memo[name]; ok {
		return cached
	}

	result := Set{name: {}}
	stack := []string{name}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, next := range g.Dependencies(n) {
			if result.Has(next) {
				continue
			}
			if cached, ok := memo[next]; ok {
				result.Union(cached)
				continue
			}
			result.Add(next)
			stack = append(stack, next)
		}
	}

	memo[name] = result
	return result
}
