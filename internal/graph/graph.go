package graph

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrDuplicateNode is returned when the same node ID is registered twice.
	ErrDuplicateNode = errors.New("duplicate node")
	// ErrUnknownNode is returned when an edge references a node that was never registered.
	ErrUnknownNode = errors.New("unknown node")
	// ErrSelfEdge is returned for an edge from a node to itself.
	ErrSelfEdge = errors.New("self-referential edge")
	// ErrCycle is returned when the registered edges form a cycle.
	ErrCycle = errors.New("cycle detected")
)

// edge records that id depends on dependsOn.
type edge struct {
	id        string
	dependsOn string
}

// Graph collects nodes and edges. All registration methods are
// concurrency-safe.
type Graph struct {
	mu    sync.Mutex
	nodes map[string]struct{}
	edges []edge
}

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]struct{}),
	}
}

// AddNode registers a node. Registering the same ID twice is an error.
func (g *Graph) AddNode(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, id)
	}
	g.nodes[id] = struct{}{}
	return nil
}

// HasNode reports whether a node with the given ID has been registered.
func (g *Graph) HasNode(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.nodes[id]
	return ok
}

// AddEdges records that id depends on each of dependsOn. The endpoints are
// validated by Finalize, so either side may be registered later.
func (g *Graph) AddEdges(id string, dependsOn ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, dep := range dependsOn {
		g.edges = append(g.edges, edge{id: id, dependsOn: dep})
	}
}

// Finalize resolves all recorded edges into an Arena. Duplicate edges are
// collapsed.
func (g *Graph) Finalize() (*Arena, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	names := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		names = append(names, id)
	}
	sort.Strings(names)

	index := make(map[string]int, len(names))
	for i, id := range names {
		index[id] = i
	}

	a := &Arena{
		names:      names,
		index:      index,
		deps:       make([][]int, len(names)),
		dependents: make([][]int, len(names)),
	}

	seen := make(map[[2]int]struct{}, len(g.edges))
	for _, e := range g.edges {
		if e.id == e.dependsOn {
			return nil, fmt.Errorf("%w: %s -> %s", ErrSelfEdge, e.id, e.dependsOn)
		}
		from, ok := index[e.id]
		if !ok {
			return nil, fmt.Errorf("%w: %q (declared with dependency %q)", ErrUnknownNode, e.id, e.dependsOn)
		}
		to, ok := index[e.dependsOn]
		if !ok {
			return nil, fmt.Errorf("%w: %q (dependency of %q)", ErrUnknownNode, e.dependsOn, e.id)
		}
		key := [2]int{from, to}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		a.deps[from] = append(a.deps[from], to)
		a.dependents[to] = append(a.dependents[to], from)
	}

	for i := range names {
		sort.Ints(a.deps[i])
		sort.Ints(a.dependents[i])
	}

	if err := a.detectCycles(); err != nil {
		return nil, err
	}
	return a, nil
}

// Arena is the frozen, index-based form of a Graph.
type Arena struct {
	names      []string
	index      map[string]int
	deps       [][]int
	dependents [][]int
}

// Len returns the number of nodes in the arena.
func (a *Arena) Len() int { return len(a.names) }

// Name returns the ID of the node at index i.
func (a *Arena) Name(i int) string { return a.names[i] }

// Index returns the index of the node with the given ID.
func (a *Arena) Index(id string) (int, bool) {
	i, ok := a.index[id]
	return i, ok
}

// Dependencies returns the indices of the nodes that node i depends on, in
// ascending order. The slice must not be modified.
func (a *Arena) Dependencies(i int) []int { return a.deps[i] }

// Dependents returns the indices of the nodes that depend on node i, in
// ascending order. The slice must not be modified.
func (a *Arena) Dependents(i int) []int { return a.dependents[i] }

// Roots returns the indices of all nodes without dependencies.
func (a *Arena) Roots() []int {
	var roots []int
	for i := range a.names {
		if len(a.deps[i]) == 0 {
			roots = append(roots, i)
		}
	}
	return roots
}

// detectCycles checks the arena for cycles using a depth-first search over
// the dependents relation.
func (a *Arena) detectCycles() error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(a.names))
	var stack []int

	var visit func(n int) error
	visit = func(n int) error {
		switch state[n] {
		case done:
			return nil
		case visiting:
			// n is on the current path; report the loop starting at n.
			start := 0
			for i, s := range stack {
				if s == n {
					start = i
					break
				}
			}
			path := make([]string, 0, len(stack)-start+1)
			for _, s := range stack[start:] {
				path = append(path, a.names[s])
			}
			path = append(path, a.names[n])
			return fmt.Errorf("%w: %s", ErrCycle, strings.Join(path, " -> "))
		}

		state[n] = visiting
		stack = append(stack, n)
		for _, d := range a.dependents[n] {
			if err := visit(d); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[n] = done
		return nil
	}

	for i := range a.names {
		if err := visit(i); err != nil {
			return err
		}
	}
	return nil
}
