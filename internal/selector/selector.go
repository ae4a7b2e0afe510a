package selector

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/specialistvlad/taskgrid/internal/config"
	"github.com/specialistvlad/taskgrid/internal/ctxlog"
	"github.com/specialistvlad/taskgrid/internal/depgraph"
	"github.com/specialistvlad/taskgrid/internal/task"
)

// Selector resolves project filters against one repository.
type Selector struct {
	projects map[string]*config.Project
	graph    depgraph.Graph

	inverseOnce sync.Once
	inverse     depgraph.Graph
}

// New returns a selector over projects. Edges of g that a project declares
// as cyclic dependency exceptions are dropped.
func New(projects []*config.Project, g depgraph.Graph) *Selector {
	s := &Selector{
		projects: make(map[string]*config.Project, len(projects)),
		graph:    make(depgraph.Graph, len(g)),
	}
	for _, p := range projects {
		s.projects[p.Name] = p
	}
	for name, deps := range g {
		p, ok := s.projects[name]
		if !ok {
			s.graph[name] = deps
			continue
		}
		kept := make([]string, 0, len(deps))
		for _, d := range deps {
			if !p.IsCyclicException(d) {
				kept = append(kept, d)
			}
		}
		s.graph[name] = kept
	}
	return s
}

// dependents returns the inverse graph, built on first use.
func (s *Selector) dependents() depgraph.Graph {
	s.inverseOnce.Do(func() {
		s.inverse = s.graph.Inverse()
	})
	return s.inverse
}

// Resolve maps a user supplied name to a project name. An exact match wins;
// otherwise an unscoped name matches "@scope/name" when exactly one project
// has that unscoped name.
func (s *Selector) Resolve(name string) (string, error) {
	if _, ok := s.projects[name]; ok {
		return name, nil
	}

	var candidates []string
	for projectName := range s.projects {
		if unscoped(projectName) == name {
			candidates = append(candidates, projectName)
		}
	}
	sort.Strings(candidates)
	switch len(candidates) {
	case 1:
		return candidates[0], nil
	case 0:
		return "", &UnknownProjectError{Name: name}
	default:
		return "", &UnknownProjectError{Name: name, Candidates: candidates}
	}
}

func unscoped(name string) string {
	if strings.HasPrefix(name, "@") {
		if _, rest, ok := strings.Cut(name, "/"); ok {
			return rest
		}
	}
	return name
}

// Selection is the outcome of applying filters.
type Selection struct {
	// Projects are the selected projects in name order.
	Projects []*config.Project
	// Edges maps a selected project to its selected dependencies.
	Edges map[string][]string
}

// Names returns the selected project names in order.
func (sel *Selection) Names() []string {
	names := make([]string, len(sel.Projects))
	for i, p := range sel.Projects {
		names[i] = p.Name
	}
	return names
}

// Select applies the filters. Every name is resolved before any closure is
// computed, so an unknown name fails without side effects. Graph names that
// have no project record are left out.
func (s *Selector) Select(ctx context.Context, to, from []string) (*Selection, error) {
	logger := ctxlog.FromContext(ctx)

	toNames, err := s.resolveAll(to)
	if err != nil {
		return nil, err
	}
	fromNames, err := s.resolveAll(from)
	if err != nil {
		return nil, err
	}

	selected := make(Set)
	if len(toNames) == 0 && len(fromNames) == 0 {
		for name := range s.projects {
			selected.Add(name)
		}
	} else {
		upMemo := make(map[string]Set)
		for _, name := range toNames {
			selected.Union(Upstream(s.graph, name, upMemo))
		}
		if len(fromNames) > 0 {
			inv := s.dependents()
			downMemo := make(map[string]Set)
			for _, name := range fromNames {
				selected.Union(Downstream(inv, name, downMemo))
			}
		}
	}

	sel := &Selection{Edges: make(map[string][]string)}
	for _, name := range selected.Sorted() {
		p, ok := s.projects[name]
		if !ok {
			logger.Debug("Skipping graph entry without a project.", "project", name)
			continue
		}
		sel.Projects = append(sel.Projects, p)
	}
	for _, p := range sel.Projects {
		sel.Edges[p.Name] = s.projectDependencies(p.Name, selected)
	}
	logger.Debug("Selected projects.", "count", len(sel.Projects), "to", toNames, "from", fromNames)
	return sel, nil
}

// projectDependencies returns the selected projects name depends on. Graph
// entries without a project are walked through, so ordering between the
// projects on either side of them is kept.
func (s *Selector) projectDependencies(name string, selected Set) []string {
	var deps []string
	added := make(Set)
	visited := Set{name: {}}
	stack := []string{name}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, d := range s.graph.Dependencies(n) {
			if visited.Has(d) {
				continue
			}
			visited.Add(d)
			if _, ok := s.projects[d]; !ok {
				stack = append(stack, d)
				continue
			}
			if selected.Has(d) && !added.Has(d) {
				added.Add(d)
				deps = append(deps, d)
			}
		}
	}
	sort.Strings(deps)
	return deps
}

func (s *Selector) resolveAll(names []string) ([]string, error) {
	out := make([]string, 0, len(names))
	for _, n := range names {
		r, err := s.Resolve(n)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Registrar receives the tasks and edges of a selection.
type Registrar interface {
	AddTask(t task.Task) error
	AddDependencies(name string, dependsOn ...string)
}

// Populate registers one task per selected project and, unless ignoreOrder
// is set, the edges between them.
func Populate(sel *Selection, r Registrar, newTask func(*config.Project) task.Task, ignoreOrder bool) error {
	for _, p := range sel.Projects {
		if err := r.AddTask(newTask(p)); err != nil {
			return fmt.Errorf("register project %s: %w", p.Name, err)
		}
	}
	if ignoreOrder {
		return nil
	}
	for _, p := range sel.Projects {
		if deps := sel.Edges[p.Name]; len(deps) > 0 {
			r.AddDependencies(p.Name, deps...)
		}
	}
	return nil
}
