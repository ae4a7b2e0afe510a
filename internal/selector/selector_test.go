package selector

import (
	"context"
	"errors"
	"testing"

	"github.com/specialistvlad/taskgrid/internal/config"
	"github.com/specialistvlad/taskgrid/internal/ctxlog"
	"github.com/specialistvlad/taskgrid/internal/depgraph"
	"github.com/specialistvlad/taskgrid/internal/task"
	"github.com/specialistvlad/taskgrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func projects(names ...string) []*config.Project {
	out := make([]*config.Project, len(names))
	for i, n := range names {
		out[i] = &config.Project{Name: n, Folder: n}
	}
	return out
}

// chain is A <- B <- C, plus a graph-only entry D depending on A.
func chain() *Selector {
	g := depgraph.Graph{
		"A": {},
		"B": {"A"},
		"C": {"B"},
		"D": {"A"},
	}
	return New(projects("A", "B", "C"), g)
}

func TestSelect(t *testing.T) {
	ctx := ctxlog.Discard(context.Background())

	testCases := []struct {
		name      string
		to, from  []string
		wantNames []string
		wantEdges map[string][]string
	}{
		{
			name:      "no filters selects everything",
			wantNames: []string{"A", "B", "C"},
			wantEdges: map[string][]string{"A": nil, "B": {"A"}, "C": {"B"}},
		},
		{
			name:      "to selects upstream",
			to:        []string{"B"},
			wantNames: []string{"A", "B"},
			wantEdges: map[string][]string{"A": nil, "B": {"A"}},
		},
		{
			name:      "from selects downstream",
			from:      []string{"B"},
			wantNames: []string{"B", "C"},
			wantEdges: map[string][]string{"B": nil, "C": {"B"}},
		},
		{
			name:      "from skips graph entries without a project",
			from:      []string{"A"},
			wantNames: []string{"A", "B", "C"},
			wantEdges: map[string][]string{"A": nil, "B": {"A"}, "C": {"B"}},
		},
		{
			name:      "filters are combined by union",
			to:        []string{"A"},
			from:      []string{"C"},
			wantNames: []string{"A", "C"},
			wantEdges: map[string][]string{"A": nil, "C": nil},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sel, err := chain().Select(ctx, tc.to, tc.from)
			require.NoError(t, err)
			assert.Equal(t, tc.wantNames, sel.Names())
			assert.Equal(t, tc.wantEdges, sel.Edges)
		})
	}
}

func TestSelect_ThroughGraphOnlyEntries(t *testing.T) {
	ctx := ctxlog.Discard(context.Background())
	// shim and glue are graph entries without a project.
	g := depgraph.Graph{
		"app":  {"shim"},
		"shim": {"glue", "lib"},
		"glue": {"shim", "util"},
		"lib":  {},
		"util": {},
	}
	s := New(projects("app", "lib", "util"), g)

	sel, err := s.Select(ctx, []string{"app"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"app", "lib", "util"}, sel.Names())
	assert.Equal(t, []string{"lib", "util"}, sel.Edges["app"])

	sel, err = s.Select(ctx, nil, []string{"lib"})
	require.NoError(t, err)
	assert.Equal(t, []string{"app", "lib"}, sel.Names())
	assert.Equal(t, map[string][]string{"app": {"lib"}, "lib": nil}, sel.Edges)

	sel, err = s.Select(ctx, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"app": {"lib", "util"}, "lib": nil, "util": nil}, sel.Edges)
}

func TestSelect_UnknownProject(t *testing.T) {
	ctx := ctxlog.Discard(context.Background())
	s := chain()

	for _, filter := range [][2][]string{
		{{"nope"}, nil},
		{nil, {"nope"}},
		{{"A"}, {"D"}},
	} {
		_, err := s.Select(ctx, filter[0], filter[1])
		var unknown *UnknownProjectError
		require.True(t, errors.As(err, &unknown), "filter %v", filter)
		assert.Empty(t, unknown.Candidates)
	}
}

func TestSelect_CyclicDependencyException(t *testing.T) {
	ctx := ctxlog.Discard(context.Background())
	ps := projects("A", "B", "C")
	ps[0].CyclicDependencyExceptions = []string{"C"}
	g := depgraph.Graph{"A": {"C"}, "B": {"A"}, "C": {"B"}}

	sel, err := New(ps, g).Select(ctx, []string{"A"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, sel.Names())
	assert.Empty(t, sel.Edges["A"])

	sel, err = New(ps, g).Select(ctx, nil, []string{"C"})
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, sel.Names(), "the exception does not make A a dependent of C")
}

func TestResolve(t *testing.T) {
	s := New(projects("@org/ui", "@org/api", "@other/api", "tools"), depgraph.Graph{})

	got, err := s.Resolve("@org/ui")
	require.NoError(t, err)
	assert.Equal(t, "@org/ui", got)

	got, err = s.Resolve("ui")
	require.NoError(t, err)
	assert.Equal(t, "@org/ui", got, "unique shorthand")

	got, err = s.Resolve("tools")
	require.NoError(t, err)
	assert.Equal(t, "tools", got)

	_, err = s.Resolve("api")
	var unknown *UnknownProjectError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, []string{"@org/api", "@other/api"}, unknown.Candidates)
	assert.Contains(t, err.Error(), "ambiguous")

	_, err = s.Resolve("org/ui")
	assert.ErrorContains(t, err, `unknown project "org/ui"`)
}

func TestClosures(t *testing.T) {
	g := depgraph.Graph{
		"a": {"b", "c"},
		"b": {"d"},
		"c": {"d"},
		"d": {},
		"x": {"y"},
		"y": {"x"},
	}

	memo := make(map[string]Set)
	assert.Equal(t, []string{"a", "b", "c", "d"}, Upstream(g, "a", memo).Sorted())
	assert.Equal(t, []string{"b", "d"}, Upstream(g, "b", memo).Sorted())
	assert.Contains(t, memo, "b")

	assert.Equal(t, []string{"x", "y"}, Upstream(g, "x", memo).Sorted(), "cycles terminate")

	inv := g.Inverse()
	down := make(map[string]Set)
	assert.Equal(t, []string{"a", "b", "c", "d"}, Downstream(inv, "d", down).Sorted())
	assert.Equal(t, []string{"a", "c"}, Downstream(inv, "c", down).Sorted())

	assert.Equal(t, []string{"unknown"}, Upstream(g, "unknown", memo).Sorted())
}

type registrar struct {
	tasks []string
	edges map[string][]string
}

func (r *registrar) AddTask(t task.Task) error {
	r.tasks = append(r.tasks, t.Name())
	return nil
}

func (r *registrar) AddDependencies(name string, dependsOn ...string) {
	if r.edges == nil {
		r.edges = make(map[string][]string)
	}
	r.edges[name] = append(r.edges[name], dependsOn...)
}

func TestPopulate(t *testing.T) {
	sel, err := chain().Select(ctxlog.Discard(context.Background()), []string{"C"}, nil)
	require.NoError(t, err)
	newTask := func(p *config.Project) task.Task { return &testutil.FakeTask{ID: p.Name} }

	r := &registrar{}
	require.NoError(t, Populate(sel, r, newTask, false))
	assert.Equal(t, []string{"A", "B", "C"}, r.tasks)
	assert.Equal(t, map[string][]string{"B": {"A"}, "C": {"B"}}, r.edges)

	r = &registrar{}
	require.NoError(t, Populate(sel, r, newTask, true))
	assert.Len(t, r.tasks, 3)
	assert.Empty(t, r.edges, "dependency order ignored")
}
