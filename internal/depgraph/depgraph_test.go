package depgraph

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "a": [],
  "b": ["a", "a"],
  "c": ["b", "external"]
}`), 0o644))

	g, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, g.Names())
	assert.Equal(t, []string{"a"}, g.Dependencies("b"), "duplicates are dropped")
	assert.Equal(t, []string{"b", "external"}, g.Dependencies("c"))
	assert.Empty(t, g.Dependencies("nope"))
	assert.True(t, g.Has("a"))
	assert.False(t, g.Has("external"))
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: []\nb:\n  - a\n"), 0o644))

	g, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, g.Dependencies("b"))
}

func TestLoad_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")

	_, err := Load(path)
	var missing *MissingGraphError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, path, missing.Path)
	assert.Contains(t, err.Error(), "generation step")
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte(`{"a": "not-a-list"}`))
	assert.ErrorContains(t, err, "parse dependency graph")
}

func TestInverse(t *testing.T) {
	g := Graph{
		"a": {},
		"b": {"a"},
		"c": {"a", "b"},
	}

	inv := g.Inverse()
	assert.Equal(t, []string{"b", "c"}, inv.Dependencies("a"))
	assert.Equal(t, []string{"c"}, inv.Dependencies("b"))
	assert.Empty(t, inv.Dependencies("c"))
	assert.True(t, inv.Has("c"))
}
