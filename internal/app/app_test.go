package app

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/specialistvlad/taskgrid/internal/hcl"
	"github.com/specialistvlad/taskgrid/internal/scheduler"
	"github.com/specialistvlad/taskgrid/internal/selector"
	"github.com/specialistvlad/taskgrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const manifest = `
project "a" {
  folder = "a"
}

project "b" {
  folder = "b"
}

project "@org/c" {
  folder = "c"
}

command "test" {
  default_args = ["--ci"]
}
`

// b depends on a; c is independent.
const dependencyGraph = `{"a": [], "b": ["a"], "@org/c": []}`

const packageJSON = `{"scripts": {"build": "make", "rebuild": "make -B", "test": "run-tests"}}`

type harness struct {
	root     string
	out      *testutil.SafeBuffer
	logs     *testutil.SafeBuffer
	runner   *testutil.FakeRunner
	analyzer *testutil.FakeAnalyzer
	store    *testutil.MemoryStore
}

func newHarness(t *testing.T, extra map[string]string) *harness {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		hcl.ManifestFile:                  manifest,
		".taskgrid/dependency-graph.json": dependencyGraph,
		"a/package.json":                  packageJSON,
		"b/package.json":                  packageJSON,
		"c/package.json":                  packageJSON,
	}
	for k, v := range extra {
		files[k] = v
	}
	testutil.WriteFiles(t, root, files)

	h := &harness{
		root:     root,
		out:      &testutil.SafeBuffer{},
		logs:     &testutil.SafeBuffer{},
		runner:   &testutil.FakeRunner{},
		analyzer: &testutil.FakeAnalyzer{},
		store:    &testutil.MemoryStore{},
	}
	for _, p := range []string{"a", "b", "c"} {
		h.analyzer.Set(filepath.Join(root, p), map[string]string{"index.js": p + "-v1"})
	}
	return h
}

func (h *harness) run(t *testing.T, cfg Config) error {
	t.Helper()
	cfg.RepoPath = h.root
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}
	conf, err := NewConfig(cfg)
	require.NoError(t, err)

	loader := hcl.NewLoader()
	loader.Environ = []string{}
	a := NewApp(h.out, h.logs, conf, loader,
		WithEnviron([]string{"PATH=/usr/bin"}),
		WithNumCPU(4),
		WithAnalyzer(h.analyzer),
		WithStateStore(h.store),
		WithProcessRunner(h.runner),
	)
	return a.Run(context.Background())
}

func TestRun_FailurePropagation(t *testing.T) {
	h := newHarness(t, nil)
	h.runner.ExitCodes = map[string]int{"a": 1}

	err := h.run(t, Config{Command: "rebuild"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rebuild failed")

	var execErr *scheduler.ExecutionError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, []string{"a"}, execErr.Failed)
	assert.Equal(t, []string{"b"}, execErr.Blocked)

	assert.ElementsMatch(t, []string{"@org/c", "a"}, h.runner.Projects())

	out := h.out.String()
	assert.Contains(t, out, "[fail] a")
	assert.Contains(t, out, "[blocked] b")
	assert.Contains(t, out, "[pass] @org/c")
	assert.Contains(t, out, "FAILURE: 1 succeeded, 0 skipped, 1 failed, 1 blocked")
}

func TestRun_Incremental(t *testing.T) {
	h := newHarness(t, nil)

	require.NoError(t, h.run(t, Config{Command: "build"}))
	assert.Len(t, h.runner.Runs, 3)

	require.NoError(t, h.run(t, Config{Command: "build"}))
	assert.Len(t, h.runner.Runs, 3, "nothing changed")
	assert.Contains(t, h.out.String(), "SUCCESS: 0 succeeded, 3 skipped")

	h.analyzer.Set(filepath.Join(h.root, "a"), map[string]string{"index.js": "a-v2"})
	require.NoError(t, h.run(t, Config{Command: "build"}))
	assert.Equal(t, []string{"a", "b"}, h.runner.Projects()[3:], "a changed and b depends on it")

	h.analyzer.Set(filepath.Join(h.root, "a"), map[string]string{"index.js": "a-v3"})
	require.NoError(t, h.run(t, Config{Command: "build", ChangedProjectsOnly: true}))
	assert.Equal(t, []string{"a"}, h.runner.Projects()[5:], "b is judged by its own files")
}

func TestRun_ProjectMissingFromGraph(t *testing.T) {
	h := newHarness(t, map[string]string{
		".taskgrid/dependency-graph.json": `{"a": [], "b": ["a"]}`,
	})

	require.NoError(t, h.run(t, Config{Command: "rebuild"}))
	assert.Len(t, h.runner.Runs, 3, "the project still runs")
	assert.Contains(t, h.logs.String(), "Project has no entry in the dependency graph")
	assert.Contains(t, h.logs.String(), "project=@org/c")
}

func TestRun_Selection(t *testing.T) {
	t.Run("to", func(t *testing.T) {
		h := newHarness(t, nil)
		require.NoError(t, h.run(t, Config{Command: "rebuild", To: []string{"b"}}))
		assert.Equal(t, []string{"a", "b"}, h.runner.Projects())
	})

	t.Run("from with shorthand", func(t *testing.T) {
		h := newHarness(t, nil)
		require.NoError(t, h.run(t, Config{Command: "rebuild", From: []string{"c"}}))
		assert.Equal(t, []string{"@org/c"}, h.runner.Projects())
	})

	t.Run("unknown project", func(t *testing.T) {
		h := newHarness(t, nil)
		err := h.run(t, Config{Command: "rebuild", To: []string{"nope"}})
		var unknown *selector.UnknownProjectError
		require.True(t, errors.As(err, &unknown))
		assert.Empty(t, h.runner.Runs)
	})

	t.Run("unknown command", func(t *testing.T) {
		h := newHarness(t, nil)
		err := h.run(t, Config{Command: "deploy"})
		assert.ErrorContains(t, err, `unknown command "deploy"`)
	})
}

func TestRun_ArgumentsAndEnv(t *testing.T) {
	h := newHarness(t, map[string]string{
		".env": "TASKGRID_PARALLELISM=1\nAPI_URL=http://localhost\nPATH=/ignored\n",
	})

	require.NoError(t, h.run(t, Config{Command: "test", To: []string{"a"}, ExtraArgs: []string{"--watch=false"}}))
	require.Len(t, h.runner.Runs, 1)
	p := h.runner.Runs[0]
	assert.Equal(t, "run-tests", p.Script)
	assert.Equal(t, []string{"--ci", "--watch=false"}, p.Args)
	assert.Contains(t, p.Env, "API_URL=http://localhost")
	assert.Contains(t, p.Env, "PATH=/usr/bin")
	assert.NotContains(t, p.Env, "PATH=/ignored", "process environment wins")
	assert.Contains(t, h.logs.String(), "parallelism=1")
}

func TestRun_VerboseSerialStreams(t *testing.T) {
	h := newHarness(t, nil)
	h.runner.Output = "compiling\n"

	require.NoError(t, h.run(t, Config{Command: "rebuild", To: []string{"a"}, Verbose: true, Parallelism: "1"}))
	assert.Contains(t, h.out.String(), "==[ a ]==\ncompiling\n")
}

func TestRun_Shell(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX sh")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	root := t.TempDir()
	testutil.WriteFiles(t, root, map[string]string{
		hcl.ManifestFile:                  manifest,
		".taskgrid/dependency-graph.json": dependencyGraph,
		"a/package.json":                  `{"scripts": {"rebuild": "echo building a; exit 1"}}`,
		"b/package.json":                  `{"scripts": {"rebuild": "echo building b"}}`,
		"c/package.json":                  `{"scripts": {"rebuild": "echo building c"}}`,
	})
	conf, err := NewConfig(Config{RepoPath: root, Command: "rebuild", Verbose: true})
	require.NoError(t, err)

	out := &testutil.SafeBuffer{}
	err = NewApp(out, &testutil.SafeBuffer{}, conf, hcl.NewLoader()).Run(context.Background())
	var execErr *scheduler.ExecutionError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, []string{"a"}, execErr.Failed)
	assert.Equal(t, []string{"b"}, execErr.Blocked)

	assert.Contains(t, out.String(), "building a")
	assert.Contains(t, out.String(), "building c")
	assert.NotContains(t, out.String(), "building b")
}

func TestRun_GitIncremental(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX sh")
	}
	for _, bin := range []string{"sh", "git"} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Skip(bin + " not available")
		}
	}
	root := t.TempDir()
	testutil.WriteFiles(t, root, map[string]string{
		hcl.ManifestFile:                  `project "a" { folder = "a" }`,
		".taskgrid/dependency-graph.json": `{"a": []}`,
		"a/package.json":                  `{"scripts": {"build": "echo built"}}`,
		"a/index.js":                      "one",
	})
	git := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = root
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=t", "GIT_AUTHOR_EMAIL=t@example.com",
			"GIT_COMMITTER_NAME=t", "GIT_COMMITTER_EMAIL=t@example.com")
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}
	git("init", "-q")
	git("add", ".")
	git("commit", "-q", "-m", "init")

	build := func() string {
		t.Helper()
		conf, err := NewConfig(Config{RepoPath: root, Command: "build"})
		require.NoError(t, err)
		out := &testutil.SafeBuffer{}
		require.NoError(t, NewApp(out, &testutil.SafeBuffer{}, conf, hcl.NewLoader()).Run(context.Background()))
		return out.String()
	}

	assert.Contains(t, build(), "[pass] a")
	assert.FileExists(t, filepath.Join(root, "a", ".taskgrid", "temp", "package-deps_build.yaml"))
	assert.Contains(t, build(), "[skip] a", "the saved record is not part of the fingerprint")
	assert.Contains(t, build(), "[skip] a")

	testutil.WriteFiles(t, root, map[string]string{"a/index.js": "two"})
	assert.Contains(t, build(), "[pass] a")
	assert.Contains(t, build(), "[skip] a")
}
