package testutil

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/specialistvlad/taskgrid/internal/buildstate"
	"github.com/specialistvlad/taskgrid/internal/task"
)

// FakeAnalyzer returns canned fingerprints keyed by project path.
type FakeAnalyzer struct {
	mu           sync.Mutex
	Fingerprints map[string]map[string]string
	Err          error
}

// Fingerprint implements fingerprint.Analyzer.
func (a *FakeAnalyzer) Fingerprint(_ context.Context, projectPath string) (map[string]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Err != nil {
		return nil, a.Err
	}
	fp, ok := a.Fingerprints[projectPath]
	if !ok {
		return map[string]string{}, nil
	}
	out := make(map[string]string, len(fp))
	for k, v := range fp {
		out[k] = v
	}
	return out, nil
}

// Set replaces the fingerprint of a project.
func (a *FakeAnalyzer) Set(projectPath string, fp map[string]string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Fingerprints == nil {
		a.Fingerprints = make(map[string]map[string]string)
	}
	a.Fingerprints[projectPath] = fp
}

// MemoryStore is an in-memory buildstate.Store.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*buildstate.Record
	// Invalidations counts Invalidate calls.
	Invalidations int
}

var _ buildstate.Store = (*MemoryStore)(nil)

func storeKey(projectPath, command string) string {
	return projectPath + "\x00" + command
}

// Load implements buildstate.Store.
func (s *MemoryStore) Load(projectPath, command string) (*buildstate.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[storeKey(projectPath, command)], nil
}

// Save implements buildstate.Store.
func (s *MemoryStore) Save(projectPath, command string, rec *buildstate.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.records == nil {
		s.records = make(map[string]*buildstate.Record)
	}
	s.records[storeKey(projectPath, command)] = rec
	return nil
}

// Invalidate implements buildstate.Store.
func (s *MemoryStore) Invalidate(projectPath, command string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Invalidations++
	delete(s.records, storeKey(projectPath, command))
	return nil
}

// FakeRunner records process invocations instead of spawning them.
type FakeRunner struct {
	mu sync.Mutex
	// ExitCodes maps a project name to the exit code it reports.
	ExitCodes map[string]int
	// Output is written to the task output on every run.
	Output string
	Runs   []task.Process
}

var _ task.ProcessRunner = (*FakeRunner)(nil)

// Run implements task.ProcessRunner.
func (r *FakeRunner) Run(ctx context.Context, p task.Process, out io.Writer) (int, error) {
	if err := ctx.Err(); err != nil {
		return -1, err
	}
	r.mu.Lock()
	r.Runs = append(r.Runs, p)
	code := r.ExitCodes[p.Project]
	r.mu.Unlock()

	if r.Output != "" && out != nil {
		fmt.Fprint(out, r.Output)
	}
	return code, nil
}

// Projects returns the names of the projects that were run, in call order.
func (r *FakeRunner) Projects() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.Runs))
	for _, p := range r.Runs {
		names = append(names, p.Project)
	}
	return names
}
