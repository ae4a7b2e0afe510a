package scheduler

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/specialistvlad/taskgrid/internal/graph"
	"github.com/specialistvlad/taskgrid/internal/record"
	"github.com/specialistvlad/taskgrid/internal/task"
)

// Options configure a Scheduler.
type Options struct {
	// Parallelism is the number of workers. Values below 1 mean 1.
	Parallelism int
	// Reporter receives progress. Nil discards it.
	Reporter Reporter
	// Stream, when set and Parallelism is 1, receives task output directly
	// as it is produced instead of after each task completes.
	Stream io.Writer
}

// Scheduler owns a task graph. Registration methods are safe for concurrent
// use; Execute must be called once, after registration is complete.
type Scheduler struct {
	opts  Options
	graph *graph.Graph

	mu    sync.Mutex
	tasks map[string]task.Task
}

// New returns an empty scheduler.
func New(opts Options) *Scheduler {
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	if opts.Reporter == nil {
		opts.Reporter = nopReporter{}
	}
	return &Scheduler{
		opts:  opts,
		graph: graph.New(),
		tasks: make(map[string]task.Task),
	}
}

// AddTask registers t under its name. Names must be unique.
func (s *Scheduler) AddTask(t task.Task) error {
	if err := s.graph.AddNode(t.Name()); err != nil {
		return err
	}
	s.mu.Lock()
	s.tasks[t.Name()] = t
	s.mu.Unlock()
	return nil
}

// AddDependencies records that name must wait for each of dependsOn. The
// names are checked when Execute runs, so registration order is free.
func (s *Scheduler) AddDependencies(name string, dependsOn ...string) {
	s.graph.AddEdges(name, dependsOn...)
}

// HasTask reports whether a task with the given name was registered.
func (s *Scheduler) HasTask(name string) bool {
	return s.graph.HasNode(name)
}

// Execute runs every task and returns the execution record. The error is an
// *ExecutionError when any task failed, or the context error when ctx was
// cancelled, in which case no record is returned.
func (s *Scheduler) Execute(ctx context.Context) (*record.Record, error) {
	arena, err := s.graph.Finalize()
	if err != nil {
		return nil, fmt.Errorf("invalid task graph: %w", err)
	}

	s.mu.Lock()
	tasks := make([]task.Task, arena.Len())
	for i := range tasks {
		tasks[i] = s.tasks[arena.Name(i)]
	}
	s.mu.Unlock()

	return newRun(arena, tasks, s.opts).execute(ctx)
}
