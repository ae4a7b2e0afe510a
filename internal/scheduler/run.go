package scheduler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/specialistvlad/taskgrid/internal/ctxlog"
	"github.com/specialistvlad/taskgrid/internal/graph"
	"github.com/specialistvlad/taskgrid/internal/node"
	"github.com/specialistvlad/taskgrid/internal/record"
	"github.com/specialistvlad/taskgrid/internal/task"
)

// run is the mutable state of one Execute call. Everything below mu is
// guarded by it.
type run struct {
	arena *graph.Arena
	tasks []task.Task
	opts  Options
	ready chan int

	mu          sync.Mutex
	status      []node.Status
	pending     []int
	upstreamRan []bool
	remaining   int
	rec         *record.Record
	causes      []error
}

func newRun(arena *graph.Arena, tasks []task.Task, opts Options) *run {
	n := arena.Len()
	r := &run{
		arena:       arena,
		tasks:       tasks,
		opts:        opts,
		ready:       make(chan int, n),
		status:      make([]node.Status, n),
		pending:     make([]int, n),
		upstreamRan: make([]bool, n),
		remaining:   n,
		rec:         &record.Record{},
	}
	for i := 0; i < n; i++ {
		r.pending[i] = len(arena.Dependencies(i))
	}
	return r
}

func (r *run) execute(ctx context.Context) (*record.Record, error) {
	logger := ctxlog.FromContext(ctx)
	r.rec.Start = time.Now()

	if r.remaining == 0 {
		r.rec.End = r.rec.Start
		return r.rec, nil
	}

	// Roots come back in name order, which keeps the initial queue stable.
	r.mu.Lock()
	for _, i := range r.arena.Roots() {
		r.status[i] = node.Ready
		r.ready <- i
	}
	r.mu.Unlock()

	workers := r.opts.Parallelism
	if workers > r.arena.Len() {
		workers = r.arena.Len()
	}
	stream := r.opts.Stream != nil && r.opts.Parallelism == 1

	logger.Debug("Starting worker pool.", "workers", workers, "tasks", r.arena.Len())
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			r.worker(ctx, id, stream)
		}(w)
	}
	wg.Wait()
	logger.Debug("All tasks reached a terminal status.")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.rec.End = time.Now()
	if !r.rec.Succeeded() {
		return r.rec, &ExecutionError{
			Failed:  r.rec.Failed(),
			Blocked: r.rec.Blocked(),
			Causes:  r.causes,
		}
	}
	return r.rec, nil
}

// worker executes ready nodes until the channel is closed.
func (r *run) worker(ctx context.Context, id int, stream bool) {
	ctx = ctxlog.With(ctx, "workerID", id)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.")

	for i := range r.ready {
		name := r.arena.Name(i)
		taskCtx := ctxlog.With(ctx, "task", name)
		taskLogger := ctxlog.FromContext(taskCtx)

		if err := ctx.Err(); err != nil {
			taskLogger.Debug("Context cancelled, not starting task.")
			r.complete(ctx, record.TaskRecord{Name: name, Status: node.Failure, Err: err}, i, nil)
			continue
		}

		upstreamRan := r.begin(i)
		opts := task.Options{UpstreamRan: upstreamRan}
		var buf *bytes.Buffer
		if stream {
			r.opts.Reporter.BeginStream(name)
			opts.Output = r.opts.Stream
		} else {
			buf = new(bytes.Buffer)
			opts.Output = buf
		}

		taskLogger.Debug("Worker picked up task.", "upstreamRan", upstreamRan)
		tr := record.TaskRecord{Name: name, Start: time.Now()}
		outcome, err := r.tasks[i].Execute(taskCtx, opts)
		tr.End = time.Now()

		switch {
		case err != nil:
			tr.Status, tr.Err = node.Failure, err
			if ctx.Err() == nil {
				taskLogger.Error("Task failed.", "error", err)
			}
		case outcome == task.Skipped:
			tr.Status = node.Skipped
		default:
			tr.Status = node.Success
		}

		var output []byte
		if buf != nil {
			output = buf.Bytes()
		}
		r.complete(ctx, tr, i, output)
	}
	logger.Debug("Worker finished.")
}

// begin marks node i as running and returns whether a predecessor ran.
func (r *run) begin(i int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status[i] = node.Running
	return r.upstreamRan[i]
}

// complete records the result of node i, releases or blocks its dependents
// and reports everything that became terminal.
func (r *run) complete(ctx context.Context, tr record.TaskRecord, i int, output []byte) {
	r.mu.Lock()
	finished := []record.TaskRecord{tr}
	r.settle(i, tr)

	if tr.Status.Satisfies() {
		for _, d := range r.arena.Dependents(i) {
			if tr.Status == node.Success {
				r.upstreamRan[d] = true
			}
			r.pending[d]--
			if r.pending[d] == 0 && r.status[d] == node.Blocked {
				r.status[d] = node.Ready
				r.ready <- d
			}
		}
	} else {
		if !errors.Is(tr.Err, context.Canceled) && !errors.Is(tr.Err, context.DeadlineExceeded) {
			r.causes = append(r.causes, fmt.Errorf("%s: %w", tr.Name, tr.Err))
		}
		finished = r.blockDependents(i, tr.Name, finished)
	}

	if r.remaining == 0 {
		close(r.ready)
	}
	r.mu.Unlock()

	// An interrupted run has no meaningful results to show.
	if ctx.Err() != nil {
		return
	}
	for j, f := range finished {
		if j == 0 {
			r.opts.Reporter.TaskFinished(f, output)
			continue
		}
		r.opts.Reporter.TaskFinished(f, nil)
	}
}

// settle stores a terminal result. Callers hold mu.
func (r *run) settle(i int, tr record.TaskRecord) {
	r.status[i] = tr.Status
	r.rec.Tasks = append(r.rec.Tasks, tr)
	r.remaining--
}

// blockDependents marks every transitive dependent of i that has not
// finished as blocked-failed. Callers hold mu.
func (r *run) blockDependents(i int, cause string, finished []record.TaskRecord) []record.TaskRecord {
	for _, d := range r.arena.Dependents(i) {
		if r.status[d] != node.Blocked {
			continue
		}
		tr := record.TaskRecord{
			Name:   r.arena.Name(d),
			Status: node.BlockedFailed,
			Err:    fmt.Errorf("dependency %s failed", cause),
		}
		r.settle(d, tr)
		finished = append(finished, tr)
		finished = r.blockDependents(d, tr.Name, finished)
	}
	return finished
}
