package testutil

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/taskgrid/internal/task"
)

// Tracker observes the fake tasks of one run: the order they started in,
// the options they received and the peak number running at once.
type Tracker struct {
	mu      sync.Mutex
	started []string
	options map[string]task.Options

	running atomic.Int32
	peak    atomic.Int32
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{options: make(map[string]task.Options)}
}

func (tr *Tracker) enter(name string, opts task.Options) {
	n := tr.running.Add(1)
	for {
		p := tr.peak.Load()
		if n <= p || tr.peak.CompareAndSwap(p, n) {
			break
		}
	}
	tr.mu.Lock()
	tr.started = append(tr.started, name)
	tr.options[name] = opts
	tr.mu.Unlock()
}

func (tr *Tracker) leave() { tr.running.Add(-1) }

// Started returns task names in the order they began executing.
func (tr *Tracker) Started() []string {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]string(nil), tr.started...)
}

// Options returns the options the named task was executed with.
func (tr *Tracker) Options(name string) (task.Options, bool) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	o, ok := tr.options[name]
	return o, ok
}

// Peak returns the highest number of tasks observed running at once.
func (tr *Tracker) Peak() int { return int(tr.peak.Load()) }

// FakeTask is a scheduler task with scripted behavior.
type FakeTask struct {
	ID      string
	Outcome task.Outcome
	Err     error
	// Delay is how long Execute takes. A cancelled context cuts it short.
	Delay time.Duration
	// Output is written to the task output.
	Output  string
	Tracker *Tracker
}

// Name implements task.Task.
func (f *FakeTask) Name() string { return f.ID }

// Execute implements task.Task.
func (f *FakeTask) Execute(ctx context.Context, opts task.Options) (task.Outcome, error) {
	if f.Tracker != nil {
		f.Tracker.enter(f.ID, opts)
		defer f.Tracker.leave()
	}
	if f.Output != "" && opts.Output != nil {
		fmt.Fprint(opts.Output, f.Output)
	}
	if f.Delay > 0 {
		select {
		case <-time.After(f.Delay):
		case <-ctx.Done():
			return task.Ran, ctx.Err()
		}
	}
	return f.Outcome, f.Err
}
