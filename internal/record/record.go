// Package record holds the execution record of one scheduler run.
package record

import (
	"time"

	"github.com/specialistvlad/taskgrid/internal/node"
)

// TaskRecord describes how a single task finished.
type TaskRecord struct {
	Name   string
	Status node.Status
	// Start and End are zero for tasks that never ran.
	Start time.Time
	End   time.Time
	Err   error
}

// Duration returns how long the task ran.
func (t TaskRecord) Duration() time.Duration {
	if t.Start.IsZero() || t.End.IsZero() {
		return 0
	}
	return t.End.Sub(t.Start)
}

// Record is the outcome of a run. Tasks are listed in completion order.
type Record struct {
	Start time.Time
	End   time.Time
	Tasks []TaskRecord
}

// Duration returns the wall-clock time of the whole run.
func (r *Record) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Task returns the record of the named task.
func (r *Record) Task(name string) (TaskRecord, bool) {
	for _, t := range r.Tasks {
		if t.Name == name {
			return t, true
		}
	}
	return TaskRecord{}, false
}

// Count returns the number of tasks that finished with status s.
func (r *Record) Count(s node.Status) int {
	n := 0
	for _, t := range r.Tasks {
		if t.Status == s {
			n++
		}
	}
	return n
}

// Succeeded reports whether every task finished as Success or Skipped.
func (r *Record) Succeeded() bool {
	for _, t := range r.Tasks {
		if !t.Status.Satisfies() {
			return false
		}
	}
	return true
}

// Failed returns the names of failed tasks in completion order.
func (r *Record) Failed() []string {
	return r.names(node.Failure)
}

// Blocked returns the names of tasks that never ran because a dependency
// failed.
func (r *Record) Blocked() []string {
	return r.names(node.BlockedFailed)
}

func (r *Record) names(s node.Status) []string {
	var out []string
	for _, t := range r.Tasks {
		if t.Status == s {
			out = append(out, t.Name)
		}
	}
	return out
}
