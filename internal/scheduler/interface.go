package scheduler

import "github.com/specialistvlad/taskgrid/internal/record"

// Reporter receives task progress. Calls are made outside the scheduler's
// lock, from worker goroutines, and may therefore happen concurrently.
type Reporter interface {
	// BeginStream is called before a task whose output is written straight
	// to the stream writer instead of being buffered.
	BeginStream(name string)
	// TaskFinished is called once per task, in completion order, with the
	// buffered output of the task (nil when it was streamed or never ran).
	TaskFinished(t record.TaskRecord, output []byte)
}

type nopReporter struct{}

func (nopReporter) BeginStream(string)                     {}
func (nopReporter) TaskFinished(record.TaskRecord, []byte) {}
