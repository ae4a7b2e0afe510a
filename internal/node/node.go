// Package node defines the execution status shared by the scheduler, the
// execution record and the reporter.
package node

// Status represents the execution state of a node in the task graph.
type Status int32

const (
	// Blocked indicates the node is waiting for its dependencies to complete.
	Blocked Status = iota
	// Ready indicates every dependency succeeded or was skipped and the node
	// is queued for a worker.
	Ready
	// Running indicates the node is currently being executed by a worker.
	Running
	// Success indicates the node ran and its command exited cleanly.
	Success
	// Skipped indicates the incremental policy decided no work was needed.
	Skipped
	// Failure indicates the node ran and failed.
	Failure
	// BlockedFailed indicates the node never ran because a predecessor failed.
	BlockedFailed
)

var statusNames = [...]string{
	Blocked:       "blocked",
	Ready:         "ready",
	Running:       "running",
	Success:       "success",
	Skipped:       "skipped",
	Failure:       "failure",
	BlockedFailed: "blocked-failed",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}
	return statusNames[s]
}

// IsTerminal reports whether the status is final for this invocation.
func (s Status) IsTerminal() bool {
	switch s {
	case Success, Skipped, Failure, BlockedFailed:
		return true
	default:
		return false
	}
}

// Satisfies reports whether a predecessor in this status unblocks its
// dependents.
func (s Status) Satisfies() bool {
	return s == Success || s == Skipped
}
