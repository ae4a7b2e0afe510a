package scheduler

import (
	"fmt"
	"strings"
)

// ExecutionError is returned by Execute when any task failed.
type ExecutionError struct {
	// Failed lists the tasks that ran and failed, in completion order.
	Failed []string
	// Blocked lists the tasks that never ran because a dependency failed.
	Blocked []string
	// Causes are the errors of the failed tasks.
	Causes []error
}

func (e *ExecutionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d task(s) failed: %s", len(e.Failed), strings.Join(e.Failed, ", "))
	if len(e.Blocked) > 0 {
		fmt.Fprintf(&b, "; %d blocked: %s", len(e.Blocked), strings.Join(e.Blocked, ", "))
	}
	return b.String()
}

// Unwrap exposes the task errors to errors.Is and errors.As.
func (e *ExecutionError) Unwrap() []error {
	return e.Causes
}
