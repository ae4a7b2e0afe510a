package task

import (
	"context"
	"fmt"
	"io"
)

// Outcome is the result of a task that did not fail.
type Outcome int

const (
	// Ran means the command was executed and exited cleanly.
	Ran Outcome = iota
	// Skipped means no work was needed.
	Skipped
)

func (o Outcome) String() string {
	if o == Skipped {
		return "skipped"
	}
	return "ran"
}

// Options are supplied by the scheduler for a single execution.
type Options struct {
	// Output receives the combined stdout and stderr of the task.
	Output io.Writer
	// UpstreamRan is true when a predecessor of the task actually ran in
	// this invocation.
	UpstreamRan bool
}

// Task is a unit of work the scheduler can execute.
type Task interface {
	Name() string
	Execute(ctx context.Context, opts Options) (Outcome, error)
}

// ProcessError reports a script that exited with a nonzero status.
type ProcessError struct {
	Project  string
	ExitCode int
}

func (e *ProcessError) Error() string {
	if e.ExitCode < 0 {
		return fmt.Sprintf("project %s: process terminated by signal", e.Project)
	}
	return fmt.Sprintf("project %s: process exited with code %d", e.Project, e.ExitCode)
}

// MissingScriptError reports a project that does not define the command.
type MissingScriptError struct {
	Project string
	Command string
}

func (e *MissingScriptError) Error() string {
	return fmt.Sprintf("project %s does not define a %q script", e.Project, e.Command)
}
