package selector

import (
	"fmt"
	"strings"
)

// UnknownProjectError is returned when a filter names no known project or
// a shorthand name is ambiguous.
type UnknownProjectError struct {
	Name string
	// Candidates lists the projects an ambiguous shorthand could mean.
	Candidates []string
}

func (e *UnknownProjectError) Error() string {
	if len(e.Candidates) > 0 {
		return fmt.Sprintf("project name %q is ambiguous, use one of: %s", e.Name, strings.Join(e.Candidates, ", "))
	}
	return fmt.Sprintf("unknown project %q", e.Name)
}
