// Package reporter prints task progress and the run summary to the console.
package reporter

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/specialistvlad/taskgrid/internal/node"
	"github.com/specialistvlad/taskgrid/internal/record"
)

var (
	green     = color.New(color.FgGreen).SprintFunc()
	red       = color.New(color.FgRed).SprintFunc()
	yellow    = color.New(color.FgYellow).SprintFunc()
	dim       = color.New(color.Faint).SprintFunc()
	boldCyan  = color.New(color.Bold, color.FgCyan).SprintFunc()
	boldGreen = color.New(color.Bold, color.FgGreen).SprintFunc()
	boldRed   = color.New(color.Bold, color.FgRed).SprintFunc()
)

// Reporter writes one status line per task. In verbose mode the full output
// of every task precedes its status line; otherwise output is shown only for
// failed tasks. Writes are serialized so blocks never interleave.
type Reporter struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool
}

// New returns a reporter writing to out.
func New(out io.Writer, verbose bool) *Reporter {
	return &Reporter{out: out, verbose: verbose}
}

// BeginStream prints the header of a task whose output follows directly.
func (r *Reporter) BeginStream(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.header(name)
}

// TaskFinished prints the result of a task, preceded by its output when
// that is wanted.
func (r *Reporter) TaskFinished(t record.TaskRecord, output []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(output) > 0 && (r.verbose || t.Status == node.Failure) {
		r.header(t.Name)
		fmt.Fprint(r.out, string(output))
		if output[len(output)-1] != '\n' {
			fmt.Fprintln(r.out)
		}
	}
	fmt.Fprintln(r.out, statusLine(t))
}

func (r *Reporter) header(name string) {
	fmt.Fprintln(r.out, boldCyan("==[ "+name+" ]=="))
}

func statusLine(t record.TaskRecord) string {
	switch t.Status {
	case node.Success:
		return fmt.Sprintf("%s %s %s", green("[pass]"), t.Name, dim("("+formatDuration(t.Duration())+")"))
	case node.Skipped:
		return fmt.Sprintf("%s %s %s", yellow("[skip]"), t.Name, dim("("+formatDuration(t.Duration())+")"))
	case node.Failure:
		line := fmt.Sprintf("%s %s %s", red("[fail]"), t.Name, dim("("+formatDuration(t.Duration())+")"))
		if t.Err != nil {
			line += ": " + t.Err.Error()
		}
		return line
	case node.BlockedFailed:
		line := fmt.Sprintf("%s %s", red("[blocked]"), t.Name)
		if t.Err != nil {
			line += dim(" (" + t.Err.Error() + ")")
		}
		return line
	default:
		return fmt.Sprintf("[%s] %s", t.Status, t.Name)
	}
}

// Summary prints the totals of a finished run.
func (r *Reporter) Summary(rec *record.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()

	totals := fmt.Sprintf("%d succeeded, %d skipped, %d failed, %d blocked in %s",
		rec.Count(node.Success), rec.Count(node.Skipped),
		rec.Count(node.Failure), rec.Count(node.BlockedFailed),
		formatDuration(rec.Duration()))

	fmt.Fprintln(r.out)
	if rec.Succeeded() {
		fmt.Fprintf(r.out, "%s %s\n", boldGreen("SUCCESS:"), totals)
		return
	}
	fmt.Fprintf(r.out, "%s %s\n", boldRed("FAILURE:"), totals)
	if failed := rec.Failed(); len(failed) > 0 {
		fmt.Fprintf(r.out, "  failed:  %s\n", strings.Join(failed, ", "))
	}
	if blocked := rec.Blocked(); len(blocked) > 0 {
		fmt.Fprintf(r.out, "  blocked: %s\n", strings.Join(blocked, ", "))
	}
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}
