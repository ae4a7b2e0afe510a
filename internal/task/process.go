package task

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Process describes one script invocation.
type Process struct {
	Project string
	Dir     string
	Script  string
	Args    []string
	// Env is the base environment. Nil means the current process environment.
	Env []string
}

// ProcessRunner spawns a script and waits for it. Run returns the exit code
// of a process that ran to completion; the error is reserved for processes
// that could not be started or were interrupted by ctx.
type ProcessRunner interface {
	Run(ctx context.Context, p Process, out io.Writer) (int, error)
}

// killGrace is how long a cancelled process may take to exit before its
// pipes are closed and Wait gives up on it.
const killGrace = 5 * time.Second

// ShellRunner runs scripts through the platform shell.
type ShellRunner struct{}

var _ ProcessRunner = ShellRunner{}

// Run implements ProcessRunner.
func (ShellRunner) Run(ctx context.Context, p Process, out io.Writer) (int, error) {
	name, argv := shellCommand(commandLine(p.Script, p.Args))
	cmd := exec.CommandContext(ctx, name, argv...)
	cmd.Dir = p.Dir
	cmd.Env = withBinPath(p.Env, filepath.Join(p.Dir, "node_modules", ".bin"))
	cmd.Stdout = out
	cmd.Stderr = out
	cmd.WaitDelay = killGrace
	configureCancel(cmd)

	err := cmd.Run()
	if ctx.Err() != nil {
		return -1, ctx.Err()
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("project %s: start process: %w", p.Project, err)
	}
	return 0, nil
}

// commandLine appends the quoted arguments to the script.
func commandLine(script string, args []string) string {
	if len(args) == 0 {
		return script
	}
	var b strings.Builder
	b.WriteString(script)
	for _, a := range args {
		b.WriteByte(' ')
		b.WriteString(quoteArg(a))
	}
	return b.String()
}

// withBinPath returns env with bin prepended to PATH.
func withBinPath(env []string, bin string) []string {
	if env == nil {
		env = os.Environ()
	}
	out := make([]string, 0, len(env)+1)
	found := false
	for _, kv := range env {
		key, val, _ := strings.Cut(kv, "=")
		if !found && strings.EqualFold(key, "PATH") {
			found = true
			if val != "" {
				kv = key + "=" + bin + string(os.PathListSeparator) + val
			} else {
				kv = key + "=" + bin
			}
		}
		out = append(out, kv)
	}
	if !found {
		out = append(out, "PATH="+bin)
	}
	return out
}
