//go:build unix

package task

import (
	"os/exec"
	"strings"
	"syscall"
)

func shellCommand(line string) (string, []string) {
	return "sh", []string{"-c", line}
}

// configureCancel puts the shell in its own process group so cancellation
// reaches the whole tree it spawned.
func configureCancel(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM)
	}
}

// quoteArg quotes a for POSIX sh.
func quoteArg(a string) string {
	if a != "" && strings.IndexFunc(a, needsQuote) < 0 {
		return a
	}
	return "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
}

func needsQuote(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	case strings.ContainsRune("-_./=:,+@%", r):
		return false
	}
	return true
}
