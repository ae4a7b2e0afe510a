//go:build !unix

package task

import (
	"os/exec"
	"strings"
)

func shellCommand(line string) (string, []string) {
	return "cmd", []string{"/c", line}
}

func configureCancel(*exec.Cmd) {}

// quoteArg quotes a for cmd.exe.
func quoteArg(a string) string {
	if a != "" && !strings.ContainsAny(a, " \t\"&|<>^%") {
		return a
	}
	return `"` + strings.ReplaceAll(a, `"`, `""`) + `"`
}
