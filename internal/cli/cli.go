package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/taskgrid/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// stringList is a repeatable string flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	if strings.TrimSpace(v) == "" {
		return errors.New("project name must not be empty")
	}
	*l = append(*l, v)
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
// Flags may appear before or after COMMAND; everything after "--" is passed
// through to the scripts untouched.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("taskgrid", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
taskgrid - Run a command across the projects of a repository in dependency order.

Usage:
  taskgrid [options] COMMAND [-- EXTRA_ARGS...]

Arguments:
  COMMAND
    A command declared in taskgrid.hcl, or one of the built-in commands
    'build' (incremental) and 'rebuild'.
  EXTRA_ARGS
    Appended, shell-quoted, to every project's script.

Options:
`)
		flagSet.PrintDefaults()
	}

	var to, from stringList
	repoFlag := flagSet.String("repo", ".", "Repository root, a directory inside it, or the manifest file.")
	flagSet.Var(&to, "to", "Select `NAME` and everything it depends on. Repeatable.")
	flagSet.Var(&from, "from", "Select `NAME` and everything that depends on it. Repeatable.")
	parallelismFlag := flagSet.String("parallelism", "", "Number of concurrent tasks, or 'max' for the CPU count. Defaults to CPU count minus one.")
	var verbose bool
	flagSet.BoolVar(&verbose, "verbose", false, "Print the full output of every task.")
	flagSet.BoolVar(&verbose, "v", false, "Print the full output of every task (shorthand).")
	changedOnlyFlag := flagSet.Bool("changed-projects-only", false, "Skip projects whose own files are unchanged, even if a dependency was rebuilt.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	var extra []string
	for i, a := range args {
		if a == "--" {
			extra = append([]string{}, args[i+1:]...)
			args = args[:i]
			break
		}
	}

	// flag stops at the first positional argument, so parse repeatedly to
	// allow options after COMMAND.
	var positional []string
	for {
		if err := flagSet.Parse(args); err != nil {
			if err == flag.ErrHelp {
				return nil, true, nil
			}
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
		if flagSet.NArg() == 0 {
			break
		}
		positional = append(positional, flagSet.Arg(0))
		args = flagSet.Args()[1:]
	}
	slog.Debug("Arguments parsed successfully.", "positional", positional)

	switch len(positional) {
	case 0:
		flagSet.Usage()
		return nil, false, &ExitError{Code: 2, Message: "missing COMMAND"}
	case 1:
	default:
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unexpected arguments %q: pass script arguments after --", positional[1:])}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	config, err := app.NewConfig(app.Config{
		RepoPath:            *repoFlag,
		Command:             positional[0],
		ExtraArgs:           extra,
		To:                  to,
		From:                from,
		Parallelism:         *parallelismFlag,
		Verbose:             verbose,
		ChangedProjectsOnly: *changedOnlyFlag,
		LogFormat:           logFormat,
		LogLevel:            logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
