package task

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/taskgrid/internal/buildstate"
	"github.com/specialistvlad/taskgrid/internal/config"
	"github.com/specialistvlad/taskgrid/internal/ctxlog"
	"github.com/specialistvlad/taskgrid/internal/fingerprint"
)

// Factory carries everything shared by the tasks of one invocation.
type Factory struct {
	// Root is the absolute repository root.
	Root    string
	Command *config.Command
	// Args are appended to every script, after shell quoting.
	Args []string
	// ChangedProjectsOnly makes the skip decision ignore upstream activity.
	ChangedProjectsOnly bool
	// Env is the environment of spawned scripts. Nil means the current
	// process environment.
	Env []string

	// Analyzer and State are only consulted for incremental commands.
	Analyzer fingerprint.Analyzer
	State    buildstate.Store
	Runner   ProcessRunner
}

// New returns the task running the factory's command for p.
func (f *Factory) New(p *config.Project) Task {
	return &ProjectTask{project: p, f: f}
}

// ProjectTask runs a command for one project.
type ProjectTask struct {
	project *config.Project
	f       *Factory
}

// Name implements Task.
func (t *ProjectTask) Name() string { return t.project.Name }

// Execute implements Task.
func (t *ProjectTask) Execute(ctx context.Context, opts Options) (Outcome, error) {
	cmd := t.f.Command
	dir := t.project.Path(t.f.Root)
	logger := ctxlog.FromContext(ctx).With("project", t.project.Name, "command", cmd.Name)

	script, ok, err := resolveScript(dir, t.project, cmd.Name)
	if err != nil {
		return Ran, err
	}
	if !ok {
		if cmd.IgnoreMissingScript {
			logger.Debug("Project has no script for command, skipping.")
			return Skipped, nil
		}
		return Ran, &MissingScriptError{Project: t.project.Name, Command: cmd.Name}
	}
	if strings.TrimSpace(script) == "" {
		logger.Debug("Script is empty, nothing to run.")
		return Skipped, nil
	}

	var files map[string]string
	if cmd.Incremental {
		files, err = t.fingerprint(ctx, dir)
		if err != nil {
			if ctx.Err() != nil {
				return Ran, ctx.Err()
			}
			logger.Warn("Could not fingerprint project, it will be rebuilt.", "error", err)
		} else if t.upToDate(ctx, dir, files, opts) {
			logger.Debug("Project is up to date, skipping.")
			return Skipped, nil
		}

		// Drop the record first so an interrupted run is never mistaken for
		// a successful one.
		if err := t.f.State.Invalidate(dir, cmd.Name); err != nil {
			return Ran, fmt.Errorf("project %s: %w", t.project.Name, err)
		}
	}

	logger.Debug("Starting process.", "script", script, "args", t.f.Args)
	code, err := t.f.Runner.Run(ctx, Process{
		Project: t.project.Name,
		Dir:     dir,
		Script:  script,
		Args:    t.f.Args,
		Env:     t.f.Env,
	}, opts.Output)
	if err != nil {
		return Ran, err
	}
	if code != 0 {
		return Ran, &ProcessError{Project: t.project.Name, ExitCode: code}
	}

	if cmd.Incremental && files != nil {
		rec := &buildstate.Record{Files: files, Arguments: t.f.Args}
		if err := t.f.State.Save(dir, cmd.Name, rec); err != nil {
			// The build itself succeeded; the next run simply rebuilds.
			logger.Warn("Could not save build record.", "error", err)
		}
	}
	return Ran, nil
}

// upToDate reports whether the persisted record allows skipping. Outside
// changed-projects-only mode a predecessor that ran forces a rebuild.
func (t *ProjectTask) upToDate(ctx context.Context, dir string, files map[string]string, opts Options) bool {
	if opts.UpstreamRan && !t.f.ChangedProjectsOnly {
		return false
	}
	rec, err := t.f.State.Load(dir, t.f.Command.Name)
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Could not read build record, it will be rebuilt.",
			"project", t.project.Name, "error", err)
		return false
	}
	return rec.Matches(files, t.f.Args)
}

// fingerprint returns the project's fingerprint without the build records
// kept inside the project. The analyzer's map is never modified.
func (t *ProjectTask) fingerprint(ctx context.Context, dir string) (map[string]string, error) {
	files, err := t.f.Analyzer.Fingerprint(ctx, dir)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(files))
	for path, hash := range files {
		if !buildstate.IsStatePath(path) {
			out[path] = hash
		}
	}
	return out, nil
}
