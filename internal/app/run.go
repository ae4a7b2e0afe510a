package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/taskgrid/internal/ctxlog"
	"github.com/specialistvlad/taskgrid/internal/depgraph"
	"github.com/specialistvlad/taskgrid/internal/fingerprint"
	"github.com/specialistvlad/taskgrid/internal/reporter"
	"github.com/specialistvlad/taskgrid/internal/scheduler"
	"github.com/specialistvlad/taskgrid/internal/selector"
	"github.com/specialistvlad/taskgrid/internal/task"
)

// Run executes the configured command across the selected projects.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	logger := a.logger.With("command", a.config.Command)
	logger.Debug("App.Run method started.")

	repo, err := a.loader.Load(ctx, a.config.RepoPath)
	if err != nil {
		return fmt.Errorf("failed to load manifest: %w", err)
	}
	cmd, err := repo.Command(a.config.Command)
	if err != nil {
		return err
	}

	environ, err := loadEnv(repo.Root, a.environ)
	if err != nil {
		return err
	}

	graph, err := depgraph.Load(repo.DependencyGraphPath)
	if err != nil {
		return err
	}
	logger.Debug("Dependency graph loaded.", "path", repo.DependencyGraphPath, "entries", len(graph))
	for _, p := range repo.Projects {
		if !graph.Has(p.Name) {
			logger.Warn("Project has no entry in the dependency graph, treating it as having no dependencies.", "project", p.Name)
		}
	}

	sel, err := selector.New(repo.Projects, graph).Select(ctx, a.config.To, a.config.From)
	if err != nil {
		return err
	}
	if len(sel.Projects) == 0 {
		logger.Warn("No projects selected, execution not required.")
		return nil
	}

	envParallelism, _ := lookupEnv(environ, ParallelismEnv)
	parallelism, err := resolveParallelism(a.config.Parallelism, envParallelism, repo.Parallelism, a.numCPU)
	if err != nil {
		return err
	}
	if !cmd.Parallel && parallelism > 1 {
		logger.Debug("Command does not allow parallel execution.", "requested", parallelism)
		parallelism = 1
	}

	args := make([]string, 0, len(cmd.DefaultArgs)+len(a.config.ExtraArgs))
	args = append(args, cmd.DefaultArgs...)
	args = append(args, a.config.ExtraArgs...)

	factory := &task.Factory{
		Root:                repo.Root,
		Command:             cmd,
		Args:                args,
		ChangedProjectsOnly: a.config.ChangedProjectsOnly,
		Env:                 environ,
		State:               a.state,
		Runner:              a.runner,
	}
	if cmd.Incremental {
		factory.Analyzer = a.analyzer
		if factory.Analyzer == nil {
			factory.Analyzer = fingerprint.NewGitAnalyzer()
		}
	}

	rep := reporter.New(a.outW, a.config.Verbose)
	opts := scheduler.Options{Parallelism: parallelism, Reporter: rep}
	if a.config.Verbose {
		opts.Stream = a.outW
	}
	sched := scheduler.New(opts)
	if err := selector.Populate(sel, sched, factory.New, cmd.IgnoreDependencyOrder); err != nil {
		return err
	}

	logger.Info("Starting execution.", "projects", len(sel.Projects), "parallelism", parallelism, "incremental", cmd.Incremental)
	rec, err := sched.Execute(ctx)
	if rec != nil {
		rep.Summary(rec)
	}
	if err != nil {
		return fmt.Errorf("%s failed: %w", cmd.Name, err)
	}
	logger.Info("Execution finished.", "duration", rec.Duration())
	return nil
}
