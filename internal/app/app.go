package app

import (
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/specialistvlad/taskgrid/internal/buildstate"
	"github.com/specialistvlad/taskgrid/internal/config"
	"github.com/specialistvlad/taskgrid/internal/fingerprint"
	"github.com/specialistvlad/taskgrid/internal/task"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	loader config.Loader

	environ  []string
	numCPU   int
	analyzer fingerprint.Analyzer
	state    buildstate.Store
	runner   task.ProcessRunner
}

// Option overrides one of the App's collaborators.
type Option func(*App)

// WithEnviron replaces the process environment.
func WithEnviron(environ []string) Option {
	return func(a *App) { a.environ = environ }
}

// WithNumCPU replaces the detected CPU count.
func WithNumCPU(n int) Option {
	return func(a *App) { a.numCPU = n }
}

// WithAnalyzer replaces the git based change analyzer.
func WithAnalyzer(an fingerprint.Analyzer) Option {
	return func(a *App) { a.analyzer = an }
}

// WithStateStore replaces the file based build record store.
func WithStateStore(s buildstate.Store) Option {
	return func(a *App) { a.state = s }
}

// WithProcessRunner replaces the shell process runner.
func WithProcessRunner(r task.ProcessRunner) Option {
	return func(a *App) { a.runner = r }
}

// NewApp is the constructor for the main application. Task results and the
// summary are written to outW; logs go to logW.
func NewApp(outW, logW io.Writer, cfg *Config, loader config.Loader, opts ...Option) *App {
	a := &App{
		outW:    outW,
		logger:  newLogger(cfg.LogLevel, cfg.LogFormat, logW),
		config:  cfg,
		loader:  loader,
		environ: os.Environ(),
		numCPU:  runtime.NumCPU(),
		state:   buildstate.FileStore{},
		runner:  task.ShellRunner{},
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger.Debug("Logger configured successfully.")
	return a
}
