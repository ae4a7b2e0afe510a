package hcl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/taskgrid/internal/config"
	"github.com/specialistvlad/taskgrid/internal/ctxlog"
	"github.com/specialistvlad/taskgrid/internal/fsutil"
)

const (
	// ManifestFile is the name of the root manifest file.
	ManifestFile = "taskgrid.hcl"
	// extraConfigDir holds additional manifest files, relative to the root.
	extraConfigDir = ".taskgrid"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	// Environ is exposed to manifest expressions as the env object. It
	// defaults to os.Environ().
	Environ []string
}

// NewLoader creates a new HCL manifest loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load locates the manifest, parses every manifest file and returns the
// validated repository model.
func (l *Loader) Load(ctx context.Context, path string) (*config.Repository, error) {
	logger := ctxlog.FromContext(ctx)

	manifest, err := l.locate(path)
	if err != nil {
		return nil, err
	}
	root := filepath.Dir(manifest)
	logger.Debug("HCL loader started.", "manifest", manifest, "root", root)

	files := []string{manifest}
	extra, err := fsutil.FindFilesByExtension(filepath.Join(root, extraConfigDir), ".hcl")
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", extraConfigDir, err)
	}
	files = append(files, extra...)
	logger.Debug("Discovered manifest files.", "count", len(files))

	environ := l.Environ
	if environ == nil {
		environ = os.Environ()
	}
	evalCtx := newEvalContext(environ)

	repo := &config.Repository{
		Root:     root,
		Commands: config.BuiltinCommands(),
	}
	var graphPath string
	parser := hclparse.NewParser()

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var fr fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &fr)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		if fr.DependencyGraph != nil {
			if graphPath != "" {
				return nil, fmt.Errorf("%s: dependency_graph is already set by another manifest file", file)
			}
			graphPath = *fr.DependencyGraph
		}

		parallelism, err := parallelismValue(fr.Parallelism, evalCtx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		if parallelism != "" {
			if repo.Parallelism != "" {
				return nil, fmt.Errorf("%s: parallelism is already set by another manifest file", file)
			}
			repo.Parallelism = parallelism
		}

		for _, p := range fr.Projects {
			repo.Projects = append(repo.Projects, translateProject(p))
		}
		for _, c := range fr.Commands {
			repo.Commands[c.Name] = translateCommand(c, repo.Commands[c.Name])
		}
	}

	if graphPath == "" {
		graphPath = config.DefaultDependencyGraphPath
	}
	if !filepath.IsAbs(graphPath) {
		graphPath = filepath.Join(root, filepath.FromSlash(graphPath))
	}
	repo.DependencyGraphPath = graphPath

	if err := repo.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", manifest, err)
	}

	logger.Debug("HCL loading complete.", "projects", len(repo.Projects), "commands", len(repo.Commands))
	return repo, nil
}

// locate resolves path to the manifest file. A directory is searched
// upwards so the tool works from anywhere inside the repository.
func (l *Loader) locate(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("error accessing path %s: %w", path, err)
	}
	if !info.IsDir() {
		return filepath.Abs(path)
	}

	manifest, err := fsutil.FindUp(path, ManifestFile)
	if errors.Is(err, fsutil.ErrNotFound) {
		return "", fmt.Errorf("no %s found in %s or any parent directory", ManifestFile, path)
	}
	return manifest, err
}

// translateProject converts the HCL-specific project block into the agnostic model.
func translateProject(p *projectBlock) *config.Project {
	folder := strings.TrimSpace(p.Folder)
	if folder != "" {
		folder = filepath.ToSlash(filepath.Clean(filepath.FromSlash(folder)))
	}
	return &config.Project{
		Name:                       p.Name,
		Folder:                     folder,
		CyclicDependencyExceptions: p.CyclicDependencyExceptions,
		Scripts:                    p.Scripts,
	}
}

// translateCommand converts the HCL-specific command block into the agnostic
// model. Unset flags inherit from the builtin command of the same name, and
// otherwise default to a non-incremental, parallel command.
func translateCommand(c *commandBlock, builtin *config.Command) *config.Command {
	cmd := &config.Command{
		Name:                  c.Name,
		Description:           c.Description,
		Parallel:              true,
		IgnoreMissingScript:   c.IgnoreMissingScript,
		IgnoreDependencyOrder: c.IgnoreDependencyOrder,
		DefaultArgs:           c.DefaultArgs,
	}
	if builtin != nil {
		cmd.Incremental = builtin.Incremental
		cmd.Parallel = builtin.Parallel
		if cmd.Description == "" {
			cmd.Description = builtin.Description
		}
	}
	if c.Incremental != nil {
		cmd.Incremental = *c.Incremental
	}
	if c.Parallel != nil {
		cmd.Parallel = *c.Parallel
	}
	return cmd
}
