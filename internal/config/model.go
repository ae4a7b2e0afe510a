package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultDependencyGraphPath is where the dependency graph is expected when
// the manifest does not say otherwise, relative to the repository root.
const DefaultDependencyGraphPath = ".taskgrid/dependency-graph.json"

// Repository is the unified, format-agnostic representation of a
// repository manifest.
type Repository struct {
	// Root is the absolute path of the repository root.
	Root string
	// DependencyGraphPath is the absolute path of the persisted dependency graph.
	DependencyGraphPath string
	// Parallelism is the manifest-level parallelism directive ("", "max" or a number).
	Parallelism string
	Projects    []*Project
	Commands    map[string]*Command
}

// Project is one buildable unit of the repository.
type Project struct {
	Name string
	// Folder is the project directory relative to the repository root.
	Folder string
	// CyclicDependencyExceptions lists dependencies that are allowed to form
	// a cycle. They never gate scheduling.
	CyclicDependencyExceptions []string
	// Scripts are fallback command definitions used when the project has no
	// package.json script of the same name.
	Scripts map[string]string
}

// Path returns the absolute project directory for a repository rooted at root.
func (p *Project) Path(root string) string {
	return filepath.Join(root, filepath.FromSlash(p.Folder))
}

// IsCyclicException reports whether dep is one of the project's cyclic
// dependency exceptions.
func (p *Project) IsCyclicException(dep string) bool {
	for _, ex := range p.CyclicDependencyExceptions {
		if ex == dep {
			return true
		}
	}
	return false
}

// Command describes a named command that can be run across projects.
type Command struct {
	Name        string
	Description string
	// Incremental permits skipping projects whose fingerprint is unchanged.
	Incremental bool
	// Parallel permits more than one worker. When false the scheduler runs
	// with parallelism 1.
	Parallel bool
	// IgnoreMissingScript treats projects without the script as skipped
	// instead of failed.
	IgnoreMissingScript bool
	// IgnoreDependencyOrder schedules every selected project without edges.
	IgnoreDependencyOrder bool
	// DefaultArgs are prepended to the user supplied extra arguments.
	DefaultArgs []string
}

// BuiltinCommands returns the commands every repository has unless the
// manifest overrides them.
func BuiltinCommands() map[string]*Command {
	return map[string]*Command{
		"build": {
			Name:        "build",
			Description: "Build projects whose sources changed since their last successful build.",
			Incremental: true,
			Parallel:    true,
		},
		"rebuild": {
			Name:        "rebuild",
			Description: "Build every selected project, ignoring previous results.",
			Incremental: false,
			Parallel:    true,
		},
	}
}

// Project returns the project with the given name.
func (r *Repository) Project(name string) (*Project, bool) {
	for _, p := range r.Projects {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Command returns the command with the given name.
func (r *Repository) Command(name string) (*Command, error) {
	cmd, ok := r.Commands[name]
	if !ok {
		known := make([]string, 0, len(r.Commands))
		for k := range r.Commands {
			known = append(known, k)
		}
		sort.Strings(known)
		return nil, fmt.Errorf("unknown command %q (available: %s)", name, strings.Join(known, ", "))
	}
	return cmd, nil
}

// Validate checks the manifest for structural mistakes.
func (r *Repository) Validate() error {
	seen := make(map[string]struct{}, len(r.Projects))
	for _, p := range r.Projects {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("project with folder %q has an empty name", p.Folder)
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("project %q is declared more than once", p.Name)
		}
		seen[p.Name] = struct{}{}
		if strings.TrimSpace(p.Folder) == "" {
			return fmt.Errorf("project %q has an empty folder", p.Name)
		}
		if filepath.IsAbs(p.Folder) {
			return fmt.Errorf("project %q folder %q must be relative to the repository root", p.Name, p.Folder)
		}
	}
	for _, p := range r.Projects {
		for _, ex := range p.CyclicDependencyExceptions {
			if _, ok := r.Project(ex); !ok {
				return fmt.Errorf("project %q lists unknown cyclic dependency exception %q", p.Name, ex)
			}
		}
	}
	for name, cmd := range r.Commands {
		if name != cmd.Name {
			return fmt.Errorf("command registered as %q is named %q", name, cmd.Name)
		}
	}
	return nil
}
