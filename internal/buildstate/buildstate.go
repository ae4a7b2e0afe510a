package buildstate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Record is the state of a project after the last successful run of a
// command.
type Record struct {
	Files     map[string]string `yaml:"files"`
	Arguments []string          `yaml:"arguments"`
}

// Matches reports whether the record describes exactly the given
// fingerprint and argument list. A nil record never matches.
func (r *Record) Matches(files map[string]string, args []string) bool {
	if r == nil {
		return false
	}
	if len(r.Files) != len(files) {
		return false
	}
	for path, hash := range files {
		if prev, ok := r.Files[path]; !ok || prev != hash {
			return false
		}
	}
	// A nil and an empty argument list are the same invocation.
	if len(r.Arguments) == 0 && len(args) == 0 {
		return true
	}
	return slices.Equal(r.Arguments, args)
}

// Store loads and persists build records. projectPath is the absolute
// directory of the project.
type Store interface {
	// Load returns the record of the last successful run, or nil when none
	// exists.
	Load(projectPath, command string) (*Record, error)
	Save(projectPath, command string, rec *Record) error
	// Invalidate removes the record. Removing a missing record is not an
	// error.
	Invalidate(projectPath, command string) error
}

// StateDir is the directory, relative to a project, holding build records.
const StateDir = ".taskgrid/temp"

// IsStatePath reports whether rel, a slash-separated path relative to a
// project, lies inside StateDir. Build records live next to the sources they
// describe, so fingerprints must leave them out or a saved record would
// invalidate itself.
func IsStatePath(rel string) bool {
	return rel == StateDir || strings.HasPrefix(rel, StateDir+"/")
}

// FileStore keeps one YAML file per project and command.
type FileStore struct{}

var _ Store = FileStore{}

// Path returns the location of the record for the project and command.
func (FileStore) Path(projectPath, command string) string {
	return filepath.Join(projectPath, StateDir, "package-deps_"+command+".yaml")
}

// Load implements Store.
func (s FileStore) Load(projectPath, command string) (*Record, error) {
	path := s.Path(projectPath, command)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read build record: %w", err)
	}
	var rec Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse build record %s: %w", path, err)
	}
	if rec.Files == nil {
		rec.Files = map[string]string{}
	}
	return &rec, nil
}

// Save implements Store. The file is written to a temporary name and renamed
// so a crash never leaves a truncated record behind.
func (s FileStore) Save(projectPath, command string, rec *Record) error {
	path := s.Path(projectPath, command)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create build state directory: %w", err)
	}
	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode build record: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write build record: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write build record: %w", err)
	}
	return nil
}

// Invalidate implements Store.
func (s FileStore) Invalidate(projectPath, command string) error {
	err := os.Remove(s.Path(projectPath, command))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("invalidate build record: %w", err)
	}
	return nil
}
