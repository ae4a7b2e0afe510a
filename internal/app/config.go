package app

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// RepoPath is the repository root, a directory below it, or the
	// manifest file itself.
	RepoPath  string
	Command   string
	ExtraArgs []string

	To   []string
	From []string

	// Parallelism is "", "max" or a positive number.
	Parallelism         string
	Verbose             bool
	ChangedProjectsOnly bool

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if strings.TrimSpace(cfg.Command) == "" {
		return nil, errors.New("a command is required")
	}
	if cfg.RepoPath == "" {
		cfg.RepoPath = "."
	}
	if err := validateParallelism(cfg.Parallelism); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validateParallelism(s string) error {
	if s == "" || strings.EqualFold(s, "max") {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fmt.Errorf("invalid parallelism %q: must be a positive number or 'max'", s)
	}
	return nil
}
