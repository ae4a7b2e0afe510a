package app

import (
	"fmt"
	"strconv"
	"strings"
)

// ParallelismEnv overrides the manifest parallelism when no flag is given.
const ParallelismEnv = "TASKGRID_PARALLELISM"

// resolveParallelism picks the worker count. The first non-empty directive
// of flag, env and manifest wins; with none the default leaves one CPU for
// the rest of the system.
func resolveParallelism(flag, env, manifest string, numCPU int) (int, error) {
	directive, source := flag, "--parallelism"
	if directive == "" {
		directive, source = env, ParallelismEnv
	}
	if directive == "" {
		directive, source = manifest, "manifest"
	}

	switch {
	case directive == "":
		return max(numCPU-1, 1), nil
	case strings.EqualFold(directive, "max"):
		return max(numCPU, 1), nil
	}
	n, err := strconv.Atoi(directive)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid parallelism %q from %s: must be a positive number or 'max'", directive, source)
	}
	return n, nil
}
