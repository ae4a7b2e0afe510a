// Package fingerprint computes content fingerprints of project directories
// from version-control metadata. A fingerprint maps every tracked file of a
// project, relative to the project directory, to the hash of its current
// content; two equal fingerprints mean no tracked file changed.
package fingerprint

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/specialistvlad/taskgrid/internal/ctxlog"
	"golang.org/x/sync/errgroup"
)

// Analyzer returns the fingerprint of the project at projectPath.
// Implementations must be safe for concurrent use.
type Analyzer interface {
	Fingerprint(ctx context.Context, projectPath string) (map[string]string, error)
}

// defaultCacheSize bounds the number of memoized project fingerprints.
const defaultCacheSize = 4096

// GitAnalyzer fingerprints projects with the git command line. Results are
// memoized for the lifetime of the analyzer, which should therefore not
// outlive a single invocation.
type GitAnalyzer struct {
	// Git is the git executable. Defaults to "git".
	Git string

	cache *lru.Cache[string, map[string]string]
}

// NewGitAnalyzer returns an analyzer with an empty fingerprint cache.
func NewGitAnalyzer() *GitAnalyzer {
	cache, err := lru.New[string, map[string]string](defaultCacheSize)
	if err != nil {
		// Only returned for a non-positive size.
		panic(err)
	}
	return &GitAnalyzer{Git: "git", cache: cache}
}

// Fingerprint implements Analyzer. The index supplies the hash of every
// tracked file; files that differ from the index in the working tree are
// re-hashed and deleted files are dropped.
func (a *GitAnalyzer) Fingerprint(ctx context.Context, projectPath string) (map[string]string, error) {
	dir, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, err
	}
	if fp, ok := a.cache.Get(dir); ok {
		return fp, nil
	}
	logger := ctxlog.FromContext(ctx).With("project_path", dir)

	var lsFiles, status, prefix []byte
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := a.git(gctx, dir, nil, "rev-parse", "--show-prefix")
		prefix = out
		return err
	})
	g.Go(func() error {
		out, err := a.git(gctx, dir, nil, "ls-files", "-s", "-z", "--", ".")
		lsFiles = out
		return err
	})
	g.Go(func() error {
		out, err := a.git(gctx, dir, nil, "status", "--porcelain", "-z", "--untracked-files=all", "--", ".")
		status = out
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fp, err := parseLsFiles(lsFiles)
	if err != nil {
		return nil, err
	}
	changes, err := parseStatus(status, strings.TrimSpace(string(prefix)))
	if err != nil {
		return nil, err
	}

	var rehash []string
	for _, c := range changes {
		if c.deleted {
			delete(fp, c.path)
			continue
		}
		rehash = append(rehash, c.path)
	}
	if len(rehash) > 0 {
		hashes, err := a.hashObjects(ctx, dir, rehash)
		if err != nil {
			return nil, err
		}
		for i, p := range rehash {
			fp[p] = hashes[i]
		}
	}

	logger.Debug("Computed project fingerprint.", "files", len(fp), "modified", len(rehash))
	a.cache.Add(dir, fp)
	return fp, nil
}

// hashObjects returns the blob hash of each path, in order.
func (a *GitAnalyzer) hashObjects(ctx context.Context, dir string, paths []string) ([]string, error) {
	stdin := strings.Join(paths, "\n") + "\n"
	out, err := a.git(ctx, dir, strings.NewReader(stdin), "hash-object", "--stdin-paths")
	if err != nil {
		return nil, err
	}
	hashes := strings.Fields(string(out))
	if len(hashes) != len(paths) {
		return nil, fmt.Errorf("git hash-object returned %d hashes for %d files", len(hashes), len(paths))
	}
	return hashes, nil
}

func (a *GitAnalyzer) git(ctx context.Context, dir string, stdin *strings.Reader, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, a.Git, args...)
	cmd.Dir = dir
	if stdin != nil {
		cmd.Stdin = stdin
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("git %s: %w", args[0], err)
	}
	return out, nil
}
