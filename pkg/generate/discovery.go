package generate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/lo"

	"github.com/yaklabco/gopreserve/pkg/fsreader"
	"github.com/yaklabco/gopreserve/pkg/registry"
)

// ErrStagingNotFound indicates a missing or non-directory staging path.
var ErrStagingNotFound = errors.New("staging directory not found")

// Job is one staged file.
type Job struct {
	// Source is the path of the staged file.
	Source string

	// RelPath is the slash-separated path below the staging directory. The merged
	// output is written to the same path below the output slot.
	RelPath string
}

// Discover lists the staged files of opts.StagingDir in sorted order.
func Discover(ctx context.Context, opts Options) ([]Job, error) {
	if opts.StagingDir == "" {
		return nil, fmt.Errorf("%w: no staging directory configured", ErrStagingNotFound)
	}

	staging, err := filepath.Abs(opts.StagingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve staging directory: %w", err)
	}

	info, err := os.Stat(staging)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrStagingNotFound, staging, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrStagingNotFound, staging)
	}

	reader, err := fsreader.New(staging,
		fsreader.WithExclude(opts.ExcludeGlobs...),
		fsreader.WithFollowSymlinks(opts.FollowSymlinks))
	if err != nil {
		return nil, fmt.Errorf("invalid exclude patterns: %w", err)
	}

	filter, err := discoveryFilter(staging, opts)
	if err != nil {
		return nil, err
	}

	files, err := reader.ListFiles(ctx, staging, filter)
	if err != nil {
		return nil, fmt.Errorf("discover staged files: %w", err)
	}

	jobs := lo.Map(files, func(file string, _ int) Job {
		return Job{Source: file, RelPath: relSlash(staging, file)}
	})

	// Directory symlinks may expose one file under several paths.
	return lo.UniqBy(jobs, func(j Job) string { return j.RelPath }), nil
}

func discoveryFilter(staging string, opts Options) (registry.PathFilter, error) {
	var include *registry.GlobFilter
	if len(opts.IncludeGlobs) > 0 {
		g, err := registry.NewGlobFilter(opts.IncludeGlobs...)
		if err != nil {
			return nil, fmt.Errorf("invalid include patterns: %w", err)
		}
		include = g
	}

	exts := registry.ExtensionFilter(opts.Extensions)

	return registry.PathFilterFunc(func(path string) bool {
		if len(exts) > 0 && !exts.Accept(path) {
			return false
		}
		return include == nil || include.Accept(relSlash(staging, path))
	}), nil
}

func relSlash(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
