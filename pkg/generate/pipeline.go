package generate

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/gopreserve/internal/logging"
	"github.com/yaklabco/gopreserve/pkg/diff"
	"github.com/yaklabco/gopreserve/pkg/fsutil"
	"github.com/yaklabco/gopreserve/pkg/registry"
)

// Pipeline error types for categorization.
var (
	// ErrFileNotFound indicates the staged file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrPermissionDenied indicates a permission error.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrMergeFailure indicates the generated content could not be merged.
	ErrMergeFailure = errors.New("merge failure")

	// ErrWriteFailure indicates a write error.
	ErrWriteFailure = errors.New("write failure")
)

// Merger recombines generated content with preserved regions.
// *registry.Registry implements it.
type Merger interface {
	Merge(ctx context.Context, relPath, slot, contents string) (*registry.MergeResult, error)
}

var _ Merger = (*registry.Registry)(nil)

// FileResult is the result of processing one staged file.
type FileResult struct {
	Job Job

	// Target is the output path the merged content belongs to.
	Target string

	// Merge is the registry's merge result.
	Merge *registry.MergeResult

	// Created is true if the output file did not exist before.
	Created bool

	// Unchanged is true if the output already held the merged content.
	Unchanged bool

	// Pending is true in dry-run mode when the output would change.
	Pending bool

	// Diff is the change to the output file in dry-run mode.
	Diff *diff.Unified

	// Skipped is true if the file was skipped (e.g., due to concurrent modification).
	Skipped bool

	// SkipReason explains why the file was skipped.
	SkipReason string

	// BackupCreated is true if a backup was created for the output file.
	BackupCreated bool

	// Written is true if the output file was written to disk.
	Written bool
}

// Summary returns a human-readable summary of the file result.
func (fr *FileResult) Summary() string {
	switch {
	case fr.Skipped:
		return "skipped: " + fr.SkipReason
	case fr.Written && fr.Created:
		return "created"
	case fr.Written && fr.BackupCreated:
		return "updated (backup created)"
	case fr.Written:
		return "updated"
	case fr.Pending && fr.Created:
		return "would create"
	case fr.Pending:
		return "changes pending"
	default:
		return "unchanged"
	}
}

// Preserved returns the number of regions carried over from earlier output.
func (fr *FileResult) Preserved() int {
	if fr.Merge == nil {
		return 0
	}
	return len(fr.Merge.Preserved)
}

// Filled returns the number of regions refreshed by inverse parsers.
func (fr *FileResult) Filled() int {
	if fr.Merge == nil {
		return 0
	}
	return len(fr.Merge.Filled)
}

// Pipeline orchestrates the safe processing of a single staged file.
type Pipeline struct {
	Merger Merger
	Logger *log.Logger
}

// NewPipeline creates a pipeline merging through m.
func NewPipeline(m Merger) *Pipeline {
	return &Pipeline{Merger: m, Logger: logging.Default()}
}

// ProcessFile runs the full pipeline for a single staged file.
//
// The pipeline performs the following steps:
//  1. Read the staged file.
//  2. Merge it with the preserved regions.
//  3. Read and snapshot the current output file, if any.
//  4. Stop if the output already holds the merged content.
//  5. Generate a diff (if dry-run mode).
//  6. Check for concurrent modifications of the output.
//  7. Create a backup (if enabled).
//  8. Write the merged content atomically.
func (p *Pipeline) ProcessFile(ctx context.Context, job Job, opts Options) (*FileResult, error) {
	result := &FileResult{Job: job}

	generated, source, err := fsutil.ReadFile(ctx, job.Source)
	if err != nil {
		return nil, categorizeError(err)
	}

	merged, err := p.Merger.Merge(ctx, job.RelPath, opts.Slot, string(generated))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMergeFailure, err)
	}
	result.Merge = merged
	result.Target = merged.Path

	current, snap, err := fsutil.ReadIfExists(ctx, merged.Path)
	if err != nil {
		return nil, categorizeError(err)
	}
	result.Created = !snap.Exists

	if snap.Exists && string(current) == merged.Content {
		result.Unchanged = true
		return result, nil
	}

	if opts.DryRun {
		result.Pending = true
		result.Diff = diff.Compute(job.RelPath, string(current), merged.Content)
		return result, nil
	}

	modified, err := fsutil.CheckModified(ctx, snap)
	if err != nil {
		return nil, fmt.Errorf("check modified: %w", err)
	}
	if modified {
		result.Skipped = true
		result.SkipReason = "output modified during processing"
		p.logger().Warn("skipping file", logging.FieldPath, merged.Path, "reason", result.SkipReason)
		return result, nil
	}

	created, err := fsutil.CreateBackup(ctx, snap, current, opts.Backup)
	if err != nil {
		return nil, fmt.Errorf("create backup: %w", err)
	}
	result.BackupCreated = created

	mode := source.Mode
	if snap.Exists {
		mode = snap.Mode
	}
	if err := fsutil.WriteAtomic(ctx, merged.Path, []byte(merged.Content), mode.Perm()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}
	result.Written = true

	p.logger().Debug("wrote file",
		logging.FieldPath, merged.Path,
		logging.FieldRegions, result.Preserved()+result.Filled())

	return result, nil
}

func (p *Pipeline) logger() *log.Logger {
	if p.Logger == nil {
		return logging.Default()
	}
	return p.Logger
}

// categorizeError wraps an error with the appropriate pipeline error type.
func categorizeError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, fsutil.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %w", ErrFileNotFound, err)
	}

	if errors.Is(err, fsutil.ErrPermissionDenied) || errors.Is(err, os.ErrPermission) {
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	}

	return err
}

// IsPipelineError checks if an error is a known pipeline error type.
func IsPipelineError(err error) bool {
	return errors.Is(err, ErrFileNotFound) ||
		errors.Is(err, ErrPermissionDenied) ||
		errors.Is(err, ErrMergeFailure) ||
		errors.Is(err, ErrWriteFailure)
}
