// Package generate merges freshly generated files into their output directory.
//
// Generators write into a staging directory. For every staged file the pipeline merges
// the preserved regions collected by a registry.Registry into the generated content and
// writes the result to the matching path of an output slot, safely and only when the
// content changed.
package generate

import (
	"github.com/yaklabco/gopreserve/pkg/config"
	"github.com/yaklabco/gopreserve/pkg/fsutil"
)

// Options controls one pass over a staging directory.
type Options struct {
	// StagingDir is the directory the generator wrote into.
	StagingDir string

	// Slot is the output slot the staged files belong to. Empty means the default slot.
	Slot string

	// Extensions limits discovery to files with these suffixes. Empty means all files.
	Extensions []string

	// IncludeGlobs are glob patterns, relative to StagingDir, a file must match.
	// Empty means "include everything that matches Extensions".
	IncludeGlobs []string

	// ExcludeGlobs are glob patterns used to skip files or directories.
	ExcludeGlobs []string

	// FollowSymlinks controls whether directory symlinks are traversed.
	FollowSymlinks bool

	// Jobs controls the maximum number of concurrent workers.
	// 0 or negative means "auto" (runtime.NumCPU()).
	Jobs int

	// DryRun computes diffs without writing files.
	DryRun bool

	// Backup configures backups of overwritten output files.
	Backup fsutil.BackupConfig
}

// BackupConfigFromConfig creates an fsutil.BackupConfig from config.Config.
func BackupConfigFromConfig(cfg *config.Config) fsutil.BackupConfig {
	if cfg == nil {
		return fsutil.DefaultBackupConfig()
	}

	mode := fsutil.BackupMode(cfg.Backups.Mode)
	if mode == "" {
		mode = fsutil.BackupModeSidecar
	}

	return fsutil.BackupConfig{
		Enabled: cfg.Backups.IsEnabled() && mode != fsutil.BackupModeNone,
		Mode:    mode,
	}
}

// OptionsFromConfig returns the options for staging directory staging of slot.
func OptionsFromConfig(cfg *config.Config, slot, staging string) Options {
	return Options{
		StagingDir:     staging,
		Slot:           slot,
		ExcludeGlobs:   cfg.Ignore,
		FollowSymlinks: cfg.FollowSymlinks,
		Jobs:           cfg.Jobs,
		DryRun:         cfg.DryRun,
		Backup:         BackupConfigFromConfig(cfg),
	}
}
