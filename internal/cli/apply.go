package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gopreserve/internal/configloader"
	"github.com/yaklabco/gopreserve/internal/logging"
	"github.com/yaklabco/gopreserve/pkg/config"
	"github.com/yaklabco/gopreserve/pkg/generate"
	"github.com/yaklabco/gopreserve/pkg/reporter"
)

type applyFlags struct {
	format   string
	backup   bool
	exitCode bool
	verbose  bool
	compact  bool
}

func newApplyCommand() *cobra.Command {
	var cfg config.Config
	flags := &applyFlags{}

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Merge generated files into the output, keeping protected regions",
		Long: `Merge freshly generated files into the output directory.

The regions of every existing output file are collected first. Each file in the
staging directory is then merged with them: enabled protected regions keep their
hand-written content, fill-in regions are refreshed, and the result is written
to the matching output path when it differs from what is already there.`,
		Example: `  gopreserve apply                      # merge gen/ into the current directory
  gopreserve apply --dry-run --format diff  # show what would change
  gopreserve apply --dry-run --exit-code    # fail in CI when output is stale
  gopreserve apply --watch                  # re-apply whenever gen/ changes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runApply(cmd, &cfg, flags)
		},
	}

	addApplyFlags(cmd, &cfg, flags)

	return cmd
}

func addApplyFlags(cmd *cobra.Command, cfg *config.Config, flags *applyFlags) {
	cmd.Flags().StringVarP(&cfg.Generated, "generated", "g", "", "staging directory the generator writes into")
	cmd.Flags().StringVarP(&cfg.Output, "output", "o", "", "output directory of the default slot")
	cmd.Flags().BoolVar(&cfg.DryRun, "dry-run", false, "compute changes without writing files")
	cmd.Flags().BoolVarP(&cfg.Watch, "watch", "w", false, "re-apply whenever the staging directories change")
	cmd.Flags().IntVar(&cfg.Jobs, "jobs", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().StringSliceVar(&cfg.Ignore, "ignore", nil, "glob patterns to ignore")
	cmd.Flags().BoolVar(&cfg.FollowSymlinks, "follow-symlinks", false, "descend into symlinked directories")
	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, table, json, diff, summary")
	cmd.Flags().BoolVar(&flags.backup, "backup", false, "keep the previous content of overwritten files")
	cmd.Flags().BoolVar(&flags.exitCode, "exit-code", false, "exit with 1 when a dry run finds pending changes")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "also list unchanged files")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "use compact JSON output")
}

func runApply(cmd *cobra.Command, cfg *config.Config, flags *applyFlags) error {
	logger := logging.Default()
	ctx := commandContext(cmd)

	if err := absFlagDirs(cfg); err != nil {
		return err
	}
	if cmd.Flags().Changed("format") {
		cfg.Format = config.OutputFormat(flags.format)
	}
	if cmd.Flags().Changed("backup") {
		enabled := flags.backup
		cfg.Backups.Enabled = &enabled
	}

	loadResult, workDir, err := loadConfig(cmd, cfg)
	if err != nil {
		return err
	}
	finalCfg := loadResult.Config

	// Diffs are only computed without writing.
	if finalCfg.Format == config.FormatDiff {
		finalCfg.DryRun = true
	}

	logger.Debug("configuration loaded",
		logging.FieldOutput, finalCfg.Output,
		logging.FieldDryRun, finalCfg.DryRun,
		logging.FieldJobs, finalCfg.Jobs,
		logging.FieldWatch, finalCfg.Watch,
	)

	bindings, err := configloader.Bindings(finalCfg)
	if err != nil {
		return err
	}

	session, err := generate.NewSession(finalCfg, bindings, logger)
	if err != nil {
		return err
	}

	rep, err := newReporter(cmd, string(finalCfg.Format), workDir, func(opts *reporter.Options) {
		opts.Verbose = flags.verbose
		opts.Compact = flags.compact
	})
	if err != nil {
		return err
	}

	pass := func(ctx context.Context) error {
		results, err := session.Apply(ctx)
		if len(results) > 0 {
			if _, reportErr := rep.ReportApply(ctx, results); reportErr != nil {
				return fmt.Errorf("report results: %w", reportErr)
			}
		}
		if err != nil {
			return err
		}
		return applyOutcome(results, flags.exitCode)
	}

	if !finalCfg.Watch {
		return pass(ctx)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithLogger(ctx, logger)

	if err := pass(ctx); err != nil && !IsReported(err) {
		logger.Error("initial pass failed", logging.FieldError, err)
	}

	return generate.Watch(ctx, session.StagingDirs(), generate.DefaultDebounce, pass)
}

// applyOutcome turns the statistics of a pass into the command's error.
func applyOutcome(results []*generate.Result, exitCode bool) error {
	total := generate.TotalStats(results)

	switch {
	case total.FilesErrored > 0:
		return fmt.Errorf("%w: %d failed", ErrFilesFailed, total.FilesErrored)
	case exitCode && total.FilesPending > 0:
		return fmt.Errorf("%w: %d files", ErrChangesPending, total.FilesPending)
	default:
		return nil
	}
}

// absFlagDirs resolves directories given on the command line against the working
// directory, before the loader resolves the rest against the config file's directory.
func absFlagDirs(cfg *config.Config) error {
	for _, dir := range []*string{&cfg.Generated, &cfg.Output} {
		if *dir == "" {
			continue
		}
		abs, err := filepath.Abs(*dir)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", *dir, err)
		}
		*dir = abs
	}
	return nil
}
