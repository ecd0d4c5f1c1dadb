package cli

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/yaklabco/gopreserve/internal/configloader"
	"github.com/yaklabco/gopreserve/internal/logging"
	"github.com/yaklabco/gopreserve/pkg/config"
	"github.com/yaklabco/gopreserve/pkg/inspect"
	"github.com/yaklabco/gopreserve/pkg/reporter"
)

type inspectFlags struct {
	format  string
	detect  bool
	strict  bool
	compact bool
}

func newRegionsCommand() *cobra.Command {
	var cfg config.Config
	flags := &inspectFlags{}

	cmd := &cobra.Command{
		Use:   "regions [paths...]",
		Short: "List the protected regions of files",
		Long: `List every marked region with its id, location, state and parser.

Without paths the output directories of all slots are scanned; staging
directories are left out. Problems found along the way are listed too, but
do not change the exit code.`,
		Example: `  gopreserve regions                    # all regions of the output
  gopreserve regions src/ --format table  # one directory, as a table
  gopreserve regions --detect scripts/    # also parse files by detected language`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := runInspect(cmd, args, &cfg, flags, false)
			return err
		},
	}

	addInspectFlags(cmd, &cfg, flags)

	return cmd
}

func newCheckCommand() *cobra.Command {
	var cfg config.Config
	flags := &inspectFlags{}

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Report malformed regions and duplicate region ids",
		Long: `Check files for everything that would make apply fail: comments or strings
that do not end, region ends without a start, unclosed regions, and region ids
used twice in one file or across files.

Exits with 1 when an error is found. With --strict, warnings such as
unreadable files fail the check as well.`,
		Example: `  gopreserve check                      # check the output directories
  gopreserve check --format json src/   # machine readable findings`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := runInspect(cmd, args, &cfg, flags, true)
			if err != nil {
				return err
			}
			if report.HasErrors() || (flags.strict && len(report.Findings) > 0) {
				return fmt.Errorf("%w: %d findings", ErrFindings, len(report.Findings))
			}
			return nil
		},
	}

	addInspectFlags(cmd, &cfg, flags)
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "treat warnings as errors for exit code")

	return cmd
}

func addInspectFlags(cmd *cobra.Command, cfg *config.Config, flags *inspectFlags) {
	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, table, json, summary")
	cmd.Flags().StringSliceVar(&cfg.Ignore, "ignore", nil, "glob patterns to ignore")
	cmd.Flags().BoolVar(&cfg.FollowSymlinks, "follow-symlinks", false, "descend into symlinked directories")
	cmd.Flags().BoolVar(&flags.detect, "detect", false, "parse files without a configured parser by detected language")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "use compact JSON output")
}

func runInspect(
	cmd *cobra.Command,
	args []string,
	cfg *config.Config,
	flags *inspectFlags,
	findingsOnly bool,
) (*inspect.Report, error) {
	logger := logging.Default()
	ctx := commandContext(cmd)

	loadResult, workDir, err := loadConfig(cmd, cfg)
	if err != nil {
		return nil, err
	}
	finalCfg := loadResult.Config

	bindings, err := configloader.Bindings(finalCfg)
	if err != nil {
		return nil, err
	}

	paths := args
	if len(paths) == 0 {
		paths = outputDirs(finalCfg)
	}
	logger.Debug("inspecting", logging.FieldPaths, paths, logging.FieldParsers, len(bindings))

	inspector := inspect.New(bindings, inspect.Options{
		Ignore:         finalCfg.Ignore,
		FollowSymlinks: finalCfg.FollowSymlinks,
		DetectLanguage: flags.detect,
		SkipDirs:       lo.Values(finalCfg.StagingDirs()),
	}, logger)

	report, err := inspector.Inspect(ctx, paths)
	if err != nil {
		return nil, err
	}

	rep, err := newReporter(cmd, flags.format, workDir, func(opts *reporter.Options) {
		opts.FindingsOnly = findingsOnly
		opts.Compact = flags.compact
	})
	if err != nil {
		return nil, err
	}

	if _, err := rep.ReportInspect(ctx, report); err != nil {
		return nil, fmt.Errorf("report results: %w", err)
	}

	return report, nil
}

// outputDirs returns the distinct output directories of all slots, sorted.
func outputDirs(cfg *config.Config) []string {
	dirs := lo.Uniq(lo.Values(cfg.SlotDirs()))
	sort.Strings(dirs)
	return dirs
}
