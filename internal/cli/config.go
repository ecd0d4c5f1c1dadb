package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gopreserve/internal/configloader"
	"github.com/yaklabco/gopreserve/internal/logging"
	"github.com/yaklabco/gopreserve/pkg/config"
	"github.com/yaklabco/gopreserve/pkg/reporter"
)

// loadConfig resolves the configuration for cmd, with cliCfg holding the values set
// through flags. It returns the load result and the working directory.
func loadConfig(cmd *cobra.Command, cliCfg *config.Config) (*configloader.LoadResult, string, error) {
	logger := logging.Default()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, "", fmt.Errorf("get config flag: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("get working directory: %w", err)
	}

	loadResult, err := configloader.Load(commandContext(cmd), configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    cliCfg,
	})
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrConfig, err)
	}

	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}

	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration",
			logging.FieldFiles, loadResult.LoadedFrom,
			logging.FieldWorkingDir, workDir)
	}

	return loadResult, workDir, nil
}

// commandContext returns the command context, falling back to Background.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// colorMode returns the value of the persistent --color flag.
func colorMode(cmd *cobra.Command) string {
	mode, err := cmd.Flags().GetString("color")
	if err != nil {
		return "auto"
	}
	return mode
}

// newReporter builds a reporter writing to the command's output streams.
func newReporter(cmd *cobra.Command, format string, workDir string, configure func(*reporter.Options)) (reporter.Reporter, error) {
	parsed, err := reporter.ParseFormat(format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}

	opts := reporter.Options{
		Writer:      cmd.OutOrStdout(),
		Format:      parsed,
		Color:       colorMode(cmd),
		ShowSummary: true,
		WorkingDir:  workDir,
	}
	if configure != nil {
		configure(&opts)
	}

	rep, err := reporter.New(opts)
	if err != nil {
		return nil, fmt.Errorf("create reporter: %w", err)
	}
	return rep, nil
}
