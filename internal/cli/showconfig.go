package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/yaklabco/gopreserve/internal/configloader"
	"github.com/yaklabco/gopreserve/internal/logging"
	"github.com/yaklabco/gopreserve/pkg/config"
)

type configFlags struct {
	output string
	force  bool
}

func newConfigCommand() *cobra.Command {
	flags := &configFlags{}

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration apply would run with, after merging the system,
user and project files with GOPRESERVE_* environment variables. Directories
are shown resolved.

With --output the configuration is written to a file instead, which pins the
merged result into a single project configuration.

Environment variables:
` + envVarHelp(),
		Example: `  gopreserve config                       # show the merged configuration
  gopreserve config -o .gopreserve.yml -f   # freeze it into the project`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShowConfig(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "write the configuration to this file")
	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "overwrite an existing file")

	return cmd
}

// envVarHelp lists the supported environment variables, one per line.
func envVarHelp() string {
	vars := configloader.ListEnvVars()
	names := lo.Keys(vars)
	sort.Strings(names)

	width := lo.Max(lo.Map(names, func(n string, _ int) int { return len(n) }))
	lines := lo.Map(names, func(name string, _ int) string {
		return fmt.Sprintf("  %-*s  %s", width, name, vars[name])
	})
	return strings.Join(lines, "\n")
}

func runShowConfig(cmd *cobra.Command, flags *configFlags) error {
	loadResult, _, err := loadConfig(cmd, &config.Config{})
	if err != nil {
		return err
	}

	if flags.output != "" {
		if _, err := os.Stat(flags.output); err == nil && !flags.force {
			return fmt.Errorf("%w: file %q already exists; use --force to overwrite", ErrUsage, flags.output)
		}
		if err := configloader.WriteConfig(loadResult.Config, flags.output); err != nil {
			return err
		}
		logging.NewWithWriter(cmd.ErrOrStderr(), "info").
			Info("wrote configuration", logging.FieldPath, flags.output)
		return nil
	}

	header := "# effective gopreserve configuration"
	if len(loadResult.LoadedFrom) > 0 {
		header += "\n# loaded from:\n#   " + strings.Join(loadResult.LoadedFrom, "\n#   ")
	}

	content, err := loadResult.Config.ToYAMLWithHeader(header)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}

	_, err = cmd.OutOrStdout().Write(content)
	return err
}
