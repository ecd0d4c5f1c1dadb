// Package cli provides the Cobra command structure for gopreserve.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gopreserve/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root gopreserve command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string

	rootCmd := &cobra.Command{
		Use:   "gopreserve",
		Short: "Keep hand-written code in protected regions across code generation runs",
		Long: `gopreserve merges the output of a code generator into an existing source tree
without losing what developers wrote by hand.

Hand-written code lives in protected regions, marked by comments such as

  // PROTECTED REGION ID(com.acme.Order.validate) ENABLED START
  ...
  // PROTECTED REGION END

The generator writes into a staging directory. gopreserve collects the regions
of the current output, puts their content into the freshly generated files and
writes the result back, touching only files that changed.`,
		Version: info.Version,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	})

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	rootCmd.AddCommand(newApplyCommand())
	rootCmd.AddCommand(newRegionsCommand())
	rootCmd.AddCommand(newCheckCommand())
	rootCmd.AddCommand(newLanguagesCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	helpFormatter := NewHelpFormatter(color, os.Stdout)
	helpFormatter.ApplyToCommand(rootCmd)

	return rootCmd
}
