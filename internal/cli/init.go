package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yaklabco/gopreserve/internal/logging"
	"github.com/yaklabco/gopreserve/pkg/config"
	"github.com/yaklabco/gopreserve/pkg/fsreader"
	"github.com/yaklabco/gopreserve/pkg/langdetect"
	"github.com/yaklabco/gopreserve/pkg/parser"
	"github.com/yaklabco/gopreserve/pkg/registry"
)

// configFilePermissions is the file mode for configuration files (world-readable).
const configFilePermissions = 0o644

// maxDetectFiles bounds how many files init samples for language detection.
const maxDetectFiles = 2000

// detectSampleSize is how much of a file language detection reads.
const detectSampleSize = 8 << 10

type initFlags struct {
	force     bool
	full      bool
	yes       bool
	format    string
	output    string
	languages []string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a gopreserve configuration file",
		Long: `Create a .gopreserve.yml configuration file in the current directory.

Without --language, and when run on a terminal, init looks at the files of the
current directory and offers to bind parsers for the languages it finds.
Otherwise every built-in language preset stays bound to its extensions.`,
		Example: `  gopreserve init                          # minimal .gopreserve.yml
  gopreserve init --full                   # document every option
  gopreserve init --language java,xml      # bind parsers for two presets
  gopreserve init --format json            # write .gopreserve.json instead`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "overwrite an existing configuration file")
	cmd.Flags().BoolVar(&flags.full, "full", false, "generate a template documenting every option")
	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "do not prompt; keep the default parser set")
	cmd.Flags().StringVar(&flags.format, "format", "yaml", "output format: yaml or json")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "",
		"output file path (default: .gopreserve.yml or .gopreserve.json)")
	cmd.Flags().StringSliceVarP(&flags.languages, "language", "l", nil,
		"language presets to bind parsers for (see 'gopreserve languages')")

	return cmd
}

func runInit(cmd *cobra.Command, flags *initFlags) error {
	logger := logging.NewWithWriter(cmd.ErrOrStderr(), "info")
	ctx := commandContext(cmd)

	if flags.format != "yaml" && flags.format != "json" {
		return fmt.Errorf("%w: invalid format %q: must be yaml or json", ErrUsage, flags.format)
	}

	languages, err := normalizeLanguages(flags.languages)
	if err != nil {
		return err
	}

	outputPath := flags.output
	if outputPath == "" {
		outputPath = ".gopreserve.yml"
		if flags.format == "json" {
			outputPath = ".gopreserve.json"
		}
	}

	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if _, err := os.Stat(absPath); err == nil {
		if !flags.force {
			return fmt.Errorf("%w: file %q already exists; use --force to overwrite", ErrUsage, outputPath)
		}
		logger.Warn("overwriting existing file", logging.FieldPath, outputPath)
	}

	if len(languages) == 0 && !flags.yes && isInteractive(cmd.InOrStdin()) {
		detected, err := detectLanguages(ctx, filepath.Dir(absPath))
		if err != nil {
			logger.Warn("language detection failed", logging.FieldError, err)
		}
		if len(detected) > 0 {
			question := fmt.Sprintf("Found %s files. Bind parsers for these languages only?", strings.Join(detected, ", "))
			ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(), question)
			if err != nil {
				return err
			}
			if ok {
				languages = detected
			}
		}
	}

	content, err := config.GenerateTemplate(config.TemplateOptions{
		Full:      flags.full,
		Format:    flags.format,
		Languages: languages,
	})
	if err != nil {
		return fmt.Errorf("generate template: %w", err)
	}

	if err := os.WriteFile(absPath, content, configFilePermissions); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	logger.Info("created configuration file", logging.FieldPath, outputPath)
	if len(languages) > 0 {
		logger.Info("bound parsers", logging.FieldParsers, languages)
	}
	logger.Info("run 'gopreserve languages' to see all language presets")

	return nil
}

// normalizeLanguages resolves aliases and rejects unknown presets.
func normalizeLanguages(names []string) ([]string, error) {
	out := make([]string, 0, len(names))
	for _, name := range names {
		lang, ok := parser.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s (known: %s)", parser.ErrUnknownLanguage, name,
				strings.Join(parser.Names(), ", "))
		}
		out = append(out, lang.Name)
	}
	return lo.Uniq(out), nil
}

// detectLanguages returns the presets of the files below dir, sorted.
func detectLanguages(ctx context.Context, dir string) ([]string, error) {
	reader, err := fsreader.New(dir)
	if err != nil {
		return nil, err
	}

	files, err := reader.ListFiles(ctx, dir, registry.AcceptAll)
	if err != nil {
		return nil, err
	}
	if len(files) > maxDetectFiles {
		files = files[:maxDetectFiles]
	}

	found := make(map[string]struct{})
	for _, file := range files {
		sample, err := readSample(file)
		if err != nil {
			continue
		}
		if preset := langdetect.Preset(file, sample); preset != "" {
			found[preset] = struct{}{}
		}
	}

	names := lo.Keys(found)
	sort.Strings(names)
	return names, nil
}

func readSample(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, detectSampleSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:n], nil
}

// isInteractive reports whether in is a terminal.
func isInteractive(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// confirm asks a yes/no question, defaulting to yes.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	if _, err := fmt.Fprintf(out, "%s [Y/n] ", question); err != nil {
		return false, fmt.Errorf("write prompt: %w", err)
	}

	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read response: %w", err)
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "" || response == "y" || response == "yes", nil
}
