package cli

import (
	"encoding/json"
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/yaklabco/gopreserve/internal/ui/pretty"
	"github.com/yaklabco/gopreserve/pkg/parser"
)

// languageJSON is the JSON form of a language preset.
type languageJSON struct {
	Name       string        `json:"name"`
	Extensions []string      `json:"extensions"`
	Comments   []commentJSON `json:"comments"`
	CData      []cdataJSON   `json:"cdata"`
}

type commentJSON struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
	Style string `json:"style"`
}

type cdataJSON struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Escape string `json:"escape,omitempty"`
}

func newLanguagesCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:     "languages",
		Aliases: []string{"langs"},
		Short:   "List the built-in language presets",
		Long: `List the built-in language presets with the file extensions they are bound
to and their comment and string delimiters. Use a preset's name as the
"language" of a parser entry in the configuration file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLanguages(cmd, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "output format: table or json")

	return cmd
}

func runLanguages(cmd *cobra.Command, format string) error {
	languages := parser.Languages()
	out := cmd.OutOrStdout()

	switch format {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(lo.Map(languages, toLanguageJSON)); err != nil {
			return fmt.Errorf("encode languages: %w", err)
		}
		return nil
	case "table", "text":
		colorEnabled := pretty.IsColorEnabled(colorMode(cmd), out)
		formatter := pretty.NewTableFormatter(pretty.NewStyles(colorEnabled), colorEnabled, 0)
		_, err := fmt.Fprint(out, formatter.FormatLanguageTable(languages))
		return err
	default:
		return fmt.Errorf("%w: unknown format %q; valid formats: table, json", ErrUsage, format)
	}
}

func toLanguageJSON(lang parser.Language, _ int) languageJSON {
	comments, cdata := lang.Delimiters()
	return languageJSON{
		Name:       lang.Name,
		Extensions: lang.Extensions,
		Comments: lo.Map(comments, func(c parser.CommentType, _ int) commentJSON {
			return commentJSON{Start: c.Start, End: c.End, Style: c.Style.String()}
		}),
		CData: lo.Map(cdata, func(d parser.CDataType, _ int) cdataJSON {
			return cdataJSON{Start: d.Start, End: d.End, Escape: d.Escape}
		}),
	}
}
