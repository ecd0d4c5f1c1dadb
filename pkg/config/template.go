package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full documents every field, including parser and notation options.
	Full bool

	// Format is the output format: "yaml" or "json".
	Format string

	// Languages pre-populates the parsers list with these presets.
	Languages []string
}

// GenerateTemplate creates a configuration file template.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	if opts.Format == "json" {
		return templateToJSON(opts)
	}

	var buf bytes.Buffer
	buf.WriteString(DefaultTemplateHeader())
	buf.WriteString(`

# Staging directory the generator writes into.
generated: gen

# Output directory (the "default" slot).
output: .
`)

	if opts.Full {
		buf.WriteString(`
# Additional output slots.
# slots:
#   docs:
#     output: site
#     generated: gen-site

# Where regions are collected from. Empty means every slot root.
# read:
#   - path: src
#     slot: default
`)
	}

	buf.WriteString("\n# Parsers are consulted in order. Empty means every built-in language.\n")
	if len(opts.Languages) == 0 {
		buf.WriteString("# parsers:\n#   - language: java\n")
	} else {
		buf.WriteString("parsers:\n")
		for _, lang := range opts.Languages {
			fmt.Fprintf(&buf, "  - language: %s\n", lang)
		}
	}

	if opts.Full {
		buf.WriteString(`#   - name: templates
#     language: html
#     extensions: [".tmpl"]
#     switchable: true
#     notation:
#       kind: default          # default, bracket or pattern
#       label: PROTECTED REGION
#       keyword: ENABLED
#       polarity: enables      # enables or disables
#   - name: model
#     comments:
#       - start: "/*"
#         end: "*/"
#         style: nestable      # multiline, nestable or singleline
#     cdata:
#       - start: '"'
#         end: '"'
#         escape: '\'
#     globs: ["model/**/*.mdl"]
#     inverse: true
`)
	}

	buf.WriteString(`
# File patterns to skip (glob patterns).
# ignore:
#   - "**/node_modules/**"

# Keep the previous content of overwritten files next to them.
# backups:
#   enabled: true
#   mode: sidecar

# Number of parallel workers (0 = auto)
# jobs: 0
`)

	if opts.Full {
		buf.WriteString(`
# Descend into symlinked directories.
# follow_symlinks: false
`)
	}

	return buf.Bytes(), nil
}

func templateToJSON(opts TemplateOptions) ([]byte, error) {
	cfg := map[string]any{
		"generated": "gen",
		"output":    ".",
	}

	if len(opts.Languages) > 0 {
		parsers := make([]map[string]string, 0, len(opts.Languages))
		for _, lang := range opts.Languages {
			parsers = append(parsers, map[string]string{"language": lang})
		}
		cfg["parsers"] = parsers
	}

	if opts.Full {
		cfg["ignore"] = []string{}
		cfg["backups"] = map[string]any{"enabled": false, "mode": BackupModeSidecar}
		cfg["jobs"] = 0
	}

	out, err := json.MarshalIndent(cfg, "", strings.Repeat(" ", YAMLIndent()))
	if err != nil {
		return nil, fmt.Errorf("marshal JSON: %w", err)
	}
	return out, nil
}

// DefaultTemplateHeader returns the default header for generated configs.
func DefaultTemplateHeader() string {
	return `# gopreserve configuration
# See: https://github.com/yaklabco/gopreserve`
}
