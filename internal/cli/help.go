package cli

import (
	"io"
	"strings"
	"text/template"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yaklabco/gopreserve/internal/ui/pretty"
)

// HelpStyles contains Lipgloss styles for command help formatting.
type HelpStyles struct {
	Command     lipgloss.Style
	Heading     lipgloss.Style
	Subcommand  lipgloss.Style
	Flag        lipgloss.Style
	Description lipgloss.Style
	Example     lipgloss.Style
	Dim         lipgloss.Style
}

// NewHelpStyles creates help styles based on color mode.
func NewHelpStyles(colorEnabled bool) *HelpStyles {
	if !colorEnabled {
		plain := lipgloss.NewStyle()
		return &HelpStyles{
			Command:     plain,
			Heading:     plain,
			Subcommand:  plain,
			Flag:        plain,
			Description: plain,
			Example:     plain,
			Dim:         plain,
		}
	}

	return &HelpStyles{
		Command:     lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		Heading:     lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		Subcommand:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Flag:        lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Description: lipgloss.NewStyle(),
		Example:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Dim:         lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// HelpFormatter renders styled help and usage output for Cobra commands.
type HelpFormatter struct {
	styles *HelpStyles
	tmpl   *template.Template
}

const helpTemplate = `{{define "usage"}}{{ heading "Usage:" }}
{{- if .Runnable}}
  {{ command .UseLine }}{{end}}
{{- if .HasAvailableSubCommands}}
  {{ command .CommandPath }} [command]{{end}}
{{- if gt (len .Aliases) 0}}

{{ heading "Aliases:" }}
  {{ dim (join .Aliases ", ") }}
{{- end}}
{{- if .HasExample}}

{{ heading "Examples:" }}
{{ example .Example }}
{{- end}}
{{- if .HasAvailableSubCommands}}

{{ heading "Commands:" }}{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{ subcommand (rpad .Name .NamePadding) }} {{ .Short }}{{end}}{{end}}
{{- end}}
{{- if .HasAvailableLocalFlags}}

{{ heading "Flags:" }}
{{ flags .LocalFlags }}
{{- end}}
{{- if .HasAvailableInheritedFlags}}

{{ heading "Global Flags:" }}
{{ flags .InheritedFlags }}
{{- end}}
{{- if .HasAvailableSubCommands}}

Use "{{ command (print .CommandPath " [command] --help") }}" for more information about a command.
{{- end}}
{{end}}
{{define "help"}}{{with (or .Long .Short)}}{{ trim . }}

{{end}}{{template "usage" .}}{{end}}`

// NewHelpFormatter creates a help formatter for the given color mode and writer.
func NewHelpFormatter(colorMode string, writer io.Writer) *HelpFormatter {
	h := &HelpFormatter{styles: NewHelpStyles(pretty.IsColorEnabled(colorMode, writer))}

	h.tmpl = template.Must(template.New("gopreserve").Funcs(template.FuncMap{
		"heading":    h.styles.Heading.Render,
		"command":    h.styles.Command.Render,
		"subcommand": h.styles.Subcommand.Render,
		"dim":        h.styles.Dim.Render,
		"example":    h.styleExample,
		"flags":      h.styleFlags,
		"rpad":       rpad,
		"join":       strings.Join,
		"trim":       func(s string) string { return strings.TrimRight(s, " \t\n") },
	}).Parse(helpTemplate))

	return h
}

// ApplyToCommand installs the styled help and usage output on cmd and its subcommands.
func (h *HelpFormatter) ApplyToCommand(cmd *cobra.Command) {
	cmd.SetUsageFunc(func(c *cobra.Command) error {
		return h.tmpl.ExecuteTemplate(c.OutOrStderr(), "usage", c)
	})
	cmd.SetHelpFunc(func(c *cobra.Command, _ []string) {
		if err := h.tmpl.ExecuteTemplate(c.OutOrStdout(), "help", c); err != nil {
			c.PrintErrln(err)
		}
	})
}

// styleExample dims example lines and highlights the command invocations.
func (h *HelpFormatter) styleExample(example string) string {
	lines := strings.Split(example, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		indent := line[:len(line)-len(trimmed)]
		if cmd, comment, found := strings.Cut(trimmed, "#"); found {
			lines[i] = indent + h.styles.Command.Render(strings.TrimRight(cmd, " ")) +
				" " + h.styles.Example.Render("#"+comment)
			continue
		}
		lines[i] = indent + h.styles.Example.Render(trimmed)
	}
	return strings.Join(lines, "\n")
}

// styleFlags renders a flag set with the flag names highlighted.
func (h *HelpFormatter) styleFlags(flags *pflag.FlagSet) string {
	usages := strings.TrimSuffix(flags.FlagUsages(), "\n")
	if usages == "" {
		return ""
	}

	lines := strings.Split(usages, "\n")
	for i, line := range lines {
		lines[i] = h.styleFlagLine(line)
	}
	return strings.Join(lines, "\n")
}

// styleFlagLine styles "  -f, --flag type   description", keeping its alignment.
func (h *HelpFormatter) styleFlagLine(line string) string {
	body := strings.TrimLeft(line, " ")
	if body == "" {
		return line
	}
	indent := line[:len(line)-len(body)]

	// Flag names and type end at the first run of two spaces.
	idx := strings.Index(body, "  ")
	if idx < 0 {
		return line
	}
	head, rest := body[:idx], body[idx:]
	desc := strings.TrimLeft(rest, " ")
	gap := rest[:len(rest)-len(desc)]

	tokens := strings.Fields(head)
	for i, token := range tokens {
		name, comma := strings.CutSuffix(token, ",")
		if strings.HasPrefix(name, "-") {
			name = h.styles.Flag.Render(name)
		} else {
			name = h.styles.Dim.Render(name)
		}
		if comma {
			name += ","
		}
		tokens[i] = name
	}

	return indent + strings.Join(tokens, " ") + gap + h.styles.Description.Render(desc)
}

func rpad(str string, padding int) string {
	if len(str) >= padding {
		return str
	}
	return str + strings.Repeat(" ", padding-len(str))
}
