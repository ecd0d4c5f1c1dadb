// Package pretty renders gopreserve's terminal output with lipgloss.
package pretty

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// ANSI palette indexes.
const (
	colorRed    = "9"
	colorGreen  = "10"
	colorYellow = "11"
	colorBlue   = "12"
	colorCyan   = "14"
	colorWhite  = "7"
	colorGray   = "8"
)

// Styles holds the lipgloss styles of every element gopreserve prints.
type Styles struct {
	// Findings.
	Error    lipgloss.Style
	Warning  lipgloss.Style
	FilePath lipgloss.Style
	Location lipgloss.Style
	Kind     lipgloss.Style
	Message  lipgloss.Style

	// Regions.
	RegionID lipgloss.Style
	Enabled  lipgloss.Style
	Disabled lipgloss.Style
	Parser   lipgloss.Style

	// Apply status of an output file.
	Created   lipgloss.Style
	Updated   lipgloss.Style
	Pending   lipgloss.Style
	Unchanged lipgloss.Style
	Skipped   lipgloss.Style

	// Unified diffs.
	DiffHeader  lipgloss.Style
	DiffHunk    lipgloss.Style
	DiffAdd     lipgloss.Style
	DiffRemove  lipgloss.Style
	DiffContext lipgloss.Style

	// Summaries.
	SummaryTitle lipgloss.Style
	SummaryValue lipgloss.Style
	Success      lipgloss.Style
	Failure      lipgloss.Style

	// Tables.
	TableHeader    lipgloss.Style
	TableLegend    lipgloss.Style
	TableSeparator lipgloss.Style

	Dim  lipgloss.Style
	Bold lipgloss.Style
}

// styler builds styles that collapse to plain text when color is off.
type styler struct {
	color bool
}

func (s styler) plain() lipgloss.Style {
	return lipgloss.NewStyle()
}

func (s styler) fg(color string) lipgloss.Style {
	if !s.color {
		return s.plain()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

func (s styler) bold(style lipgloss.Style) lipgloss.Style {
	if !s.color {
		return style
	}
	return style.Bold(true)
}

func (s styler) italic(style lipgloss.Style) lipgloss.Style {
	if !s.color {
		return style
	}
	return style.Italic(true)
}

// NewStyles returns the output styles. With colorEnabled false every style renders
// text unchanged.
func NewStyles(colorEnabled bool) *Styles {
	s := styler{color: colorEnabled}

	return &Styles{
		Error:    s.bold(s.fg(colorRed)),
		Warning:  s.bold(s.fg(colorYellow)),
		FilePath: s.bold(s.plain()),
		Location: s.fg(colorGray),
		Kind:     s.fg(colorGray),
		Message:  s.plain(),

		RegionID: s.fg(colorCyan),
		Enabled:  s.fg(colorGreen),
		Disabled: s.fg(colorGray),
		Parser:   s.fg(colorGray),

		Created:   s.bold(s.fg(colorGreen)),
		Updated:   s.fg(colorBlue),
		Pending:   s.fg(colorYellow),
		Unchanged: s.fg(colorGray),
		Skipped:   s.italic(s.fg(colorYellow)),

		DiffHeader:  s.bold(s.plain()),
		DiffHunk:    s.fg(colorCyan),
		DiffAdd:     s.fg(colorGreen),
		DiffRemove:  s.fg(colorRed),
		DiffContext: s.fg(colorGray),

		SummaryTitle: s.bold(s.plain()),
		SummaryValue: s.plain(),
		Success:      s.bold(s.fg(colorGreen)),
		Failure:      s.bold(s.fg(colorRed)),

		TableHeader:    s.bold(s.fg(colorWhite)),
		TableLegend:    s.italic(s.fg(colorGray)),
		TableSeparator: s.fg(colorGray),

		Dim:  s.fg(colorGray),
		Bold: s.bold(s.plain()),
	}
}

// IsColorEnabled resolves a --color mode for writer. "always" and "never" are
// absolute. Anything else means auto: color only on a terminal, and only when
// NO_COLOR is empty.
func IsColorEnabled(mode string, writer io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}

	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := writer.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
