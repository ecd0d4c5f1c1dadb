package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yaklabco/gopreserve/pkg/generate"
	"github.com/yaklabco/gopreserve/pkg/inspect"
	"github.com/yaklabco/gopreserve/pkg/parser"
)

// Table formatting constants.
const (
	tablePadding     = 2
	minColumnWidth   = 4
	minFlexWidth     = 20
	heavySeparator   = "="
	lightSeparator   = "-"
	defaultTermWidth = 100
)

// TableRow is one row of a table.
type TableRow struct {
	Cells []string

	// Style colors the whole row. Nil renders the row plain.
	Style *lipgloss.Style

	// Group starts a new section when it differs from the previous row's group.
	Group string
}

// TableFormatter formats rows as a styled, width-constrained table.
type TableFormatter struct {
	styles       *Styles
	colorEnabled bool
	termWidth    int
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(styles *Styles, colorEnabled bool, termWidth int) *TableFormatter {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}
	return &TableFormatter{
		styles:       styles,
		colorEnabled: colorEnabled,
		termWidth:    termWidth,
	}
}

// FormatTable renders headers and rows. Column flex shrinks first when the table is wider
// than the terminal; path columns are truncated from the left.
func (t *TableFormatter) FormatTable(headers []string, rows []TableRow, flex int, pathCols ...int) string {
	if len(rows) == 0 {
		return ""
	}

	widths := t.columnWidths(headers, rows, flex)
	isPath := make(map[int]bool, len(pathCols))
	for _, c := range pathCols {
		isPath[c] = true
	}

	var builder strings.Builder

	builder.WriteString(t.styles.TableHeader.Render(t.line(headers, widths, isPath)))
	builder.WriteString("\n")
	builder.WriteString(t.separator(widths, heavySeparator))
	builder.WriteString("\n")

	for i, row := range rows {
		if i > 0 && row.Group != rows[i-1].Group {
			builder.WriteString(t.separator(widths, lightSeparator))
			builder.WriteString("\n")
		}

		content := t.line(row.Cells, widths, isPath)
		if row.Style != nil {
			content = row.Style.Render(content)
		}
		builder.WriteString(content)
		builder.WriteString("\n")
	}

	builder.WriteString(t.separator(widths, heavySeparator))
	builder.WriteString("\n")

	return builder.String()
}

// FormatRegionTable lists the regions of an inspection report grouped by file.
func (t *TableFormatter) FormatRegionTable(report *inspect.Report, displayPath func(string) string) string {
	if report == nil || len(report.Regions) == 0 {
		return ""
	}

	rows := make([]TableRow, 0, len(report.Regions))
	for _, r := range report.Regions {
		state, style := "disabled", t.styles.Disabled
		if r.Enabled {
			state, style = "enabled", t.styles.Enabled
		}
		rows = append(rows, TableRow{
			Cells: []string{
				displayPath(r.File),
				fmt.Sprintf("%d:%d", r.Start.Line, r.Start.Column),
				r.ID,
				state,
				r.Parser,
			},
			Style: &style,
			Group: r.File,
		})
	}

	out := t.FormatTable([]string{"FILE", "LOC", "ID", "STATE", "PARSER"}, rows, 2, 0)
	return out + t.legend() + "\n"
}

// FormatApplyTable lists the file outcomes of apply results.
func (t *TableFormatter) FormatApplyTable(results []*generate.Result, displayPath func(string) string) string {
	var rows []TableRow
	for _, result := range results {
		if result == nil {
			continue
		}
		for _, outcome := range result.Files {
			row := TableRow{Group: result.Slot}
			if outcome.Error != nil {
				style := t.styles.Error
				row.Style = &style
				row.Cells = []string{result.Slot, displayPath(outcome.Job.RelPath), "error: " + outcome.Error.Error(), "", ""}
				rows = append(rows, row)
				continue
			}

			fr := outcome.Result
			if fr == nil {
				continue
			}
			style := t.statusStyle(fr)
			row.Style = &style
			row.Cells = []string{
				result.Slot,
				displayPath(fr.Target),
				fr.Summary(),
				strconv.Itoa(fr.Preserved()),
				strconv.Itoa(fr.Filled()),
			}
			rows = append(rows, row)
		}
	}

	return t.FormatTable([]string{"SLOT", "FILE", "STATUS", "PRESERVED", "FILLED"}, rows, 2, 1)
}

// FormatLanguageTable lists language presets with their extensions and delimiters.
func (t *TableFormatter) FormatLanguageTable(languages []parser.Language) string {
	rows := make([]TableRow, 0, len(languages))
	for _, lang := range languages {
		comments, cdata := lang.Delimiters()

		delims := make([]string, 0, len(comments)+len(cdata))
		for _, c := range comments {
			delims = append(delims, c.String())
		}
		for _, d := range cdata {
			delims = append(delims, d.String())
		}

		rows = append(rows, TableRow{
			Cells: []string{lang.Name, strings.Join(lang.Extensions, " "), strings.Join(delims, "  ")},
		})
	}

	return t.FormatTable([]string{"NAME", "EXTENSIONS", "DELIMITERS"}, rows, 2)
}

func (t *TableFormatter) statusStyle(fr *generate.FileResult) lipgloss.Style {
	switch {
	case fr.Skipped:
		return t.styles.Skipped
	case fr.Created:
		return t.styles.Created
	case fr.Pending:
		return t.styles.Pending
	case fr.Written:
		return t.styles.Updated
	default:
		return t.styles.Unchanged
	}
}

// columnWidths sizes every column to its widest cell and shrinks flex to fit the terminal.
func (t *TableFormatter) columnWidths(headers []string, rows []TableRow, flex int) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = max(minColumnWidth, lipgloss.Width(h))
	}
	for _, row := range rows {
		for i, cell := range row.Cells {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	if flex >= 0 && flex < len(widths) {
		if total := totalWidth(widths); total > t.termWidth {
			widths[flex] = max(minFlexWidth, widths[flex]-(total-t.termWidth))
		}
	}

	return widths
}

func totalWidth(widths []int) int {
	total := 1
	for _, w := range widths {
		total += w + tablePadding
	}
	return total
}

func (t *TableFormatter) line(cells []string, widths []int, isPath map[int]bool) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		if isPath[i] {
			cell = truncateFilePath(cell, w)
		} else {
			cell = truncateString(cell, w)
		}
		parts[i] = fmt.Sprintf("%-*s", w, cell)
	}
	return strings.TrimRight(" "+strings.Join(parts, strings.Repeat(" ", tablePadding)), " ")
}

func (t *TableFormatter) separator(widths []int, char string) string {
	return t.styles.TableSeparator.Render(strings.Repeat(char, totalWidth(widths)))
}

// legend explains the region row colors.
func (t *TableFormatter) legend() string {
	if !t.colorEnabled {
		return t.styles.TableLegend.Render(" Legend: enabled regions are preserved, disabled ones are regenerated")
	}

	return t.styles.TableLegend.Render(
		fmt.Sprintf(" Legend: %s = preserved  %s = regenerated",
			t.styles.Enabled.Render("enabled"), t.styles.Disabled.Render("disabled")),
	)
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(str string, maxLen int) string {
	if len(str) <= maxLen {
		return str
	}
	if maxLen <= 3 {
		return str[:maxLen]
	}
	return str[:maxLen-3] + "..."
}

// truncateFilePath truncates a file path, preserving the end (filename) rather than beginning.
func truncateFilePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return path[len(path)-maxLen:]
	}
	return "..." + path[len(path)-maxLen+3:]
}
