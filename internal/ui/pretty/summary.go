package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/gopreserve/pkg/generate"
	"github.com/yaklabco/gopreserve/pkg/inspect"
)

const summaryDividerWidth = 40

// FormatApplySummaryOneLine formats apply statistics as a single line.
// Example: "3 files: 1 created, 1 updated, 1 unchanged, 4 regions preserved".
func (s *Styles) FormatApplySummaryOneLine(stats generate.Stats) string {
	if stats.FilesDiscovered == 0 {
		return s.Dim.Render("No generated files found") + "\n"
	}

	var outcome []string
	if stats.FilesCreated > 0 {
		outcome = append(outcome, s.Created.Render(fmt.Sprintf("%d created", stats.FilesCreated)))
	}
	if updated := stats.FilesWritten - stats.FilesCreated; updated > 0 {
		outcome = append(outcome, s.Updated.Render(fmt.Sprintf("%d updated", updated)))
	}
	if stats.FilesPending > 0 {
		outcome = append(outcome, s.Pending.Render(fmt.Sprintf("%d pending", stats.FilesPending)))
	}
	if stats.FilesUnchanged > 0 {
		outcome = append(outcome, s.Unchanged.Render(fmt.Sprintf("%d unchanged", stats.FilesUnchanged)))
	}
	if stats.FilesSkipped > 0 {
		outcome = append(outcome, s.Skipped.Render(fmt.Sprintf("%d skipped", stats.FilesSkipped)))
	}
	if stats.FilesErrored > 0 {
		outcome = append(outcome, s.Error.Render(fmt.Sprintf("%d failed", stats.FilesErrored)))
	}

	line := plural(stats.FilesDiscovered, "file")
	if len(outcome) > 0 {
		line += ": " + strings.Join(outcome, ", ")
	}

	if stats.RegionsPreserved > 0 {
		line += ", " + s.Success.Render(plural(stats.RegionsPreserved, "region")+" preserved")
	}
	if stats.RegionsFilled > 0 {
		line += ", " + plural(stats.RegionsFilled, "region") + " filled"
	}

	return line + "\n"
}

// FormatApplySummary formats apply statistics as a summary block.
func (s *Styles) FormatApplySummary(stats generate.Stats) string {
	var builder strings.Builder

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Summary"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	row := func(label string, value int, style func(...string) string) {
		builder.WriteString(fmt.Sprintf("  %-20s%s\n", label+":", style(strconv.Itoa(value))))
	}

	row("Files generated", stats.FilesDiscovered, s.SummaryValue.Render)
	if stats.FilesCreated > 0 {
		row("Files created", stats.FilesCreated, s.Created.Render)
	}
	if updated := stats.FilesWritten - stats.FilesCreated; updated > 0 {
		row("Files updated", updated, s.Updated.Render)
	}
	if stats.FilesPending > 0 {
		row("Files pending", stats.FilesPending, s.Pending.Render)
	}
	if stats.FilesUnchanged > 0 {
		row("Files unchanged", stats.FilesUnchanged, s.Unchanged.Render)
	}
	if stats.FilesSkipped > 0 {
		row("Files skipped", stats.FilesSkipped, s.Skipped.Render)
	}
	if stats.FilesErrored > 0 {
		row("Files failed", stats.FilesErrored, s.Failure.Render)
	}
	if stats.BackupsCreated > 0 {
		row("Backups created", stats.BackupsCreated, s.SummaryValue.Render)
	}

	builder.WriteString("\n")
	row("Regions preserved", stats.RegionsPreserved, s.SummaryValue.Render)
	if stats.RegionsFilled > 0 {
		row("Regions filled", stats.RegionsFilled, s.SummaryValue.Render)
	}

	builder.WriteString("\n")
	switch {
	case stats.FilesErrored > 0:
		builder.WriteString(s.Failure.Render("Apply failed for some files"))
	case stats.FilesPending > 0:
		builder.WriteString(s.Warning.Render("Changes pending"))
	default:
		builder.WriteString(s.Success.Render("Output up to date"))
	}
	builder.WriteString("\n")

	return builder.String()
}

// FormatInspectSummaryOneLine formats an inspection report as a single line.
// Example: "4 regions in 2 files, 1 error".
func (s *Styles) FormatInspectSummaryOneLine(report *inspect.Report) string {
	line := fmt.Sprintf("%s in %s",
		plural(len(report.Regions), "region"),
		plural(len(report.Files), "file"))

	var errCount, warnCount int
	for _, f := range report.Findings {
		switch f.Severity {
		case inspect.SeverityError:
			errCount++
		case inspect.SeverityWarning:
			warnCount++
		}
	}

	if errCount == 0 && warnCount == 0 {
		return line + ", " + s.Success.Render("no problems found") + "\n"
	}
	if errCount > 0 {
		line += ", " + s.Error.Render(plural(errCount, "error"))
	}
	if warnCount > 0 {
		line += ", " + s.Warning.Render(plural(warnCount, "warning"))
	}
	return line + "\n"
}
