package reporter

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/yaklabco/gopreserve/internal/ui/pretty"
	"github.com/yaklabco/gopreserve/pkg/generate"
	"github.com/yaklabco/gopreserve/pkg/inspect"
)

// Table layout constants for summary output.
const (
	tableWidth   = 60 // Width of table separators.
	nameColWidth = 24 // Width of the slot, parser and kind columns.
	numColWidth  = 9  // Width of numeric columns.
	maxNameLen   = 22 // Maximum characters for a name before truncation.
)

// padRight pads a string to the given width with spaces on the right.
// This must be called BEFORE applying ANSI styles.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// padLeft pads a string to the given width with spaces on the left.
// This must be called BEFORE applying ANSI styles.
func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

func truncateName(name string) string {
	if len(name) > maxNameLen {
		return name[:maxNameLen] + "…"
	}
	return name
}

// SummaryReporter formats results as aggregated tables without per-file detail.
type SummaryReporter struct {
	opts   Options
	styles *pretty.Styles
	out    io.Writer
}

// NewSummaryReporter creates a new summary reporter.
func NewSummaryReporter(opts Options) *SummaryReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &SummaryReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		out:    opts.Writer,
	}
}

// ReportApply implements Reporter.
func (r *SummaryReporter) ReportApply(_ context.Context, results []*generate.Result) (int, error) {
	results = lo.Filter(results, func(res *generate.Result, _ int) bool { return res != nil })

	if len(results) > 0 {
		r.header("Slots Summary", "Slot", "Files", "Written", "Pending", "Errors")
		for _, res := range results {
			name := padRight(truncateName(res.Slot), nameColWidth)
			if res.HasErrors() {
				name = r.styles.Error.Render(name)
			}
			fmt.Fprintf(r.out, "%s %s %s %s %s\n",
				name,
				padLeft(strconv.Itoa(res.Stats.FilesDiscovered), numColWidth),
				padLeft(strconv.Itoa(res.Stats.FilesWritten), numColWidth),
				padLeft(strconv.Itoa(res.Stats.FilesPending), numColWidth),
				padLeft(strconv.Itoa(res.Stats.FilesErrored), numColWidth),
			)
		}
	}

	fmt.Fprint(r.out, r.styles.FormatApplySummary(generate.TotalStats(results)))

	return changed(results), nil
}

// ReportInspect implements Reporter.
func (r *SummaryReporter) ReportInspect(_ context.Context, report *inspect.Report) (int, error) {
	if report == nil {
		return 0, nil
	}

	if len(report.Regions) > 0 {
		r.header("Parsers Summary", "Parser", "Regions", "Enabled", "Files")

		byParser := lo.GroupBy(report.Regions, func(reg inspect.Region) string { return reg.Parser })
		names := lo.Keys(byParser)
		sort.Strings(names)

		for _, name := range names {
			regions := byParser[name]
			enabled := lo.CountBy(regions, func(reg inspect.Region) bool { return reg.Enabled })
			files := len(lo.UniqBy(regions, func(reg inspect.Region) string { return reg.File }))

			fmt.Fprintf(r.out, "%s %s %s %s\n",
				padRight(truncateName(name), nameColWidth),
				padLeft(strconv.Itoa(len(regions)), numColWidth),
				padLeft(strconv.Itoa(enabled), numColWidth),
				padLeft(strconv.Itoa(files), numColWidth),
			)
		}
		fmt.Fprintln(r.out)
	}

	if len(report.Findings) > 0 {
		r.header("Findings Summary", "Kind", "Count", "Files")

		byKind := lo.GroupBy(report.Findings, func(f inspect.Finding) inspect.Kind { return f.Kind })
		kinds := lo.Keys(byKind)
		sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

		for _, kind := range kinds {
			findings := byKind[kind]
			files := len(lo.UniqBy(findings, func(f inspect.Finding) string { return f.File }))

			name := padRight(string(kind), nameColWidth)
			if findings[0].Severity == inspect.SeverityError {
				name = r.styles.Error.Render(name)
			} else {
				name = r.styles.Warning.Render(name)
			}
			fmt.Fprintf(r.out, "%s %s %s\n",
				name,
				padLeft(strconv.Itoa(len(findings)), numColWidth),
				padLeft(strconv.Itoa(files), numColWidth),
			)
		}
		fmt.Fprintln(r.out)
	}

	fmt.Fprintln(r.out, r.styles.Bold.Render("Total: ")+strings.TrimSuffix(r.styles.FormatInspectSummaryOneLine(report), "\n"))

	return len(report.Findings), nil
}

// header writes a titled table header. The first column is left aligned.
func (r *SummaryReporter) header(title string, columns ...string) {
	fmt.Fprintln(r.out, r.styles.Bold.Render(title))
	fmt.Fprintln(r.out, r.styles.TableSeparator.Render(strings.Repeat("─", tableWidth)))

	cells := make([]string, 0, len(columns))
	for i, col := range columns {
		if i == 0 {
			cells = append(cells, r.styles.TableHeader.Render(padRight(col, nameColWidth)))
			continue
		}
		cells = append(cells, r.styles.TableHeader.Render(padLeft(col, numColWidth)))
	}
	fmt.Fprintln(r.out, strings.Join(cells, " "))
	fmt.Fprintln(r.out, r.styles.TableSeparator.Render(strings.Repeat("─", tableWidth)))
}
