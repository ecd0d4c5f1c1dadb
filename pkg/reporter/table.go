package reporter

import (
	"bufio"
	"context"
	"fmt"

	"golang.org/x/term"

	"github.com/yaklabco/gopreserve/internal/ui/pretty"
	"github.com/yaklabco/gopreserve/pkg/generate"
	"github.com/yaklabco/gopreserve/pkg/inspect"
)

// TableReporter formats results as aligned tables.
type TableReporter struct {
	opts   Options
	styles *pretty.Styles
	table  *pretty.TableFormatter
	bw     *bufio.Writer
}

// NewTableReporter creates a new table reporter.
func NewTableReporter(opts Options) *TableReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	styles := pretty.NewStyles(colorEnabled)
	return &TableReporter{
		opts:   opts,
		styles: styles,
		table:  pretty.NewTableFormatter(styles, colorEnabled, termWidth(opts)),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// ReportApply implements Reporter.
func (r *TableReporter) ReportApply(_ context.Context, results []*generate.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	fmt.Fprint(r.bw, r.table.FormatApplyTable(results, r.opts.displayPath))

	if r.opts.ShowSummary {
		fmt.Fprint(r.bw, r.styles.FormatApplySummaryOneLine(generate.TotalStats(results)))
	}

	return changed(results), nil
}

// ReportInspect implements Reporter.
func (r *TableReporter) ReportInspect(_ context.Context, report *inspect.Report) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if report == nil {
		return 0, nil
	}

	if !r.opts.FindingsOnly {
		fmt.Fprint(r.bw, r.table.FormatRegionTable(report, r.opts.displayPath))
	}

	if len(report.Findings) > 0 {
		fmt.Fprintln(r.bw)
		for _, f := range report.Findings {
			fmt.Fprint(r.bw, r.styles.FormatFinding(f, r.opts.displayPath(f.File)))
		}
	}

	if r.opts.ShowSummary {
		fmt.Fprint(r.bw, r.styles.FormatInspectSummaryOneLine(report))
	}

	return len(report.Findings), nil
}

// termWidth returns the configured width, else the width of the output terminal.
// Zero lets the formatter pick its default.
func termWidth(opts Options) int {
	if opts.TermWidth > 0 {
		return opts.TermWidth
	}
	if f, ok := opts.Writer.(interface{ Fd() uintptr }); ok {
		width, _, err := term.GetSize(int(f.Fd()))
		if err == nil && width > 0 {
			return width
		}
	}
	return 0
}
