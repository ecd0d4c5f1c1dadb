package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/yaklabco/gopreserve/internal/ui/pretty"
	"github.com/yaklabco/gopreserve/pkg/generate"
	"github.com/yaklabco/gopreserve/pkg/inspect"
)

// TextReporter formats results as styled terminal output.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// ReportApply implements Reporter.
func (r *TextReporter) ReportApply(_ context.Context, results []*generate.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	showSlots := len(results) > 1
	for _, result := range results {
		if result == nil {
			continue
		}

		lines := r.applyLines(result)
		if len(lines) == 0 {
			continue
		}

		if showSlots {
			fmt.Fprintln(r.bw, r.styles.FormatFileHeader("slot "+result.Slot, len(result.Files), "file"))
		}
		for _, line := range lines {
			fmt.Fprint(r.bw, line)
		}
	}

	if r.opts.ShowSummary {
		fmt.Fprint(r.bw, r.styles.FormatApplySummaryOneLine(generate.TotalStats(results)))
	}

	return changed(results), nil
}

func (r *TextReporter) applyLines(result *generate.Result) []string {
	var lines []string
	for _, outcome := range result.Files {
		if outcome.Error != nil {
			lines = append(lines, r.styles.FormatFileError(r.opts.displayPath(outcome.Job.Source), outcome.Error))
			continue
		}

		fr := outcome.Result
		if fr == nil || (fr.Unchanged && !r.opts.Verbose) {
			continue
		}
		lines = append(lines, r.styles.FormatFileResult(fr, r.opts.displayPath(fr.Target)))
	}
	return lines
}

// ReportInspect implements Reporter.
func (r *TextReporter) ReportInspect(_ context.Context, report *inspect.Report) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if report == nil || len(report.Files) == 0 {
		if r.opts.ShowSummary {
			fmt.Fprintln(r.bw, r.styles.Dim.Render("No files to inspect."))
		}
		return 0, nil
	}

	regions := lo.GroupBy(report.Regions, func(reg inspect.Region) string { return reg.File })
	findings := lo.GroupBy(report.Findings, func(f inspect.Finding) string { return f.File })

	for _, file := range report.Files {
		fileRegions := regions[file]
		if r.opts.FindingsOnly {
			fileRegions = nil
		}
		fileFindings := findings[file]
		if len(fileRegions) == 0 && len(fileFindings) == 0 {
			continue
		}

		path := r.opts.displayPath(file)
		fmt.Fprintln(r.bw, r.styles.FormatFileHeader(path, len(regions[file]), "region"))
		for _, reg := range fileRegions {
			fmt.Fprint(r.bw, r.styles.FormatRegion(reg))
		}
		for _, f := range fileFindings {
			fmt.Fprint(r.bw, r.styles.FormatFinding(r.relativeFinding(f), path))
		}

		// Blank line between files
		fmt.Fprintln(r.bw)
	}

	if r.opts.ShowSummary {
		fmt.Fprint(r.bw, r.styles.FormatInspectSummaryOneLine(report))
	}

	return len(report.Findings), nil
}

// relativeFinding rewrites the other files of a finding for display.
func (r *TextReporter) relativeFinding(f inspect.Finding) inspect.Finding {
	f.Others = lo.Map(f.Others, func(p string, _ int) string { return r.opts.displayPath(p) })
	return f
}
