// Package reporter writes apply results and inspection reports in several output formats.
package reporter

import (
	"context"
	"fmt"

	"github.com/yaklabco/gopreserve/pkg/generate"
	"github.com/yaklabco/gopreserve/pkg/inspect"
)

// Reporter formats and writes results.
type Reporter interface {
	// ReportApply writes the results of an apply pass, one per slot.
	// It returns the number of files that changed or would change.
	ReportApply(ctx context.Context, results []*generate.Result) (int, error)

	// ReportInspect writes an inspection report.
	// It returns the number of findings reported.
	ReportInspect(ctx context.Context, report *inspect.Report) (int, error)
}

// Compile-time interface checks.
var (
	_ Reporter = (*TextReporter)(nil)
	_ Reporter = (*TableReporter)(nil)
	_ Reporter = (*JSONReporter)(nil)
	_ Reporter = (*DiffReporter)(nil)
	_ Reporter = (*SummaryReporter)(nil)
)

// New creates a Reporter for the specified options.
func New(opts Options) (Reporter, error) {
	opts = opts.withDefaults()
	if !opts.Format.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, opts.Format)
	}

	switch opts.Format {
	case FormatJSON:
		return NewJSONReporter(opts), nil
	case FormatDiff:
		return NewDiffReporter(opts), nil
	case FormatTable:
		return NewTableReporter(opts), nil
	case FormatSummary:
		return NewSummaryReporter(opts), nil
	default:
		return NewTextReporter(opts), nil
	}
}

// changed counts the files an apply pass wrote or would write.
func changed(results []*generate.Result) int {
	total := generate.TotalStats(results)
	return total.FilesWritten + total.FilesPending
}
