package reporter

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yaklabco/gopreserve/internal/ui/pretty"
	"github.com/yaklabco/gopreserve/pkg/diff"
	"github.com/yaklabco/gopreserve/pkg/generate"
	"github.com/yaklabco/gopreserve/pkg/inspect"
)

// DiffReporter prints the pending changes of a dry run as git-style unified diffs.
// Inspection reports have no diff form and are printed as text.
type DiffReporter struct {
	opts   Options
	styles *pretty.Styles
	out    io.Writer
}

// NewDiffReporter creates a diff reporter.
func NewDiffReporter(opts Options) *DiffReporter {
	return &DiffReporter{
		opts:   opts,
		styles: pretty.NewStyles(pretty.IsColorEnabled(opts.Color, opts.Writer)),
		out:    opts.Writer,
	}
}

// diffTotals accumulates the "git diff --stat" style totals.
type diffTotals struct {
	files, added, removed int
}

// ReportApply implements Reporter.
func (r *DiffReporter) ReportApply(_ context.Context, results []*generate.Result) (int, error) {
	var totals diffTotals

	for _, result := range results {
		if result == nil {
			continue
		}
		for _, outcome := range result.Files {
			if outcome.Error != nil {
				fmt.Fprintf(r.out, "%s: %s\n",
					r.styles.FilePath.Render(r.opts.displayPath(outcome.Job.Source)),
					r.styles.Error.Render(fmt.Sprintf("error: %v", outcome.Error)))
				continue
			}
			if outcome.Result == nil || !outcome.Result.Diff.HasChanges() {
				continue
			}

			d := outcome.Result.Diff
			totals.files++
			totals.added += d.Added
			totals.removed += d.Removed
			r.writeFile(r.opts.displayPath(outcome.Result.Target), d)
		}
	}

	if totals.files > 0 && r.opts.ShowSummary {
		fmt.Fprintln(r.out, r.totalsLine(totals))
	}

	return changed(results), nil
}

// ReportInspect implements Reporter.
func (r *DiffReporter) ReportInspect(ctx context.Context, report *inspect.Report) (int, error) {
	return NewTextReporter(r.opts).ReportInspect(ctx, report)
}

// writeFile prints the diff of one output file followed by a blank line.
func (r *DiffReporter) writeFile(path string, d *diff.Unified) {
	path = strings.TrimPrefix(path, "/")

	fmt.Fprintln(r.out, r.styles.DiffHeader.Render("diff --git a/"+path+" b/"+path))
	fmt.Fprintln(r.out, r.styles.DiffRemove.Render("--- a/"+path))
	fmt.Fprintln(r.out, r.styles.DiffAdd.Render("+++ b/"+path))

	for _, hunk := range d.Hunks {
		fmt.Fprintln(r.out, r.styles.DiffHunk.Render(hunk.Header()))
		for _, line := range hunk.Lines {
			fmt.Fprintln(r.out, r.lineStyle(line.Op).Render(line.Op.Prefix()+line.Text))
		}
	}
	fmt.Fprintln(r.out)
}

func (r *DiffReporter) lineStyle(op diff.Op) lipgloss.Style {
	switch op {
	case diff.Insert:
		return r.styles.DiffAdd
	case diff.Delete:
		return r.styles.DiffRemove
	default:
		return r.styles.DiffContext
	}
}

// totalsLine renders "2 files changed, 3 insertions(+), 1 deletion(-)".
func (r *DiffReporter) totalsLine(t diffTotals) string {
	parts := []string{countNoun(t.files, "file", "files") + " changed"}
	if t.added > 0 {
		parts = append(parts, r.styles.DiffAdd.Render(countNoun(t.added, "insertion", "insertions")+"(+)"))
	}
	if t.removed > 0 {
		parts = append(parts, r.styles.DiffRemove.Render(countNoun(t.removed, "deletion", "deletions")+"(-)"))
	}
	return strings.Join(parts, ", ")
}

func countNoun(n int, singular, pluralForm string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, pluralForm)
}
