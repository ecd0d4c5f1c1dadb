package reporter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gopreserve/pkg/diff"
	"github.com/yaklabco/gopreserve/pkg/generate"
	"github.com/yaklabco/gopreserve/pkg/inspect"
	"github.com/yaklabco/gopreserve/pkg/parser"
	"github.com/yaklabco/gopreserve/pkg/registry"
	"github.com/yaklabco/gopreserve/pkg/reporter"
)

func options(buf *bytes.Buffer) reporter.Options {
	return reporter.Options{
		Writer:      buf,
		Color:       "never",
		ShowSummary: true,
		WorkingDir:  "/w",
	}
}

func applyResults() []*generate.Result {
	return []*generate.Result{{
		Slot: "default",
		Files: []generate.FileOutcome{
			{
				Job: generate.Job{Source: "/w/gen/A.java", RelPath: "A.java"},
				Result: &generate.FileResult{
					Target:  "/w/A.java",
					Written: true,
					Created: true,
					Merge:   &registry.MergeResult{Preserved: []string{"a.body"}},
				},
			},
			{
				Job:    generate.Job{Source: "/w/gen/B.java", RelPath: "B.java"},
				Result: &generate.FileResult{Target: "/w/B.java", Unchanged: true},
			},
			{
				Job:   generate.Job{Source: "/w/gen/C.java", RelPath: "C.java"},
				Error: errors.New("merge failure: boom"),
			},
		},
		Stats: generate.Stats{
			FilesDiscovered:  3,
			FilesWritten:     1,
			FilesCreated:     1,
			FilesUnchanged:   1,
			FilesErrored:     1,
			RegionsPreserved: 1,
		},
	}}
}

func pendingResults() []*generate.Result {
	return []*generate.Result{{
		Slot: "default",
		Files: []generate.FileOutcome{{
			Job: generate.Job{Source: "/w/gen/A.java", RelPath: "A.java"},
			Result: &generate.FileResult{
				Target:  "/w/A.java",
				Pending: true,
				Diff:    diff.Compute("A.java", "a\nb\n", "a\nc\n"),
			},
		}},
		Stats: generate.Stats{FilesDiscovered: 1, FilesPending: 1},
	}}
}

func inspectReport() *inspect.Report {
	spanA := parser.Span{Start: parser.Position{Line: 2, Column: 3}}
	spanB := parser.Span{Start: parser.Position{Line: 2, Column: 3}}
	spanC := parser.Span{Start: parser.Position{Line: 1, Column: 1}}

	return &inspect.Report{
		Files: []string{"/w/A.java", "/w/B.java", "/w/C.java"},
		Regions: []inspect.Region{
			{ID: "a.one", File: "/w/A.java", Parser: "java", Enabled: true,
				Start: parser.Position{Line: 2, Column: 3}, End: parser.Position{Line: 5, Column: 1}},
			{ID: "a.one", File: "/w/B.java", Parser: "java",
				Start: parser.Position{Line: 2, Column: 3}, End: parser.Position{Line: 4, Column: 1}},
		},
		Findings: []inspect.Finding{
			{File: "/w/A.java", Kind: inspect.KindGlobalDuplicate, Severity: inspect.SeverityError,
				Message: `duplicate region id "a.one": region ids have to be globally unique`,
				RegionID: "a.one", Span: &spanA, Others: []string{"/w/B.java"}},
			{File: "/w/B.java", Kind: inspect.KindGlobalDuplicate, Severity: inspect.SeverityError,
				Message: `duplicate region id "a.one": region ids have to be globally unique`,
				RegionID: "a.one", Span: &spanB, Others: []string{"/w/A.java"}},
			{File: "/w/C.java", Kind: inspect.KindSyntax, Severity: inspect.SeverityError,
				Message: "marked region does not end properly: id c.one opened (1,1)",
				RegionID: "c.one", Span: &spanC},
		},
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    reporter.Format
		wantErr bool
	}{
		{name: "empty defaults to text", input: "", want: reporter.FormatText},
		{name: "text", input: "text", want: reporter.FormatText},
		{name: "table", input: "table", want: reporter.FormatTable},
		{name: "json", input: "json", want: reporter.FormatJSON},
		{name: "diff", input: "diff", want: reporter.FormatDiff},
		{name: "summary", input: "summary", want: reporter.FormatSummary},
		{name: "case insensitive", input: " JSON", want: reporter.FormatJSON},
		{name: "unknown format", input: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := reporter.ParseFormat(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, reporter.ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.IsValid())
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		format  reporter.Format
		want    reporter.Reporter
		wantErr bool
	}{
		{name: "text reporter", format: reporter.FormatText, want: &reporter.TextReporter{}},
		{name: "table reporter", format: reporter.FormatTable, want: &reporter.TableReporter{}},
		{name: "json reporter", format: reporter.FormatJSON, want: &reporter.JSONReporter{}},
		{name: "diff reporter", format: reporter.FormatDiff, want: &reporter.DiffReporter{}},
		{name: "summary reporter", format: reporter.FormatSummary, want: &reporter.SummaryReporter{}},
		{name: "empty defaults to text", format: "", want: &reporter.TextReporter{}},
		{name: "unknown format", format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			rep, err := reporter.New(reporter.Options{Writer: &buf, Format: tt.format, Color: "never"})
			if tt.wantErr {
				require.Error(t, err)
				require.Nil(t, rep)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, rep)
		})
	}
}

func TestTextReporter_Apply(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewTextReporter(options(&buf))

	count, err := rep.ReportApply(context.Background(), applyResults())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	output := buf.String()
	assert.Contains(t, output, "  A.java  created  (1 preserved)\n")
	assert.NotContains(t, output, "B.java")
	assert.Contains(t, output, "  gen/C.java  error: merge failure: boom\n")
	assert.NotContains(t, output, "slot default")
	assert.Contains(t, output, "3 files: 1 created, 1 unchanged, 1 failed, 1 region preserved\n")
}

func TestTextReporter_ApplyVerbose(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	opts := options(&buf)
	opts.Verbose = true
	rep := reporter.NewTextReporter(opts)

	results := append(applyResults(), &generate.Result{Slot: "docs"})
	_, err := rep.ReportApply(context.Background(), results)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "  B.java  unchanged\n")
	assert.Contains(t, output, "slot default (3 files)")
	assert.NotContains(t, output, "slot docs")
}

func TestTextReporter_ApplyNothing(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewTextReporter(options(&buf))

	count, err := rep.ReportApply(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, "No generated files found\n", buf.String())
}

func TestTextReporter_Inspect(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewTextReporter(options(&buf))

	count, err := rep.ReportInspect(context.Background(), inspectReport())
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	output := buf.String()
	assert.Contains(t, output, "A.java (1 region)\n")
	assert.Contains(t, output, "  2:3-5:1  a.one  enabled  (java)\n")
	assert.Contains(t, output, "  2:3-4:1  a.one  disabled  (java)\n")
	assert.Contains(t, output, "A.java:2:3  error")
	assert.Contains(t, output, "also in: B.java\n")
	assert.Contains(t, output, "C.java:1:1  error  marked region does not end properly")
	assert.NotContains(t, output, "/w/")
	assert.Contains(t, output, "2 regions in 3 files, 3 errors\n")
}

func TestTextReporter_InspectFindingsOnly(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	opts := options(&buf)
	opts.FindingsOnly = true
	rep := reporter.NewTextReporter(opts)

	report := inspectReport()
	report.Findings = report.Findings[2:]

	_, err := rep.ReportInspect(context.Background(), report)
	require.NoError(t, err)

	output := buf.String()
	assert.NotContains(t, output, "(java)")
	assert.NotContains(t, output, "A.java")
	assert.Contains(t, output, "C.java")
}

func TestTextReporter_InspectEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewTextReporter(options(&buf))

	count, err := rep.ReportInspect(context.Background(), &inspect.Report{})
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Contains(t, buf.String(), "No files to inspect")
}

func TestJSONReporter_Apply(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewJSONReporter(options(&buf))

	count, err := rep.ReportApply(context.Background(), applyResults())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var output reporter.JSONApplyOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))

	assert.Equal(t, "1.0.0", output.Version)
	require.Len(t, output.Slots, 1)
	assert.Equal(t, "default", output.Slots[0].Slot)

	files := output.Slots[0].Files
	require.Len(t, files, 3)
	assert.Equal(t, reporter.JSONFileResult{
		Path:      "A.java",
		Target:    "A.java",
		Status:    "created",
		Preserved: []string{"a.body"},
	}, files[0])
	assert.Equal(t, "unchanged", files[1].Status)
	assert.Equal(t, "error", files[2].Status)
	assert.Equal(t, "merge failure: boom", files[2].Error)

	assert.Equal(t, 3, output.Summary.FilesDiscovered)
	assert.Equal(t, 1, output.Summary.FilesCreated)
	assert.Equal(t, 1, output.Summary.FilesErrored)
}

func TestJSONReporter_ApplyDiff(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewJSONReporter(options(&buf))

	_, err := rep.ReportApply(context.Background(), pendingResults())
	require.NoError(t, err)

	var output reporter.JSONApplyOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))

	file := output.Slots[0].Files[0]
	assert.Equal(t, "changes pending", file.Status)
	assert.Contains(t, file.Diff, "--- a/A.java\n+++ b/A.java\n")
	assert.Contains(t, file.Diff, "+c\n")
}

func TestJSONReporter_Inspect(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewJSONReporter(options(&buf))

	count, err := rep.ReportInspect(context.Background(), inspectReport())
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	var output reporter.JSONInspectOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))

	assert.Equal(t, []string{"A.java", "B.java", "C.java"}, output.Files)
	require.Len(t, output.Regions, 2)
	assert.Equal(t, "A.java", output.Regions[0].File)
	assert.Equal(t, parser.Position{Line: 2, Column: 3}, output.Regions[0].Start)
	require.Len(t, output.Findings, 3)
	assert.Equal(t, []string{"B.java"}, output.Findings[0].Others)
	assert.Equal(t, reporter.JSONInspectSummary{Files: 3, Regions: 2, Errors: 3}, output.Summary)

	assert.Contains(t, buf.String(), `"regionId": "a.one"`)
	assert.Contains(t, buf.String(), `"line": 2`)
}

func TestJSONReporter_NilInspect(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewJSONReporter(options(&buf))

	count, err := rep.ReportInspect(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	var output reporter.JSONInspectOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))
	assert.Empty(t, output.Files)
	assert.Contains(t, buf.String(), `"findings": []`)
}

func TestJSONReporter_Compact(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	opts := options(&buf)
	opts.Compact = true
	rep := reporter.NewJSONReporter(opts)

	_, err := rep.ReportApply(context.Background(), applyResults())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 1)
}

func TestDiffReporter_Apply(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewDiffReporter(options(&buf))

	count, err := rep.ReportApply(context.Background(), pendingResults())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	output := buf.String()
	assert.Contains(t, output, "diff --git a/A.java b/A.java\n--- a/A.java\n+++ b/A.java\n")
	assert.Contains(t, output, "@@ -1,2 +1,2 @@\n")
	assert.Contains(t, output, " a\n-b\n+c\n")
	assert.Contains(t, output, "1 file changed, 1 insertion(+), 1 deletion(-)\n")
}

func TestDiffReporter_NoChanges(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewDiffReporter(options(&buf))

	results := applyResults()
	count, err := rep.ReportApply(context.Background(), results)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	output := buf.String()
	assert.NotContains(t, output, "diff --git")
	assert.Contains(t, output, "gen/C.java: error: merge failure: boom")
}

func TestDiffReporter_InspectFallsBackToText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewDiffReporter(options(&buf))

	count, err := rep.ReportInspect(context.Background(), inspectReport())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Contains(t, buf.String(), "A.java (1 region)")
}

func TestTableReporter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewTableReporter(options(&buf))

	_, err := rep.ReportApply(context.Background(), applyResults())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "SLOT")
	assert.Contains(t, buf.String(), "created")

	buf.Reset()
	count, err := rep.ReportInspect(context.Background(), inspectReport())
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	output := buf.String()
	assert.Contains(t, output, "PARSER")
	assert.Contains(t, output, "a.one")
	assert.Contains(t, output, "(global-duplicate)")
	assert.Contains(t, output, "2 regions in 3 files, 3 errors")
}

func TestSummaryReporter_Apply(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewSummaryReporter(options(&buf))

	count, err := rep.ReportApply(context.Background(), applyResults())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	output := buf.String()
	assert.Contains(t, output, "Slots Summary")
	assert.Contains(t, output, "default")
	assert.Contains(t, output, "Files generated:")
	assert.Contains(t, output, "Apply failed for some files")
	assert.NotContains(t, output, "A.java")
}

func TestSummaryReporter_Inspect(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewSummaryReporter(options(&buf))

	count, err := rep.ReportInspect(context.Background(), inspectReport())
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	output := buf.String()
	assert.Contains(t, output, "Parsers Summary")
	assert.Contains(t, output, "Findings Summary")
	assert.Contains(t, output, "global-duplicate")
	assert.Contains(t, output, "syntax")
	assert.Contains(t, output, "Total: 2 regions in 3 files, 3 errors")
}
