package reporter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/samber/lo"

	"github.com/yaklabco/gopreserve/pkg/generate"
	"github.com/yaklabco/gopreserve/pkg/inspect"
)

// jsonVersion is the schema version of the JSON output.
const jsonVersion = "1.0.0"

// JSONApplyOutput is the top-level JSON structure of an apply pass.
type JSONApplyOutput struct {
	Version string           `json:"version"`
	Slots   []JSONSlotResult `json:"slots"`
	Summary JSONApplySummary `json:"summary"`
}

// JSONSlotResult holds the files merged into one slot.
type JSONSlotResult struct {
	Slot  string           `json:"slot"`
	Files []JSONFileResult `json:"files"`
}

// JSONFileResult represents a single file's outcome.
type JSONFileResult struct {
	Path      string   `json:"path"`
	Target    string   `json:"target,omitempty"`
	Status    string   `json:"status"`
	Preserved []string `json:"preserved,omitempty"`
	Filled    []string `json:"filled,omitempty"`
	Diff      string   `json:"diff,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// JSONApplySummary contains aggregate statistics.
type JSONApplySummary struct {
	FilesDiscovered  int `json:"filesDiscovered"`
	FilesWritten     int `json:"filesWritten"`
	FilesCreated     int `json:"filesCreated"`
	FilesUnchanged   int `json:"filesUnchanged"`
	FilesPending     int `json:"filesPending"`
	FilesSkipped     int `json:"filesSkipped"`
	FilesErrored     int `json:"filesErrored"`
	BackupsCreated   int `json:"backupsCreated"`
	RegionsPreserved int `json:"regionsPreserved"`
	RegionsFilled    int `json:"regionsFilled"`
}

// JSONInspectOutput is the top-level JSON structure of an inspection.
type JSONInspectOutput struct {
	Version  string             `json:"version"`
	Files    []string           `json:"files"`
	Regions  []inspect.Region   `json:"regions"`
	Findings []inspect.Finding  `json:"findings"`
	Summary  JSONInspectSummary `json:"summary"`
}

// JSONInspectSummary contains aggregate counts of an inspection.
type JSONInspectSummary struct {
	Files    int `json:"files"`
	Regions  int `json:"regions"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
}

// JSONReporter formats results as JSON.
type JSONReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// ReportApply implements Reporter.
func (r *JSONReporter) ReportApply(_ context.Context, results []*generate.Result) (int, error) {
	if err := r.encode(r.buildApplyOutput(results)); err != nil {
		return 0, err
	}
	return changed(results), nil
}

// ReportInspect implements Reporter.
func (r *JSONReporter) ReportInspect(_ context.Context, report *inspect.Report) (int, error) {
	output := r.buildInspectOutput(report)
	if err := r.encode(output); err != nil {
		return 0, err
	}
	return len(output.Findings), nil
}

func (r *JSONReporter) encode(v any) (err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	encoder := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

func (r *JSONReporter) buildApplyOutput(results []*generate.Result) *JSONApplyOutput {
	output := &JSONApplyOutput{
		Version: jsonVersion,
		Slots:   make([]JSONSlotResult, 0, len(results)),
	}

	for _, result := range results {
		if result == nil {
			continue
		}

		slot := JSONSlotResult{Slot: result.Slot, Files: make([]JSONFileResult, 0, len(result.Files))}
		for _, outcome := range result.Files {
			slot.Files = append(slot.Files, r.fileResult(outcome))
		}
		output.Slots = append(output.Slots, slot)
	}

	total := generate.TotalStats(results)
	output.Summary = JSONApplySummary{
		FilesDiscovered:  total.FilesDiscovered,
		FilesWritten:     total.FilesWritten,
		FilesCreated:     total.FilesCreated,
		FilesUnchanged:   total.FilesUnchanged,
		FilesPending:     total.FilesPending,
		FilesSkipped:     total.FilesSkipped,
		FilesErrored:     total.FilesErrored,
		BackupsCreated:   total.BackupsCreated,
		RegionsPreserved: total.RegionsPreserved,
		RegionsFilled:    total.RegionsFilled,
	}

	return output
}

func (r *JSONReporter) fileResult(outcome generate.FileOutcome) JSONFileResult {
	out := JSONFileResult{Path: outcome.Job.RelPath}

	if outcome.Error != nil {
		out.Status = "error"
		out.Error = outcome.Error.Error()
		return out
	}

	fr := outcome.Result
	if fr == nil {
		out.Status = "unknown"
		return out
	}

	out.Target = r.opts.displayPath(fr.Target)
	out.Status = fr.Summary()
	if fr.Merge != nil {
		out.Preserved = fr.Merge.Preserved
		out.Filled = fr.Merge.Filled
	}
	out.Diff = fr.Diff.String()

	return out
}

func (r *JSONReporter) buildInspectOutput(report *inspect.Report) *JSONInspectOutput {
	output := &JSONInspectOutput{
		Version:  jsonVersion,
		Files:    []string{},
		Regions:  []inspect.Region{},
		Findings: []inspect.Finding{},
	}
	if report == nil {
		return output
	}

	output.Files = lo.Map(report.Files, func(p string, _ int) string { return r.opts.displayPath(p) })

	if !r.opts.FindingsOnly {
		output.Regions = lo.Map(report.Regions, func(reg inspect.Region, _ int) inspect.Region {
			reg.File = r.opts.displayPath(reg.File)
			return reg
		})
	}

	output.Findings = lo.Map(report.Findings, func(f inspect.Finding, _ int) inspect.Finding {
		f.File = r.opts.displayPath(f.File)
		f.Others = lo.Map(f.Others, func(p string, _ int) string { return r.opts.displayPath(p) })
		return f
	})

	output.Summary = JSONInspectSummary{
		Files:    len(report.Files),
		Regions:  len(report.Regions),
		Errors:   lo.CountBy(report.Findings, func(f inspect.Finding) bool { return f.Severity == inspect.SeverityError }),
		Warnings: lo.CountBy(report.Findings, func(f inspect.Finding) bool { return f.Severity == inspect.SeverityWarning }),
	}

	return output
}
