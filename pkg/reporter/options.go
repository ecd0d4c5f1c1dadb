package reporter

import (
	"io"
	"os"
	"path/filepath"
	"strings"
)

// bufWriterSize is the buffer size for buffered output writers (64 KiB).
const bufWriterSize = 64 * 1024

// Options configures a Reporter.
type Options struct {
	// Writer receives the report. Nil means os.Stdout.
	Writer io.Writer

	Format Format

	// Color is "auto", "always" or "never".
	Color string

	// ShowSummary appends aggregate counts.
	ShowSummary bool

	// Verbose lists unchanged files and every region instead of only changes and findings.
	Verbose bool

	// FindingsOnly omits region listings from inspection reports.
	FindingsOnly bool

	// Compact minifies JSON.
	Compact bool

	// TermWidth bounds table output. Zero uses the terminal width or a default.
	TermWidth int

	// WorkingDir makes paths below it relative. Empty keeps paths as they are.
	WorkingDir string
}

func (o Options) withDefaults() Options {
	if o.Writer == nil {
		o.Writer = os.Stdout
	}
	if o.Format == "" {
		o.Format = FormatText
	}
	if o.Color == "" {
		o.Color = "auto"
	}
	return o
}

// displayPath makes path relative to WorkingDir when it lies below it.
func (o Options) displayPath(path string) string {
	if o.WorkingDir == "" || !filepath.IsAbs(path) {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(o.WorkingDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
