// Package inspect lists the marked regions of files and reports everything that would
// make a registry read fail, without stopping at the first problem.
package inspect

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"

	"github.com/yaklabco/gopreserve/internal/logging"
	"github.com/yaklabco/gopreserve/pkg/fsreader"
	"github.com/yaklabco/gopreserve/pkg/fsutil"
	"github.com/yaklabco/gopreserve/pkg/langdetect"
	"github.com/yaklabco/gopreserve/pkg/parser"
	"github.com/yaklabco/gopreserve/pkg/region"
	"github.com/yaklabco/gopreserve/pkg/registry"
)

// Severity grades a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Kind classifies a finding.
type Kind string

const (
	// KindSyntax is a structural defect reported by a parser.
	KindSyntax Kind = "syntax"

	// KindDuplicate is an id used twice in one file.
	KindDuplicate Kind = "duplicate"

	// KindGlobalDuplicate is an id used in several files.
	KindGlobalDuplicate Kind = "global-duplicate"

	// KindUnreadable is a file that could not be read.
	KindUnreadable Kind = "unreadable"
)

// Region is a marked region found in a file.
type Region struct {
	ID      string          `json:"id"`
	File    string          `json:"file"`
	Parser  string          `json:"parser"`
	Enabled bool            `json:"enabled"`
	Start   parser.Position `json:"start"`
	End     parser.Position `json:"end"`
}

// Finding is a problem found while inspecting.
type Finding struct {
	File     string   `json:"file"`
	Kind     Kind     `json:"kind"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Parser   string   `json:"parser,omitempty"`
	RegionID string   `json:"regionId,omitempty"`

	// Span locates syntax findings.
	Span *parser.Span `json:"span,omitempty"`

	// Others lists the other files of a global duplicate.
	Others []string `json:"others,omitempty"`
}

// Report is the result of an inspection.
type Report struct {
	// Files lists the inspected files in order.
	Files []string `json:"files"`

	// Regions are ordered by file and position.
	Regions []Region `json:"regions"`

	// Findings are ordered by file and position.
	Findings []Finding `json:"findings"`
}

// HasErrors reports whether any finding has error severity.
func (r *Report) HasErrors() bool {
	return lo.SomeBy(r.Findings, func(f Finding) bool { return f.Severity == SeverityError })
}

// Options controls file discovery.
type Options struct {
	// Ignore contains glob patterns for files and directories to skip.
	Ignore []string

	// FollowSymlinks controls whether directory symlinks are traversed.
	FollowSymlinks bool

	// DetectLanguage picks a preset parser for files no binding accepts.
	DetectLanguage bool

	// SkipDirs are directories left out of directory walks, e.g. staging directories.
	SkipDirs []string
}

// Inspector parses files with a fixed set of bindings.
type Inspector struct {
	bindings []registry.Binding
	opts     Options
	logger   *log.Logger

	mu       sync.Mutex
	detected map[string]*parser.Parser
}

// New returns an Inspector. Bindings are consulted in order like registry parsers.
func New(bindings []registry.Binding, opts Options, logger *log.Logger) *Inspector {
	if logger == nil {
		logger = logging.Default()
	}
	return &Inspector{
		bindings: bindings,
		opts:     opts,
		logger:   logger,
		detected: make(map[string]*parser.Parser),
	}
}

// Inspect examines every file of paths. Directories are walked recursively.
func (in *Inspector) Inspect(ctx context.Context, paths []string) (*Report, error) {
	files, err := in.discover(ctx, paths)
	if err != nil {
		return nil, err
	}

	report := &Report{Files: files, Regions: []Region{}, Findings: []Finding{}}

	for _, file := range files {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("inspect cancelled: %w", ctx.Err())
		default:
		}

		content, _, err := fsutil.ReadFile(ctx, file)
		if err != nil {
			report.Findings = append(report.Findings, Finding{
				File:     file,
				Kind:     KindUnreadable,
				Severity: SeverityWarning,
				Message:  err.Error(),
			})
			continue
		}

		regions, findings := in.InspectContent(file, content)
		report.Regions = append(report.Regions, regions...)
		report.Findings = append(report.Findings, findings...)
	}

	sort.SliceStable(report.Regions, func(i, j int) bool {
		a, b := report.Regions[i], report.Regions[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Start.Line != b.Start.Line {
			return a.Start.Line < b.Start.Line
		}
		return a.Start.Column < b.Start.Column
	})

	report.Findings = append(report.Findings, globalDuplicates(report.Regions)...)
	sortFindings(report.Findings)

	in.logger.Debug("inspected files",
		logging.FieldFiles, len(files),
		logging.FieldRegions, len(report.Regions))

	return report, nil
}

// InspectContent parses one file with every parser responsible for it.
func (in *Inspector) InspectContent(file string, content []byte) ([]Region, []Finding) {
	parsers := in.parsersFor(file, content)
	if len(parsers) == 0 {
		return nil, nil
	}

	text := string(content)
	lines := parser.NewLineIndex(text)
	seen := make(map[string]struct{})

	var (
		regions  []Region
		findings []Finding
	)

	for _, p := range parsers {
		doc, err := p.Parse(text)
		if err != nil {
			findings = append(findings, syntaxFinding(file, p.Name(), err))
			continue
		}

		offset := 0
		for _, reg := range doc.Regions() {
			start := offset
			offset += len(reg.Text())
			if !reg.IsMarked() {
				continue
			}
			if _, dup := seen[reg.ID()]; dup {
				continue
			}
			seen[reg.ID()] = struct{}{}

			regions = append(regions, Region{
				ID:      reg.ID(),
				File:    file,
				Parser:  p.Name(),
				Enabled: reg.Enabled(),
				Start:   lines.Position(start),
				End:     lines.Position(offset),
			})
		}
	}

	return regions, findings
}

func syntaxFinding(file, parserName string, err error) Finding {
	f := Finding{
		File:     file,
		Kind:     KindSyntax,
		Severity: SeverityError,
		Message:  err.Error(),
		Parser:   parserName,
	}

	var syntaxErr *parser.SyntaxError
	if errors.As(err, &syntaxErr) {
		span := syntaxErr.Span
		f.Span = &span
		f.RegionID = syntaxErr.ID
	}
	if errors.Is(err, region.ErrDuplicateID) {
		f.Kind = KindDuplicate
	}

	return f
}

func (in *Inspector) parsersFor(file string, content []byte) []*parser.Parser {
	var out []*parser.Parser
	for _, b := range in.bindings {
		if b.Accept(file) {
			out = append(out, b.Parser)
		}
	}
	if len(out) > 0 || !in.opts.DetectLanguage {
		return out
	}

	preset := langdetect.Preset(file, content)
	if preset == "" {
		return nil
	}

	in.mu.Lock()
	defer in.mu.Unlock()

	p, ok := in.detected[preset]
	if !ok {
		var err error
		p, err = parser.New(preset, parser.Options{})
		if err != nil {
			in.logger.Warn("cannot build detected parser", logging.FieldLanguage, preset, logging.FieldError, err)
			return nil
		}
		in.detected[preset] = p
	}

	in.logger.Debug("detected language", logging.FieldPath, file, logging.FieldLanguage, preset)
	return []*parser.Parser{p}
}

func (in *Inspector) discover(ctx context.Context, paths []string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	reader, err := fsreader.New(".",
		fsreader.WithExclude(in.opts.Ignore...),
		fsreader.WithFollowSymlinks(in.opts.FollowSymlinks),
		fsreader.WithSkipDirs(in.opts.SkipDirs...))
	if err != nil {
		return nil, fmt.Errorf("invalid ignore patterns: %w", err)
	}

	var filter registry.PathFilter = registry.AcceptAll
	if !in.opts.DetectLanguage {
		filters := lo.Map(in.bindings, func(b registry.Binding, _ int) registry.PathFilter {
			return registry.PathFilterFunc(b.Accept)
		})
		filter = registry.AnyOf(filters...)
	}

	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("inspect %s: %w", path, err)
		}

		if !info.IsDir() {
			files = append(files, filepath.Clean(path))
			continue
		}

		found, err := reader.ListFiles(ctx, path, filter)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}

	return lo.Uniq(files), nil
}

// globalDuplicates reports ids found in more than one file.
func globalDuplicates(regions []Region) []Finding {
	byID := lo.GroupBy(regions, func(r Region) string { return r.ID })

	ids := lo.Keys(byID)
	sort.Strings(ids)

	var findings []Finding
	for _, id := range ids {
		group := byID[id]
		files := lo.Uniq(lo.Map(group, func(r Region, _ int) string { return r.File }))
		if len(files) < 2 {
			continue
		}

		for _, r := range group {
			others := lo.Without(files, r.File)
			span := parser.Span{Start: r.Start, End: r.End}
			findings = append(findings, Finding{
				File:     r.File,
				Kind:     KindGlobalDuplicate,
				Severity: SeverityError,
				Message:  fmt.Sprintf("duplicate region id %q: region ids have to be globally unique", id),
				Parser:   r.Parser,
				RegionID: id,
				Span:     &span,
				Others:   others,
			})
		}
	}
	return findings
}

func sortFindings(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.File != b.File {
			return a.File < b.File
		}
		return line(a) < line(b)
	})
}

func line(f Finding) int {
	if f.Span == nil {
		return 0
	}
	return f.Span.Start.Line
}
