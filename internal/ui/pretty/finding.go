package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/gopreserve/pkg/generate"
	"github.com/yaklabco/gopreserve/pkg/inspect"
)

// FormatFinding formats a single finding for terminal output. path replaces
// f.File so callers can display relative paths.
func (s *Styles) FormatFinding(f inspect.Finding, path string) string {
	var builder strings.Builder

	location := s.FilePath.Render(path)
	if f.Span != nil {
		location += s.Location.Render(fmt.Sprintf(":%d:%d", f.Span.Start.Line, f.Span.Start.Column))
	}

	// Main line: location  severity  message  (kind)
	builder.WriteString(fmt.Sprintf("  %s  %s  %s  %s\n",
		location,
		s.FormatSeverity(f.Severity),
		s.Message.Render(f.Message),
		s.Kind.Render("("+string(f.Kind)+")"),
	))

	if len(f.Others) > 0 {
		builder.WriteString("    " + s.Dim.Render("also in:") + " " +
			s.FilePath.Render(strings.Join(f.Others, ", ")) + "\n")
	}

	return builder.String()
}

// FormatSeverity returns a styled severity string.
func (s *Styles) FormatSeverity(sev inspect.Severity) string {
	switch sev {
	case inspect.SeverityError:
		return s.Error.Render("error")
	case inspect.SeverityWarning:
		return s.Warning.Render("warning")
	default:
		return string(sev)
	}
}

// FormatRegion formats one marked region as an indented line.
func (s *Styles) FormatRegion(r inspect.Region) string {
	state := s.Disabled.Render("disabled")
	if r.Enabled {
		state = s.Enabled.Render("enabled")
	}

	return fmt.Sprintf("  %s  %s  %s  %s\n",
		s.Location.Render(fmt.Sprintf("%d:%d-%d:%d", r.Start.Line, r.Start.Column, r.End.Line, r.End.Column)),
		s.RegionID.Render(r.ID),
		state,
		s.Parser.Render("("+r.Parser+")"),
	)
}

// FormatFileHeader formats a file header for grouped output.
// noun is the singular name of what count counts.
func (s *Styles) FormatFileHeader(path string, count int, noun string) string {
	header := s.FilePath.Render(path)
	if count > 0 {
		header += s.Dim.Render(fmt.Sprintf(" (%s)", plural(count, noun)))
	}
	return header
}

// FormatFileResult formats the outcome of one staged file.
func (s *Styles) FormatFileResult(fr *generate.FileResult, path string) string {
	status := fr.Summary()

	var styled string
	switch {
	case fr.Skipped:
		styled = s.Skipped.Render(status)
	case fr.Created:
		styled = s.Created.Render(status)
	case fr.Pending:
		styled = s.Pending.Render(status)
	case fr.Written:
		styled = s.Updated.Render(status)
	default:
		styled = s.Unchanged.Render(status)
	}

	line := fmt.Sprintf("  %s  %s", s.FilePath.Render(path), styled)

	var details []string
	if n := fr.Preserved(); n > 0 {
		details = append(details, fmt.Sprintf("%d preserved", n))
	}
	if n := fr.Filled(); n > 0 {
		details = append(details, fmt.Sprintf("%d filled", n))
	}
	if fr.Diff.HasChanges() {
		details = append(details, fr.Diff.Stat())
	}
	if len(details) > 0 {
		line += "  " + s.Dim.Render("("+strings.Join(details, ", ")+")")
	}

	return line + "\n"
}

// FormatFileError formats a file that could not be processed.
func (s *Styles) FormatFileError(path string, err error) string {
	return fmt.Sprintf("  %s  %s\n",
		s.FilePath.Render(path),
		s.Error.Render(fmt.Sprintf("error: %v", err)),
	)
}

// plural renders "1 region" or "2 regions".
func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
