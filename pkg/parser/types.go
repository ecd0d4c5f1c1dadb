// Package parser partitions documents into marked and unmarked regions.
//
// A Parser is configured with comment and character-data delimiters of a host language
// and an oracle that recognizes region markers. It scans the document once, locating
// comments while skipping string literals and similar opaque spans, and never looks at
// the host language beyond that.
package parser

import "fmt"

// Style is the shape of a comment.
type Style uint8

const (
	// Multiline comments run from a start string to an end string.
	Multiline Style = iota

	// MultilineNestable comments track nested start and end strings.
	MultilineNestable

	// Singleline comments run from a start string to the end of the line.
	Singleline
)

// String returns the style name used in configuration files.
func (s Style) String() string {
	switch s {
	case Multiline:
		return "multiline"
	case MultilineNestable:
		return "nestable"
	case Singleline:
		return "singleline"
	default:
		return fmt.Sprintf("Style(%d)", uint8(s))
	}
}

// ParseStyle converts a configuration value to a Style.
func ParseStyle(s string) (Style, bool) {
	switch s {
	case "multiline", "block":
		return Multiline, true
	case "nestable", "nested":
		return MultilineNestable, true
	case "singleline", "line":
		return Singleline, true
	default:
		return Multiline, false
	}
}

// CommentType describes comment delimiters. End is empty for singleline comments.
type CommentType struct {
	Start string
	End   string
	Style Style
}

// String renders the delimiters, e.g. "/* */" or "//".
func (c CommentType) String() string {
	if c.Style == Singleline {
		return c.Start
	}
	return c.Start + " " + c.End
}

// CDataType describes an opaque span such as a string literal, inside which comment
// delimiters are ignored. Escape is empty when the span has no escape sequence.
type CDataType struct {
	Start  string
	End    string
	Escape string
}

// String renders the delimiters, e.g. `" " \`.
func (c CDataType) String() string {
	if c.Escape == "" {
		return c.Start + " " + c.End
	}
	return c.Start + " " + c.End + " " + c.Escape
}
