// Package oracle recognizes marked-region start and end comments.
//
// An Oracle inspects comment bodies with their delimiters already stripped.
// The scanner in package parser is notation-agnostic and delegates every
// decision about region markers to an Oracle.
package oracle

import "strings"

// Oracle decides whether a comment body opens or closes a marked region.
type Oracle interface {
	// IsMarkedRegionStart reports whether comment opens a marked region.
	IsMarkedRegionStart(comment string) bool

	// IsMarkedRegionEnd reports whether comment closes a marked region.
	IsMarkedRegionEnd(comment string) bool

	// ID extracts the region id from a start comment.
	ID(start string) string

	// IsEnabled reports whether the region opened by start is switched on.
	IsEnabled(start string) bool
}

// Polarity describes how a switch keyword affects the enabled flag.
type Polarity uint8

const (
	// KeywordEnables marks a region enabled when the keyword is present.
	KeywordEnables Polarity = iota

	// KeywordDisables marks a region disabled when the keyword is present.
	KeywordDisables
)

// String returns the polarity name used in configuration files.
func (p Polarity) String() string {
	if p == KeywordDisables {
		return "disables"
	}
	return "enables"
}

// ParsePolarity converts a configuration value to a Polarity.
func ParsePolarity(s string) (Polarity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "enables", "enable":
		return KeywordEnables, true
	case "disables", "disable":
		return KeywordDisables, true
	default:
		return KeywordEnables, false
	}
}

// idBetweenParens returns the trimmed text between the first '(' and the next ')'.
func idBetweenParens(s string) string {
	open := strings.IndexByte(s, '(')
	if open < 0 {
		return ""
	}
	rest := s[open+1:]
	end := strings.IndexByte(rest, ')')
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(rest[:end])
}
