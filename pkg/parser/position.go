package parser

import (
	"fmt"
	"sort"
)

// Position is a 1-based line and column in a document. Columns count bytes.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// String renders the position as "(line,column)".
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Line, p.Column)
}

// Span is the source range of a comment.
type Span struct {
	// StartOffset is the byte index where the span begins (inclusive).
	StartOffset int `json:"startOffset"`

	// EndOffset is the byte index where the span ends (exclusive).
	EndOffset int `json:"endOffset"`

	Start Position `json:"start"`
	End   Position `json:"end"`
}

// String renders the span as "between (l,c) and (l,c)".
func (s Span) String() string {
	return fmt.Sprintf("between %s and %s", s.Start, s.End)
}

// LineIndex maps byte offsets to line and column numbers.
// Line breaks are "\r\n", "\n" and a lone "\r".
type LineIndex struct {
	starts []int
	size   int
}

// NewLineIndex scans text once and records the start offset of every line.
func NewLineIndex(text string) *LineIndex {
	starts := []int{0}

	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			starts = append(starts, i+1)
		case '\n':
			starts = append(starts, i+1)
		}
	}

	return &LineIndex{starts: starts, size: len(text)}
}

// LineCount returns the number of lines.
func (li *LineIndex) LineCount() int {
	return len(li.starts)
}

// Position converts a byte offset to a 1-based position.
// Offsets past the end are clamped to the end of the document.
func (li *LineIndex) Position(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > li.size {
		offset = li.size
	}

	line := sort.Search(len(li.starts), func(i int) bool {
		return li.starts[i] > offset
	}) - 1

	return Position{Line: line + 1, Column: offset - li.starts[line] + 1}
}

// Span builds the span covering [start, end).
func (li *LineIndex) Span(start, end int) Span {
	return Span{
		StartOffset: start,
		EndOffset:   end,
		Start:       li.Position(start),
		End:         li.Position(end),
	}
}
