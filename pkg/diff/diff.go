// Package diff renders line-based unified diffs between the content currently on disk
// and the content a merge would write.
package diff

import (
	"fmt"
	"strings"
)

// Op is the kind of a diff line.
type Op int

const (
	// Equal is an unchanged context line.
	Equal Op = iota

	// Insert is a line only present in the new content.
	Insert

	// Delete is a line only present in the old content.
	Delete
)

// Prefix returns the unified diff marker for the op.
func (o Op) Prefix() string {
	switch o {
	case Insert:
		return "+"
	case Delete:
		return "-"
	default:
		return " "
	}
}

// ContextLines is the number of unchanged lines shown around each change.
const ContextLines = 3

// Line is one line of a hunk.
type Line struct {
	Op   Op
	Text string
}

// Hunk is a contiguous group of changes with surrounding context.
type Hunk struct {
	// OldStart and NewStart are 1-based line numbers.
	OldStart int
	OldLines int
	NewStart int
	NewLines int
	Lines    []Line
}

// Header returns the "@@ -a,b +c,d @@" line.
func (h Hunk) Header() string {
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldLines, h.NewStart, h.NewLines)
}

// Unified is the diff of one file.
type Unified struct {
	Path    string
	Hunks   []Hunk
	Added   int
	Removed int
}

// Compute diffs before against after. It returns nil when the contents are equal.
func Compute(path, before, after string) *Unified {
	if before == after {
		return nil
	}

	edits := script(splitLines(before), splitLines(after))
	hunks := group(edits)
	if len(hunks) == 0 {
		return nil
	}

	out := &Unified{Path: path, Hunks: hunks}
	for _, e := range edits {
		switch e.Op {
		case Insert:
			out.Added++
		case Delete:
			out.Removed++
		}
	}
	return out
}

// HasChanges reports whether the diff contains any hunk.
func (u *Unified) HasChanges() bool {
	return u != nil && len(u.Hunks) > 0
}

// Stat returns a short "+N -M" summary.
func (u *Unified) Stat() string {
	if u == nil {
		return "+0 -0"
	}
	return fmt.Sprintf("+%d -%d", u.Added, u.Removed)
}

// String renders the diff with ---/+++ headers. A nil diff renders as "".
func (u *Unified) String() string {
	if !u.HasChanges() {
		return ""
	}

	name := strings.TrimPrefix(u.Path, "/")

	var b strings.Builder
	fmt.Fprintf(&b, "--- a/%s\n+++ b/%s\n", name, name)
	for _, h := range u.Hunks {
		b.WriteString(h.Header())
		b.WriteByte('\n')
		for _, l := range h.Lines {
			b.WriteString(l.Op.Prefix())
			b.WriteString(l.Text)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// splitLines splits on '\n'. A trailing newline does not produce an empty last line.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// script returns the shortest edit script turning a into b, using a suffix LCS table
// walked front to back so deletions come before insertions within a change.
func script(a, b []string) []Line {
	rows, cols := len(a), len(b)

	table := make([][]int, rows+1)
	for i := range table {
		table[i] = make([]int, cols+1)
	}
	for i := rows - 1; i >= 0; i-- {
		for j := cols - 1; j >= 0; j-- {
			if a[i] == b[j] {
				table[i][j] = table[i+1][j+1] + 1
			} else {
				table[i][j] = max(table[i+1][j], table[i][j+1])
			}
		}
	}

	edits := make([]Line, 0, rows+cols)
	i, j := 0, 0
	for i < rows && j < cols {
		switch {
		case a[i] == b[j]:
			edits = append(edits, Line{Op: Equal, Text: a[i]})
			i++
			j++
		case table[i+1][j] >= table[i][j+1]:
			edits = append(edits, Line{Op: Delete, Text: a[i]})
			i++
		default:
			edits = append(edits, Line{Op: Insert, Text: b[j]})
			j++
		}
	}
	for ; i < rows; i++ {
		edits = append(edits, Line{Op: Delete, Text: a[i]})
	}
	for ; j < cols; j++ {
		edits = append(edits, Line{Op: Insert, Text: b[j]})
	}
	return edits
}

// group cuts the edit script into hunks, joining changes separated by at most
// 2*ContextLines unchanged lines.
func group(edits []Line) []Hunk {
	var hunks []Hunk

	oldLine, newLine := 1, 1
	var cur *Hunk
	trailing := 0 // equal lines appended to cur since its last change

	flush := func() {
		if cur == nil {
			return
		}
		if extra := trailing - ContextLines; extra > 0 {
			cur.Lines = cur.Lines[:len(cur.Lines)-extra]
			cur.OldLines -= extra
			cur.NewLines -= extra
		}
		hunks = append(hunks, *cur)
		cur = nil
	}

	for idx, e := range edits {
		if e.Op == Equal {
			if cur != nil {
				if trailing >= 2*ContextLines {
					flush()
				} else {
					cur.Lines = append(cur.Lines, e)
					cur.OldLines++
					cur.NewLines++
					trailing++
				}
			}
			oldLine++
			newLine++
			continue
		}

		if cur == nil {
			lead := leadingContext(edits, idx)
			cur = &Hunk{
				OldStart: oldLine - len(lead),
				NewStart: newLine - len(lead),
				Lines:    lead,
				OldLines: len(lead),
				NewLines: len(lead),
			}
		}
		cur.Lines = append(cur.Lines, e)
		trailing = 0
		if e.Op == Delete {
			cur.OldLines++
			oldLine++
		} else {
			cur.NewLines++
			newLine++
		}
	}
	flush()

	for i := range hunks {
		// An empty side starts at the line before the change, as in diff(1).
		if hunks[i].OldLines == 0 {
			hunks[i].OldStart--
		}
		if hunks[i].NewLines == 0 {
			hunks[i].NewStart--
		}
	}
	return hunks
}

func leadingContext(edits []Line, idx int) []Line {
	start := idx
	for start > 0 && idx-start < ContextLines && edits[start-1].Op == Equal {
		start--
	}
	lead := make([]Line, idx-start)
	copy(lead, edits[start:idx])
	return lead
}
