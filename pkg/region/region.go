// Package region models documents as ordered sequences of marked and unmarked regions
// and implements the merge and fill-in operations between them.
package region

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for region construction and document assembly.
var (
	// ErrInvalidRegion indicates a marked region was built without an id.
	ErrInvalidRegion = errors.New("invalid region")

	// ErrDuplicateID indicates two marked regions of one document share an id.
	ErrDuplicateID = errors.New("duplicate region id")
)

// Kind distinguishes the two region variants.
type Kind uint8

const (
	// KindUnmarked is ordinary generated text.
	KindUnmarked Kind = iota

	// KindMarked is text delimited by start and end marker comments.
	KindMarked
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindUnmarked:
		return "unmarked"
	case KindMarked:
		return "marked"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Region is a contiguous slice of document text.
// The zero value is an empty unmarked region.
type Region struct {
	kind    Kind
	id      string
	text    string
	enabled bool
}

// Unmarked returns an unmarked region holding text.
func Unmarked(text string) Region {
	return Region{kind: KindUnmarked, text: text}
}

// Marked returns a marked region. The text includes the start and end marker comments.
func Marked(id, text string, enabled bool) (Region, error) {
	if strings.TrimSpace(id) == "" {
		return Region{}, fmt.Errorf("%w: marked region requires a non-empty id", ErrInvalidRegion)
	}

	return Region{kind: KindMarked, id: id, text: text, enabled: enabled}, nil
}

// Kind returns the region variant.
func (r Region) Kind() Kind { return r.kind }

// IsMarked reports whether r is a marked region.
func (r Region) IsMarked() bool { return r.kind == KindMarked }

// ID returns the region id, or "" for unmarked regions.
func (r Region) ID() string { return r.id }

// Text returns the verbatim region text.
func (r Region) Text() string { return r.text }

// Enabled reports whether a marked region is switched on. Unmarked regions are never enabled.
func (r Region) Enabled() bool { return r.kind == KindMarked && r.enabled }

// String renders a short description for logs and test failures.
func (r Region) String() string {
	if r.kind == KindMarked {
		return fmt.Sprintf("marked(%s, enabled=%t, %d bytes)", r.id, r.enabled, len(r.text))
	}
	return fmt.Sprintf("unmarked(%d bytes)", len(r.text))
}
