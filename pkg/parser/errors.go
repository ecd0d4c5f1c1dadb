package parser

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Parse and Build. Parse errors are wrapped in *SyntaxError.
var (
	// ErrUnterminatedComment indicates a multiline comment without its end string.
	ErrUnterminatedComment = errors.New("comment does not end properly")

	// ErrUnterminatedCData indicates a literal or CDATA span without its end string.
	ErrUnterminatedCData = errors.New("character data does not end properly")

	// ErrRegionEndWithoutStart indicates an end marker outside any marked region.
	ErrRegionEndWithoutStart = errors.New("marked region end without corresponding marked region start")

	// ErrUnclosedRegion indicates the document ended inside a marked region.
	ErrUnclosedRegion = errors.New("marked region does not end properly")

	// ErrInvalidConfig indicates a parser was configured with unusable delimiters.
	ErrInvalidConfig = errors.New("invalid parser configuration")
)

// SyntaxError locates a structural defect in a document.
type SyntaxError struct {
	Err  error
	Span Span

	// Near holds the offending comment body or delimiter, if any.
	Near string

	// ID names the open region for ErrUnclosedRegion.
	ID string
}

func (e *SyntaxError) Error() string {
	switch {
	case e.ID != "":
		return fmt.Sprintf("%s: id %s opened %s", e.Err, e.ID, e.Span.Start)
	case e.Near != "":
		return fmt.Sprintf("%s %s, near [%s]", e.Err, e.Span, e.Near)
	default:
		return fmt.Sprintf("%s %s", e.Err, e.Span)
	}
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}
