package parser

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/yaklabco/gopreserve/pkg/oracle"
	"github.com/yaklabco/gopreserve/pkg/region"
)

// Parser splits documents into regions. It is immutable and safe for concurrent use.
type Parser struct {
	name     string
	comments []CommentType
	cdata    []CDataType
	oracle   oracle.Oracle
	inverse  bool
}

// Name returns the parser name.
func (p *Parser) Name() string { return p.name }

// String implements fmt.Stringer.
func (p *Parser) String() string { return p.name }

// IsInverse reports whether the parser operates in fill-in mode.
func (p *Parser) IsInverse() bool { return p.inverse }

// Oracle returns the region marker oracle.
func (p *Parser) Oracle() oracle.Oracle { return p.oracle }

// CommentTypes returns a copy of the configured comment types.
func (p *Parser) CommentTypes() []CommentType {
	out := make([]CommentType, len(p.comments))
	copy(out, p.comments)
	return out
}

// CDataTypes returns a copy of the configured character data types.
func (p *Parser) CDataTypes() []CDataType {
	out := make([]CDataType, len(p.cdata))
	copy(out, p.cdata)
	return out
}

// ParseReader reads r completely and parses its content.
func (p *Parser) ParseReader(r io.Reader) (*region.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	return p.Parse(string(data))
}

// Parse splits text into marked and unmarked regions.
//
// Concatenating the text of the returned regions yields text exactly. A marked region
// spans from the first byte of its start comment through the last byte of its end
// comment. Empty unmarked regions are omitted.
func (p *Parser) Parse(text string) (*region.Document, error) {
	s := &scan{text: text, seen: make(map[string]struct{})}

	for {
		ct, found, err := p.nextComment(s)
		if err != nil {
			return nil, err
		}
		if !found {
			break
		}

		body, err := p.readComment(s, ct)
		if err != nil {
			return nil, err
		}

		if err := p.transition(s, body); err != nil {
			return nil, err
		}
	}

	if s.inRegion {
		return nil, &SyntaxError{
			Err:  ErrUnclosedRegion,
			Span: s.span(s.marker, len(text)),
			ID:   s.regionID,
		}
	}

	s.emit(region.Unmarked(text[s.marker:]))

	return region.NewDocument(s.regions...)
}

// transition applies a comment to the region state machine.
func (p *Parser) transition(s *scan, body string) error {
	isStart := p.oracle.IsMarkedRegionStart(body)
	isEnd := p.oracle.IsMarkedRegionEnd(body)

	switch {
	case !s.inRegion && isEnd:
		return &SyntaxError{
			Err:  ErrRegionEndWithoutStart,
			Span: s.span(s.commentStart, s.cursor),
			Near: body,
		}

	case !s.inRegion && isStart:
		id := p.oracle.ID(body)
		if strings.TrimSpace(id) == "" {
			return &SyntaxError{
				Err:  region.ErrInvalidRegion,
				Span: s.span(s.commentStart, s.cursor),
				Near: body,
			}
		}
		if _, dup := s.seen[id]; dup {
			return &SyntaxError{
				Err:  fmt.Errorf("%w: %s", region.ErrDuplicateID, id),
				Span: s.span(s.commentStart, s.cursor),
				Near: body,
			}
		}
		s.seen[id] = struct{}{}

		s.emit(region.Unmarked(s.text[s.marker:s.commentStart]))
		s.marker = s.commentStart
		s.inRegion = true
		s.regionID = id
		s.regionEnabled = p.oracle.IsEnabled(body)

	case s.inRegion && isEnd:
		r, err := region.Marked(s.regionID, s.text[s.marker:s.cursor], s.regionEnabled)
		if err != nil {
			return err
		}
		s.emit(r)
		s.marker = s.cursor
		s.inRegion = false
		s.regionID = ""
		s.regionEnabled = false
	}

	return nil
}

// nextComment advances to the nearest comment start, skipping character data.
// On success the cursor points just past the comment start string.
func (p *Parser) nextComment(s *scan) (CommentType, bool, error) {
	for {
		commentAt, comment := -1, -1
		for i, ct := range p.comments {
			if at := s.indexOf(ct.Start); at >= 0 && (commentAt < 0 || at < commentAt) {
				commentAt, comment = at, i
			}
		}

		cdataAt, cdata := -1, -1
		for i, dt := range p.cdata {
			if at := s.indexOf(dt.Start); at >= 0 && (cdataAt < 0 || at < cdataAt) {
				cdataAt, cdata = at, i
			}
		}

		if cdata < 0 || (comment >= 0 && commentAt <= cdataAt) {
			if comment < 0 {
				return CommentType{}, false, nil
			}
			ct := p.comments[comment]
			s.commentStart = commentAt
			s.cursor = commentAt + len(ct.Start)
			return ct, true, nil
		}

		if err := s.skipCData(p.cdata[cdata], cdataAt); err != nil {
			return CommentType{}, false, err
		}
	}
}

// readComment returns the comment body and moves the cursor past the comment.
func (p *Parser) readComment(s *scan, ct CommentType) (string, error) {
	switch ct.Style {
	case Singleline:
		return s.readLine(), nil
	case MultilineNestable:
		return s.readNested(ct)
	default:
		end := s.indexOf(ct.End)
		if end < 0 {
			return "", s.unterminated(ct.Start)
		}
		body := s.text[s.cursor:end]
		s.cursor = end + len(ct.End)
		return body, nil
	}
}

// scan is the mutable state of a single Parse call.
type scan struct {
	text   string
	marker int
	cursor int

	commentStart int

	inRegion      bool
	regionID      string
	regionEnabled bool

	regions []region.Region
	seen    map[string]struct{}
	lines   *LineIndex
}

func (s *scan) indexOf(sub string) int {
	i := strings.Index(s.text[s.cursor:], sub)
	if i < 0 {
		return -1
	}
	return s.cursor + i
}

func (s *scan) emit(r region.Region) {
	if !r.IsMarked() && r.Text() == "" {
		return
	}
	s.regions = append(s.regions, r)
}

func (s *scan) span(start, end int) Span {
	if s.lines == nil {
		s.lines = NewLineIndex(s.text)
	}
	return s.lines.Span(start, end)
}

func (s *scan) unterminated(start string) error {
	return &SyntaxError{
		Err:  ErrUnterminatedComment,
		Span: s.span(s.commentStart, len(s.text)),
		Near: start,
	}
}

// skipCData moves the cursor past the character data starting at offset at.
// An escape string consumes itself and the following character.
func (s *scan) skipCData(dt CDataType, at int) error {
	s.cursor = at + len(dt.Start)

	for {
		end := s.indexOf(dt.End)
		esc := -1
		if dt.Escape != "" {
			esc = s.indexOf(dt.Escape)
		}

		if esc < 0 || (end >= 0 && end < esc) {
			if end < 0 {
				return &SyntaxError{
					Err:  ErrUnterminatedCData,
					Span: s.span(at, len(s.text)),
					Near: dt.Start,
				}
			}
			s.cursor = end + len(dt.End)
			return nil
		}

		next := esc + len(dt.Escape)
		if next < len(s.text) {
			_, width := utf8.DecodeRuneInString(s.text[next:])
			next += width
		}
		s.cursor = next
	}
}

// readLine reads to the next "\r\n", "\n" or "\r". The body excludes the line break;
// the cursor moves past it.
func (s *scan) readLine() string {
	rest := s.text[s.cursor:]

	i := strings.IndexAny(rest, "\r\n")
	if i < 0 {
		s.cursor = len(s.text)
		return rest
	}

	eol := 1
	if rest[i] == '\r' && i+1 < len(rest) && rest[i+1] == '\n' {
		eol = 2
	}

	s.cursor += i + eol
	return rest[:i]
}

func (s *scan) readNested(ct CommentType) (string, error) {
	bodyStart := s.cursor
	depth := 1

	for {
		end := s.indexOf(ct.End)
		if end < 0 {
			return "", s.unterminated(ct.Start)
		}

		if start := s.indexOf(ct.Start); start >= 0 && start < end {
			depth++
			s.cursor = start + len(ct.Start)
			continue
		}

		depth--
		s.cursor = end + len(ct.End)
		if depth == 0 {
			return s.text[bodyStart:end], nil
		}
	}
}
