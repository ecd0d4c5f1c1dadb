package parser

import (
	"errors"
	"fmt"

	"github.com/yaklabco/gopreserve/pkg/oracle"
)

// Builder configures a Parser. Delimiters keep insertion order and may repeat;
// at equal positions the first configured delimiter wins.
type Builder struct {
	name       string
	comments   []CommentType
	cdata      []CDataType
	oracle     oracle.Oracle
	inverse    bool
	switchable bool
	errs       []error
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{name: "custom"}
}

// Name sets the parser name used in logs and cache keys.
func (b *Builder) Name(name string) *Builder {
	b.name = name
	return b
}

// AddComment adds a multiline comment.
func (b *Builder) AddComment(start, end string) *Builder {
	if start == "" || end == "" {
		b.errs = append(b.errs, fmt.Errorf("%w: multiline comment %q %q needs start and end",
			ErrInvalidConfig, start, end))
		return b
	}
	b.comments = append(b.comments, CommentType{Start: start, End: end, Style: Multiline})
	return b
}

// AddNestableComment adds a multiline comment that may nest.
func (b *Builder) AddNestableComment(start, end string) *Builder {
	if start == "" || end == "" || start == end {
		b.errs = append(b.errs, fmt.Errorf("%w: nestable comment %q %q needs distinct start and end",
			ErrInvalidConfig, start, end))
		return b
	}
	b.comments = append(b.comments, CommentType{Start: start, End: end, Style: MultilineNestable})
	return b
}

// AddLineComment adds a singleline comment.
func (b *Builder) AddLineComment(start string) *Builder {
	if start == "" {
		b.errs = append(b.errs, fmt.Errorf("%w: singleline comment needs a start", ErrInvalidConfig))
		return b
	}
	b.comments = append(b.comments, CommentType{Start: start, Style: Singleline})
	return b
}

// AddCommentType adds a comment of any style.
func (b *Builder) AddCommentType(ct CommentType) *Builder {
	switch ct.Style {
	case Multiline:
		return b.AddComment(ct.Start, ct.End)
	case MultilineNestable:
		return b.AddNestableComment(ct.Start, ct.End)
	case Singleline:
		return b.AddLineComment(ct.Start)
	default:
		b.errs = append(b.errs, fmt.Errorf("%w: unknown comment style %s", ErrInvalidConfig, ct.Style))
		return b
	}
}

// IgnoreCData adds an opaque span without escape sequence.
func (b *Builder) IgnoreCData(start, end string) *Builder {
	return b.IgnoreEscapedCData(start, end, "")
}

// IgnoreEscapedCData adds an opaque span whose end may be escaped.
func (b *Builder) IgnoreEscapedCData(start, end, escape string) *Builder {
	if start == "" || end == "" {
		b.errs = append(b.errs, fmt.Errorf("%w: character data %q %q needs start and end",
			ErrInvalidConfig, start, end))
		return b
	}
	b.cdata = append(b.cdata, CDataType{Start: start, End: end, Escape: escape})
	return b
}

// UseOracle sets the region marker oracle. Without one, Build installs the default
// oracle for the configured inverse and switchable flags.
func (b *Builder) UseOracle(o oracle.Oracle) *Builder {
	b.oracle = o
	return b
}

// Inverse selects fill-in mode.
func (b *Builder) Inverse(inverse bool) *Builder {
	b.inverse = inverse
	return b
}

// Switchable lets the default oracle read the enabled flag from the start marker.
func (b *Builder) Switchable(switchable bool) *Builder {
	b.switchable = switchable
	return b
}

// Build returns the configured Parser.
func (b *Builder) Build() (*Parser, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	if len(b.comments) == 0 {
		return nil, fmt.Errorf("%w: parser %s has no comment types", ErrInvalidConfig, b.name)
	}

	o := b.oracle
	if o == nil {
		o = oracle.NewDefault(b.inverse, b.switchable)
	}

	comments := make([]CommentType, len(b.comments))
	copy(comments, b.comments)
	cdata := make([]CDataType, len(b.cdata))
	copy(cdata, b.cdata)

	return &Parser{
		name:     b.name,
		comments: comments,
		cdata:    cdata,
		oracle:   o,
		inverse:  b.inverse,
	}, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *Parser {
	p, err := b.Build()
	if err != nil {
		panic(err)
	}
	return p
}
