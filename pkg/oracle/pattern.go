package oracle

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Capture group names understood by Pattern.
const (
	GroupID   = "id"
	GroupFlag = "flag"
)

// ErrInvalidPattern indicates a Pattern oracle could not be built.
var ErrInvalidPattern = errors.New("invalid region pattern")

// Pattern recognizes a user-defined notation described by two regular expressions.
//
// The start expression must capture the region id in a group named "id". An optional
// group named "flag" carries the switch keyword; its polarity decides what a
// non-empty match means. Both expressions must match the whole comment body.
type Pattern struct {
	start      *regexp.Regexp
	end        *regexp.Regexp
	idIndex    int
	flagIndex  int
	polarity   Polarity
	switchable bool
}

// PatternConfig describes a Pattern oracle.
type PatternConfig struct {
	Start      string
	End        string
	Polarity   Polarity
	Switchable bool
}

// NewPattern compiles a Pattern oracle.
func NewPattern(cfg PatternConfig) (*Pattern, error) {
	start, err := compileAnchored(cfg.Start)
	if err != nil {
		return nil, fmt.Errorf("%w: start: %w", ErrInvalidPattern, err)
	}

	end, err := compileAnchored(cfg.End)
	if err != nil {
		return nil, fmt.Errorf("%w: end: %w", ErrInvalidPattern, err)
	}

	idIndex := start.SubexpIndex(GroupID)
	if idIndex < 0 {
		return nil, fmt.Errorf("%w: start expression %q has no (?P<%s>...) group",
			ErrInvalidPattern, cfg.Start, GroupID)
	}

	return &Pattern{
		start:      start,
		end:        end,
		idIndex:    idIndex,
		flagIndex:  start.SubexpIndex(GroupFlag),
		polarity:   cfg.Polarity,
		switchable: cfg.Switchable,
	}, nil
}

// MustPattern is like NewPattern but panics on error.
func MustPattern(cfg PatternConfig) *Pattern {
	p, err := NewPattern(cfg)
	if err != nil {
		panic(err)
	}
	return p
}

func compileAnchored(expr string) (*regexp.Regexp, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, errors.New("empty expression")
	}
	return regexp.Compile(`^(?:` + expr + `)$`)
}

// IsMarkedRegionStart implements Oracle.
func (p *Pattern) IsMarkedRegionStart(comment string) bool {
	return p.start.MatchString(comment)
}

// IsMarkedRegionEnd implements Oracle.
func (p *Pattern) IsMarkedRegionEnd(comment string) bool {
	return p.end.MatchString(comment)
}

// ID implements Oracle.
func (p *Pattern) ID(start string) string {
	m := p.start.FindStringSubmatch(start)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[p.idIndex])
}

// IsEnabled implements Oracle.
func (p *Pattern) IsEnabled(start string) bool {
	if !p.switchable {
		return true
	}

	present := false
	if p.flagIndex >= 0 {
		if m := p.start.FindStringSubmatch(start); m != nil {
			present = strings.TrimSpace(m[p.flagIndex]) != ""
		}
	}

	if p.polarity == KeywordDisables {
		return !present
	}
	return present
}
