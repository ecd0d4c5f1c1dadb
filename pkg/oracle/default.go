package oracle

import (
	"regexp"
	"strings"
)

// Labels and switch keywords of the default notation.
const (
	LabelProtected  = "PROTECTED REGION"
	LabelGenerated  = "GENERATED"
	KeywordEnabled  = "ENABLED"
	KeywordDisabled = "DISABLED"
)

const qualifiedID = `[A-Za-z_$][A-Za-z0-9_$]*(?:\.[A-Za-z_$][A-Za-z0-9_$]*)*`

// Default recognizes the regex-based notation
//
//	PROTECTED REGION ID(com.example.Foo) [KEYWORD] START
//	PROTECTED REGION END
//
// with a configurable label, switch keyword and keyword polarity.
type Default struct {
	label      string
	keyword    string
	polarity   Polarity
	switchable bool

	start *regexp.Regexp
	end   *regexp.Regexp
}

// DefaultOption customizes a Default oracle.
type DefaultOption func(*Default)

// WithLabel replaces the marker label. Words of the label match any run of whitespace.
func WithLabel(label string) DefaultOption {
	return func(d *Default) {
		d.label = label
	}
}

// WithKeyword replaces the switch keyword and its polarity.
// An empty keyword disables the optional keyword slot.
func WithKeyword(keyword string, polarity Polarity) DefaultOption {
	return func(d *Default) {
		d.keyword = keyword
		d.polarity = polarity
	}
}

// NewDefault returns the default oracle.
//
// Normal mode uses the label PROTECTED REGION with ENABLED switching regions on.
// Inverse mode uses the label GENERATED with DISABLED switching regions off.
// Non-switchable oracles report every region as enabled.
func NewDefault(inverse, switchable bool, opts ...DefaultOption) *Default {
	d := &Default{
		label:      LabelProtected,
		keyword:    KeywordEnabled,
		polarity:   KeywordEnables,
		switchable: switchable,
	}
	if inverse {
		d.label = LabelGenerated
		d.keyword = KeywordDisabled
		d.polarity = KeywordDisables
	}

	for _, opt := range opts {
		opt(d)
	}

	d.compile()

	return d
}

func (d *Default) compile() {
	label := labelPattern(d.label)

	var sb strings.Builder
	sb.WriteString(`^\s*`)
	sb.WriteString(label)
	sb.WriteString(`\s+ID\s*\(\s*`)
	sb.WriteString(qualifiedID)
	sb.WriteString(`\s*\)\s+`)
	if d.keyword != "" {
		sb.WriteString(`(?:(`)
		sb.WriteString(regexp.QuoteMeta(d.keyword))
		sb.WriteString(`)\s+)?`)
	}
	sb.WriteString(`START\s*$`)

	d.start = regexp.MustCompile(sb.String())
	d.end = regexp.MustCompile(`^\s*` + label + `\s+END\s*$`)
}

func labelPattern(label string) string {
	words := strings.Fields(label)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(words, `\s+`)
}

// Label returns the marker label.
func (d *Default) Label() string { return d.label }

// Keyword returns the switch keyword and its polarity.
func (d *Default) Keyword() (string, Polarity) { return d.keyword, d.polarity }

// Switchable reports whether the keyword affects the enabled flag.
func (d *Default) Switchable() bool { return d.switchable }

// IsMarkedRegionStart implements Oracle.
func (d *Default) IsMarkedRegionStart(comment string) bool {
	return d.start.MatchString(comment)
}

// IsMarkedRegionEnd implements Oracle.
func (d *Default) IsMarkedRegionEnd(comment string) bool {
	return d.end.MatchString(comment)
}

// ID implements Oracle.
func (d *Default) ID(start string) string {
	return idBetweenParens(start)
}

// IsEnabled implements Oracle.
func (d *Default) IsEnabled(start string) bool {
	if !d.switchable {
		return true
	}

	present := false
	if d.keyword != "" {
		if m := d.start.FindStringSubmatch(start); m != nil {
			present = m[1] != ""
		}
	}

	if d.polarity == KeywordDisables {
		return !present
	}
	return present
}
