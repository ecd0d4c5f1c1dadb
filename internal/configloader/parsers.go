package configloader

import (
	"errors"
	"fmt"

	"github.com/yaklabco/gopreserve/pkg/config"
	"github.com/yaklabco/gopreserve/pkg/oracle"
	"github.com/yaklabco/gopreserve/pkg/parser"
	"github.com/yaklabco/gopreserve/pkg/registry"
)

// ErrInvalidParser indicates a parser entry that cannot be built.
var ErrInvalidParser = errors.New("invalid parser configuration")

// Bindings builds the configured parsers with their file filters, in order.
// Without configured parsers every built-in language is bound to its extensions.
func Bindings(cfg *config.Config) ([]registry.Binding, error) {
	if len(cfg.Parsers) == 0 {
		return PresetBindings()
	}

	bindings := make([]registry.Binding, 0, len(cfg.Parsers))
	for i, pc := range cfg.Parsers {
		b, err := BuildBinding(pc)
		if err != nil {
			return nil, fmt.Errorf("parsers[%d]: %w", i, err)
		}
		bindings = append(bindings, b)
	}
	return bindings, nil
}

// PresetBindings binds every built-in language to its extensions.
func PresetBindings() ([]registry.Binding, error) {
	langs := parser.Languages()
	bindings := make([]registry.Binding, 0, len(langs))
	for _, lang := range langs {
		p, err := lang.New(parser.Options{})
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidParser, lang.Name, err)
		}
		bindings = append(bindings, registry.Binding{
			Parser: p,
			Filter: registry.ExtensionFilter(lang.Extensions),
		})
	}
	return bindings, nil
}

// BuildBinding builds one parser entry.
func BuildBinding(pc config.ParserConfig) (registry.Binding, error) {
	p, lang, err := BuildParser(pc)
	if err != nil {
		return registry.Binding{}, err
	}

	filter, err := buildFilter(pc, lang)
	if err != nil {
		return registry.Binding{}, err
	}

	return registry.Binding{Parser: p, Filter: filter}, nil
}

// BuildParser builds the parser of one entry and returns the preset it extends, if any.
func BuildParser(pc config.ParserConfig) (*parser.Parser, *parser.Language, error) {
	b := parser.NewBuilder().
		Name(pc.DisplayName()).
		Inverse(pc.Inverse).
		Switchable(pc.Switchable)

	var lang *parser.Language
	if pc.Language != "" {
		l, ok := parser.Lookup(pc.Language)
		if !ok {
			return nil, nil, fmt.Errorf("%w: %w: %s", ErrInvalidParser, parser.ErrUnknownLanguage, pc.Language)
		}
		lang = &l
		l.Configure(b)
	}

	for _, c := range pc.Comments {
		ct, err := commentType(c)
		if err != nil {
			return nil, nil, err
		}
		b.AddCommentType(ct)
	}
	for _, c := range pc.CData {
		b.IgnoreEscapedCData(c.Start, c.End, c.Escape)
	}

	if pc.Notation != nil {
		o, err := buildOracle(*pc.Notation, pc.Inverse, pc.Switchable)
		if err != nil {
			return nil, nil, err
		}
		if o != nil {
			b.UseOracle(o)
		}
	}

	p, err := b.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", ErrInvalidParser, pc.DisplayName(), err)
	}
	return p, lang, nil
}

func commentType(c config.CommentConfig) (parser.CommentType, error) {
	style := parser.Singleline
	if c.End != "" {
		style = parser.Multiline
	}
	if c.Style != "" {
		s, ok := parser.ParseStyle(c.Style)
		if !ok {
			return parser.CommentType{}, fmt.Errorf("%w: unknown comment style %q", ErrInvalidParser, c.Style)
		}
		style = s
	}
	return parser.CommentType{Start: c.Start, End: c.End, Style: style}, nil
}

// buildOracle returns nil when the notation does not change the builder's default.
func buildOracle(n config.NotationConfig, inverse, switchable bool) (oracle.Oracle, error) {
	switch n.Kind {
	case "", config.NotationDefault:
		var opts []oracle.DefaultOption
		if n.Label != "" {
			opts = append(opts, oracle.WithLabel(n.Label))
		}
		if n.Keyword != "" || n.Polarity != "" {
			def := oracle.NewDefault(inverse, switchable)
			keyword, polarity := def.Keyword()
			if n.Keyword != "" {
				keyword = n.Keyword
			}
			if n.Polarity != "" {
				p, ok := oracle.ParsePolarity(n.Polarity)
				if !ok {
					return nil, fmt.Errorf("%w: unknown polarity %q", ErrInvalidParser, n.Polarity)
				}
				polarity = p
			}
			opts = append(opts, oracle.WithKeyword(keyword, polarity))
		}
		if len(opts) == 0 {
			return nil, nil
		}
		return oracle.NewDefault(inverse, switchable, opts...), nil

	case config.NotationBracket:
		return oracle.Bracket{}, nil

	case config.NotationPattern:
		polarity := defaultPolarity(inverse)
		if n.Polarity != "" {
			p, ok := oracle.ParsePolarity(n.Polarity)
			if !ok {
				return nil, fmt.Errorf("%w: unknown polarity %q", ErrInvalidParser, n.Polarity)
			}
			polarity = p
		}
		o, err := oracle.NewPattern(oracle.PatternConfig{
			Start:      n.Start,
			End:        n.End,
			Polarity:   polarity,
			Switchable: switchable,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidParser, err)
		}
		return o, nil

	default:
		return nil, fmt.Errorf("%w: unknown notation kind %q", ErrInvalidParser, n.Kind)
	}
}

func defaultPolarity(inverse bool) oracle.Polarity {
	if inverse {
		return oracle.KeywordDisables
	}
	return oracle.KeywordEnables
}

func buildFilter(pc config.ParserConfig, lang *parser.Language) (registry.PathFilter, error) {
	var filters []registry.PathFilter

	if len(pc.Extensions) > 0 {
		filters = append(filters, registry.ExtensionFilter(pc.Extensions))
	}
	if len(pc.Globs) > 0 {
		g, err := registry.NewGlobFilter(pc.Globs...)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidParser, err)
		}
		filters = append(filters, g)
	}

	switch {
	case len(filters) == 1:
		return filters[0], nil
	case len(filters) > 1:
		return registry.AnyOf(filters...), nil
	case lang != nil:
		return registry.ExtensionFilter(lang.Extensions), nil
	default:
		return nil, fmt.Errorf("%w: %s: custom parsers need extensions or globs", ErrInvalidParser, pc.DisplayName())
	}
}
