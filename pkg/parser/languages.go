package parser

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/yaklabco/gopreserve/pkg/oracle"
)

// ErrUnknownLanguage indicates a language preset that does not exist.
var ErrUnknownLanguage = errors.New("unknown language")

// Options customize a language preset.
type Options struct {
	// Oracle overrides the default oracle.
	Oracle oracle.Oracle

	// Inverse selects fill-in mode.
	Inverse bool

	// Switchable lets the default oracle read the enabled flag.
	Switchable bool
}

// Language is a named set of delimiters for a host language.
type Language struct {
	Name       string
	Extensions []string
	configure  func(*Builder)
}

// New builds a parser for the language.
func (l Language) New(opts Options) (*Parser, error) {
	b := NewBuilder().Name(l.Name).Inverse(opts.Inverse).Switchable(opts.Switchable)
	if opts.Oracle != nil {
		b.UseOracle(opts.Oracle)
	}
	l.configure(b)
	return b.Build()
}

// Configure adds the language's delimiters to b, so presets can be extended.
func (l Language) Configure(b *Builder) *Builder {
	l.configure(b)
	return b
}

// Delimiters returns the comment and character data types of the language.
func (l Language) Delimiters() ([]CommentType, []CDataType) {
	b := NewBuilder()
	l.configure(b)
	return b.comments, b.cdata
}

func cStyle(b *Builder) {
	b.AddComment("/*", "*/").AddLineComment("//")
}

func quoted(b *Builder) {
	b.IgnoreEscapedCData(`"`, `"`, `\`).IgnoreEscapedCData(`'`, `'`, `\`)
}

func markup(b *Builder) {
	b.AddComment("<!--", "-->").
		IgnoreCData("<![CDATA[", "]]>").
		IgnoreCData(`"`, `"`).
		IgnoreCData(`'`, `'`)
}

//nolint:gochecknoglobals // Static preset table.
var languages = []Language{
	{Name: "c", Extensions: []string{".c", ".h"}, configure: func(b *Builder) {
		cStyle(b)
		quoted(b)
	}},
	{Name: "clojure", Extensions: []string{".clj", ".cljs", ".cljc", ".edn"}, configure: func(b *Builder) {
		b.AddLineComment(";").IgnoreEscapedCData(`"`, `"`, `\`)
	}},
	{Name: "cpp", Extensions: []string{".cc", ".cpp", ".cxx", ".hh", ".hpp"}, configure: func(b *Builder) {
		cStyle(b)
		quoted(b)
	}},
	{Name: "csharp", Extensions: []string{".cs"}, configure: func(b *Builder) {
		cStyle(b)
		quoted(b)
	}},
	{Name: "css", Extensions: []string{".css"}, configure: func(b *Builder) {
		b.AddComment("/*", "*/").IgnoreEscapedCData(`"`, `"`, `\`)
	}},
	{Name: "go", Extensions: []string{".go"}, configure: func(b *Builder) {
		cStyle(b)
		b.IgnoreCData("`", "`")
		quoted(b)
	}},
	{Name: "haskell", Extensions: []string{".hs"}, configure: func(b *Builder) {
		b.AddNestableComment("{-", "-}").AddLineComment("--").IgnoreEscapedCData(`"`, `"`, `\`)
	}},
	{Name: "html", Extensions: []string{".html", ".htm", ".xhtml"}, configure: markup},
	{Name: "java", Extensions: []string{".java"}, configure: func(b *Builder) {
		cStyle(b)
		quoted(b)
	}},
	{Name: "javascript", Extensions: []string{".js", ".mjs", ".cjs"}, configure: func(b *Builder) {
		cStyle(b)
		quoted(b)
	}},
	{Name: "kotlin", Extensions: []string{".kt", ".kts"}, configure: func(b *Builder) {
		b.AddNestableComment("/*", "*/").AddLineComment("//").IgnoreCData(`"""`, `"""`)
		quoted(b)
	}},
	{Name: "lua", Extensions: []string{".lua"}, configure: func(b *Builder) {
		b.AddComment("--[[", "]]").AddLineComment("--").IgnoreCData("[[", "]]")
		quoted(b)
	}},
	{Name: "php", Extensions: []string{".php"}, configure: func(b *Builder) {
		cStyle(b)
		b.AddLineComment("#")
		quoted(b)
	}},
	{Name: "properties", Extensions: []string{".properties"}, configure: func(b *Builder) {
		b.AddLineComment("#").AddLineComment("!")
	}},
	{Name: "python", Extensions: []string{".py", ".pyi"}, configure: func(b *Builder) {
		b.AddLineComment("#").IgnoreCData(`"""`, `"""`).IgnoreCData(`'''`, `'''`)
		quoted(b)
	}},
	{Name: "ruby", Extensions: []string{".rb"}, configure: func(b *Builder) {
		b.AddLineComment("#")
		quoted(b)
	}},
	{Name: "rust", Extensions: []string{".rs"}, configure: func(b *Builder) {
		b.AddNestableComment("/*", "*/").AddLineComment("//").IgnoreEscapedCData(`"`, `"`, `\`)
	}},
	{Name: "scala", Extensions: []string{".scala", ".sc"}, configure: func(b *Builder) {
		b.AddNestableComment("/*", "*/").AddLineComment("//").IgnoreCData(`"""`, `"""`)
		quoted(b)
	}},
	{Name: "shell", Extensions: []string{".sh", ".bash", ".zsh"}, configure: func(b *Builder) {
		b.AddLineComment("#").IgnoreEscapedCData(`"`, `"`, `\`).IgnoreCData(`'`, `'`)
	}},
	{Name: "sql", Extensions: []string{".sql"}, configure: func(b *Builder) {
		b.AddComment("/*", "*/").AddLineComment("--").IgnoreCData(`'`, `'`)
	}},
	{Name: "swift", Extensions: []string{".swift"}, configure: func(b *Builder) {
		b.AddNestableComment("/*", "*/").AddLineComment("//").IgnoreCData(`"""`, `"""`).
			IgnoreEscapedCData(`"`, `"`, `\`)
	}},
	{Name: "typescript", Extensions: []string{".ts", ".tsx", ".mts"}, configure: func(b *Builder) {
		cStyle(b)
		b.IgnoreEscapedCData("`", "`", `\`)
		quoted(b)
	}},
	{Name: "xml", Extensions: []string{".xml", ".xsd", ".xsl", ".svg", ".pom"}, configure: markup},
	{Name: "xtend", Extensions: []string{".xtend"}, configure: func(b *Builder) {
		cStyle(b)
		b.IgnoreCData("'''", "'''")
		quoted(b)
	}},
	{Name: "xtext", Extensions: []string{".xtext"}, configure: func(b *Builder) {
		cStyle(b)
		quoted(b)
	}},
	{Name: "yaml", Extensions: []string{".yaml", ".yml"}, configure: func(b *Builder) {
		b.AddLineComment("#").IgnoreEscapedCData(`"`, `"`, `\`)
	}},
}

//nolint:gochecknoglobals // Alternative spellings accepted in configuration files.
var languageAliases = map[string]string{
	"js":     "javascript",
	"ts":     "typescript",
	"c++":    "cpp",
	"c#":     "csharp",
	"golang": "go",
	"bash":   "shell",
	"sh":     "shell",
	"yml":    "yaml",
	"xtend2": "xtend",
	"py":     "python",
	"rb":     "ruby",
	"kt":     "kotlin",
}

// Lookup returns the language preset with the given name or alias.
func Lookup(name string) (Language, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := languageAliases[key]; ok {
		key = alias
	}

	for _, lang := range languages {
		if lang.Name == key {
			return lang, true
		}
	}

	return Language{}, false
}

// ForExtension returns the first language preset claiming ext (with leading dot).
func ForExtension(ext string) (Language, bool) {
	ext = strings.ToLower(ext)
	for _, lang := range languages {
		for _, e := range lang.Extensions {
			if e == ext {
				return lang, true
			}
		}
	}
	return Language{}, false
}

// Languages returns all presets sorted by name.
func Languages() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the preset names in sorted order.
func Names() []string {
	names := make([]string, 0, len(languages))
	for _, lang := range languages {
		names = append(names, lang.Name)
	}
	sort.Strings(names)
	return names
}

// New builds a parser for the named language preset.
func New(name string, opts Options) (*Parser, error) {
	lang, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLanguage, name)
	}
	return lang.New(opts)
}
