package registry

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/yaklabco/gopreserve/pkg/parser"
)

// PathFilter selects the files a parser is responsible for.
type PathFilter interface {
	Accept(path string) bool
}

// PathFilterFunc adapts a function to PathFilter.
type PathFilterFunc func(path string) bool

// Accept implements PathFilter.
func (f PathFilterFunc) Accept(path string) bool { return f(path) }

// AcceptAll accepts every path.
//
//nolint:gochecknoglobals // Stateless filter value.
var AcceptAll PathFilter = PathFilterFunc(func(string) bool { return true })

// ExtensionFilter accepts paths ending in one of the given suffixes.
type ExtensionFilter []string

// Accept implements PathFilter.
func (f ExtensionFilter) Accept(path string) bool {
	for _, ext := range f {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// GlobFilter accepts paths matching any of its patterns.
// Patterns use "/" as separator; "**" crosses directories.
type GlobFilter struct {
	patterns []string
	globs    []glob.Glob
}

// NewGlobFilter compiles patterns into a GlobFilter.
func NewGlobFilter(patterns ...string) (*GlobFilter, error) {
	f := &GlobFilter{patterns: patterns, globs: make([]glob.Glob, 0, len(patterns))}

	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("compiling glob %q: %w", p, err)
		}
		f.globs = append(f.globs, g)
	}

	return f, nil
}

// Accept implements PathFilter. Patterns without a separator also match the base name.
func (f *GlobFilter) Accept(path string) bool {
	slashed := filepath.ToSlash(path)
	base := filepath.Base(path)

	for i, g := range f.globs {
		if g.Match(slashed) {
			return true
		}
		if !strings.Contains(f.patterns[i], "/") && g.Match(base) {
			return true
		}
	}
	return false
}

// Patterns returns the source patterns.
func (f *GlobFilter) Patterns() []string {
	return append([]string(nil), f.patterns...)
}

// anyOf accepts a path when at least one filter does.
type anyOf []PathFilter

func (a anyOf) Accept(path string) bool {
	for _, f := range a {
		if f.Accept(path) {
			return true
		}
	}
	return false
}

// Binding pairs a parser with the files it is responsible for.
type Binding struct {
	Parser *parser.Parser
	Filter PathFilter
}

// Accept reports whether the binding applies to path. A nil filter accepts all.
func (b Binding) Accept(path string) bool {
	return b.Filter == nil || b.Filter.Accept(path)
}

// AnyOf accepts a path when at least one of filters does.
func AnyOf(filters ...PathFilter) PathFilter {
	return anyOf(filters)
}
