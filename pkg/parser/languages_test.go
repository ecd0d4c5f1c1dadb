package parser_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gopreserve/pkg/parser"
	"github.com/yaklabco/gopreserve/pkg/region"
)

func TestLanguages_AllPresetsBuild(t *testing.T) {
	t.Parallel()

	for _, lang := range parser.Languages() {
		for _, inverse := range []bool{false, true} {
			p, err := lang.New(parser.Options{Inverse: inverse})
			require.NoError(t, err, lang.Name)
			assert.Equal(t, lang.Name, p.Name())
			assert.Equal(t, inverse, p.IsInverse())
			assert.NotEmpty(t, lang.Extensions, lang.Name)
		}
	}
}

func TestLanguages_Names(t *testing.T) {
	t.Parallel()

	names := parser.Names()
	assert.True(t, sort.StringsAreSorted(names))
	for _, want := range []string{"clojure", "css", "html", "java", "javascript", "php", "ruby", "scala", "xml", "xtend", "xtext"} {
		assert.Contains(t, names, want)
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"java", "java", true},
		{" Java ", "java", true},
		{"js", "javascript", true},
		{"xtend2", "xtend", true},
		{"golang", "go", true},
		{"cobol", "", false},
	}

	for _, tc := range tests {
		lang, ok := parser.Lookup(tc.name)
		assert.Equal(t, tc.ok, ok, tc.name)
		assert.Equal(t, tc.want, lang.Name, tc.name)
	}

	_, err := parser.New("cobol", parser.Options{})
	require.ErrorIs(t, err, parser.ErrUnknownLanguage)
}

func TestForExtension(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		".java":  "java",
		".JAVA":  "java",
		".scala": "scala",
		".xml":   "xml",
		".htm":   "html",
		".go":    "go",
		".yml":   "yaml",
	}

	for ext, want := range tests {
		lang, ok := parser.ForExtension(ext)
		require.True(t, ok, ext)
		assert.Equal(t, want, lang.Name, ext)
	}

	_, ok := parser.ForExtension(".unknown")
	assert.False(t, ok)
}

func TestLanguage_Delimiters(t *testing.T) {
	t.Parallel()

	scala, ok := parser.Lookup("scala")
	require.True(t, ok)

	comments, cdata := scala.Delimiters()
	require.Len(t, comments, 2)
	assert.Equal(t, parser.MultilineNestable, comments[0].Style)
	require.NotEmpty(t, cdata)
	assert.Equal(t, `"""`, cdata[0].Start, "raw strings precede plain strings")
}

func TestMultiLanguageDocument(t *testing.T) {
	t.Parallel()

	input := "<html>\n" +
		"<!-- PROTECTED REGION ID(page.head) START -->\n" +
		"<title>t</title>\n" +
		"<!-- PROTECTED REGION END -->\n" +
		"<script>\n" +
		"// PROTECTED REGION ID(page.script) START\n" +
		"init();\n" +
		"// PROTECTED REGION END\n" +
		"</script>\n" +
		"<style>\n" +
		"/* PROTECTED REGION ID(page.style) START */ body {} /* PROTECTED REGION END */\n" +
		"</style>\n" +
		"</html>\n"

	ids := map[string][]string{}
	for _, name := range []string{"html", "javascript", "css"} {
		p, err := parser.New(name, parser.Options{})
		require.NoError(t, err)

		doc, err := p.Parse(input)
		require.NoError(t, err, name)
		assert.Equal(t, input, doc.Content())
		ids[name] = doc.MarkedIDs()
	}

	assert.Equal(t, []string{"page.head"}, ids["html"])
	assert.Equal(t, []string{"page.script", "page.style"}, ids["javascript"])
	assert.Equal(t, []string{"page.style"}, ids["css"])
}

func TestCache(t *testing.T) {
	t.Parallel()

	cache, err := parser.NewCache(2)
	require.NoError(t, err)

	java := javaParser(t, parser.Options{})
	ruby, err := parser.New("ruby", parser.Options{})
	require.NoError(t, err)

	first, err := cache.Parse(java, "a // b\n")
	require.NoError(t, err)
	second, err := cache.Parse(java, "a // b\n")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, cache.Len())

	other, err := cache.Parse(ruby, "a // b\n")
	require.NoError(t, err)
	assert.NotSame(t, first, other)
	assert.Equal(t, 2, cache.Len())

	_, err = cache.Parse(java, "a /* b")
	require.ErrorIs(t, err, parser.ErrUnterminatedComment)
	assert.Equal(t, 2, cache.Len())

	cache.Purge()
	assert.Equal(t, 0, cache.Len())

	var nilCache *parser.Cache
	doc, err := nilCache.Parse(java, "x")
	require.NoError(t, err)
	assert.IsType(t, &region.Document{}, doc)
}

func TestLineIndex(t *testing.T) {
	t.Parallel()

	li := parser.NewLineIndex("ab\ncd\r\nef\rgh")
	assert.Equal(t, 4, li.LineCount())

	tests := []struct {
		offset int
		want   parser.Position
	}{
		{0, parser.Position{Line: 1, Column: 1}},
		{2, parser.Position{Line: 1, Column: 3}},
		{3, parser.Position{Line: 2, Column: 1}},
		{7, parser.Position{Line: 3, Column: 1}},
		{10, parser.Position{Line: 4, Column: 1}},
		{12, parser.Position{Line: 4, Column: 3}},
		{99, parser.Position{Line: 4, Column: 3}},
		{-1, parser.Position{Line: 1, Column: 1}},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, li.Position(tc.offset), "offset %d", tc.offset)
	}

	span := li.Span(3, 5)
	assert.Equal(t, "between (2,1) and (2,3)", span.String())
}
