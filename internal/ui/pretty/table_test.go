package pretty_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gopreserve/internal/ui/pretty"
	"github.com/yaklabco/gopreserve/pkg/generate"
	"github.com/yaklabco/gopreserve/pkg/inspect"
	"github.com/yaklabco/gopreserve/pkg/parser"
)

func newTable(width int) *pretty.TableFormatter {
	return pretty.NewTableFormatter(pretty.NewStyles(false), false, width)
}

func TestFormatTable(t *testing.T) {
	table := newTable(80)

	out := table.FormatTable([]string{"NAME", "VALUE"}, []pretty.TableRow{
		{Cells: []string{"alpha", "1"}, Group: "a"},
		{Cells: []string{"beta", "22"}, Group: "a"},
		{Cells: []string{"gamma", "333"}, Group: "b"},
	}, 1)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, " NAME   VALUE", lines[0])
	assert.Equal(t, strings.Repeat("=", 15), lines[1])
	assert.Equal(t, " alpha  1", lines[2])
	assert.Equal(t, " beta   22", lines[3])
	assert.Equal(t, strings.Repeat("-", 15), lines[4])
	assert.Equal(t, " gamma  333", lines[5])
	assert.Equal(t, strings.Repeat("=", 15), lines[6])
}

func TestFormatTable_Empty(t *testing.T) {
	assert.Empty(t, newTable(80).FormatTable([]string{"A"}, nil, 0))
}

func TestFormatTable_Truncates(t *testing.T) {
	table := newTable(40)

	long := strings.Repeat("x", 60)
	path := "very/deep/directory/structure/with/File.java"
	out := table.FormatTable([]string{"FILE", "MESSAGE"}, []pretty.TableRow{
		{Cells: []string{path, long}},
	}, 1, 0)

	assert.Contains(t, out, "...")
	assert.Contains(t, out, "File.java")
	assert.NotContains(t, out, long)
}

func TestFormatRegionTable(t *testing.T) {
	table := newTable(100)

	report := &inspect.Report{
		Regions: []inspect.Region{
			{ID: "a.one", File: "/p/A.java", Parser: "java", Enabled: true, Start: parser.Position{Line: 2, Column: 3}},
			{ID: "b.one", File: "/p/B.java", Parser: "java", Start: parser.Position{Line: 7, Column: 1}},
		},
	}

	out := table.FormatRegionTable(report, filepath.Base)

	assert.Contains(t, out, "FILE")
	assert.Contains(t, out, "PARSER")
	assert.Contains(t, out, "A.java")
	assert.Contains(t, out, "2:3")
	assert.Contains(t, out, "a.one")
	assert.Contains(t, out, "enabled")
	assert.Contains(t, out, "disabled")
	assert.Contains(t, out, "Legend:")
	assert.NotContains(t, out, "/p/")

	assert.Empty(t, table.FormatRegionTable(&inspect.Report{}, filepath.Base))
}

func TestFormatApplyTable(t *testing.T) {
	table := newTable(100)

	results := []*generate.Result{{
		Slot: "default",
		Files: []generate.FileOutcome{
			{Job: generate.Job{RelPath: "A.java"}, Result: &generate.FileResult{Target: "A.java", Written: true, Created: true}},
			{Job: generate.Job{RelPath: "B.java"}, Error: errors.New("boom")},
		},
	}}

	out := table.FormatApplyTable(results, func(p string) string { return p })

	assert.Contains(t, out, "SLOT")
	assert.Contains(t, out, "default")
	assert.Contains(t, out, "created")
	assert.Contains(t, out, "error: boom")
}

func TestFormatLanguageTable(t *testing.T) {
	table := newTable(120)

	lang, ok := parser.Lookup("java")
	require.True(t, ok)

	out := table.FormatLanguageTable([]parser.Language{lang})
	assert.Contains(t, out, "java")
	assert.Contains(t, out, ".java")
	assert.Contains(t, out, "DELIMITERS")
}
