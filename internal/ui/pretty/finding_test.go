package pretty_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/gopreserve/internal/ui/pretty"
	"github.com/yaklabco/gopreserve/pkg/diff"
	"github.com/yaklabco/gopreserve/pkg/generate"
	"github.com/yaklabco/gopreserve/pkg/inspect"
	"github.com/yaklabco/gopreserve/pkg/parser"
	"github.com/yaklabco/gopreserve/pkg/registry"
)

func TestFormatFinding(t *testing.T) {
	styles := pretty.NewStyles(false)

	span := parser.Span{Start: parser.Position{Line: 3, Column: 5}}
	result := styles.FormatFinding(inspect.Finding{
		File:     "/abs/A.java",
		Kind:     inspect.KindGlobalDuplicate,
		Severity: inspect.SeverityError,
		Message:  `duplicate region id "x"`,
		Span:     &span,
		Others:   []string{"B.java", "C.java"},
	}, "A.java")

	assert.Contains(t, result, "A.java:3:5")
	assert.NotContains(t, result, "/abs/")
	assert.Contains(t, result, "error")
	assert.Contains(t, result, `duplicate region id "x"`)
	assert.Contains(t, result, "(global-duplicate)")
	assert.Contains(t, result, "also in: B.java, C.java")
}

func TestFormatFinding_NoSpan(t *testing.T) {
	styles := pretty.NewStyles(false)

	result := styles.FormatFinding(inspect.Finding{
		Kind:     inspect.KindUnreadable,
		Severity: inspect.SeverityWarning,
		Message:  "permission denied",
	}, "secret.java")

	assert.Contains(t, result, "  secret.java  warning  permission denied  (unreadable)")
}

func TestFormatSeverity(t *testing.T) {
	styles := pretty.NewStyles(false)

	tests := []struct {
		severity inspect.Severity
		want     string
	}{
		{inspect.SeverityError, "error"},
		{inspect.SeverityWarning, "warning"},
		{inspect.Severity("custom"), "custom"},
	}

	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			assert.Equal(t, tt.want, styles.FormatSeverity(tt.severity))
		})
	}
}

func TestFormatRegion(t *testing.T) {
	styles := pretty.NewStyles(false)

	result := styles.FormatRegion(inspect.Region{
		ID:      "a.body",
		Parser:  "java",
		Enabled: true,
		Start:   parser.Position{Line: 2, Column: 3},
		End:     parser.Position{Line: 5, Column: 1},
	})

	assert.Equal(t, "  2:3-5:1  a.body  enabled  (java)\n", result)
}

func TestFormatFileHeader(t *testing.T) {
	styles := pretty.NewStyles(false)

	assert.Equal(t, "A.java", styles.FormatFileHeader("A.java", 0, "region"))
	assert.Equal(t, "A.java (1 region)", styles.FormatFileHeader("A.java", 1, "region"))
	assert.Equal(t, "A.java (3 regions)", styles.FormatFileHeader("A.java", 3, "region"))
}

func TestFormatFileResult(t *testing.T) {
	styles := pretty.NewStyles(false)

	tests := []struct {
		name string
		fr   *generate.FileResult
		want string
	}{
		{
			name: "created",
			fr:   &generate.FileResult{Written: true, Created: true},
			want: "  A.java  created\n",
		},
		{
			name: "updated with regions",
			fr: &generate.FileResult{
				Written: true,
				Merge:   &registry.MergeResult{Preserved: []string{"a", "b"}, Filled: []string{"c"}},
			},
			want: "  A.java  updated  (2 preserved, 1 filled)\n",
		},
		{
			name: "pending diff",
			fr: &generate.FileResult{
				Pending: true,
				Diff:    &diff.Unified{Hunks: []diff.Hunk{{}}, Added: 2, Removed: 1},
			},
			want: "  A.java  changes pending  (+2 -1)\n",
		},
		{
			name: "skipped",
			fr:   &generate.FileResult{Skipped: true, SkipReason: "output modified during processing"},
			want: "  A.java  skipped: output modified during processing\n",
		},
		{
			name: "unchanged",
			fr:   &generate.FileResult{Unchanged: true},
			want: "  A.java  unchanged\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, styles.FormatFileResult(tt.fr, "A.java"))
		})
	}
}

func TestFormatFileError(t *testing.T) {
	styles := pretty.NewStyles(false)

	result := styles.FormatFileError("A.java", errors.New("boom"))
	assert.Equal(t, "  A.java  error: boom\n", result)
}
