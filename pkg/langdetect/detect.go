// Package langdetect picks a parser preset for files that have no configured parser.
// It consults the preset extension table first and falls back to go-enry for file
// names, shebangs and content classification.
package langdetect

import (
	"path/filepath"

	"github.com/go-enry/go-enry/v2"

	"github.com/yaklabco/gopreserve/pkg/parser"
)

// Source names the strategy that produced a detection.
type Source string

const (
	SourceExtension  Source = "extension"
	SourceFilename   Source = "filename"
	SourceShebang    Source = "shebang"
	SourceClassifier Source = "classifier"
)

// Result is a successful detection.
type Result struct {
	// Preset is a name accepted by parser.Lookup.
	Preset string

	// Linguist is the go-enry language name, empty for extension matches.
	Linguist string

	Source Source
}

// presets maps go-enry language names to parser presets.
//
//nolint:gochecknoglobals // Static lookup table.
var presets = map[string]string{
	"C":               "c",
	"C++":             "cpp",
	"C#":              "csharp",
	"Clojure":         "clojure",
	"CSS":             "css",
	"Dockerfile":      "shell",
	"Go":              "go",
	"Haskell":         "haskell",
	"HTML":            "html",
	"Java":            "java",
	"Java Properties": "properties",
	"JavaScript":      "javascript",
	"Kotlin":          "kotlin",
	"Lua":             "lua",
	"Makefile":        "shell",
	"PHP":             "php",
	"PLSQL":           "sql",
	"PLpgSQL":         "sql",
	"Python":          "python",
	"Ruby":            "ruby",
	"Rust":            "rust",
	"Scala":           "scala",
	"Shell":           "shell",
	"SQL":             "sql",
	"Swift":           "swift",
	"TSX":             "typescript",
	"TypeScript":      "typescript",
	"XML":             "xml",
	"Xtend":           "xtend",
	"YAML":            "yaml",
}

// Detect returns the preset for a file. content may be nil, in which case only the
// name based strategies run.
func Detect(filename string, content []byte) (Result, bool) {
	if lang, ok := parser.ForExtension(filepath.Ext(filename)); ok {
		return Result{Preset: lang.Name, Source: SourceExtension}, true
	}

	base := filepath.Base(filename)

	if lang, safe := enry.GetLanguageByFilename(base); safe {
		if res, ok := mapped(lang, SourceFilename); ok {
			return res, true
		}
	}

	if lang, safe := enry.GetLanguageByExtension(base); safe {
		if res, ok := mapped(lang, SourceExtension); ok {
			return res, true
		}
	}

	if len(content) == 0 || enry.IsBinary(content) {
		return Result{}, false
	}

	if lang, safe := enry.GetLanguageByShebang(content); safe {
		if res, ok := mapped(lang, SourceShebang); ok {
			return res, true
		}
	}

	// Ambiguous extensions are settled by the classifier among their candidates.
	if candidates := enry.GetLanguagesByExtension(base, content, nil); len(candidates) > 1 {
		if lang, _ := enry.GetLanguageByClassifier(content, candidates); lang != "" {
			if res, ok := mapped(lang, SourceClassifier); ok {
				return res, true
			}
		}
	}

	return Result{}, false
}

// Preset is a convenience wrapper returning only the preset name.
func Preset(filename string, content []byte) string {
	res, ok := Detect(filename, content)
	if !ok {
		return ""
	}
	return res.Preset
}

func mapped(linguist string, source Source) (Result, bool) {
	preset, ok := presets[linguist]
	if !ok {
		return Result{}, false
	}
	return Result{Preset: preset, Linguist: linguist, Source: source}, true
}
