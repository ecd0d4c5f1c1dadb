package configloader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gopreserve/pkg/config"
	"github.com/yaklabco/gopreserve/pkg/oracle"
	"github.com/yaklabco/gopreserve/pkg/parser"
)

func isolated(dir string) LoadOptions {
	return LoadOptions{
		WorkingDir:         dir,
		IgnoreSystemConfig: true,
		IgnoreUserConfig:   true,
		IgnoreEnv:          true,
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()

	result, err := Load(context.Background(), isolated(tmpDir))
	require.NoError(t, err)
	require.NotNil(t, result.Config)

	assert.Equal(t, filepath.Join(tmpDir, "gen"), result.Config.Generated)
	assert.Equal(t, tmpDir, result.Config.Output)
	assert.Equal(t, config.FormatText, result.Config.Format)
	assert.Empty(t, result.LoadedFrom)
}

func TestLoad_ProjectConfigFromSubdirectory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".gopreserve.yml"), `
generated: build/gen
output: src
parsers:
  - language: java
`)
	sub := filepath.Join(root, "src", "main")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	result, err := Load(context.Background(), isolated(sub))
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(root, ".gopreserve.yml")}, result.LoadedFrom)
	assert.Equal(t, root, result.BaseDir)
	assert.Equal(t, filepath.Join(root, "build", "gen"), result.Config.Generated)
	assert.Equal(t, filepath.Join(root, "src"), result.Config.Output)
	require.Len(t, result.Config.Parsers, 1)
}

func TestLoad_ExplicitOverridesProject(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".gopreserve.yml"), "generated: a\noutput: out\njobs: 2\n")
	explicit := filepath.Join(root, "cfg", "other.yml")
	writeFile(t, explicit, "generated: b\n")

	opts := isolated(root)
	opts.ExplicitPath = explicit

	result, err := Load(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "cfg", "b"), result.Config.Generated)
	assert.Equal(t, filepath.Join(root, "cfg", "out"), result.Config.Output)
	assert.Equal(t, 2, result.Config.Jobs)
}

func TestLoad_CLIHasHighestPrecedence(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".gopreserve.yml"), "jobs: 2\n")

	opts := isolated(root)
	opts.CLIConfig = &config.Config{Jobs: 8, DryRun: true, Format: config.FormatJSON}

	result, err := Load(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 8, result.Config.Jobs)
	assert.True(t, result.Config.DryRun)
	assert.Equal(t, config.FormatJSON, result.Config.Format)
}

func TestLoad_InvalidConfig(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".gopreserve.yml"), "parsers:\n  - language: cobol\n")

	_, err := Load(context.Background(), isolated(root))
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "parsers[0]", verr.Field)
}

func TestLoad_UnknownField(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".gopreserve.yml"), "outptu: src\n")

	_, err := Load(context.Background(), isolated(root))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load project config")
}

func TestLoad_DotEnvAndEnvironment(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".gopreserve.yml"), "jobs: 2\n")
	writeFile(t, filepath.Join(root, ".env"), "GOPRESERVE_JOBS=3\nGOPRESERVE_OUTPUT=from-dotenv\n")

	t.Setenv("GOPRESERVE_JOBS", "5")

	opts := isolated(root)
	opts.IgnoreEnv = false

	result, err := Load(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, ".env"), result.Paths.DotEnv)
	assert.Equal(t, 5, result.Config.Jobs, "process environment wins over .env")
	assert.Equal(t, filepath.Join(root, "from-dotenv"), result.Config.Output)
}

func TestLoadFromEnv_InvalidValue(t *testing.T) {
	t.Setenv("GOPRESERVE_DRY_RUN", "maybe")

	err := LoadFromEnv(config.NewConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOPRESERVE_DRY_RUN")
}

func TestLoadFromMap(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	err := LoadFromMap(cfg, map[string]string{
		"GOPRESERVE_IGNORE":          " a/** , ,b ",
		"GOPRESERVE_BACKUPS_ENABLED": "true",
		"GOPRESERVE_FOLLOW_SYMLINKS": "1",
		"UNRELATED":                  "x",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a/**", "b"}, cfg.Ignore)
	assert.True(t, cfg.Backups.IsEnabled())
	assert.True(t, cfg.FollowSymlinks)
	assert.Contains(t, ListEnvVars(), "GOPRESERVE_GENERATED")
}

func TestMerge(t *testing.T) {
	t.Parallel()

	off := false
	base := &config.Config{
		Generated: "gen",
		Output:    "out",
		Slots:     map[string]config.SlotConfig{"docs": {Output: "site", Generated: "gen-site"}},
		Ignore:    []string{"a"},
		Backups:   config.BackupsConfig{Mode: config.BackupModeSidecar},
	}
	override := &config.Config{
		Output:  "src",
		Slots:   map[string]config.SlotConfig{"docs": {Output: "public"}, "api": {Output: "api"}},
		Backups: config.BackupsConfig{Enabled: &off},
	}

	merged := MergeAll(base, override)

	assert.Equal(t, "gen", merged.Generated)
	assert.Equal(t, "src", merged.Output)
	assert.Equal(t, config.SlotConfig{Output: "public", Generated: "gen-site"}, merged.Slots["docs"])
	assert.Equal(t, "api", merged.Slots["api"].Output)
	assert.Equal(t, []string{"a"}, merged.Ignore)
	require.NotNil(t, merged.Backups.Enabled)
	assert.False(t, *merged.Backups.Enabled)
	assert.Equal(t, config.BackupModeSidecar, merged.Backups.Mode)

	assert.Nil(t, MergeAll())

	// The result does not alias its layers.
	merged.Ignore[0] = "changed"
	*merged.Backups.Enabled = true
	merged.Slots["docs"] = config.SlotConfig{}
	assert.Equal(t, []string{"a"}, base.Ignore)
	assert.False(t, off)
	assert.Equal(t, "public", override.Slots["docs"].Output)

	// An explicit empty list still replaces the base one.
	cleared := MergeAll(base, &config.Config{Ignore: []string{}})
	assert.Empty(t, cleared.Ignore)
	assert.NotNil(t, cleared.Ignore)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		cfg   func(*config.Config)
		field string
	}{
		{"format", func(c *config.Config) { c.Format = "xml" }, "format"},
		{"jobs", func(c *config.Config) { c.Jobs = -1 }, "jobs"},
		{"backup mode", func(c *config.Config) { c.Backups.Mode = "xdg" }, "backups.mode"},
		{"ignore glob", func(c *config.Config) { c.Ignore = []string{"[a"} }, "ignore[0]"},
		{"default slot", func(c *config.Config) {
			c.Slots = map[string]config.SlotConfig{"default": {Output: "x"}}
		}, "slots.default"},
		{"read unknown slot", func(c *config.Config) {
			c.Read = []config.ReadConfig{{Slot: "docs"}}
		}, "read[0].slot"},
		{"staging equals output", func(c *config.Config) { c.Generated = "./out"; c.Output = "out" }, "generated"},
		{"nameless custom parser", func(c *config.Config) {
			c.Parsers = []config.ParserConfig{{Comments: []config.CommentConfig{{Start: "#"}}}}
		}, "parsers[0]"},
		{"custom parser without files", func(c *config.Config) {
			c.Parsers = []config.ParserConfig{{Name: "m", Comments: []config.CommentConfig{{Start: "#"}}}}
		}, "parsers[0]"},
		{"bad style", func(c *config.Config) {
			c.Parsers = []config.ParserConfig{{
				Name: "m", Extensions: []string{".m"},
				Comments: []config.CommentConfig{{Start: "(*", End: "*)", Style: "spiral"}},
			}}
		}, "parsers[0]"},
		{"bad notation", func(c *config.Config) {
			c.Parsers = []config.ParserConfig{{Language: "java", Notation: &config.NotationConfig{Kind: "xml"}}}
		}, "parsers[0]"},
		{"pattern without id group", func(c *config.Config) {
			c.Parsers = []config.ParserConfig{{Language: "java", Notation: &config.NotationConfig{
				Kind: config.NotationPattern, Start: "BEGIN", End: "END",
			}}}
		}, "parsers[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.NewConfig()
			tt.cfg(cfg)

			result := Validate(cfg)
			require.False(t, result.Valid(), "expected errors")

			fields := make([]string, 0, len(result.Errors))
			for _, e := range result.Errors {
				fields = append(fields, e.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}

	t.Run("defaults are valid", func(t *testing.T) {
		t.Parallel()
		assert.True(t, Validate(config.NewConfig()).Valid())
	})
}

func TestBindings(t *testing.T) {
	t.Parallel()

	t.Run("presets by default", func(t *testing.T) {
		t.Parallel()

		bindings, err := Bindings(config.NewConfig())
		require.NoError(t, err)
		assert.Len(t, bindings, len(parser.Names()))
	})

	t.Run("preset with extra extensions and notation", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.Parsers = []config.ParserConfig{{
			Language:   "java",
			Extensions: []string{".jav"},
			Switchable: true,
			Notation:   &config.NotationConfig{Keyword: "KEEP"},
		}}

		bindings, err := Bindings(cfg)
		require.NoError(t, err)
		require.Len(t, bindings, 1)

		b := bindings[0]
		assert.Equal(t, "java", b.Parser.Name())
		assert.True(t, b.Accept("x/A.jav"))
		assert.False(t, b.Accept("x/A.java"), "explicit extensions replace the preset's")

		def, ok := b.Parser.Oracle().(*oracle.Default)
		require.True(t, ok)
		keyword, polarity := def.Keyword()
		assert.Equal(t, "KEEP", keyword)
		assert.Equal(t, oracle.KeywordEnables, polarity)
	})

	t.Run("inverse preset keeps the disabling polarity", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.Parsers = []config.ParserConfig{{
			Language:   "java",
			Inverse:    true,
			Switchable: true,
			Notation:   &config.NotationConfig{Keyword: "OFF"},
		}}

		bindings, err := Bindings(cfg)
		require.NoError(t, err)
		require.Len(t, bindings, 1)

		def, ok := bindings[0].Parser.Oracle().(*oracle.Default)
		require.True(t, ok)
		keyword, polarity := def.Keyword()
		assert.Equal(t, "OFF", keyword)
		assert.Equal(t, oracle.KeywordDisables, polarity)
	})

	t.Run("custom parser with globs", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.Parsers = []config.ParserConfig{{
			Name:     "model",
			Comments: []config.CommentConfig{{Start: "(*", End: "*)", Style: "nestable"}, {Start: "--"}},
			CData:    []config.CDataConfig{{Start: `"`, End: `"`, Escape: `\`}},
			Globs:    []string{"models/**/*.mdl"},
			Inverse:  true,
		}}

		bindings, err := Bindings(cfg)
		require.NoError(t, err)
		require.Len(t, bindings, 1)

		p := bindings[0].Parser
		assert.True(t, p.IsInverse())
		assert.Equal(t, []parser.CommentType{
			{Start: "(*", End: "*)", Style: parser.MultilineNestable},
			{Start: "--", Style: parser.Singleline},
		}, p.CommentTypes())
		assert.True(t, bindings[0].Accept("models/a/b.mdl"))
		assert.False(t, bindings[0].Accept("other/b.mdl"))
	})

	t.Run("bracket and pattern notations", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.Parsers = []config.ParserConfig{
			{Language: "xml", Notation: &config.NotationConfig{Kind: config.NotationBracket}},
			{Language: "java", Name: "java-ids", Switchable: true, Notation: &config.NotationConfig{
				Kind:  config.NotationPattern,
				Start: `\s*PROTECTED REGION\s+/\*(?P<id>[^*]+)\*/\s+(?:(?P<flag>ENABLED)\s+)?START\s*`,
				End:   `\s*PROTECTED REGION END\s*`,
			}},
		}

		bindings, err := Bindings(cfg)
		require.NoError(t, err)
		require.Len(t, bindings, 2)

		_, isBracket := bindings[0].Parser.Oracle().(oracle.Bracket)
		assert.True(t, isBracket)

		doc, err := bindings[1].Parser.Parse("a\n// PROTECTED REGION /*1234*/ ENABLED START\nb\n// PROTECTED REGION END\n")
		require.NoError(t, err)
		assert.Equal(t, []string{"1234"}, doc.MarkedIDs())
	})

	t.Run("unknown language", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.Parsers = []config.ParserConfig{{Language: "cobol"}}

		_, err := Bindings(cfg)
		require.Error(t, err)
		assert.True(t, errors.Is(err, parser.ErrUnknownLanguage))
		assert.ErrorIs(t, err, ErrInvalidParser)
	})
}

func TestFindProjectConfig_StopsAtVCSRoot(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".gopreserve.yml"), "jobs: 1\n")
	repo := filepath.Join(root, "repo")
	require.NoError(t, os.MkdirAll(filepath.Join(repo, ".git"), 0o755))

	found, err := FindProjectConfig(context.Background(), repo)
	require.NoError(t, err)
	assert.Empty(t, found)

	found, err = FindProjectConfig(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ".gopreserve.yml"), found)
}

func TestLoad_JSONProjectConfig(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".gopreserve.json"), `{
  "generated": "gen",
  "output": "out",
  "parsers": [{"language": "xml"}]
}
`)

	result, err := Load(context.Background(), isolated(root))
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(root, ".gopreserve.json")}, result.LoadedFrom)
	assert.Equal(t, filepath.Join(root, "gen"), result.Config.Generated)
	require.Len(t, result.Config.Parsers, 1)
	assert.Equal(t, "xml", result.Config.Parsers[0].Language)
}

func TestFindProjectConfig_PrefersYAML(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".gopreserve.json"), "{}\n")
	writeFile(t, filepath.Join(root, ".gopreserve.yml"), "jobs: 1\n")

	found, err := FindProjectConfig(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ".gopreserve.yml"), found)
}
