package configloader

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/yaklabco/gopreserve/pkg/config"
	"github.com/yaklabco/gopreserve/pkg/registry"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "parsers[0].language").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string
	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Message)
	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

func (r *ValidationResult) fail(field string, value any, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) warn(field string, value any, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

// oneOf joins choices for an error message.
func oneOf[T ~string](choices []T) string {
	return strings.Join(lo.Map(choices, func(c T, _ int) string { return string(c) }), ", ")
}

// Validate checks a configuration for errors and warnings.
func Validate(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	if cfg.Output == "" {
		result.fail("output", cfg.Output, "output directory must be set")
	}
	if cfg.Format != "" && !slices.Contains(config.OutputFormats(), cfg.Format) {
		result.fail("format", cfg.Format, "invalid format %q; must be one of: %s", cfg.Format, oneOf(config.OutputFormats()))
	}
	if cfg.Jobs < 0 {
		result.fail("jobs", cfg.Jobs, "jobs must be >= 0 (0 means auto)")
	}
	if cfg.Backups.Mode != "" && !slices.Contains(config.BackupModes(), cfg.Backups.Mode) {
		result.fail("backups.mode", cfg.Backups.Mode, "invalid backup mode %q; must be one of: %s",
			cfg.Backups.Mode, oneOf(config.BackupModes()))
	}

	validateSlots(cfg, result)
	validateRead(cfg, result)
	validateGlobs("ignore", cfg.Ignore, result)

	for i, pc := range cfg.Parsers {
		validateParser(fmt.Sprintf("parsers[%d]", i), pc, result)
	}

	return result
}

func validateSlots(cfg *config.Config, result *ValidationResult) {
	for name, slot := range cfg.Slots {
		field := "slots." + name
		if name == config.DefaultSlot {
			result.fail(field, name, "the default slot is configured with output and generated")
		}
		if slot.Output == "" {
			result.fail(field+".output", slot.Output, "output directory must be set")
		}
	}

	for name, out := range cfg.SlotDirs() {
		staging, ok := cfg.StagingDirs()[name]
		if ok && out != "" && filepath.Clean(staging) == filepath.Clean(out) {
			result.fail("generated", staging, "staging directory of slot %q must differ from its output directory", name)
		}
	}
}

func validateRead(cfg *config.Config, result *ValidationResult) {
	slots := cfg.SlotDirs()
	for i, rc := range cfg.Read {
		slot := rc.Slot
		if slot == "" {
			slot = config.DefaultSlot
		}
		if _, ok := slots[slot]; !ok {
			result.fail(fmt.Sprintf("read[%d].slot", i), rc.Slot, "unknown slot %q", rc.Slot)
		}
		if filepath.IsAbs(rc.Path) {
			result.warn(fmt.Sprintf("read[%d].path", i), rc.Path, "absolute path ignores the slot directory")
		}
	}
}

func validateGlobs(field string, patterns []string, result *ValidationResult) {
	for i, pattern := range patterns {
		if _, err := registry.NewGlobFilter(pattern); err != nil {
			result.fail(fmt.Sprintf("%s[%d]", field, i), pattern, "invalid glob pattern: %v", err)
		}
	}
}

func validateParser(field string, pc config.ParserConfig, result *ValidationResult) {
	if pc.Language == "" && pc.Name == "" {
		result.fail(field, nil, "a parser needs a language or a name")
		return
	}
	if pc.Language == "" && len(pc.Comments) == 0 {
		result.fail(field+".comments", nil, "custom parsers need at least one comment type")
	}
	if pc.Language == "" && len(pc.Extensions) == 0 && len(pc.Globs) == 0 {
		result.fail(field, nil, "custom parsers need extensions or globs")
	}

	for i, ext := range pc.Extensions {
		if ext == "" {
			result.fail(fmt.Sprintf("%s.extensions[%d]", field, i), ext, "extension must not be empty")
		} else if !strings.HasPrefix(ext, ".") {
			result.warn(fmt.Sprintf("%s.extensions[%d]", field, i), ext, "extension %q matches any path suffix", ext)
		}
	}
	validateGlobs(field+".globs", pc.Globs, result)

	if pc.Notation != nil && pc.Notation.Kind == config.NotationBracket && pc.Switchable {
		result.warn(field+".switchable", true, "bracket notation regions are always enabled")
	}

	// Building the parser catches unknown languages, styles, polarities and patterns.
	if _, _, err := BuildParser(pc); err != nil {
		result.fail(field, pc.DisplayName(), "%v", err)
	}
}

// ValidateWithFile validates configuration and includes file path in errors.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)
	for _, findings := range [][]ValidationError{result.Errors, result.Warnings} {
		for i := range findings {
			findings[i].FilePath = filePath
		}
	}
	return result
}
