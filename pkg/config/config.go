// Package config defines core configuration types for gopreserve.
// These types are pure data structures; loading and validation live in internal/configloader.
package config

import "sort"

// OutputFormat specifies how results are reported.
type OutputFormat string

const (
	FormatText    OutputFormat = "text"
	FormatTable   OutputFormat = "table"
	FormatJSON    OutputFormat = "json"
	FormatDiff    OutputFormat = "diff"
	FormatSummary OutputFormat = "summary"
)

// OutputFormats returns every output format, in display order.
func OutputFormats() []OutputFormat {
	return []OutputFormat{FormatText, FormatTable, FormatJSON, FormatDiff, FormatSummary}
}

// NotationKind selects the marker grammar of a parser.
type NotationKind string

const (
	// NotationDefault is "PROTECTED REGION ID(x) START" / "PROTECTED REGION END".
	NotationDefault NotationKind = "default"

	// NotationBracket is "$(x)-{" / "}-$".
	NotationBracket NotationKind = "bracket"

	// NotationPattern uses the Start and End regular expressions.
	NotationPattern NotationKind = "pattern"
)

// Polarity names accepted in configuration files.
const (
	PolarityEnables  = "enables"
	PolarityDisables = "disables"
)

// Backup modes.
const (
	BackupModeSidecar = "sidecar"
	BackupModeNone    = "none"
)

// BackupModes returns every backup mode.
func BackupModes() []string {
	return []string{BackupModeSidecar, BackupModeNone}
}

// DefaultSlot is the slot name of Output and Generated.
const DefaultSlot = "default"

// NotationConfig describes how marked region start and end comments look.
type NotationConfig struct {
	Kind NotationKind `yaml:"kind"`

	// Label replaces "PROTECTED REGION" (or "GENERATED" for inverse parsers).
	Label string `yaml:"label,omitempty"`

	// Keyword is the optional word before START that switches a region.
	Keyword string `yaml:"keyword,omitempty"`

	// Polarity is "enables" or "disables": what the keyword's presence means.
	Polarity string `yaml:"polarity,omitempty"`

	// Start and End are anchored regular expressions for pattern notations.
	// Start must have a named group "id" and may have a group "flag".
	Start string `yaml:"start,omitempty"`
	End   string `yaml:"end,omitempty"`
}

// CommentConfig is a comment syntax of a custom parser.
type CommentConfig struct {
	Start string `yaml:"start"`
	End   string `yaml:"end,omitempty"`

	// Style is "multiline", "nestable" or "singleline". Empty means singleline when
	// End is empty and multiline otherwise.
	Style string `yaml:"style,omitempty"`
}

// CDataConfig is a string or literal syntax that can contain comment delimiters.
type CDataConfig struct {
	Start  string `yaml:"start"`
	End    string `yaml:"end"`
	Escape string `yaml:"escape,omitempty"`
}

// ParserConfig configures one parser and the files it applies to.
type ParserConfig struct {
	// Name identifies the parser in messages. Defaults to Language.
	Name string `yaml:"name,omitempty"`

	// Language selects a built-in preset. Comments and CData extend or replace it.
	Language string `yaml:"language,omitempty"`

	Comments []CommentConfig `yaml:"comments,omitempty"`
	CData    []CDataConfig   `yaml:"cdata,omitempty"`

	// Extensions and Globs select files. With neither, the preset's extensions apply.
	Extensions []string `yaml:"extensions,omitempty"`
	Globs      []string `yaml:"globs,omitempty"`

	Inverse    bool `yaml:"inverse,omitempty"`
	Switchable bool `yaml:"switchable,omitempty"`

	Notation *NotationConfig `yaml:"notation,omitempty"`
}

// DisplayName returns Name, falling back to Language.
func (p ParserConfig) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Language
}

// SlotConfig is a named output directory with an optional staging directory.
type SlotConfig struct {
	Output    string `yaml:"output"`
	Generated string `yaml:"generated,omitempty"`
}

// ReadConfig names a directory to collect regions from.
type ReadConfig struct {
	Path string `yaml:"path,omitempty"`
	Slot string `yaml:"slot,omitempty"`
}

// BackupsConfig controls backups of overwritten output files.
type BackupsConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Mode    string `yaml:"mode,omitempty"`
}

// IsEnabled reports whether backups are on. Unset means off.
func (b BackupsConfig) IsEnabled() bool {
	return b.Enabled != nil && *b.Enabled
}

// Config is the root configuration structure for gopreserve.
type Config struct {
	// Generated is the staging directory the generator writes into.
	Generated string `yaml:"generated"`

	// Output is the directory of the default slot.
	Output string `yaml:"output"`

	// Slots are additional named output directories.
	Slots map[string]SlotConfig `yaml:"slots,omitempty"`

	// Read lists where regions are collected from. Empty means every slot root.
	Read []ReadConfig `yaml:"read,omitempty"`

	// Parsers are consulted in order. Empty means every built-in preset.
	Parsers []ParserConfig `yaml:"parsers,omitempty"`

	// Ignore contains glob patterns for files and directories to skip.
	Ignore []string `yaml:"ignore,omitempty"`

	Backups BackupsConfig `yaml:"backups,omitempty"`

	// Jobs is the number of parallel workers. 0 means one per CPU.
	Jobs int `yaml:"jobs,omitempty"`

	FollowSymlinks bool `yaml:"follow_symlinks,omitempty"`

	// CLI-level options (not persisted to config files).

	DryRun bool         `yaml:"-"`
	Format OutputFormat `yaml:"-"`
	Watch  bool         `yaml:"-"`
}

// NewConfig returns a Config with defaults.
func NewConfig() *Config {
	return &Config{
		Generated: "gen",
		Output:    ".",
		Backups:   BackupsConfig{Mode: BackupModeSidecar},
		Format:    FormatText,
	}
}

// SlotDirs returns the output directory of every slot, including the default slot.
func (c *Config) SlotDirs() map[string]string {
	out := make(map[string]string, len(c.Slots)+1)
	for name, slot := range c.Slots {
		out[name] = slot.Output
	}
	out[DefaultSlot] = c.Output
	return out
}

// StagingDirs returns the staging directory of every slot that has one.
func (c *Config) StagingDirs() map[string]string {
	out := make(map[string]string, len(c.Slots)+1)
	for name, slot := range c.Slots {
		if slot.Generated != "" {
			out[name] = slot.Generated
		}
	}
	if c.Generated != "" {
		out[DefaultSlot] = c.Generated
	}
	return out
}

// ReadTargets returns Read, or one entry per slot root when Read is empty.
func (c *Config) ReadTargets() []ReadConfig {
	if len(c.Read) > 0 {
		return c.Read
	}
	names := make([]string, 0, len(c.Slots))
	for name := range c.Slots {
		if name != DefaultSlot {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	targets := []ReadConfig{{Slot: DefaultSlot}}
	for _, name := range names {
		targets = append(targets, ReadConfig{Slot: name})
	}
	return targets
}
