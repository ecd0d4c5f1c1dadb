// Package configloader provides configuration loading and resolution.
// It implements XDG-compliant configuration discovery, hierarchical merging,
// environment variable and .env support, validation, and the translation of
// parser entries into registry bindings.
package configloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yaklabco/gopreserve/pkg/config"
)

// LoadOptions controls configuration loading behavior.
type LoadOptions struct {
	// WorkingDir is the directory to search from for project config.
	// Defaults to current working directory if empty.
	WorkingDir string

	// ExplicitPath is an explicit config file path (from --config flag).
	ExplicitPath string

	IgnoreSystemConfig  bool
	IgnoreUserConfig    bool
	IgnoreProjectConfig bool

	// IgnoreEnv skips GOPRESERVE_* variables and the .env file.
	IgnoreEnv bool

	// CLIConfig contains configuration from CLI flags.
	// These take highest precedence.
	CLIConfig *config.Config
}

// LoadResult contains the resolved configuration and metadata.
type LoadResult struct {
	// Config is the final merged configuration.
	Config *config.Config

	// Paths contains the discovered configuration file paths.
	Paths *ConfigPaths

	// LoadedFrom lists the files that were actually loaded (in order).
	LoadedFrom []string

	// BaseDir is the directory relative config paths were resolved against.
	BaseDir string

	// Warnings contains non-fatal issues encountered during loading.
	Warnings []string
}

// Load resolves the final configuration by merging all sources.
// Precedence (highest to lowest):
//  1. CLI flags (opts.CLIConfig)
//  2. Environment variables (GOPRESERVE_*), then the .env file
//  3. Explicit config file (opts.ExplicitPath)
//  4. Project config (.gopreserve.yml upward search)
//  5. User config ($XDG_CONFIG_HOME/gopreserve/config.yaml)
//  6. System config (/etc/gopreserve/config.yaml)
//  7. Defaults
//
// Relative directories are resolved against the directory of the project or explicit
// config file, or against WorkingDir when no such file was loaded.
func Load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	workDir := opts.WorkingDir
	if workDir == "" {
		var err error
		workDir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
	}
	workDir, err := filepath.Abs(workDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	paths, err := DiscoverPaths(ctx, workDir)
	if err != nil {
		return nil, fmt.Errorf("discover paths: %w", err)
	}
	paths.Explicit = opts.ExplicitPath

	result := &LoadResult{Paths: paths, BaseDir: workDir}
	cfg := config.NewConfig()

	layers := []struct {
		path    string
		skip    bool
		label   string
		setBase bool
	}{
		{paths.System, opts.IgnoreSystemConfig, "system", false},
		{paths.User, opts.IgnoreUserConfig, "user", false},
		{paths.Project, opts.IgnoreProjectConfig, "project", true},
		{paths.Explicit, false, "explicit", true},
	}

	for _, layer := range layers {
		if layer.skip || layer.path == "" {
			continue
		}

		layerCfg, err := loadConfigFile(layer.path)
		if err != nil {
			return nil, fmt.Errorf("load %s config: %w", layer.label, err)
		}

		validation := ValidateWithFile(layerCfg, layer.path)
		for _, w := range validation.Warnings {
			result.Warnings = append(result.Warnings, w.Error())
		}

		cfg = merge(cfg, layerCfg)
		result.LoadedFrom = append(result.LoadedFrom, layer.path)

		if layer.setBase {
			abs, err := filepath.Abs(filepath.Dir(layer.path))
			if err != nil {
				return nil, fmt.Errorf("resolve config directory: %w", err)
			}
			result.BaseDir = abs
		}
	}

	if !opts.IgnoreEnv {
		dotEnv, err := ReadDotEnv(paths.DotEnv)
		if err != nil {
			return nil, fmt.Errorf("load environment: %w", err)
		}
		if err := LoadFromMap(cfg, dotEnv); err != nil {
			return nil, fmt.Errorf("load environment: %w", err)
		}
		if err := LoadFromEnv(cfg); err != nil {
			return nil, fmt.Errorf("load environment: %w", err)
		}
	}

	if opts.CLIConfig != nil {
		cfg = merge(cfg, opts.CLIConfig)
	}

	// Warnings were already collected per file.
	validation := Validate(cfg)
	if !validation.Valid() {
		return nil, &validation.Errors[0]
	}

	resolveDirs(cfg, result.BaseDir)

	result.Config = cfg
	return result, nil
}

// loadConfigFile loads a configuration from a YAML file.
func loadConfigFile(path string) (*config.Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	cfg, err := config.FromYAML(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// resolveDirs makes the staging and output directories absolute.
func resolveDirs(cfg *config.Config, base string) {
	abs := func(dir string) string {
		if dir == "" || filepath.IsAbs(dir) {
			return dir
		}
		return filepath.Join(base, dir)
	}

	cfg.Generated = abs(cfg.Generated)
	cfg.Output = abs(cfg.Output)
	for name, slot := range cfg.Slots {
		slot.Output = abs(slot.Output)
		slot.Generated = abs(slot.Generated)
		cfg.Slots[name] = slot
	}
}

// WriteConfig writes a configuration file with the standard header.
func WriteConfig(cfg *config.Config, path string) error {
	content, err := cfg.ToYAMLWithHeader(config.DefaultTemplateHeader())
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, content, configFilePermissions); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// configFilePermissions is the file mode for configuration files (world-readable).
const configFilePermissions = 0o644
