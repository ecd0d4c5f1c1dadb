package configloader

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/samber/lo"

	"github.com/yaklabco/gopreserve/pkg/config"
)

// envVarPrefix is the prefix for all gopreserve environment variables.
const envVarPrefix = "GOPRESERVE_"

// envVar binds one GOPRESERVE_* variable to the config field it sets.
type envVar struct {
	suffix      string
	description string
	set         func(cfg *config.Config, raw string) error
}

// envVars lists the supported variables in the order they are applied.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envVars = []envVar{
	{"BACKUPS_ENABLED", "Back up overwritten files: true or false", boolSetter(func(c *config.Config, v bool) {
		c.Backups.Enabled = &v
	})},
	{"BACKUPS_MODE", "Backup mode: sidecar or none", func(c *config.Config, raw string) error {
		c.Backups.Mode = raw
		return nil
	}},
	{"DRY_RUN", "Dry-run mode: true or false", boolSetter(func(c *config.Config, v bool) { c.DryRun = v })},
	{"FOLLOW_SYMLINKS", "Descend into symlinked directories", boolSetter(func(c *config.Config, v bool) {
		c.FollowSymlinks = v
	})},
	{"FORMAT", "Output format: text, table, json, diff or summary", func(c *config.Config, raw string) error {
		c.Format = config.OutputFormat(strings.ToLower(raw))
		return nil
	}},
	{"GENERATED", "Staging directory the generator writes into", func(c *config.Config, raw string) error {
		c.Generated = raw
		return nil
	}},
	{"IGNORE", "Comma-separated list of ignore patterns", func(c *config.Config, raw string) error {
		c.Ignore = splitList(raw)
		return nil
	}},
	{"JOBS", "Number of parallel workers (0 = auto)", func(c *config.Config, raw string) error {
		jobs, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("expected an integer: %q", raw)
		}
		c.Jobs = jobs
		return nil
	}},
	{"OUTPUT", "Output directory of the default slot", func(c *config.Config, raw string) error {
		c.Output = raw
		return nil
	}},
}

func boolSetter(apply func(*config.Config, bool)) func(*config.Config, string) error {
	return func(c *config.Config, raw string) error {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("expected true/false/1/0: %q", raw)
		}
		apply(c, v)
		return nil
	}
}

// splitList parses a comma-separated string, dropping empty items.
func splitList(raw string) []string {
	items := lo.Map(strings.Split(raw, ","), func(s string, _ int) string { return strings.TrimSpace(s) })
	return lo.Compact(items)
}

// ReadDotEnv parses a .env file without touching the process environment.
// An empty path yields an empty map.
func ReadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}
	env, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return env, nil
}

// LoadFromEnv applies GOPRESERVE_* environment variable overrides to the configuration.
func LoadFromEnv(cfg *config.Config) error {
	return applyEnv(cfg, os.LookupEnv)
}

// LoadFromMap applies overrides from an env-style map, e.g. one read with godotenv.Read.
func LoadFromMap(cfg *config.Config, env map[string]string) error {
	return applyEnv(cfg, func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
}

// applyEnv sets every variable lookup knows. Empty values are ignored.
func applyEnv(cfg *config.Config, lookup func(string) (string, bool)) error {
	if cfg == nil {
		return nil
	}

	for _, v := range envVars {
		name := envVarPrefix + v.suffix
		raw, ok := lookup(name)
		if raw = strings.TrimSpace(raw); !ok || raw == "" {
			continue
		}
		if err := v.set(cfg, raw); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}

	return nil
}

// ListEnvVars returns all supported environment variables with their descriptions.
func ListEnvVars() map[string]string {
	return lo.SliceToMap(envVars, func(v envVar) (string, string) {
		return envVarPrefix + v.suffix, v.description
	})
}
