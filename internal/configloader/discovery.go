package configloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/samber/lo"
)

// ConfigPaths lists the configuration files found for a run. Empty fields were not
// found.
type ConfigPaths struct {
	// System is /etc/gopreserve/config.yaml or its Windows counterpart.
	System string

	// User is $XDG_CONFIG_HOME/gopreserve/config.yaml.
	User string

	// Project is the nearest .gopreserve.yml at or above the working directory.
	Project string

	// Explicit is the --config path.
	Explicit string

	// DotEnv is the .env file next to the project config, or in the working directory.
	DotEnv string
}

// Project config names, most preferred first. JSON is valid YAML, so
// .gopreserve.json files load through the same decoder.
//
//nolint:gochecknoglobals // read-only
var projectConfigFiles = []string{
	".gopreserve.yml",
	".gopreserve.yaml",
	".gopreserve.json",
	"gopreserve.yml",
	"gopreserve.yaml",
}

//nolint:gochecknoglobals // read-only
var (
	globalConfigFiles = []string{"config.yaml", "config.yml"}
	vcsRootMarkers    = []string{".git", ".hg", ".svn"}
)

// DiscoverPaths finds the system, user and project configuration files and the
// .env file for workDir.
func DiscoverPaths(ctx context.Context, workDir string) (*ConfigPaths, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("discover config: %w", err)
	}

	project, err := FindProjectConfig(ctx, workDir)
	if err != nil {
		return nil, err
	}

	envDir := workDir
	if project != "" {
		envDir = filepath.Dir(project)
	}

	return &ConfigPaths{
		System:  firstFile(systemConfigDir(), globalConfigFiles...),
		User:    firstFile(userConfigDir(), globalConfigFiles...),
		Project: project,
		DotEnv:  firstFile(envDir, ".env"),
	}, nil
}

func systemConfigDir() string {
	if runtime.GOOS != "windows" {
		return "/etc/gopreserve"
	}
	return filepath.Join(lo.CoalesceOrEmpty(os.Getenv("ProgramData"), `C:\ProgramData`), "gopreserve")
}

func userConfigDir() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "gopreserve")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "gopreserve")
}

// FindProjectConfig walks upward from startDir looking for a project config file.
// The walk ends at a VCS root, the home directory or the filesystem root.
func FindProjectConfig(ctx context.Context, startDir string) (string, error) {
	dir, err := filepath.Abs(lo.CoalesceOrEmpty(startDir, "."))
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", startDir, err)
	}

	home, _ := os.UserHomeDir()

	for {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("find project config: %w", err)
		}

		if found := firstFile(dir, projectConfigFiles...); found != "" {
			return found, nil
		}
		if isVCSRoot(dir) || dir == home {
			return "", nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// firstFile returns the first of names that is a regular file in dir, or "".
func firstFile(dir string, names ...string) string {
	if dir == "" {
		return ""
	}
	path, _ := lo.Find(lo.Map(names, func(name string, _ int) string {
		return filepath.Join(dir, name)
	}), fileExists)
	return path
}

func isVCSRoot(dir string) bool {
	return lo.SomeBy(vcsRootMarkers, func(marker string) bool {
		info, err := os.Stat(filepath.Join(dir, marker))
		return err == nil && info.IsDir()
	})
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
