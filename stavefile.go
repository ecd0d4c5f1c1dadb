//go:build stave

package main

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yaklabco/stave/pkg/sh"
	"github.com/yaklabco/stave/pkg/st"
	"github.com/yaklabco/stave/pkg/target"
)

const (
	binary  = "bin/gopreserve"
	mainPkg = "./cmd/gopreserve"
)

// Default target runs build.
var Default = Build

// Aliases for common targets.
var Aliases = map[string]any{
	"b":   Build,
	"t":   Test.Default,
	"l":   Lint.Default,
	"c":   Check,
	"i":   Install,
	"fmt": Lint.Fmt,
	"bp":  Bench.Parser,
	"sc":  SelfCheck,
	"sm":  Smoke,
}

type (
	Test  st.Namespace
	Lint  st.Namespace
	CI    st.Namespace
	Bench st.Namespace
)

// releasePlatforms are the GOOS/GOARCH pairs CI.Cross builds for.
var releasePlatforms = []string{
	"linux/amd64", "linux/arm64",
	"darwin/amd64", "darwin/arm64",
	"windows/amd64", "windows/arm64",
	"freebsd/amd64",
}

// Build compiles bin/gopreserve with version info when sources changed.
func Build() error {
	rebuild, err := target.Dir(binary, "cmd/", "pkg/", "internal/", "go.mod", "go.sum")
	if err != nil {
		return err
	}
	if !rebuild {
		fmt.Println(binary, "is up to date")
		return nil
	}
	fmt.Println("Building gopreserve...")
	return sh.RunV("go", "build", "-ldflags", ldflags(), "-o", binary, mainPkg)
}

// Check runs format, lint, and test sequentially.
func Check() {
	st.SerialDeps(Lint.Fmt, Lint.Default, Test.Default)
}

// SelfCheck checks the protected regions of this repository with a fresh build.
func SelfCheck() error {
	st.Deps(Build)
	return sh.RunV(binary, "check", "--detect", "--ignore", "_examples/**,bin/**", ".")
}

// Smoke merges a generated Java file into a hand-edited one in a temporary project
// and prints the result.
func Smoke() error {
	st.Deps(Build)

	dir, err := os.MkdirTemp("", "gopreserve-smoke-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	files := map[string]string{
		".gopreserve.yml": "generated: gen\noutput: src\n",
		"src/Order.java": "class Order {\n" +
			"  // PROTECTED REGION ID(Order.validate) ENABLED START\n" +
			"  void validate() { check(); }\n" +
			"  // PROTECTED REGION END\n}\n",
		"gen/Order.java": "class Order {\n  int total;\n" +
			"  // PROTECTED REGION ID(Order.validate) START\n" +
			"  void validate() {}\n" +
			"  // PROTECTED REGION END\n}\n",
	}
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}
	}

	config := filepath.Join(dir, ".gopreserve.yml")
	if err := sh.RunV(binary, "apply", "--config", config, "--format", "diff"); err != nil {
		return err
	}
	return sh.RunV(binary, "apply", "--config", config, "--format", "summary")
}

// Clean removes build artifacts.
func Clean() error {
	for _, path := range []string{"bin", "coverage.out", "coverage.html"} {
		if err := sh.Rm(path); err != nil {
			return err
		}
	}
	return nil
}

// Install installs gopreserve to $GOBIN or $GOPATH/bin.
func Install() error {
	fmt.Println("Installing gopreserve...")
	return sh.RunV("go", "install", "-ldflags", ldflags(), mainPkg)
}

// Deps downloads and tidies modules.
func Deps() error {
	if err := sh.RunV("go", "mod", "download"); err != nil {
		return err
	}
	return sh.RunV("go", "mod", "tidy")
}

// Coverage writes coverage.html from a full test run.
func Coverage() error {
	st.Deps(Test.Default)
	return sh.RunV("go", "tool", "cover", "-html=coverage.out", "-o", "coverage.html")
}

// Default runs all tests with race detection and coverage.
func (Test) Default() error {
	return gotestsum("pkgname-and-test-fails", "./...", "-coverprofile=coverage.out", "-covermode=atomic")
}

// Verbose runs all tests with standard-verbose output.
func (Test) Verbose() error {
	return gotestsum("standard-verbose", "./...")
}

// Concurrency runs the worker pool, watcher and registry tests repeatedly to shake
// out races and leaked goroutines.
func (Test) Concurrency() error {
	return gotestsum("pkgname-and-test-fails",
		"-count=5", "./pkg/generate/...", "./pkg/registry/...", "./pkg/parser/...")
}

// Default runs golangci-lint with auto-fix.
func (Lint) Default() error {
	return sh.RunV("golangci-lint", "run", "--fix", "./...")
}

// CI runs golangci-lint without auto-fix.
func (Lint) CI() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Fmt formats all Go code.
func (Lint) Fmt() error {
	return sh.RunV("gofmt", "-w", ".")
}

// FmtCheck fails when a file is not gofmt-formatted.
func (Lint) FmtCheck() error {
	out, err := sh.Output("gofmt", "-l", ".")
	if err != nil {
		return fmt.Errorf("gofmt: %w", err)
	}
	if out != "" {
		return fmt.Errorf("unformatted files:\n%s\nrun 'stave lint:fmt' to fix", out)
	}
	return nil
}

// Vet runs go vet.
func (Lint) Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Gate runs every CI check.
func (CI) Gate() {
	st.SerialDeps(
		Lint.FmtCheck,
		Lint.Vet,
		Lint.CI,
		Build,
		Test.Default,
		CI.ModTidy,
		CI.Cross,
		SelfCheck,
	)
}

// ModTidy fails when go.mod or go.sum are not tidy.
func (CI) ModTidy() error {
	if err := sh.RunV("go", "mod", "tidy", "-diff"); err != nil {
		return fmt.Errorf("go.mod or go.sum are not tidy: %w", err)
	}
	return nil
}

// Cross builds for every release platform.
func (CI) Cross() error {
	for _, platform := range releasePlatforms {
		goos, goarch, _ := strings.Cut(platform, "/")
		fmt.Println("  building", platform)
		env := map[string]string{"GOOS": goos, "GOARCH": goarch, "CGO_ENABLED": "0"}
		if err := sh.RunWith(env, "go", "build", "-o", os.DevNull, mainPkg); err != nil {
			return fmt.Errorf("build %s: %w", platform, err)
		}
	}
	return nil
}

// Default runs all benchmarks.
func (Bench) Default() error {
	return sh.RunV("go", "test", "-run=^$", "-bench=.", "-benchmem", "./...")
}

// Parser runs the parser and registry benchmarks.
func (Bench) Parser() error {
	return sh.RunV("go", "test", "-run=^$", "-bench=.", "-benchmem",
		"./pkg/parser/...", "./pkg/registry/...")
}

// gotestsum runs go test with the race detector through gotestsum.
func gotestsum(format string, args ...string) error {
	procs := cmp.Or(os.Getenv("STAVE_NUM_PROCESSORS"), "4")
	cmdArgs := []string{"tool", "gotestsum", "-f", format, "--", "-race", "-p", procs, "-parallel", procs}
	return sh.RunV("go", append(cmdArgs, args...)...)
}

// gitOutput runs git and returns its trimmed output, or "" on error.
func gitOutput(args ...string) string {
	out, err := sh.Output("git", args...)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// ldflags injects version, commit and build date into main.
func ldflags() string {
	version := cmp.Or(gitOutput("describe", "--tags", "--always", "--dirty"), "dev")
	commit := cmp.Or(gitOutput("rev-parse", "--short", "HEAD"), "none")
	date := time.Now().UTC().Format(time.RFC3339)
	return fmt.Sprintf("-X main.version=%s -X main.commit=%s -X main.date=%s", version, commit, date)
}
