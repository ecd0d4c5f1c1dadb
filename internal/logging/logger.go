// Package logging sets up the charmbracelet/log loggers shared by gopreserve's
// commands and packages.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

//nolint:gochecknoglobals // process-wide default logger
var (
	defaultMu     sync.RWMutex
	defaultLogger = NewWithWriter(os.Stderr, "info")
)

// New creates a logger writing to stderr at the given level.
func New(level string) *log.Logger {
	return NewWithWriter(os.Stderr, level)
}

// NewWithWriter creates a logger writing to w at the given level.
func NewWithWriter(w io.Writer, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{Prefix: "gopreserve"})
	logger.SetLevel(ParseLevel(level))
	return logger
}

// ParseLevel maps debug, info, warn (or warning) and error to a log level,
// case-insensitively. Anything else is info.
func ParseLevel(level string) log.Level {
	name := strings.ToLower(strings.TrimSpace(level))
	if name == "warning" {
		name = "warn"
	}
	parsed, err := log.ParseLevel(name)
	if err != nil || parsed == log.FatalLevel {
		return log.InfoLevel
	}
	return parsed
}

// Default returns the process-wide logger.
func Default() *log.Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault replaces the process-wide logger.
func SetDefault(logger *log.Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = logger
}

// SetLevel changes the level of the process-wide logger.
func SetLevel(level string) {
	Default().SetLevel(ParseLevel(level))
}
