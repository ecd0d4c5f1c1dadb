package cli

import (
	"errors"
	"io/fs"

	"github.com/yaklabco/gopreserve/internal/configloader"
	"github.com/yaklabco/gopreserve/pkg/fsreader"
	"github.com/yaklabco/gopreserve/pkg/generate"
	"github.com/yaklabco/gopreserve/pkg/parser"
	"github.com/yaklabco/gopreserve/pkg/registry"
)

// Exit codes for gopreserve.
const (
	// ExitSuccess indicates successful execution with no problems.
	ExitSuccess = 0

	// ExitFindings indicates the run completed but found problems: invalid regions,
	// duplicate ids or, with --exit-code, pending changes.
	ExitFindings = 1

	// ExitApplyFailed indicates some staged files could not be merged or written.
	ExitApplyFailed = 2

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

var (
	// ErrFindings is returned when inspected files contain errors. The findings have
	// already been reported.
	ErrFindings = errors.New("problems found")

	// ErrChangesPending is returned by a dry run with --exit-code when output would change.
	ErrChangesPending = errors.New("output changes pending")

	// ErrFilesFailed is returned when some staged files could not be applied.
	ErrFilesFailed = errors.New("some files could not be applied")

	// ErrConfig wraps configuration loading failures.
	ErrConfig = errors.New("failed to load configuration")

	// ErrUsage wraps invalid flag values.
	ErrUsage = errors.New("invalid usage")
)

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var validationErr *configloader.ValidationError

	switch {
	case errors.Is(err, ErrFindings),
		errors.Is(err, ErrChangesPending),
		errors.Is(err, registry.ErrGlobalDuplicateID),
		errors.Is(err, registry.ErrParse):
		return ExitFindings
	case errors.Is(err, ErrFilesFailed):
		return ExitApplyFailed
	case errors.Is(err, ErrUsage):
		return ExitInvalidUsage
	case errors.As(err, &validationErr),
		errors.Is(err, ErrConfig),
		errors.Is(err, configloader.ErrInvalidParser),
		errors.Is(err, parser.ErrUnknownLanguage),
		errors.Is(err, fsreader.ErrUnknownSlot),
		errors.Is(err, registry.ErrNoParsers):
		return ExitConfigError
	case errors.Is(err, generate.ErrStagingNotFound),
		errors.Is(err, registry.ErrNotDirectory),
		errors.Is(err, fs.ErrNotExist),
		errors.Is(err, fs.ErrPermission):
		return ExitIOError
	default:
		return ExitInternalError
	}
}

// IsReported reports whether err only signals an outcome that was already printed.
func IsReported(err error) bool {
	return errors.Is(err, ErrFindings) || errors.Is(err, ErrChangesPending) || errors.Is(err, ErrFilesFailed)
}
