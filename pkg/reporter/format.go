package reporter

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/yaklabco/gopreserve/pkg/config"
)

// ErrUnknownFormat is returned for a format name no reporter implements.
var ErrUnknownFormat = errors.New("unknown format")

// Format names an output format. The values match config.OutputFormat.
type Format string

// Output formats.
const (
	FormatText    = Format(config.FormatText)
	FormatTable   = Format(config.FormatTable)
	FormatJSON    = Format(config.FormatJSON)
	FormatDiff    = Format(config.FormatDiff)
	FormatSummary = Format(config.FormatSummary)
)

// Formats returns every supported format.
func Formats() []Format {
	return lo.Map(config.OutputFormats(), func(f config.OutputFormat, _ int) Format { return Format(f) })
}

// ParseFormat resolves a format name case-insensitively. The empty name is text.
func ParseFormat(name string) (Format, error) {
	format := Format(strings.ToLower(strings.TrimSpace(name)))
	if format == "" {
		return FormatText, nil
	}
	if !format.IsValid() {
		return "", fmt.Errorf("%w %q; valid formats: %s", ErrUnknownFormat, name,
			strings.Join(lo.Map(Formats(), func(f Format, _ int) string { return string(f) }), ", "))
	}
	return format, nil
}

func (f Format) String() string {
	return string(f)
}

// IsValid reports whether f is a supported format.
func (f Format) IsValid() bool {
	return slices.Contains(Formats(), f)
}
