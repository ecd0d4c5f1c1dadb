package logging_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gopreserve/internal/logging"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level string
		want  log.Level
	}{
		{"debug", log.DebugLevel},
		{"info", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"warning", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"DEBUG", log.DebugLevel},
		{" Warn ", log.WarnLevel},
		{"fatal", log.InfoLevel},
		{"verbose", log.InfoLevel},
		{"", log.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, logging.ParseLevel(tt.level))
			assert.Equal(t, tt.want, logging.New(tt.level).GetLevel())
		})
	}
}

func TestNewWithWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, "warn")

	logger.Info("hidden")
	logger.Warn("visible", logging.FieldRegionID, "a.b")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "gopreserve")
	assert.Contains(t, out, "visible")
	assert.Contains(t, out, "region_id=a.b")
}

// The default logger is process-wide, so these tests do not run in parallel.
func TestDefaultLogger(t *testing.T) {
	original := logging.Default()
	t.Cleanup(func() { logging.SetDefault(original) })

	require.NotNil(t, original)

	replacement := logging.New("info")
	logging.SetDefault(replacement)
	assert.Same(t, replacement, logging.Default())

	logging.SetLevel("debug")
	assert.Equal(t, log.DebugLevel, replacement.GetLevel())

	logging.SetLevel("error")
	assert.Equal(t, log.ErrorLevel, replacement.GetLevel())
}

func TestContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, "debug")

	ctx := logging.WithLogger(context.Background(), logger)
	assert.Same(t, logger, logging.FromContext(ctx))
	assert.NotNil(t, logging.FromContext(context.Background()))

	ctx = logging.WithFields(ctx, logging.FieldSlot, "web")
	logging.FromContext(ctx).Info("merged")
	assert.Contains(t, buf.String(), "slot=web")
}
