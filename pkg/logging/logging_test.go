package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		wantLevel zerolog.Level
	}{
		{"default warn level", 0, zerolog.WarnLevel},
		{"info level", 1, zerolog.InfoLevel},
		{"debug level", 2, zerolog.DebugLevel},
		{"trace level", 3, zerolog.TraceLevel},
		{"high verbosity defaults to trace", 5, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			t.Setenv("XDG_STATE_HOME", tempDir)

			SetupLoggerWithWriter(tt.verbosity, &bytes.Buffer{})

			assert.Equal(t, tt.wantLevel, zerolog.GlobalLevel())

			logPath := filepath.Join(tempDir, "dotlink", "dotlink.log")
			_, err := os.Stat(logPath)
			assert.NoError(t, err, "log file should exist at %s", logPath)
		})
	}
}

func TestGetLogFilePath(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/custom/state")
	assert.Equal(t, "/custom/state/dotlink/dotlink.log", getLogFilePath())
}

func TestWithRun(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	SetupLoggerWithWriter(1, &bytes.Buffer{})

	var buf bytes.Buffer
	original := log.Logger
	t.Cleanup(func() { log.Logger = original })
	log.Logger = zerolog.New(&buf)

	logger := WithRun("core", "run-123")
	logger.Info().Msg("hello")

	out := buf.String()
	require.NotEmpty(t, out)
	assert.True(t, strings.Contains(out, `"component":"core"`))
	assert.True(t, strings.Contains(out, `"run_id":"run-123"`))
}

func TestLogOperationStart(t *testing.T) {
	var buf bytes.Buffer
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	logger := zerolog.New(&buf)

	done := LogOperationStart(logger, "render")
	done()

	out := buf.String()
	assert.Contains(t, out, "Operation started")
	assert.Contains(t, out, "Operation completed")
	assert.Contains(t, out, `"operation":"render"`)
}
