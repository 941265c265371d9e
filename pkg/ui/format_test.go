package ui_test

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/arthur-debert/dotlink/pkg/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatString(t *testing.T) {
	tests := []struct {
		name     string
		format   ui.Format
		expected string
	}{
		{
			name:     "auto format",
			format:   ui.FormatAuto,
			expected: "auto",
		},
		{
			name:     "terminal format",
			format:   ui.FormatTerminal,
			expected: "term",
		},
		{
			name:     "text format",
			format:   ui.FormatText,
			expected: "text",
		},
		{
			name:     "json format",
			format:   ui.FormatJSON,
			expected: "json",
		},
		{
			name:     "unknown format",
			format:   ui.Format(999),
			expected: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.format.String())
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected ui.Format
		wantErr  bool
	}{
		{
			name:     "parse auto",
			input:    "auto",
			expected: ui.FormatAuto,
			wantErr:  false,
		},
		{
			name:     "parse empty string as auto",
			input:    "",
			expected: ui.FormatAuto,
			wantErr:  false,
		},
		{
			name:     "parse term",
			input:    "term",
			expected: ui.FormatTerminal,
			wantErr:  false,
		},
		{
			name:     "parse terminal",
			input:    "terminal",
			expected: ui.FormatTerminal,
			wantErr:  false,
		},
		{
			name:     "parse text",
			input:    "text",
			expected: ui.FormatText,
			wantErr:  false,
		},
		{
			name:     "parse plain",
			input:    "plain",
			expected: ui.FormatText,
			wantErr:  false,
		},
		{
			name:     "parse json",
			input:    "json",
			expected: ui.FormatJSON,
			wantErr:  false,
		},
		{
			name:     "parse invalid format",
			input:    "invalid",
			expected: ui.FormatAuto,
			wantErr:  true,
		},
		{
			name:     "parse uppercase term",
			input:    "TERM",
			expected: ui.FormatTerminal,
			wantErr:  false,
		},
		{
			name:     "parse mixed case JSON",
			input:    "Json",
			expected: ui.FormatJSON,
			wantErr:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format, err := ui.ParseFormat(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
				assert.Contains(t, err.Error(), "invalid --format")
				assert.Equal(t, tt.input, errors.GetErrorDetails(err)["format"])
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, format)
			}
		})
	}
}

func TestFormats(t *testing.T) {
	for _, name := range ui.Formats() {
		f, err := ui.ParseFormat(name)
		require.NoError(t, err)
		assert.Equal(t, name, f.String())
	}
}

func TestDetectFormat(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	tests := []struct {
		name     string
		env      map[string]string
		out      io.Writer
		expected ui.Format
	}{
		{"NO_COLOR forces text", map[string]string{"NO_COLOR": "1", "CLICOLOR_FORCE": "1"}, &bytes.Buffer{}, ui.FormatText},
		{"CLICOLOR=0 forces text", map[string]string{"CLICOLOR": "0"}, &bytes.Buffer{}, ui.FormatText},
		{"regular file is not a terminal", nil, f, ui.FormatText},
		{"buffer is not a terminal", nil, &bytes.Buffer{}, ui.FormatText},
		{"CLICOLOR_FORCE styles a pipe", map[string]string{"CLICOLOR_FORCE": "1"}, &bytes.Buffer{}, ui.FormatTerminal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"NO_COLOR", "CLICOLOR", "CLICOLOR_FORCE"} {
				t.Setenv(k, tt.env[k])
			}
			assert.Equal(t, tt.expected, ui.DetectFormat(tt.out))
		})
	}
}
