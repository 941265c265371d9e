package ui

import (
	"io"
	"strings"

	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/muesli/termenv"
)

// Format selects how reports are written.
type Format int

const (
	// FormatAuto picks terminal or text from the output and the environment.
	FormatAuto Format = iota
	// FormatTerminal styles reports with colors.
	FormatTerminal
	// FormatText writes the same layout without escape codes.
	FormatText
	// FormatJSON writes one JSON document per report.
	FormatJSON
)

var formatNames = []string{"auto", "term", "text", "json"}

// Formats lists the names accepted by --format, for completion and help.
func Formats() []string {
	return append([]string(nil), formatNames...)
}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return "unknown"
	}
	return formatNames[f]
}

// ParseFormat parses a --format value. Aliases "terminal" and "plain" are
// accepted, case does not matter.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "auto", "":
		return FormatAuto, nil
	case "term", "terminal":
		return FormatTerminal, nil
	case "text", "plain":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatAuto, errors.Newf(errors.ErrInvalidInput,
			"invalid --format %q (one of %s)", s, strings.Join(formatNames, ", ")).
			WithDetail("format", s)
	}
}

// DetectFormat resolves FormatAuto for w. Styling needs a color capable
// terminal; NO_COLOR and CLICOLOR=0 turn it off, CLICOLOR_FORCE turns it on
// for pipes and buffers. Reports are never auto-detected as JSON.
func DetectFormat(w io.Writer) Format {
	if termenv.EnvNoColor() {
		return FormatText
	}
	if termenv.NewOutput(w).Profile == termenv.Ascii {
		return FormatText
	}
	return FormatTerminal
}
