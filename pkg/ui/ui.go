// Package ui writes run reports, variable listings and errors in one of
// three forms: styled for a terminal, plain text, or JSON.
package ui

import (
	"io"

	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/arthur-debert/dotlink/pkg/ui/json"
	"github.com/arthur-debert/dotlink/pkg/ui/terminal"
	"github.com/arthur-debert/dotlink/pkg/ui/text"
)

// Renderer is implemented by each output form.
type Renderer interface {
	// RenderResult writes a *core.Report, *core.VarsResult,
	// []core.ProfileInfo or string. Other values are printed as is.
	RenderResult(result interface{}) error

	// RenderError writes err with its code and details.
	RenderError(err error) error

	// RenderMessage writes a one-line notice.
	RenderMessage(msg string) error
}

// NewRenderer returns the renderer for format writing to output.
// FormatAuto is resolved with DetectFormat.
func NewRenderer(format Format, output io.Writer) (Renderer, error) {
	if format == FormatAuto {
		format = DetectFormat(output)
	}
	switch format {
	case FormatTerminal:
		return terminal.New(output)
	case FormatText:
		return text.New(output)
	case FormatJSON:
		return json.New(output)
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown format %d", int(format))
	}
}
