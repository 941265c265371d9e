// Package terminal provides rich terminal output with colors and styling
package terminal

import (
	"io"

	"github.com/arthur-debert/dotlink/pkg/ui/styles"
	"github.com/arthur-debert/dotlink/pkg/ui/view"
)

// Renderer provides rich terminal output using lipgloss styles
type Renderer struct {
	printer *view.Printer
}

// New creates a new terminal renderer with the default styles
func New(w io.Writer) (*Renderer, error) {
	return WithStyles(w, styles.Default()), nil
}

// WithStyles creates a terminal renderer painting with the given registry
func WithStyles(w io.Writer, registry styles.Registry) *Renderer {
	paint := func(style view.Style, text string) string {
		if text == "" {
			return text
		}
		return registry.Paint(string(style), text)
	}
	return &Renderer{printer: view.NewPrinter(w, paint)}
}

// RenderResult renders any result type with rich terminal formatting
func (r *Renderer) RenderResult(result interface{}) error {
	return r.printer.Print(result)
}

// RenderError renders an error with appropriate formatting
func (r *Renderer) RenderError(err error) error {
	return r.printer.Error(err)
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	return r.printer.Message(msg)
}
