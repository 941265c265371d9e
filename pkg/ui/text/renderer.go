// Package text provides plain text output without any styling
package text

import (
	"io"

	"github.com/arthur-debert/dotlink/pkg/ui/view"
)

// Renderer provides plain text output without colors or styling
type Renderer struct {
	printer *view.Printer
}

// New creates a new text renderer
func New(output io.Writer) (*Renderer, error) {
	return &Renderer{printer: view.NewPrinter(output, view.Plain)}, nil
}

// RenderResult renders any result type as plain text
func (r *Renderer) RenderResult(result interface{}) error {
	return r.printer.Print(result)
}

// RenderError renders an error as plain text
func (r *Renderer) RenderError(err error) error {
	return r.printer.Error(err)
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	return r.printer.Message(msg)
}
