// Package json provides machine-readable JSON output
package json

import (
	"encoding/json"
	"io"

	"github.com/arthur-debert/dotlink/pkg/core"
	"github.com/arthur-debert/dotlink/pkg/ui/view"
)

// Renderer provides JSON output for machine consumption
type Renderer struct {
	output  io.Writer
	encoder *json.Encoder
}

// New creates a new JSON renderer
func New(output io.Writer) (*Renderer, error) {
	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")
	return &Renderer{
		output:  output,
		encoder: encoder,
	}, nil
}

// RenderResult renders any result type as JSON. Core results go through
// their view models so errors are serialized as strings.
func (r *Renderer) RenderResult(result interface{}) error {
	switch v := result.(type) {
	case *core.Report:
		return r.encoder.Encode(view.FromReport(v))
	case *core.VarsResult:
		return r.encoder.Encode(view.FromVars(v))
	case []core.ProfileInfo:
		return r.encoder.Encode(view.FromProfiles(v))
	default:
		return r.encoder.Encode(result)
	}
}

// RenderError renders an error as JSON
func (r *Renderer) RenderError(err error) error {
	return r.encoder.Encode(view.FromError(err))
}

// RenderMessage renders a simple message as JSON
func (r *Renderer) RenderMessage(msg string) error {
	return r.encoder.Encode(view.Message{Message: msg})
}
