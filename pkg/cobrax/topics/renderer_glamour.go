package topics

import (
	"github.com/charmbracelet/glamour"
)

// GlamourRenderer renders markdown topics with glamour and leaves other
// formats untouched.
type GlamourRenderer struct {
	// Style is a glamour style name ("dark", "light", "notty") or a path to
	// a style file. Empty or "auto" detects from the terminal.
	Style string
	// Width wraps lines; zero keeps glamour's default.
	Width int
}

// NewGlamourRenderer creates a markdown renderer with auto-detected style
func NewGlamourRenderer() *GlamourRenderer {
	return &GlamourRenderer{Style: "auto"}
}

// Render converts markdown for terminal output, falling back to the raw
// content if glamour fails.
func (r *GlamourRenderer) Render(content string, ext string) string {
	if ext != ".md" {
		return content
	}

	var options []glamour.TermRendererOption
	switch r.Style {
	case "", "auto":
		options = append(options, glamour.WithAutoStyle())
	default:
		options = append(options, glamour.WithStylePath(r.Style))
	}
	if r.Width > 0 {
		options = append(options, glamour.WithWordWrap(r.Width))
	}

	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return content
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
