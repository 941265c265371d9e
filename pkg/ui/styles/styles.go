// Package styles defines the visual styling for dotlink's terminal output.
//
// Styles use semantic names and adaptive colors that adjust to light and
// dark terminal themes. The definitions live in an embedded styles.yaml;
// a user file can replace them through Load.
package styles

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// Semantic style names used by the renderers.
const (
	Header   = "Header"
	Success  = "Success"
	Error    = "Error"
	Warning  = "Warning"
	Info     = "Info"
	Muted    = "Muted"
	Bold     = "Bold"
	DotName  = "DotName"
	FilePath = "FilePath"
	Code     = "Code"
	DryRun   = "DryRunBanner"
)

// ColorDef represents an adaptive color definition in YAML
type ColorDef struct {
	Light string `yaml:"light"`
	Dark  string `yaml:"dark"`
}

// StyleDef represents a style definition in YAML
type StyleDef struct {
	Bold         bool   `yaml:"bold,omitempty"`
	Italic       bool   `yaml:"italic,omitempty"`
	Underline    bool   `yaml:"underline,omitempty"`
	Foreground   string `yaml:"foreground,omitempty"`
	Background   string `yaml:"background,omitempty"`
	Width        int    `yaml:"width,omitempty"`
	Align        string `yaml:"align,omitempty"`
	PaddingLeft  int    `yaml:"paddingLeft,omitempty"`
	PaddingRight int    `yaml:"paddingRight,omitempty"`
}

// Config represents the complete styles configuration
type Config struct {
	Colors map[string]ColorDef `yaml:"colors"`
	Styles map[string]StyleDef `yaml:"styles"`
}

// Registry maps semantic names to lipgloss styles.
type Registry map[string]lipgloss.Style

//go:embed styles.yaml
var embeddedStyles []byte

var defaultRegistry Registry

func init() {
	r, err := Parse(embeddedStyles)
	if err != nil {
		r = fallback()
	}
	defaultRegistry = r
}

// Default returns the registry built from the embedded definitions.
func Default() Registry {
	return defaultRegistry
}

// Load reads a style configuration from a YAML file.
func Load(path string) (Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read styles file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a registry from YAML data. Styles naming an unknown color
// are an error.
func Parse(data []byte) (Registry, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse styles: %w", err)
	}

	colors := make(map[string]lipgloss.AdaptiveColor, len(config.Colors))
	for name, def := range config.Colors {
		colors[name] = lipgloss.AdaptiveColor{Light: def.Light, Dark: def.Dark}
	}

	r := make(Registry, len(config.Styles))
	for name, def := range config.Styles {
		style, err := buildStyle(def, colors)
		if err != nil {
			return nil, fmt.Errorf("style %s: %w", name, err)
		}
		r[name] = style
	}
	return r, nil
}

// fallback keeps the program usable if the embedded file is broken.
func fallback() Registry {
	r := make(Registry)
	for _, name := range []string{Header, Success, Error, Warning, Info, Muted, Bold, DotName, FilePath, Code, DryRun} {
		r[name] = lipgloss.NewStyle()
	}
	return r
}

func buildStyle(def StyleDef, colors map[string]lipgloss.AdaptiveColor) (lipgloss.Style, error) {
	style := lipgloss.NewStyle()

	if def.Bold {
		style = style.Bold(true)
	}
	if def.Italic {
		style = style.Italic(true)
	}
	if def.Underline {
		style = style.Underline(true)
	}

	if def.Foreground != "" {
		color, ok := colors[def.Foreground]
		if !ok {
			return style, fmt.Errorf("unknown color %q", def.Foreground)
		}
		style = style.Foreground(color)
	}
	if def.Background != "" {
		color, ok := colors[def.Background]
		if !ok {
			return style, fmt.Errorf("unknown color %q", def.Background)
		}
		style = style.Background(color)
	}

	if def.Width > 0 {
		style = style.Width(def.Width)
	}
	switch def.Align {
	case "center":
		style = style.Align(lipgloss.Center)
	case "right":
		style = style.Align(lipgloss.Right)
	case "left":
		style = style.Align(lipgloss.Left)
	}
	if def.PaddingLeft > 0 || def.PaddingRight > 0 {
		style = style.Padding(0, def.PaddingRight, 0, def.PaddingLeft)
	}

	return style, nil
}

// Get safely retrieves a style, falling back to an unstyled one.
func (r Registry) Get(name string) lipgloss.Style {
	if style, ok := r[name]; ok {
		return style
	}
	return lipgloss.NewStyle()
}

// Merge combines multiple named styles, later ones inheriting from earlier.
func (r Registry) Merge(names ...string) lipgloss.Style {
	result := lipgloss.NewStyle()
	for _, name := range names {
		result = result.Inherit(r.Get(name))
	}
	return result
}

// Paint renders s with the named style.
func (r Registry) Paint(name, s string) string {
	return r.Get(name).Render(s)
}
