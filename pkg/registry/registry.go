package registry

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/arthur-debert/dotlink/pkg/logging"
)

// BaseProfile is the name under which the base settings are reported.
// No declared profile may use it.
const BaseProfile = "base"

// Dot is one managed source to target mapping.
type Dot struct {
	Name    string   `json:"name,omitempty"`
	Source  string   `json:"source"`
	Target  string   `json:"target"`
	Render  bool     `json:"render"`
	Hooks   []string `json:"hooks,omitempty"`
	Ignore  []string `json:"ignore,omitempty"`
	Profile string   `json:"profile"`
}

// Label is the name used for the dot in logs and reports.
func (d Dot) Label() string {
	if d.Name != "" {
		return d.Name
	}
	return d.Source
}

// Profile is a named set of dots and variables that may import other
// profiles.
type Profile struct {
	Name      string
	Imports   []string
	Dots      []Dot
	VarFiles  []string
	Variables map[string]interface{}
	Prehooks  []string
	Posthooks []string
}

// Registry is an immutable, validated set of profiles.
type Registry struct {
	base     Profile
	profiles map[string]Profile
}

// New validates the profile graph and returns a registry. Duplicate or
// reserved profile names, imports of undeclared profiles and import cycles
// are all rejected here.
func New(base Profile, profiles ...Profile) (*Registry, error) {
	base.Name = BaseProfile
	r := &Registry{
		base:     base,
		profiles: make(map[string]Profile, len(profiles)),
	}

	for _, p := range profiles {
		switch {
		case p.Name == "":
			return nil, errors.New(errors.ErrConfigInvalid, "profile name cannot be empty")
		case p.Name == BaseProfile:
			return nil, errors.Newf(errors.ErrConfigInvalid, "profile name %q is reserved", BaseProfile)
		}
		if _, exists := r.profiles[p.Name]; exists {
			return nil, errors.Newf(errors.ErrConfigInvalid, "profile %q is declared twice", p.Name)
		}
		r.profiles[p.Name] = p
	}

	if len(base.Imports) > 0 {
		return nil, errors.New(errors.ErrConfigInvalid, "the base settings cannot import profiles")
	}

	if err := r.checkGraph(); err != nil {
		return nil, err
	}

	logger := logging.GetLogger("registry")
	logger.Debug().
		Int("profiles", len(r.profiles)).
		Int("base_dots", len(base.Dots)).
		Msg("Profile graph validated")

	return r, nil
}

// visit states for the depth-first walks
const (
	unvisited = iota
	visiting
	visited
)

// checkGraph walks every profile so that cycles and dangling imports are
// found even in profiles nobody selects.
func (r *Registry) checkGraph() error {
	state := make(map[string]int, len(r.profiles))
	var stack []string

	var walk func(name string) error
	walk = func(name string) error {
		switch state[name] {
		case visited:
			return nil
		case visiting:
			return cycleError(stack, name)
		}

		state[name] = visiting
		stack = append(stack, name)
		for _, imp := range r.profiles[name].Imports {
			if _, ok := r.profiles[imp]; !ok {
				return errors.Newf(errors.ErrUnknownProfile, "profile %q imports unknown profile %q", name, imp).
					WithDetail("profile", name).
					WithDetail("import", imp)
			}
			if err := walk(imp); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = visited
		return nil
	}

	for _, name := range r.Names() {
		if err := walk(name); err != nil {
			return err
		}
	}
	return nil
}

func cycleError(stack []string, name string) error {
	start := 0
	for i, n := range stack {
		if n == name {
			start = i
			break
		}
	}
	cycle := append(append([]string{}, stack[start:]...), name)
	return errors.Newf(errors.ErrImportCycle, "profile import cycle: %s", strings.Join(cycle, " -> ")).
		WithDetail("cycle", cycle)
}

// Names returns the declared profile names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Base returns the base settings.
func (r *Registry) Base() Profile {
	return r.base
}

// Profile returns a declared profile by name.
func (r *Registry) Profile(name string) (Profile, bool) {
	p, ok := r.profiles[name]
	return p, ok
}

// Expand returns the selected profiles plus everything they import,
// transitively. Imports come before their importers and each profile
// appears once, at its first position.
func (r *Registry) Expand(selected []string) ([]Profile, error) {
	seen := make(map[string]bool)
	var out []Profile

	var walk func(name string)
	walk = func(name string) {
		if seen[name] {
			return
		}
		seen[name] = true
		p := r.profiles[name]
		for _, imp := range p.Imports {
			walk(imp)
		}
		out = append(out, p)
	}

	for _, name := range selected {
		if _, ok := r.profiles[name]; !ok {
			return nil, errors.Newf(errors.ErrUnknownProfile, "unknown profile %q", name).
				WithDetail("profile", name).
				WithDetail("available", r.Names())
		}
		walk(name)
	}
	return out, nil
}

// Layers returns the base settings followed by the expanded selection. It
// is the precedence order for variables and run-level hooks.
func (r *Registry) Layers(selected []string) ([]Profile, error) {
	expanded, err := r.Expand(selected)
	if err != nil {
		return nil, err
	}
	return append([]Profile{r.base}, expanded...), nil
}

// ActiveDots computes the ordered dot list for a selection of profiles.
// Targets are compared after cleaning, so callers should hand in absolute
// targets.
func (r *Registry) ActiveDots(selected []string) ([]Dot, error) {
	layers, err := r.Layers(selected)
	if err != nil {
		return nil, err
	}

	logger := logging.GetLogger("registry")

	var dots []Dot
	byName := make(map[string]int)
	for _, layer := range layers {
		for _, d := range layer.Dots {
			d.Profile = layer.Name
			if d.Name != "" {
				if i, ok := byName[d.Name]; ok {
					logger.Debug().
						Str("dot", d.Name).
						Str("profile", layer.Name).
						Str("overrides", dots[i].Profile).
						Msg("Dot overridden by name")
					dots[i] = override(dots[i], d)
					continue
				}
				byName[d.Name] = len(dots)
			}
			dots = append(dots, d)
		}
	}

	return dedupe(dots)
}

// override applies the non-empty fields of next on top of prev. A new
// source redefines the render mode, otherwise render can only be switched on.
func override(prev, next Dot) Dot {
	out := prev
	out.Profile = next.Profile
	if next.Source != "" {
		out.Source = next.Source
		out.Render = next.Render
	} else if next.Render {
		out.Render = true
	}
	if next.Target != "" {
		out.Target = next.Target
	}
	if next.Hooks != nil {
		out.Hooks = next.Hooks
	}
	if next.Ignore != nil {
		out.Ignore = next.Ignore
	}
	return out
}

func dedupe(dots []Dot) ([]Dot, error) {
	out := make([]Dot, 0, len(dots))
	byTarget := make(map[string]int, len(dots))

	for _, d := range dots {
		if d.Source == "" || d.Target == "" {
			return nil, errors.Newf(errors.ErrConfigInvalid, "dot %q needs both a source and a target", d.Label()).
				WithDetail("dot", d.Label()).
				WithDetail("profile", d.Profile)
		}

		key := filepath.Clean(d.Target)
		i, seen := byTarget[key]
		if !seen {
			byTarget[key] = len(out)
			out = append(out, d)
			continue
		}

		first := out[i]
		if filepath.Clean(first.Source) == filepath.Clean(d.Source) && first.Render == d.Render {
			logger := logging.GetLogger("registry")
			logger.Debug().
				Str("dot", d.Label()).
				Str("target", d.Target).
				Msg("Duplicate dot merged into first declaration")
			continue
		}

		return nil, errors.Newf(errors.ErrConfigConflict,
			"dots %q (%s) and %q (%s) both deploy to %s",
			first.Label(), first.Profile, d.Label(), d.Profile, d.Target).
			WithDetail("target", d.Target).
			WithDetail("dots", []string{first.Label(), d.Label()})
	}
	return out, nil
}

// AllDots returns every dot declared anywhere, base first then profiles by
// name, without override or de-duplication.
func (r *Registry) AllDots() []Dot {
	var dots []Dot
	for _, d := range r.base.Dots {
		d.Profile = BaseProfile
		dots = append(dots, d)
	}
	for _, name := range r.Names() {
		for _, d := range r.profiles[name].Dots {
			d.Profile = name
			dots = append(dots, d)
		}
	}
	return dots
}
