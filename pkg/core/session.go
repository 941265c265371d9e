package core

import (
	"github.com/arthur-debert/dotlink/pkg/config"
	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/arthur-debert/dotlink/pkg/filesystem"
	"github.com/arthur-debert/dotlink/pkg/paths"
	"github.com/arthur-debert/dotlink/pkg/registry"
	"github.com/arthur-debert/dotlink/pkg/vars"
)

// session is everything derived from the configuration for one run. Building
// it performs no filesystem writes.
type session struct {
	cfg      *config.Config
	paths    *paths.Paths
	registry *registry.Registry
	fs       filesystem.FS
}

func openSession(opts Options) (*session, error) {
	cfg, err := config.Load(config.LoadOptions{Path: opts.ConfigPath, DotfilesDir: opts.DotfilesDir})
	if err != nil {
		return nil, err
	}

	p, err := paths.New(cfg.DotfilesDir)
	if err != nil {
		return nil, err
	}
	if opts.HomeDir != "" {
		p = p.WithHome(opts.HomeDir)
	}
	if err := p.CheckHome(); err != nil {
		return nil, err
	}

	base := toProfile(p, "", cfg.Settings)
	profiles := make([]registry.Profile, 0, len(cfg.Profiles))
	for name, pc := range cfg.Profiles {
		profiles = append(profiles, toProfile(p, name, pc))
	}
	reg, err := registry.New(base, profiles...)
	if err != nil {
		return nil, err
	}

	return &session{cfg: cfg, paths: p, registry: reg, fs: opts.fs()}, nil
}

// toProfile converts a configuration profile, resolving targets to absolute
// paths so the registry compares like with like.
func toProfile(p *paths.Paths, name string, pc config.Profile) registry.Profile {
	dots := make([]registry.Dot, 0, len(pc.Dots))
	for _, d := range pc.Dots {
		dots = append(dots, registry.Dot{
			Name:   d.Name,
			Source: d.Source,
			Target: p.Target(d.Target),
			Render: d.Render,
			Hooks:  d.Hooks,
			Ignore: d.Ignore,
		})
	}
	return registry.Profile{
		Name:      name,
		Imports:   pc.Import,
		Dots:      dots,
		VarFiles:  pc.Vars,
		Variables: pc.Variables,
		Prehooks:  pc.Prehooks,
		Posthooks: pc.Posthooks,
	}
}

// activeDots computes the dots of the selection and checks every source
// path up front, so a bad path fails the run rather than one dot.
func (s *session) activeDots(selected []string) ([]registry.Dot, error) {
	dots, err := s.registry.ActiveDots(selected)
	if err != nil {
		return nil, err
	}
	for _, d := range dots {
		if _, err := s.paths.Source(d.Source); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigInvalid, "dot %q (%s)", d.Label(), d.Profile)
		}
	}
	return dots, nil
}

// model builds the variable model: the system overlay first, then for the
// base and each expanded profile its variable files followed by its inline
// variables.
func (s *session) model(layers []registry.Profile) (*vars.Model, error) {
	overlays := []vars.Overlay{vars.System(s.paths.Home())}

	for _, layer := range layers {
		for _, file := range layer.VarFiles {
			path, err := s.paths.Source(file)
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigInvalid, "variable file of %s", layer.Name)
			}
			overlay, err := vars.LoadFile(s.fs, path)
			if err != nil {
				return nil, err
			}
			overlay.Name = layer.Name + ":" + file
			overlays = append(overlays, overlay)
		}

		inline, err := vars.Flatten(layer.Name, layer.Variables)
		if err != nil {
			return nil, err
		}
		overlays = append(overlays, inline)
	}

	return vars.NewModel(overlays...), nil
}

func profileNames(profiles []registry.Profile) []string {
	names := make([]string, 0, len(profiles))
	for _, p := range profiles {
		if p.Name != registry.BaseProfile {
			names = append(names, p.Name)
		}
	}
	return names
}
