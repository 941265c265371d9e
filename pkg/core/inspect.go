package core

import (
	"github.com/arthur-debert/dotlink/pkg/registry"
	"github.com/arthur-debert/dotlink/pkg/vars"
)

// VarsResult is the resolved variable model of a selection.
type VarsResult struct {
	Profiles []string     `json:"profiles"`
	Entries  []vars.Entry `json:"variables"`
}

// Vars resolves the variable model for the selected profiles.
func Vars(opts Options) (*VarsResult, error) {
	s, err := openSession(opts)
	if err != nil {
		return nil, err
	}
	layers, err := s.registry.Layers(opts.Profiles)
	if err != nil {
		return nil, err
	}
	model, err := s.model(layers)
	if err != nil {
		return nil, err
	}
	return &VarsResult{Profiles: profileNames(layers), Entries: model.Entries()}, nil
}

// ProfileInfo summarizes one declared profile.
type ProfileInfo struct {
	Name    string   `json:"name"`
	Imports []string `json:"imports,omitempty"`
	// Expanded is the profile plus everything it imports, in precedence order.
	Expanded []string `json:"expanded"`
	Dots     int      `json:"dots"`
}

// Profiles lists the declared profiles, sorted by name. The base settings
// come first under registry.BaseProfile.
func Profiles(opts Options) ([]ProfileInfo, error) {
	s, err := openSession(opts)
	if err != nil {
		return nil, err
	}

	base := s.registry.Base()
	infos := []ProfileInfo{{Name: registry.BaseProfile, Expanded: []string{}, Dots: len(base.Dots)}}
	for _, name := range s.registry.Names() {
		p, _ := s.registry.Profile(name)
		expanded, err := s.registry.Expand([]string{name})
		if err != nil {
			return nil, err
		}
		infos = append(infos, ProfileInfo{
			Name:     name,
			Imports:  p.Imports,
			Expanded: profileNames(expanded),
			Dots:     len(p.Dots),
		})
	}
	return infos, nil
}
