// Package vars holds the variable model used to render dotfiles.
//
// A Model is built from an ordered list of overlays. Each overlay maps dotted
// paths to string values; later overlays overwrite earlier ones path by path.
// Overriding is the point of profiles, so it is never an error. Values are
// always strings: numbers and booleans read from variable files are
// stringified when the file is loaded, never coerced afterwards.
package vars

import (
	"sort"
)

// Overlay is one named layer of variables.
type Overlay struct {
	Name   string
	Values map[string]string
}

// Entry is a resolved variable together with the overlay that supplied it.
type Entry struct {
	Path   string `json:"path"`
	Value  string `json:"value"`
	Origin string `json:"origin"`
}

// Model is an immutable, fully merged set of variables.
type Model struct {
	values  map[string]string
	origins map[string]string
}

// NewModel merges overlays in order, last writer wins.
func NewModel(overlays ...Overlay) *Model {
	m := &Model{
		values:  make(map[string]string),
		origins: make(map[string]string),
	}
	for _, overlay := range overlays {
		for path, value := range overlay.Values {
			m.values[path] = value
			m.origins[path] = overlay.Name
		}
	}
	return m
}

// Resolve returns the value of path.
func (m *Model) Resolve(path string) (string, bool) {
	value, ok := m.values[path]
	return value, ok
}

// Origin returns the name of the overlay that supplied path.
func (m *Model) Origin(path string) (string, bool) {
	origin, ok := m.origins[path]
	return origin, ok
}

// Len returns the number of distinct paths.
func (m *Model) Len() int {
	return len(m.values)
}

// Entries returns every variable sorted by path.
func (m *Model) Entries() []Entry {
	entries := make([]Entry, 0, len(m.values))
	for path, value := range m.values {
		entries = append(entries, Entry{Path: path, Value: value, Origin: m.origins[path]})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries
}
