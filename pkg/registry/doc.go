// Package registry holds the declared dots and profiles of a configuration
// and answers which dots are active for a selection of profiles.
//
// Profiles form an import graph. The graph is validated once, eagerly, when
// the registry is built: unknown imports and cycles are configuration errors
// reported before any dot is looked at. Expansion of a selection is a
// post-order walk, so an imported profile always precedes the profile that
// imports it and each profile appears once.
//
// The active dot list is the base dots followed by the dots of each expanded
// profile, in declaration order. A dot whose name matches an earlier dot
// overrides it in place. Two dots resolving to the same target are merged
// when they agree on source and render mode and are a conflict otherwise.
package registry
