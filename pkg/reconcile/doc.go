// Package reconcile brings deployment targets in line with the active dots.
//
// Nothing is remembered between runs. Every decision starts from inspecting
// the target as it is now: absent, a link to the dot's source, a link to some
// other path inside the repository, a link elsewhere, a regular file or a
// directory. A link whose destination lies inside the repository is taken to
// be one dotlink created and may be replaced. Anything else is a protected
// path and is only touched when forced. Directories are never replaced.
//
// Render dots are rendered fully in memory before anything is written, and
// each file is written through a temporary sibling and a rename, so a failed
// render leaves the target untouched. Unchanged content is not rewritten,
// which makes a second run over an unchanged configuration a no-op.
package reconcile
