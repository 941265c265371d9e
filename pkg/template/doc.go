// Package template implements dotlink's directive grammar and renderer.
//
// # Overview
//
// Dotfiles are opaque text. The only structure dotlink recognizes inside them
// is the variable directive:
//
//	{{ colors.background }}
//
// A directive opens with "{{", holds a dotted identifier made of
// [A-Za-z0-9_] segments separated by ".", and closes with "}}". Whitespace
// directly inside the markers is ignored, so "{{a.b}}" and "{{  a.b  }}" are
// the same directive. Everything outside the markers is passed through byte
// for byte, newlines included. There are no loops, conditionals, filters or
// escapes; a file that needs a literal "{{" cannot be rendered.
//
// # Scanning
//
// Scan turns a buffer into a lazy sequence of Literal and Directive tokens.
// The sequence holds no state of its own: each range over it rescans the
// (unmodified) buffer from the start, so the same sequence can be consumed
// any number of times. Scanning stops at the first malformed directive and
// yields a *ParseError carrying the byte offset of its opening marker and
// the offending fragment.
//
// # Rendering
//
// Render substitutes each directive with its value from a Resolver. It is
// pure: the same buffer and variables always give the same bytes. Failure is
// atomic; the first unresolved path in document order is reported as an
// *UnresolvedError and no partial output is returned, so callers never write
// half-rendered files.
package template
