// Package hooks runs the shell commands bound to dots and to a whole run.
//
// Commands are interpreted by mvdan.cc/sh, so hooks behave the same on every
// host without depending on a system shell. They always run in the
// repository root. A non-zero exit is a result, not an error of the run:
// the caller records it as a warning and moves on.
package hooks
