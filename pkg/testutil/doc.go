// Package testutil provides filesystem fixtures for testing dotlink
// components.
//
// Key components:
//   - Environment: a temporary dotfiles repository and home directory, with
//     Paths wired to both and a recording FS for idempotence checks
//   - File helpers: create, read and assert on files and links
//
// Usage guidelines:
//   - Tests run against the real filesystem inside t.TempDir(); symlinks are
//     the artifact under test and in-memory filesystems do not model them
//   - All test data should be defined inline, not in external files
//   - Each test should be completely isolated with no shared state
package testutil
