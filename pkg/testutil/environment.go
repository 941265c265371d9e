// pkg/testutil/environment.go
// DEPENDENCIES: pkg/paths, pkg/filesystem
// PURPOSE: Isolated repository + home directory for reconciliation tests

package testutil

import (
	"path/filepath"
	"testing"

	"github.com/arthur-debert/dotlink/pkg/filesystem"
	"github.com/arthur-debert/dotlink/pkg/paths"
)

// Environment is a temporary dotfiles repository and home directory.
type Environment struct {
	// Core paths
	DotfilesRoot string
	HomeDir      string

	// Core dependencies
	Paths *paths.Paths
	FS    *filesystem.Recording

	t *testing.T
}

// NewEnvironment creates an isolated environment under t.TempDir().
func NewEnvironment(t *testing.T) *Environment {
	t.Helper()

	base := t.TempDir()
	// Resolve symlinked temp dirs (macOS /var) so link destinations compare equal.
	if resolved, err := filepath.EvalSymlinks(base); err == nil {
		base = resolved
	}

	env := &Environment{
		DotfilesRoot: CreateDir(t, base, "dotfiles"),
		HomeDir:      CreateDir(t, base, "home"),
		FS:           filesystem.NewRecording(filesystem.NewOS()),
		t:            t,
	}

	p, err := paths.New(env.DotfilesRoot)
	if err != nil {
		t.Fatalf("Failed to create paths: %v", err)
	}
	env.Paths = p.WithHome(env.HomeDir)

	return env
}

// FileTree represents a directory structure for testing. Values are either
// file content strings or nested FileTrees.
type FileTree map[string]interface{}

// WithFileTree creates tree inside the repository.
func (env *Environment) WithFileTree(tree FileTree) *Environment {
	env.t.Helper()
	createFileTree(env.t, env.DotfilesRoot, tree)
	return env
}

// WithHomeTree creates tree inside the home directory.
func (env *Environment) WithHomeTree(tree FileTree) *Environment {
	env.t.Helper()
	createFileTree(env.t, env.HomeDir, tree)
	return env
}

// Repo returns the absolute path of a repository-relative path.
func (env *Environment) Repo(rel string) string {
	return filepath.Join(env.DotfilesRoot, rel)
}

// Home returns the absolute path of a home-relative path.
func (env *Environment) Home(rel string) string {
	return filepath.Join(env.HomeDir, rel)
}

// createFileTree recursively creates a file tree
func createFileTree(t *testing.T, basePath string, tree FileTree) {
	t.Helper()

	for name, content := range tree {
		switch v := content.(type) {
		case string:
			CreateFile(t, basePath, name, v)
		case FileTree:
			createFileTree(t, CreateDir(t, basePath, name), v)
		default:
			t.Fatalf("Invalid file tree content type for %s: %T", name, content)
		}
	}
}
