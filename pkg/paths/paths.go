package paths

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/dotlink/pkg/errors"
)

// Environment variable names
const (
	// EnvDotfilesRoot is the fallback repository location
	EnvDotfilesRoot = "DOTFILES_ROOT"

	// EnvConfig overrides the configuration document location
	EnvConfig = "DOTLINK_CONFIG"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

const (
	// AppDirName is the directory name used under XDG locations
	AppDirName = "dotlink"

	// ConfigFileName is the name of the configuration document
	ConfigFileName = "dotlink.toml"
)

// Paths resolves dot sources and targets for one repository and home.
type Paths struct {
	dotfilesRoot string
	home         string
	usedFallback bool
}

// New creates a Paths for the given repository root. An empty root is
// discovered from the environment (see findDotfilesRoot).
func New(dotfilesRoot string) (*Paths, error) {
	p := &Paths{home: HomeDir()}

	if dotfilesRoot == "" {
		root, usedFallback, err := findDotfilesRoot()
		if err != nil {
			return nil, err
		}
		p.dotfilesRoot = root
		p.usedFallback = usedFallback
	} else {
		p.dotfilesRoot = ExpandHome(dotfilesRoot)
	}

	absRoot, err := filepath.Abs(p.dotfilesRoot)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for dotfiles root")
	}
	p.dotfilesRoot = filepath.Clean(absRoot)

	return p, nil
}

// WithHome returns a copy of p resolving home-relative targets against home.
func (p *Paths) WithHome(home string) *Paths {
	cp := *p
	cp.home = filepath.Clean(home)
	return &cp
}

// DotfilesRoot returns the root directory of the repository
func (p *Paths) DotfilesRoot() string {
	return p.dotfilesRoot
}

// Home returns the directory home-relative targets resolve against
func (p *Paths) Home() string {
	return p.home
}

// UsedFallback returns true if the current working directory was used as fallback
func (p *Paths) UsedFallback() bool {
	return p.usedFallback
}

// CheckHome fails when the home directory lies inside the repository root.
// Every link under home would then count as a link into the repository
// and be replaced without --force.
func (p *Paths) CheckHome() error {
	if p.home == "" || !p.IsInDotfiles(p.home) {
		return nil
	}
	return errors.Newf(errors.ErrConfigInvalid,
		"dotfiles root %s contains the home directory %s (set dotfiles_dir)", p.dotfilesRoot, p.home).
		WithDetail("dotfiles_dir", p.dotfilesRoot).
		WithDetail("home", p.home)
}

// Source resolves a repository-relative source path. Absolute sources and
// sources escaping the repository are rejected.
func (p *Paths) Source(rel string) (string, error) {
	if rel == "" {
		return "", errors.New(errors.ErrConfigInvalid, "empty source path")
	}
	if filepath.IsAbs(rel) {
		return "", errors.Newf(errors.ErrConfigInvalid, "source must be relative to the dotfiles root: %s", rel)
	}
	joined := filepath.Join(p.dotfilesRoot, rel)
	if !p.IsInDotfiles(joined) {
		return "", errors.Newf(errors.ErrConfigInvalid, "source escapes the dotfiles root: %s", rel)
	}
	return joined, nil
}

// Target resolves a deployment target. Absolute targets are cleaned, "~"
// prefixed and plain relative targets are taken relative to the home
// directory.
func (p *Paths) Target(target string) string {
	if target == "" {
		return ""
	}
	if target == "~" {
		return p.home
	}
	if strings.HasPrefix(target, "~/") {
		return filepath.Join(p.home, target[2:])
	}
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Join(p.home, target)
}

// IsInDotfiles reports whether path lies inside the repository root.
// Relative paths are not considered inside.
func (p *Paths) IsInDotfiles(path string) bool {
	if !filepath.IsAbs(path) {
		return false
	}
	rel, err := filepath.Rel(p.dotfilesRoot, filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// ResolveLink returns the absolute destination of a symlink whose raw
// Readlink value is dest and which lives at linkPath.
func ResolveLink(linkPath, dest string) string {
	if filepath.IsAbs(dest) {
		return filepath.Clean(dest)
	}
	return filepath.Clean(filepath.Join(filepath.Dir(linkPath), dest))
}

// ConfigFile returns the configuration document location: DOTLINK_CONFIG if
// set, otherwise $XDG_CONFIG_HOME/dotlink/dotlink.toml.
func ConfigFile() string {
	if path := os.Getenv(EnvConfig); path != "" {
		return ExpandHome(path)
	}
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = xdg.ConfigHome
	}
	return filepath.Join(configHome, AppDirName, ConfigFileName)
}

// HomeDir returns the user's home directory, preferring $HOME.
func HomeDir() string {
	if home := os.Getenv(EnvHome); home != "" {
		return home
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "/"
	}
	return home
}

// findDotfilesRoot determines the dotfiles root using the following priority:
// 1. DOTFILES_ROOT environment variable (if set)
// 2. Git repository root (found via 'git rev-parse --show-toplevel')
// 3. Current working directory (fallback)
func findDotfilesRoot() (string, bool, error) {
	if root := os.Getenv(EnvDotfilesRoot); root != "" {
		return ExpandHome(root), false, nil
	}

	gitRoot, err := findGitRoot()
	if err == nil && gitRoot != "" {
		return gitRoot, false, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", false, errors.Wrapf(err, errors.ErrFileAccess, "failed to get current directory")
	}

	return cwd, true, nil
}

// findGitRoot attempts to find the root of the current git repository
func findGitRoot() (string, error) {
	output, err := exec.Command("git", "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return "", fmt.Errorf("not a git repository: %w", err)
	}

	gitRoot := strings.TrimSpace(string(output))
	if gitRoot == "" {
		return "", errors.New(errors.ErrNotFound, "git root is empty")
	}
	return gitRoot, nil
}

// ExpandHome expands a leading ~ to the home directory
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	if len(path) == 1 {
		return HomeDir()
	}
	// Handle both ~/ and ~
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(HomeDir(), path[2:])
	}
	// ~something (not the user's home)
	return path
}
