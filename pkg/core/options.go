package core

import (
	"io"
	"time"

	"github.com/arthur-debert/dotlink/pkg/filesystem"
)

// Options contains options shared by the pipeline entry points.
type Options struct {
	// ConfigPath of the main document; empty means the default location.
	ConfigPath string
	// DotfilesDir overrides the repository root.
	DotfilesDir string
	// HomeDir overrides where home-relative targets resolve.
	HomeDir string
	// Profiles selected for this run, in order.
	Profiles []string

	DryRun  bool
	Force   bool
	NoHooks bool
	// Prune removes links of declared dots that are not active.
	Prune bool

	// HookTimeout bounds each hook command; zero means no limit.
	HookTimeout time.Duration
	// HookStdout and HookStderr, when set, receive hook output as it runs.
	HookStdout io.Writer
	HookStderr io.Writer

	// FileSystem defaults to the OS filesystem.
	FileSystem filesystem.FS
}

func (o Options) fs() filesystem.FS {
	if o.FileSystem == nil {
		return filesystem.NewOS()
	}
	return o.FileSystem
}
