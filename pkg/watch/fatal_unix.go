//go:build !windows

package watch

import (
	stderrors "errors"
	"syscall"
)

// isFatalFsnotifyError reports inotify resource exhaustion: the watch limit
// (ENOSPC) or the process and system descriptor limits (EMFILE, ENFILE).
func isFatalFsnotifyError(err error) bool {
	return stderrors.Is(err, syscall.ENOSPC) ||
		stderrors.Is(err, syscall.EMFILE) ||
		stderrors.Is(err, syscall.ENFILE)
}
