//go:build windows

package watch

import (
	stderrors "errors"
	"syscall"
)

// Win32 codes after which ReadDirectoryChangesW cannot recover.
const (
	errnoTooManyOpenFiles = syscall.Errno(4)
	errnoInvalidHandle    = syscall.Errno(6)
	errnoNotEnoughMemory  = syscall.Errno(8)
)

func isFatalFsnotifyError(err error) bool {
	return stderrors.Is(err, errnoTooManyOpenFiles) ||
		stderrors.Is(err, errnoInvalidHandle) ||
		stderrors.Is(err, errnoNotEnoughMemory)
}
