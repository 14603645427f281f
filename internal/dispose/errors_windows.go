//go:build windows

package dispose

import (
	"syscall"

	"golang.org/x/sys/windows"
)

// platformReason maps Windows-specific errnos that the POSIX names miss.
// A sharing or lock violation is the usual fate of a payload the installer
// service still has open.
func platformReason(errno syscall.Errno) (FailureReason, bool, bool) {
	switch errno {
	case syscall.Errno(windows.ERROR_SHARING_VIOLATION), syscall.Errno(windows.ERROR_LOCK_VIOLATION):
		return ReasonFileInUse, true, true
	case syscall.Errno(windows.ERROR_ACCESS_DENIED):
		return ReasonPermissionDenied, false, true
	}
	return ReasonUnknown, false, false
}
