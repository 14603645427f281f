//go:build !windows

package dispose

import "syscall"

func platformReason(errno syscall.Errno) (FailureReason, bool, bool) {
	return ReasonUnknown, false, false
}
