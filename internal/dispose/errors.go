package dispose

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

// FailureReason categorizes why a disposal action failed
type FailureReason int

const (
	ReasonPermissionDenied FailureReason = iota
	ReasonFileInUse
	ReasonFileNotFound
	ReasonInvalidPath
	ReasonUnknown
)

// String returns a human-readable failure reason
func (r FailureReason) String() string {
	switch r {
	case ReasonPermissionDenied:
		return "permission denied"
	case ReasonFileInUse:
		return "file is in use"
	case ReasonFileNotFound:
		return "file not found"
	case ReasonInvalidPath:
		return "invalid path"
	case ReasonUnknown:
		return "unknown error"
	default:
		return "unspecified error"
	}
}

// DisposalError is a per-file disposal failure with enough detail for the
// run report. It never aborts the batch.
type DisposalError struct {
	Path      string
	Reason    FailureReason
	Original  error
	Retryable bool
}

// Error implements the error interface
func (e *DisposalError) Error() string {
	return fmt.Sprintf("%s: %s (%v)", e.Path, e.Reason, e.Original)
}

// Categorize analyzes an error and returns a categorized DisposalError
func Categorize(path string, err error) *DisposalError {
	if err == nil {
		return nil
	}

	delErr := &DisposalError{
		Path:     path,
		Original: err,
		Reason:   ReasonUnknown,
	}

	if os.IsNotExist(err) {
		delErr.Reason = ReasonFileNotFound
		return delErr
	}
	if os.IsPermission(err) {
		delErr.Reason = ReasonPermissionDenied
		return delErr
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		if reason, retryable, ok := platformReason(errno); ok {
			delErr.Reason = reason
			delErr.Retryable = retryable
			return delErr
		}
		switch errno {
		case syscall.EACCES, syscall.EPERM:
			delErr.Reason = ReasonPermissionDenied
		case syscall.EBUSY, syscall.ETXTBSY:
			delErr.Reason = ReasonFileInUse
			delErr.Retryable = true
		case syscall.ENOENT:
			delErr.Reason = ReasonFileNotFound
		default:
			delErr.Reason = ReasonUnknown
		}
	}

	return delErr
}
