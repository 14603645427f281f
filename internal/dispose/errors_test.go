package dispose

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"testing"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantReason    FailureReason
		wantRetryable bool
	}{
		{"nil error", nil, 0, false},
		{"not exist", os.ErrNotExist, ReasonFileNotFound, false},
		{"permission", os.ErrPermission, ReasonPermissionDenied, false},
		{"eacces", syscall.EACCES, ReasonPermissionDenied, false},
		{"ebusy is retryable", syscall.EBUSY, ReasonFileInUse, true},
		{"enoent", syscall.ENOENT, ReasonFileNotFound, false},
		{"wrapped errno", fmt.Errorf("remove: %w", syscall.EBUSY), ReasonFileInUse, true},
		{"path error", &os.PathError{Op: "remove", Path: "x", Err: syscall.EACCES}, ReasonPermissionDenied, false},
		{"unknown", errors.New("mystery"), ReasonUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Categorize("/cache/a.msi", tt.err)
			if tt.err == nil {
				if got != nil {
					t.Fatalf("Categorize(nil) = %v, want nil", got)
				}
				return
			}
			if got.Reason != tt.wantReason {
				t.Errorf("Reason = %s, want %s", got.Reason, tt.wantReason)
			}
			if got.Retryable != tt.wantRetryable {
				t.Errorf("Retryable = %t, want %t", got.Retryable, tt.wantRetryable)
			}
		})
	}
}

func TestDisposalErrorMessage(t *testing.T) {
	err := Categorize("/cache/a.msi", syscall.EBUSY)
	msg := err.Error()
	if msg == "" {
		t.Fatal("empty error message")
	}
	if got := err.Reason.String(); got != "file is in use" {
		t.Errorf("Reason.String() = %q, want %q", got, "file is in use")
	}
}
