package runlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestEventAppendsTabSeparatedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "msisweep.log")

	l := New(path)
	fixed := time.Date(2026, 8, 31, 10, 30, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	if err := l.Event("restore point created"); err != nil {
		t.Fatalf("Event: %v", err)
	}
	if err := l.Event("run completed: orphaned=%d", 7); err != nil {
		t.Fatalf("Event: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0] != "2026-08-31 10:30:00\trestore point created" {
		t.Errorf("line 1 = %q", lines[0])
	}
	if lines[1] != "2026-08-31 10:30:00\trun completed: orphaned=7" {
		t.Errorf("line 2 = %q", lines[1])
	}
}

func TestEmptyPathDisablesLogging(t *testing.T) {
	l := New("")
	if err := l.Event("dropped"); err != nil {
		t.Errorf("Event on disabled logger = %v, want nil", err)
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	if err := l.Event("dropped"); err != nil {
		t.Errorf("Event on nil logger = %v, want nil", err)
	}
}
