// Package runlog appends one tab-separated line per significant run event
// to an audit file. The format is for humans, never machine-parsed.
package runlog

import (
	"fmt"
	"os"
	"time"
)

const timeLayout = "2006-01-02 15:04:05"

// Logger writes append-only audit lines. A nil Logger or an empty path
// disables logging without error.
type Logger struct {
	path string
	now  func() time.Time
}

// New creates a Logger writing to path. An empty path disables it.
func New(path string) *Logger {
	return &Logger{path: path, now: time.Now}
}

// Event appends "<timestamp>\t<message>" to the log file, creating it on
// first use.
func (l *Logger) Event(format string, args ...any) error {
	if l == nil || l.path == "" {
		return nil
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("%s\t%s\n", l.now().Format(timeLayout), fmt.Sprintf(format, args...))
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("writing run log: %w", err)
	}
	return nil
}
