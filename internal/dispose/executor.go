// Package dispose applies the configured disposal action to orphaned
// cache files and prunes directories left empty afterwards. It is the
// only component in the pipeline that mutates the filesystem.
package dispose

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"msisweep/internal/classify"
	"msisweep/internal/config"
)

// Executor applies the disposal mode to orphaned records. Kept and
// excluded records are never touched.
type Executor struct {
	cfg      *config.Run
	quarOnce sync.Once
	quarErr  error
}

// NewExecutor creates an Executor for one run.
func NewExecutor(cfg *config.Run) *Executor {
	return &Executor{cfg: cfg}
}

// EnsureQuarantine creates the quarantine directory if the run needs one.
// An uncreatable quarantine is a fatal precondition: it must surface
// before any file is touched.
func (e *Executor) EnsureQuarantine() error {
	if e.cfg.DryRun || e.cfg.Mode != config.ModeQuarantine {
		return nil
	}
	e.quarOnce.Do(func() {
		if err := os.MkdirAll(e.cfg.QuarantineDir, 0755); err != nil {
			e.quarErr = fmt.Errorf("cannot create quarantine directory %s: %w", e.cfg.QuarantineDir, err)
		}
	})
	return e.quarErr
}

// Apply runs the disposal action over every orphaned record, updating each
// record's outcome in place. A single file's failure never aborts the
// batch; only cancellation stops the loop, and only between files.
func (e *Executor) Apply(ctx context.Context, records []*classify.Record) error {
	if err := e.EnsureQuarantine(); err != nil {
		return err
	}

	for _, rec := range records {
		if rec.Class != classify.Orphaned {
			continue
		}
		// Cancellation is honored before starting a file, never in the
		// middle of one: a half-recorded quarantine move would leave the
		// audit trail inconsistent with the disk.
		if err := ctx.Err(); err != nil {
			return err
		}

		switch {
		case e.cfg.DryRun, e.cfg.Mode == config.ModeNoAction:
			rec.Outcome = classify.Skipped
		case e.cfg.Mode == config.ModeDelete:
			e.delete(rec)
		case e.cfg.Mode == config.ModeQuarantine:
			e.quarantine(rec)
		}
	}
	return nil
}

// retryDelays backs off on files the installer service may release shortly.
var retryDelays = []time.Duration{100 * time.Millisecond, 500 * time.Millisecond, 2 * time.Second}

func (e *Executor) delete(rec *classify.Record) {
	var lastErr *DisposalError
	for attempt := 0; ; attempt++ {
		err := os.Remove(rec.Path)
		if err == nil {
			rec.Outcome = classify.Deleted
			return
		}
		lastErr = Categorize(rec.Path, err)
		if !lastErr.Retryable || attempt >= len(retryDelays) {
			break
		}
		time.Sleep(retryDelays[attempt])
	}
	rec.Outcome = classify.Failed
	rec.FailReason = lastErr.Reason.String()
}

func (e *Executor) quarantine(rec *classify.Record) {
	dest := uniqueDest(e.cfg.QuarantineDir, rec.Name)
	if err := moveFile(rec.Path, dest); err != nil {
		delErr := Categorize(rec.Path, err)
		rec.Outcome = classify.Failed
		rec.FailReason = delErr.Reason.String()
		return
	}
	rec.Outcome = classify.Moved
}

// moveFile renames src to dest, falling back to copy-and-remove when the
// quarantine lives on a different volume.
func moveFile(src, dest string) error {
	err := os.Rename(src, dest)
	if err == nil {
		return nil
	}
	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) {
		return err
	}
	if err := copyFile(src, dest); err != nil {
		return err
	}
	return os.Remove(src)
}

// copyFile writes an exact copy at dest, refusing to clobber an existing
// file. A partial copy is removed before the error returns.
func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return err
	}
	return nil
}

// uniqueDest picks a collision-free destination name. Same-named payloads
// from different cache subdirectories all land in one flat quarantine.
func uniqueDest(dir, name string) string {
	dest := filepath.Join(dir, name)
	if _, err := os.Lstat(dest); errors.Is(err, fs.ErrNotExist) {
		return dest
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		dest = filepath.Join(dir, fmt.Sprintf("%s.%d%s", stem, i, ext))
		if _, err := os.Lstat(dest); errors.Is(err, fs.ErrNotExist) {
			return dest
		}
	}
}
