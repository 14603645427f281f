// Package classify walks the installer cache and sorts every candidate
// payload into kept, excluded, or orphaned.
package classify

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"msisweep/internal/keepset"
	"msisweep/internal/vendorfilter"
)

// Classification is the verdict for a single cache file.
type Classification int

const (
	// Kept files are referenced by installed products or applied patches.
	Kept Classification = iota
	// Excluded files match a vendor exclusion pattern.
	Excluded
	// Orphaned files are referenced by nothing and may be disposed of.
	Orphaned
)

// String returns a human-readable classification name
func (c Classification) String() string {
	switch c {
	case Kept:
		return "kept"
	case Excluded:
		return "excluded"
	case Orphaned:
		return "orphaned"
	default:
		return "unknown"
	}
}

// Outcome tracks what the disposal stage did to a record.
type Outcome int

const (
	// Pending means no disposal action has run yet.
	Pending Outcome = iota
	// Moved means the file now lives in the quarantine directory.
	Moved
	// Deleted means the file was permanently removed.
	Deleted
	// Skipped means dry-run reported a would-be action without I/O.
	Skipped
	// Failed means the disposal action did not succeed; see FailReason.
	Failed
)

// String returns a human-readable outcome name
func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Moved:
		return "moved"
	case Deleted:
		return "deleted"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Record is the audit-trail entry for one discovered cache file. It is
// created during the walk, classified immediately, and mutated exactly
// once afterwards (the outcome fields, by the disposal executor).
type Record struct {
	Path       string
	Name       string
	Size       int64
	Class      Classification
	Outcome    Outcome
	FailReason string
}

// Result is the finished, single-pass output of one classification walk.
type Result struct {
	Records    []*Record
	WalkErrors []error
}

// Count returns the number of records with the given classification.
func (r *Result) Count(c Classification) int {
	n := 0
	for _, rec := range r.Records {
		if rec.Class == c {
			n++
		}
	}
	return n
}

// Bytes returns the cumulative size of records with the given classification.
func (r *Result) Bytes(c Classification) int64 {
	var total int64
	for _, rec := range r.Records {
		if rec.Class == c {
			total += rec.Size
		}
	}
	return total
}

// Orphans returns the records eligible for disposal, in walk order.
func (r *Result) Orphans() []*Record {
	var out []*Record
	for _, rec := range r.Records {
		if rec.Class == Orphaned {
			out = append(out, rec)
		}
	}
	return out
}

// Classifier streams the cache walk through the keep set and the vendor
// filter. The keep set is immutable and shared across workers lock-free.
type Classifier struct {
	keep    *keepset.KeepSet
	vendors *vendorfilter.Filter
	workers int
}

// New creates a Classifier with a bounded worker count.
func New(keep *keepset.KeepSet, vendors *vendorfilter.Filter, workers int) *Classifier {
	if workers <= 0 {
		workers = 1
	}
	return &Classifier{keep: keep, vendors: vendors, workers: workers}
}

// Run walks cacheDir once, classifying every .msi/.msp file. Unreadable
// entries are recorded as walk errors and skipped; only a missing cache
// root fails the run.
func (c *Classifier) Run(ctx context.Context, cacheDir string) (*Result, error) {
	result := &Result{}

	err := filepath.WalkDir(cacheDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == cacheDir {
				return fmt.Errorf("cache directory unreadable: %w", err)
			}
			result.WalkErrors = append(result.WalkErrors, fmt.Errorf("skipping %s: %w", path, err))
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !candidateExt(path) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			result.WalkErrors = append(result.WalkErrors, fmt.Errorf("skipping %s: %w", path, err))
			return nil
		}

		result.Records = append(result.Records, &Record{
			Path: path,
			Name: filepath.Base(path),
			Size: info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Signature lookups dominate the cost, so classification of the
	// collected records fans out. Each worker owns distinct slice slots;
	// no locking is needed.
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for _, rec := range result.Records {
		rec := rec
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rec.Class = c.classify(rec)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return result, nil
}

// classify applies the verdict order the pipeline depends on: kept status
// wins over vendor exclusion, because deleting an in-use file is the
// worst-case failure this tool exists to prevent.
func (c *Classifier) classify(rec *Record) Classification {
	if c.keep.Contains(rec.Name) {
		return Kept
	}
	if c.vendors != nil && c.vendors.IsExcluded(rec.Path) {
		return Excluded
	}
	return Orphaned
}

func candidateExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msi", ".msp":
		return true
	}
	return false
}
