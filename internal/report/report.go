// Package report aggregates the per-file record list into the run summary
// handed to the console and audit-log consumers. Pure aggregation, no I/O.
package report

import (
	"fmt"
	"time"

	"msisweep/internal/classify"
	"msisweep/internal/config"
	"msisweep/internal/dispose"
	"msisweep/pkg/utils"
)

// ClassTotals holds the count and cumulative size of one classification.
type ClassTotals struct {
	Count int    `json:"count" yaml:"count"`
	Bytes int64  `json:"bytes" yaml:"bytes"`
	Human string `json:"bytes_formatted" yaml:"bytes_formatted"`
}

// Failure is one recoverable per-file failure surfaced in the summary.
type Failure struct {
	Path   string `json:"path" yaml:"path"`
	Reason string `json:"reason" yaml:"reason"`
}

// RunReport is the immutable aggregate of a finished run.
type RunReport struct {
	Timestamp  string      `json:"timestamp" yaml:"timestamp"`
	Mode       string      `json:"mode" yaml:"mode"`
	DryRun     bool        `json:"dry_run" yaml:"dry_run"`
	Scanned    int         `json:"scanned" yaml:"scanned"`
	Kept       ClassTotals `json:"kept" yaml:"kept"`
	Excluded   ClassTotals `json:"excluded" yaml:"excluded"`
	Orphaned   ClassTotals `json:"orphaned" yaml:"orphaned"`
	Moved      int         `json:"moved" yaml:"moved"`
	Deleted    int         `json:"deleted" yaml:"deleted"`
	Skipped    int         `json:"skipped" yaml:"skipped"`
	PrunedDirs int         `json:"pruned_dirs" yaml:"pruned_dirs"`
	Failures   []Failure   `json:"failures" yaml:"failures"`
	Duration   string      `json:"duration" yaml:"duration"`

	// Records is the full audit trail, excluded from serialized output by
	// default consumers but available to the table format.
	Records []*classify.Record `json:"-" yaml:"-"`
}

// Build assembles the report from the classification result and the prune
// pass. The record list is not copied; it is immutable once the executor
// has run.
func Build(res *classify.Result, prune *dispose.PruneResult, cfg *config.Run, elapsed time.Duration) *RunReport {
	r := &RunReport{
		Timestamp: time.Now().Format(time.RFC3339),
		Mode:      cfg.Mode.String(),
		DryRun:    cfg.DryRun,
		Scanned:   len(res.Records),
		Kept:      totals(res, classify.Kept),
		Excluded:  totals(res, classify.Excluded),
		Orphaned:  totals(res, classify.Orphaned),
		Duration:  elapsed.Round(time.Millisecond).String(),
		Records:   res.Records,
	}

	for _, rec := range res.Records {
		switch rec.Outcome {
		case classify.Moved:
			r.Moved++
		case classify.Deleted:
			r.Deleted++
		case classify.Skipped:
			r.Skipped++
		case classify.Failed:
			r.Failures = append(r.Failures, Failure{Path: rec.Path, Reason: rec.FailReason})
		}
	}

	for _, err := range res.WalkErrors {
		r.Failures = append(r.Failures, Failure{Reason: fmt.Sprintf("scan: %v", err)})
	}

	if prune != nil {
		r.PrunedDirs = prune.Removed
		for _, err := range prune.Failures {
			r.Failures = append(r.Failures, Failure{Reason: fmt.Sprintf("prune: %v", err)})
		}
	}

	return r
}

// FailedActions counts disposal failures only, excluding scan and prune
// entries.
func (r *RunReport) FailedActions() int {
	n := 0
	for _, rec := range r.Records {
		if rec.Outcome == classify.Failed {
			n++
		}
	}
	return n
}

func totals(res *classify.Result, c classify.Classification) ClassTotals {
	bytes := res.Bytes(c)
	return ClassTotals{
		Count: res.Count(c),
		Bytes: bytes,
		Human: utils.FormatBytes(bytes),
	}
}
