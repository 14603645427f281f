// Package pipeline wires the run end to end: keep set, vendor filter,
// classification walk, disposal, empty-directory pruning, report.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"msisweep/internal/classify"
	"msisweep/internal/config"
	"msisweep/internal/dispose"
	"msisweep/internal/keepset"
	"msisweep/internal/report"
	"msisweep/internal/runlog"
	"msisweep/internal/vendorfilter"
)

// Pipeline owns the collaborators of one run. The keep set and vendor
// filter are constructed fresh per Run call; no state crosses runs.
type Pipeline struct {
	cfg    *config.Run
	source keepset.Source
	signer vendorfilter.SubjectReader
	audit  *runlog.Logger
}

// New assembles a pipeline for the given run configuration.
func New(cfg *config.Run, source keepset.Source, signer vendorfilter.SubjectReader, audit *runlog.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, source: source, signer: signer, audit: audit}
}

// Run executes the pipeline. A returned error is fatal and means no
// orphan was touched beyond whatever the error message states; per-file
// failures are carried inside the report instead.
func (p *Pipeline) Run(ctx context.Context) (*report.RunReport, error) {
	start := time.Now()

	keep, err := keepset.Build(p.source)
	if err != nil {
		return nil, err
	}

	vendors, err := vendorfilter.New(p.cfg.VendorFilters, p.signer)
	if err != nil {
		return nil, err
	}

	executor := dispose.NewExecutor(p.cfg)
	// Surface an uncreatable quarantine before the walk even starts.
	if err := executor.EnsureQuarantine(); err != nil {
		return nil, err
	}

	classifier := classify.New(keep, vendors, p.cfg.Workers)
	result, err := classifier.Run(ctx, p.cfg.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("classification failed: %w", err)
	}

	if err := executor.Apply(ctx, result.Orphans()); err != nil {
		return nil, err
	}

	prune := dispose.PruneEmptyDirs(p.cfg.CacheDir, p.cfg.DryRun)

	rep := report.Build(result, prune, p.cfg, time.Since(start))

	err = p.audit.Event("run completed: mode=%s dry_run=%t kept=%d excluded=%d orphaned=%d moved=%d deleted=%d failed=%d pruned_dirs=%d",
		rep.Mode, rep.DryRun, rep.Kept.Count, rep.Excluded.Count, rep.Orphaned.Count,
		rep.Moved, rep.Deleted, rep.FailedActions(), rep.PrunedDirs)
	if err != nil {
		// A broken audit log must not fail a finished run.
		rep.Failures = append(rep.Failures, report.Failure{Reason: fmt.Sprintf("audit: %v", err)})
	}

	return rep, nil
}
