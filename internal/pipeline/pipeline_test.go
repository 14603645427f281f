package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"msisweep/internal/config"
	"msisweep/internal/keepset"
	"msisweep/internal/pipeline"
	"msisweep/internal/report"
	"msisweep/internal/runlog"
	"msisweep/internal/testutil"
)

// populate builds one file per classification: a.msi is kept, the
// Acrobat-named file is vendor-excluded, c.msp is orphaned.
func populate(fx *testutil.CacheFixture) {
	fx.AddFile("a.msi", 100)
	fx.AddFile("AcrobatUpdate.msi", 200)
	fx.AddFile("orphans/c.msp", 300)
}

func run(t *testing.T, fx *testutil.CacheFixture, dryRun bool, mode config.DisposalMode) *report.RunReport {
	t.Helper()

	cfg, err := config.NewRun(fx.CacheDir, dryRun, mode, fx.QuarDir,
		[]string{"Acrobat"}, 2, filepath.Join(fx.RootDir, "run.log"))
	if err != nil {
		t.Fatalf("NewRun: %v", err)
	}

	src := &testutil.FakeKeepSource{Products: []string{`C:\Windows\Installer\a.msi`}}
	p := pipeline.New(cfg, src, nil, runlog.New(cfg.LogFile))

	rep, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return rep
}

func TestDryRunClassifiesWithoutMutating(t *testing.T) {
	fx := testutil.NewCacheFixture(t)
	populate(fx)
	before := testutil.Snapshot(t, fx.CacheDir)

	rep := run(t, fx, true, config.ModeDelete)

	if rep.Kept.Count != 1 || rep.Excluded.Count != 1 || rep.Orphaned.Count != 1 {
		t.Errorf("counts = %d/%d/%d, want 1/1/1",
			rep.Kept.Count, rep.Excluded.Count, rep.Orphaned.Count)
	}
	if rep.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", rep.Skipped)
	}

	after := testutil.Snapshot(t, fx.CacheDir)
	if !reflect.DeepEqual(before, after) {
		t.Errorf("dry run mutated the tree:\nbefore: %v\nafter:  %v", before, after)
	}
}

func TestDeleteRunRemovesOrphansAndPrunes(t *testing.T) {
	fx := testutil.NewCacheFixture(t)
	populate(fx)

	rep := run(t, fx, false, config.ModeDelete)

	if rep.Deleted != 1 {
		t.Errorf("Deleted = %d, want 1", rep.Deleted)
	}
	if testutil.Exists(filepath.Join(fx.CacheDir, "orphans", "c.msp")) {
		t.Error("orphan still present")
	}
	// The orphans directory emptied out and must fall in the same run.
	if testutil.Exists(filepath.Join(fx.CacheDir, "orphans")) {
		t.Error("emptied directory survived the prune pass")
	}
	if rep.PrunedDirs != 1 {
		t.Errorf("PrunedDirs = %d, want 1", rep.PrunedDirs)
	}
	if !testutil.Exists(filepath.Join(fx.CacheDir, "a.msi")) {
		t.Error("kept file removed")
	}
	if !testutil.Exists(filepath.Join(fx.CacheDir, "AcrobatUpdate.msi")) {
		t.Error("vendor-excluded file removed")
	}
}

func TestQuarantineRunMovesOrphans(t *testing.T) {
	fx := testutil.NewCacheFixture(t)
	populate(fx)

	rep := run(t, fx, false, config.ModeQuarantine)

	if rep.Moved != 1 {
		t.Errorf("Moved = %d, want 1", rep.Moved)
	}
	if !testutil.Exists(filepath.Join(fx.QuarDir, "c.msp")) {
		t.Error("orphan missing from quarantine")
	}
	if testutil.Exists(filepath.Join(fx.CacheDir, "orphans", "c.msp")) {
		t.Error("orphan still present in cache")
	}
}

func TestKeepSetFailureAbortsBeforeAnyMutation(t *testing.T) {
	fx := testutil.NewCacheFixture(t)
	populate(fx)
	before := testutil.Snapshot(t, fx.RootDir)

	cfg, err := config.NewRun(fx.CacheDir, false, config.ModeDelete, "", nil, 2, "")
	if err != nil {
		t.Fatalf("NewRun: %v", err)
	}

	src := &testutil.FakeKeepSource{ProductsErr: errors.New("rpc unavailable")}
	_, err = pipeline.New(cfg, src, nil, nil).Run(context.Background())
	if !errors.Is(err, keepset.ErrUnavailable) {
		t.Fatalf("Run error = %v, want ErrUnavailable", err)
	}

	after := testutil.Snapshot(t, fx.RootDir)
	if !reflect.DeepEqual(before, after) {
		t.Error("tree changed despite fatal keep-set failure")
	}
}

func TestInvalidVendorPatternIsFatal(t *testing.T) {
	fx := testutil.NewCacheFixture(t)
	populate(fx)

	cfg, err := config.NewRun(fx.CacheDir, true, config.ModeNoAction, "",
		[]string{"(unclosed"}, 2, "")
	if err != nil {
		t.Fatalf("NewRun: %v", err)
	}

	src := &testutil.FakeKeepSource{}
	if _, err := pipeline.New(cfg, src, nil, nil).Run(context.Background()); err == nil {
		t.Error("expected fatal error for invalid vendor pattern")
	}
}

func TestRunWritesAuditLine(t *testing.T) {
	fx := testutil.NewCacheFixture(t)
	populate(fx)

	run(t, fx, true, config.ModeDelete)

	data, err := os.ReadFile(filepath.Join(fx.RootDir, "run.log"))
	if err != nil {
		t.Fatalf("reading run log: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, "\t") {
		t.Error("audit line is not tab separated")
	}
	if !strings.Contains(line, "run completed") || !strings.Contains(line, "orphaned=1") {
		t.Errorf("unexpected audit line: %q", line)
	}
}

func TestAuditWriteFailureIsReportedNotFatal(t *testing.T) {
	fx := testutil.NewCacheFixture(t)
	populate(fx)

	// The log parent does not exist, so every append fails.
	cfg, err := config.NewRun(fx.CacheDir, true, config.ModeDelete, "", nil, 2,
		filepath.Join(fx.RootDir, "missing", "run.log"))
	if err != nil {
		t.Fatalf("NewRun: %v", err)
	}

	src := &testutil.FakeKeepSource{}
	rep, err := pipeline.New(cfg, src, nil, runlog.New(cfg.LogFile)).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	found := false
	for _, f := range rep.Failures {
		if strings.Contains(f.Reason, "audit") {
			found = true
		}
	}
	if !found {
		t.Errorf("audit write failure missing from report failures: %v", rep.Failures)
	}
}
