package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestNewRunDedupesVendorFilters(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{"exact duplicates", []string{"Adobe", "Adobe"}, []string{"Adobe"}},
		{"case-insensitive duplicates", []string{"Adobe", "adobe", "ADOBE"}, []string{"Adobe"}},
		{"order preserved", []string{"Acrobat", "Adobe", "acrobat"}, []string{"Acrobat", "Adobe"}},
		{"blanks dropped", []string{" ", "", "Adobe"}, []string{"Adobe"}},
		{"whitespace trimmed", []string{" Adobe ", "Office"}, []string{"Adobe", "Office"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRun(t.TempDir(), true, ModeNoAction, "", tt.input, 4, "")
			if err != nil {
				t.Fatalf("NewRun: %v", err)
			}
			if !reflect.DeepEqual(r.VendorFilters, tt.expected) {
				t.Errorf("VendorFilters = %v, want %v", r.VendorFilters, tt.expected)
			}
		})
	}
}

func TestNewRunQuarantineValidation(t *testing.T) {
	cache := filepath.Join(t.TempDir(), "Installer")

	tests := []struct {
		name       string
		dryRun     bool
		mode       DisposalMode
		quarantine string
		wantErr    bool
	}{
		{"missing dir in quarantine mode", false, ModeQuarantine, "", true},
		{"same as cache", false, ModeQuarantine, cache, true},
		{"nested in cache", false, ModeQuarantine, filepath.Join(cache, "quar"), true},
		{"sibling dir ok", false, ModeQuarantine, cache + ".quarantine", false},
		{"dry run skips checks", true, ModeQuarantine, "", false},
		{"delete mode skips checks", false, ModeDelete, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRun(cache, tt.dryRun, tt.mode, tt.quarantine, nil, 4, "")
			if (err != nil) != tt.wantErr {
				t.Errorf("NewRun error = %v, wantErr %t", err, tt.wantErr)
			}
		})
	}
}

func TestNewRunRequiresCacheDir(t *testing.T) {
	if _, err := NewRun("", true, ModeNoAction, "", nil, 4, ""); err == nil {
		t.Error("expected error for empty cache dir")
	}
}

func TestNewRunDefaultsWorkers(t *testing.T) {
	r, err := NewRun(t.TempDir(), true, ModeNoAction, "", nil, 0, "")
	if err != nil {
		t.Fatalf("NewRun: %v", err)
	}
	if r.Workers != DefaultWorkers {
		t.Errorf("Workers = %d, want %d", r.Workers, DefaultWorkers)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg.VendorFilters, DefaultVendorFilters) {
		t.Errorf("VendorFilters = %v, want defaults %v", cfg.VendorFilters, DefaultVendorFilters)
	}
	if cfg.Workers != DefaultWorkers {
		t.Errorf("Workers = %d, want %d", cfg.Workers, DefaultWorkers)
	}
}

func TestLoadSaveRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.yaml")

	original := GetDefault()
	original.CacheDir = filepath.Join(t.TempDir(), "Installer")
	original.VendorFilters = []string{"Office", "Visio"}
	original.Workers = 2
	original.LogFile = filepath.Join(t.TempDir(), "msisweep.log")

	if err := Save(original, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(loaded, original) {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", loaded, original)
	}
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("workers: [not a number"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestFileValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*File)
		wantErr string
	}{
		{"negative workers", func(c *File) { c.Workers = -1 }, "workers"},
		{"relative cache dir", func(c *File) { c.CacheDir = "Installer" }, "cache_dir"},
		{"relative quarantine dir", func(c *File) { c.QuarantineDir = "quar" }, "quarantine_dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefault()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultQuarantineDir(t *testing.T) {
	got := DefaultQuarantineDir(filepath.Join("root", "Installer"))
	want := filepath.Join("root", "Installer") + ".quarantine"
	if got != want {
		t.Errorf("DefaultQuarantineDir = %q, want %q", got, want)
	}
}
