package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DisposalMode selects what happens to orphaned cache files.
type DisposalMode int

const (
	// ModeNoAction classifies and reports but performs no disposal.
	ModeNoAction DisposalMode = iota
	// ModeDelete permanently removes orphaned files.
	ModeDelete
	// ModeQuarantine moves orphaned files into a holding directory.
	ModeQuarantine
)

// String returns a human-readable mode name
func (m DisposalMode) String() string {
	switch m {
	case ModeNoAction:
		return "no-action"
	case ModeDelete:
		return "delete"
	case ModeQuarantine:
		return "quarantine"
	default:
		return "unknown"
	}
}

// File represents the on-disk application configuration
type File struct {
	CacheDir      string   `yaml:"cache_dir"`
	QuarantineDir string   `yaml:"quarantine_dir"`
	LogFile       string   `yaml:"log_file"`
	VendorFilters []string `yaml:"vendor_filters"`
	Workers       int      `yaml:"workers"`
}

// Run is the immutable per-run configuration consumed by the pipeline.
// It is built once by the entry point (flags, config file, or the
// interactive mode) and passed by pointer; no component mutates it.
type Run struct {
	// CacheDir is the root of the installer cache to scan.
	CacheDir string
	// DryRun disables every filesystem mutation when true.
	DryRun bool
	// Mode is only meaningful when DryRun is false.
	Mode DisposalMode
	// QuarantineDir is required when Mode is ModeQuarantine.
	QuarantineDir string
	// VendorFilters are case-insensitive exclusion patterns, deduplicated
	// with original order preserved.
	VendorFilters []string
	// Workers bounds the classification walk's I/O parallelism.
	Workers int
	// LogFile receives one tab-separated audit line per run event.
	LogFile string
}

// NewRun builds a validated Run. Vendor patterns are deduplicated
// case-insensitively; the first occurrence wins.
func NewRun(cacheDir string, dryRun bool, mode DisposalMode, quarantineDir string, vendors []string, workers int, logFile string) (*Run, error) {
	if cacheDir == "" {
		return nil, fmt.Errorf("cache directory is required")
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}

	r := &Run{
		CacheDir:      filepath.Clean(cacheDir),
		DryRun:        dryRun,
		Mode:          mode,
		QuarantineDir: quarantineDir,
		VendorFilters: dedupe(vendors),
		Workers:       workers,
		LogFile:       logFile,
	}

	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Run) validate() error {
	if r.Mode == ModeQuarantine && !r.DryRun {
		if r.QuarantineDir == "" {
			return fmt.Errorf("quarantine mode requires a quarantine directory")
		}
		quar := filepath.Clean(r.QuarantineDir)
		if strings.EqualFold(quar, r.CacheDir) {
			return fmt.Errorf("quarantine directory must be distinct from cache directory")
		}
		// A quarantine inside the cache would be re-scanned on the next run
		// and swept by the empty-directory pruner.
		rel, err := filepath.Rel(r.CacheDir, quar)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return fmt.Errorf("quarantine directory must not be inside cache directory")
		}
		r.QuarantineDir = quar
	}
	return nil
}

// dedupe removes duplicate patterns case-insensitively, keeping order
func dedupe(patterns []string) []string {
	seen := make(map[string]struct{}, len(patterns))
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		key := strings.ToLower(p)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Load loads configuration from a file, falling back to defaults when the
// file does not exist.
func Load(configPath string) (*File, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefault(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := GetDefault()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Save saves configuration to a file
func Save(cfg *File, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate validates the file configuration
func (c *File) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0")
	}
	if c.CacheDir != "" && !filepath.IsAbs(c.CacheDir) {
		return fmt.Errorf("cache_dir must be absolute: %s", c.CacheDir)
	}
	if c.QuarantineDir != "" && !filepath.IsAbs(c.QuarantineDir) {
		return fmt.Errorf("quarantine_dir must be absolute: %s", c.QuarantineDir)
	}
	return nil
}

// GetConfigPath returns the default config path
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "msisweep", "config.yaml"), nil
}
