package config

import (
	"os"
	"path/filepath"
)

// DefaultWorkers bounds the classification walk's concurrent I/O.
const DefaultWorkers = 8

// DefaultVendorFilters is the safe default exclusion list. Adobe updaters
// are known to re-reference cached payloads outside regular installer
// state, so their packages are exempt unless the caller opts out.
var DefaultVendorFilters = []string{"Adobe", "Acrobat"}

// GetDefault returns the default configuration
func GetDefault() *File {
	return &File{
		CacheDir:      DefaultCacheDir(),
		QuarantineDir: "",
		LogFile:       "",
		VendorFilters: append([]string(nil), DefaultVendorFilters...),
		Workers:       DefaultWorkers,
	}
}

// DefaultQuarantineDir returns a sibling holding directory for cacheDir.
// It must never live inside the cache, which gets re-scanned and pruned.
func DefaultQuarantineDir(cacheDir string) string {
	return filepath.Clean(cacheDir) + ".quarantine"
}

// DefaultCacheDir resolves the OS installer-cache location.
func DefaultCacheDir() string {
	if windir := os.Getenv("WINDIR"); windir != "" {
		return filepath.Join(windir, "Installer")
	}
	if windir := os.Getenv("SystemRoot"); windir != "" {
		return filepath.Join(windir, "Installer")
	}
	return `C:\Windows\Installer`
}
