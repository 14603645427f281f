// Package testutil provides fixtures for msisweep tests. All file
// operations use t.TempDir() for safe, isolated testing.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// CacheFixture is a throwaway installer-cache tree.
type CacheFixture struct {
	T        *testing.T
	RootDir  string
	CacheDir string
	QuarDir  string
}

// NewCacheFixture creates an empty cache directory plus a sibling
// quarantine path (not yet created; the executor owns its creation).
func NewCacheFixture(t *testing.T) *CacheFixture {
	t.Helper()

	root := t.TempDir()
	f := &CacheFixture{
		T:        t,
		RootDir:  root,
		CacheDir: filepath.Join(root, "Installer"),
		QuarDir:  filepath.Join(root, "Installer.quarantine"),
	}
	if err := os.MkdirAll(f.CacheDir, 0755); err != nil {
		t.Fatalf("creating cache dir: %v", err)
	}
	return f
}

// AddFile creates a file of the given size under the cache directory,
// creating intermediate directories. relPath uses forward slashes.
func (f *CacheFixture) AddFile(relPath string, size int) string {
	f.T.Helper()

	path := filepath.Join(f.CacheDir, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		f.T.Fatalf("creating parent of %s: %v", relPath, err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0644); err != nil {
		f.T.Fatalf("writing %s: %v", relPath, err)
	}
	return path
}

// AddDir creates a (possibly empty) directory under the cache directory.
func (f *CacheFixture) AddDir(relPath string) string {
	f.T.Helper()

	path := filepath.Join(f.CacheDir, filepath.FromSlash(relPath))
	if err := os.MkdirAll(path, 0755); err != nil {
		f.T.Fatalf("creating dir %s: %v", relPath, err)
	}
	return path
}

// Exists reports whether a path exists.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// Snapshot returns every path under root relative to it, sorted by walk
// order, for before/after tree comparisons.
func Snapshot(t *testing.T, root string) []string {
	t.Helper()

	var paths []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel != "." {
			paths = append(paths, rel)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("snapshotting %s: %v", root, err)
	}
	return paths
}

// FakeKeepSource is a keep-set source backed by fixed slices.
type FakeKeepSource struct {
	Products []string
	Patches  []string

	ProductsErr error
	PatchesErr  error
}

// ProductPackages implements keepset.Source.
func (s *FakeKeepSource) ProductPackages() ([]string, error) {
	return s.Products, s.ProductsErr
}

// PatchPackages implements keepset.Source.
func (s *FakeKeepSource) PatchPackages() ([]string, error) {
	return s.Patches, s.PatchesErr
}

// FakeSubjectReader resolves signer subjects from a map keyed by basename.
type FakeSubjectReader struct {
	Subjects map[string]string // basename -> subject
	Err      error
}

// Subject implements vendorfilter.SubjectReader.
func (r *FakeSubjectReader) Subject(path string) (string, error) {
	if r.Err != nil {
		return "", r.Err
	}
	if subject, ok := r.Subjects[filepath.Base(path)]; ok {
		return subject, nil
	}
	return "", os.ErrNotExist
}
