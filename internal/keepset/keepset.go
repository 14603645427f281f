// Package keepset builds the set of installer-cache filenames that are
// still referenced by installed products or applied patches. Classification
// must never run against a partial set: a missing reference here turns into
// a destructive false positive downstream.
package keepset

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnavailable indicates the installer state could not be queried at all.
// This is fatal for a run; proceeding would misclassify in-use files.
var ErrUnavailable = errors.New("installer state unavailable")

// Source enumerates installed package references. Implementations return
// full local paths; only the basename is significant to the keep set.
type Source interface {
	// ProductPackages returns the cached package path of every fully
	// installed product.
	ProductPackages() ([]string, error)
	// PatchPackages returns cached package paths recorded in the per-user
	// installation hierarchy: applied patches plus per-product install
	// properties. An absent hierarchy yields an empty slice, not an error.
	PatchPackages() ([]string, error)
}

// KeepSet is a read-only set of lower-cased bare package filenames.
// Lookup is case-insensitive and matches on filename only, never full
// path: the installer cache relies on globally-unique payload names.
type KeepSet struct {
	names map[string]struct{}
}

// Build queries both provenance classes of src and collapses them into a
// single set. Any source error is fatal and wrapped in ErrUnavailable.
func Build(src Source) (*KeepSet, error) {
	products, err := src.ProductPackages()
	if err != nil {
		return nil, fmt.Errorf("%w: enumerating products: %v", ErrUnavailable, err)
	}

	patches, err := src.PatchPackages()
	if err != nil {
		return nil, fmt.Errorf("%w: enumerating patches: %v", ErrUnavailable, err)
	}

	s := &KeepSet{names: make(map[string]struct{}, len(products)+len(patches))}
	s.add(products)
	s.add(patches)
	return s, nil
}

func (s *KeepSet) add(paths []string) {
	for _, p := range paths {
		name := strings.ToLower(baseName(strings.TrimSpace(p)))
		if name == "" || name == "." {
			continue
		}
		s.names[name] = struct{}{}
	}
}

// Contains reports whether the basename of path is referenced.
func (s *KeepSet) Contains(path string) bool {
	_, ok := s.names[strings.ToLower(baseName(path))]
	return ok
}

// baseName splits on both separators: registry values are always
// Windows-style paths regardless of what the host filesystem uses.
func baseName(p string) string {
	if i := strings.LastIndexAny(p, `\/`); i >= 0 {
		p = p[i+1:]
	}
	return p
}

// Len returns the number of distinct referenced filenames.
func (s *KeepSet) Len() int {
	return len(s.names)
}
