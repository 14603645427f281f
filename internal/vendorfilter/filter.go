// Package vendorfilter decides whether a cache file is exempt from
// disposal because it belongs to a vendor the operator chose to spare.
package vendorfilter

import (
	"fmt"
	"path/filepath"
	"regexp"
)

// SubjectReader retrieves the signer-certificate subject of a file.
// Implementations return an error for unsigned or unreadable files; the
// filter treats every such error as "no match for this check".
type SubjectReader interface {
	Subject(path string) (string, error)
}

// Filter is a pure exclusion predicate. Patterns are unanchored,
// case-insensitive regular expressions; a partial match is a match.
type Filter struct {
	patterns []*regexp.Regexp
	signer   SubjectReader
}

// New compiles the given patterns. An invalid pattern is a configuration
// error and fails construction.
func New(patterns []string, signer SubjectReader) (*Filter, error) {
	f := &Filter{signer: signer}
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("invalid vendor pattern %q: %w", p, err)
		}
		f.patterns = append(f.patterns, re)
	}
	return f, nil
}

// Empty reports whether the filter has no patterns at all.
func (f *Filter) Empty() bool {
	return len(f.patterns) == 0
}

// Matches reports whether any pattern matches text.
func (f *Filter) Matches(text string) bool {
	for _, re := range f.patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// IsExcluded applies the same predicate to two independent inputs: the
// bare filename, and the file's signer subject when one can be read.
func (f *Filter) IsExcluded(path string) bool {
	if f.Empty() {
		return false
	}
	if f.Matches(filepath.Base(path)) {
		return true
	}
	if f.signer != nil {
		if subject, err := f.signer.Subject(path); err == nil && f.Matches(subject) {
			return true
		}
	}
	return false
}
