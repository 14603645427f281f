//go:build !windows

package vendorfilter

import "fmt"

type noSignatures struct{}

// NewSystemSubjectReader returns a reader that never matches; there is no
// Authenticode on this platform. Filename matching still applies.
func NewSystemSubjectReader() SubjectReader {
	return noSignatures{}
}

func (noSignatures) Subject(path string) (string, error) {
	return "", fmt.Errorf("signature inspection unavailable on this platform")
}
