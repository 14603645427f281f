//go:build !windows

package keepset

import "fmt"

// NewSystemSource fails on platforms without a Windows Installer service.
// Tests and embedders supply their own Source instead.
func NewSystemSource() (Source, error) {
	return nil, fmt.Errorf("%w: no installer service on this platform", ErrUnavailable)
}
