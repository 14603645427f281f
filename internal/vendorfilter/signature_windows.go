//go:build windows

package vendorfilter

import (
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modcrypt32 = windows.NewLazySystemDLL("crypt32.dll")

	procCryptQueryObject           = modcrypt32.NewProc("CryptQueryObject")
	procCryptMsgClose              = modcrypt32.NewProc("CryptMsgClose")
	procCertCloseStore             = modcrypt32.NewProc("CertCloseStore")
	procCertEnumCertsInStore       = modcrypt32.NewProc("CertEnumCertificatesInStore")
	procCertGetNameStringW         = modcrypt32.NewProc("CertGetNameStringW")
	procCertFreeCertificateContext = modcrypt32.NewProc("CertFreeCertificateContext")
)

const (
	certQueryObjectFile       = 1
	certQueryContentFlagAll   = 0x3FFE
	certQueryFormatFlagBinary = 0x2
	certNameSimpleDisplayType = 4
)

// authenticodeReader resolves signer subjects from embedded Authenticode
// signatures via crypt32.
type authenticodeReader struct{}

// NewSystemSubjectReader returns the platform signature reader.
func NewSystemSubjectReader() SubjectReader {
	return &authenticodeReader{}
}

// Subject returns the simple display name of the first certificate in the
// file's embedded signature. Installer payloads carry a single signer, so
// the first certificate is the leaf.
func (r *authenticodeReader) Subject(path string) (string, error) {
	pathPtr, err := syscall.UTF16PtrFromString(path)
	if err != nil {
		return "", err
	}

	var (
		hStore windows.Handle
		hMsg   windows.Handle
	)
	ret, _, callErr := procCryptQueryObject.Call(
		certQueryObjectFile,
		uintptr(unsafe.Pointer(pathPtr)),
		certQueryContentFlagAll,
		certQueryFormatFlagBinary,
		0,
		0, // encoding, out
		0, // content type, out
		0, // format type, out
		uintptr(unsafe.Pointer(&hStore)),
		uintptr(unsafe.Pointer(&hMsg)),
		0,
	)
	if ret == 0 {
		return "", fmt.Errorf("no readable signature in %s: %v", path, callErr)
	}
	defer procCryptMsgClose.Call(uintptr(hMsg))
	defer procCertCloseStore.Call(uintptr(hStore), 0)

	cert, _, _ := procCertEnumCertsInStore.Call(uintptr(hStore), 0)
	if cert == 0 {
		return "", fmt.Errorf("signature in %s carries no certificate", path)
	}
	defer procCertFreeCertificateContext.Call(cert)

	// First call sizes the buffer, second fills it.
	n, _, _ := procCertGetNameStringW.Call(cert, certNameSimpleDisplayType, 0, 0, 0, 0)
	if n <= 1 {
		return "", fmt.Errorf("certificate in %s has no subject", path)
	}
	buf := make([]uint16, n)
	procCertGetNameStringW.Call(cert, certNameSimpleDisplayType, 0, 0,
		uintptr(unsafe.Pointer(&buf[0])), n)

	return syscall.UTF16ToString(buf), nil
}
