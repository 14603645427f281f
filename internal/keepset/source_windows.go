//go:build windows

package keepset

import (
	"errors"
	"fmt"
	"path/filepath"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

var (
	modmsi = windows.NewLazySystemDLL("msi.dll")

	procMsiEnumProductsW      = modmsi.NewProc("MsiEnumProductsW")
	procMsiQueryProductStateW = modmsi.NewProc("MsiQueryProductStateW")
	procMsiGetProductInfoW    = modmsi.NewProc("MsiGetProductInfoW")
)

const (
	errorSuccess     = 0
	errorMoreData    = 234
	errorNoMoreItems = 259

	// INSTALLSTATE_DEFAULT: product is fully installed for this machine.
	installStateDefault = 5

	productCodeLen = 39 // {GUID} plus terminator
)

const userDataKey = `SOFTWARE\Microsoft\Windows\CurrentVersion\Installer\UserData`

// systemSource reads installer state from msi.dll and the per-user
// registry hierarchy.
type systemSource struct{}

// NewSystemSource returns the platform keep-set source.
func NewSystemSource() (Source, error) {
	if err := modmsi.Load(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &systemSource{}, nil
}

// ProductPackages enumerates every registered product and resolves the
// LocalPackage path for those in the fully-installed state.
func (s *systemSource) ProductPackages() ([]string, error) {
	var paths []string
	buf := make([]uint16, productCodeLen)

	for i := 0; ; i++ {
		ret, _, _ := procMsiEnumProductsW.Call(
			uintptr(i),
			uintptr(unsafe.Pointer(&buf[0])),
		)
		if ret == errorNoMoreItems {
			break
		}
		if ret != errorSuccess {
			return nil, fmt.Errorf("MsiEnumProducts index %d: errno %d", i, ret)
		}

		code := syscall.UTF16ToString(buf)
		state, _, _ := procMsiQueryProductStateW.Call(
			uintptr(unsafe.Pointer(&buf[0])),
		)
		if int32(state) != installStateDefault {
			continue
		}

		pkg, err := productInfo(code, "LocalPackage")
		if err != nil || pkg == "" {
			// A registered product with no cached payload keeps nothing.
			continue
		}
		paths = append(paths, pkg)
	}

	return paths, nil
}

// PatchPackages walks HKLM Installer\UserData: for every SID, each patch
// entry and each product's InstallProperties that expose a LocalPackage.
func (s *systemSource) PatchPackages() ([]string, error) {
	root, err := registry.OpenKey(registry.LOCAL_MACHINE, userDataKey, registry.ENUMERATE_SUB_KEYS)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			// No per-user hierarchy means zero additional entries.
			return nil, nil
		}
		return nil, fmt.Errorf("opening UserData hive: %w", err)
	}
	defer root.Close()

	sids, err := root.ReadSubKeyNames(-1)
	if err != nil {
		return nil, fmt.Errorf("reading UserData SIDs: %w", err)
	}

	var paths []string
	for _, sid := range sids {
		paths = append(paths, localPackagesUnder(filepath.Join(userDataKey, sid, "Patches"), "")...)
		paths = append(paths, localPackagesUnder(filepath.Join(userDataKey, sid, "Products"), "InstallProperties")...)
	}
	return paths, nil
}

// localPackagesUnder collects the LocalPackage value from every subkey of
// parent, optionally descending one more level into child. Missing keys or
// values are skipped silently; a stale registration is not an error.
func localPackagesUnder(parent, child string) []string {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, parent, registry.ENUMERATE_SUB_KEYS)
	if err != nil {
		return nil
	}
	defer key.Close()

	names, err := key.ReadSubKeyNames(-1)
	if err != nil {
		return nil
	}

	var paths []string
	for _, name := range names {
		sub := filepath.Join(parent, name)
		if child != "" {
			sub = filepath.Join(sub, child)
		}
		k, err := registry.OpenKey(registry.LOCAL_MACHINE, sub, registry.QUERY_VALUE)
		if err != nil {
			continue
		}
		if v, _, err := k.GetStringValue("LocalPackage"); err == nil && v != "" {
			paths = append(paths, v)
		}
		k.Close()
	}
	return paths
}

// productInfo wraps MsiGetProductInfoW with buffer growth on ERROR_MORE_DATA.
func productInfo(productCode, attribute string) (string, error) {
	codePtr, err := syscall.UTF16PtrFromString(productCode)
	if err != nil {
		return "", err
	}
	attrPtr, err := syscall.UTF16PtrFromString(attribute)
	if err != nil {
		return "", err
	}

	size := uint32(windows.MAX_PATH)
	for {
		buf := make([]uint16, size+1)
		n := size
		ret, _, _ := procMsiGetProductInfoW.Call(
			uintptr(unsafe.Pointer(codePtr)),
			uintptr(unsafe.Pointer(attrPtr)),
			uintptr(unsafe.Pointer(&buf[0])),
			uintptr(unsafe.Pointer(&n)),
		)
		switch ret {
		case errorSuccess:
			return syscall.UTF16ToString(buf[:n]), nil
		case errorMoreData:
			size = n
		default:
			return "", fmt.Errorf("MsiGetProductInfo(%s, %s): errno %d", productCode, attribute, ret)
		}
	}
}
