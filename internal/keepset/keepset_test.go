package keepset_test

import (
	"errors"
	"testing"

	"msisweep/internal/keepset"
	"msisweep/internal/testutil"
)

func TestBuildCollapsesBothSources(t *testing.T) {
	src := &testutil.FakeKeepSource{
		Products: []string{`C:\Windows\Installer\1a2b3.msi`, `C:\Windows\Installer\sub\9f.msi`},
		Patches:  []string{`C:\Windows\Installer\77e.msp`, `C:\Windows\Installer\1a2b3.msi`},
	}

	ks, err := keepset.Build(src)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if ks.Len() != 3 {
		t.Errorf("Len = %d, want 3 (duplicates collapse)", ks.Len())
	}
	for _, name := range []string{"1a2b3.msi", "9f.msi", "77e.msp"} {
		if !ks.Contains(name) {
			t.Errorf("Contains(%q) = false, want true", name)
		}
	}
}

func TestContainsIsCaseInsensitiveBasenameOnly(t *testing.T) {
	src := &testutil.FakeKeepSource{
		Products: []string{`C:\Windows\Installer\ABCDeF.MSI`},
	}

	ks, err := keepset.Build(src)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{"lower-case query", "abcdef.msi", true},
		{"mixed-case query", "AbCdEf.Msi", true},
		{"full path query matches on basename", `D:\elsewhere\abcdef.msi`, true},
		{"different name", "other.msi", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ks.Contains(tt.query); got != tt.want {
				t.Errorf("Contains(%q) = %t, want %t", tt.query, got, tt.want)
			}
		})
	}
}

func TestBuildEmptyPatchSourceIsNotAnError(t *testing.T) {
	ks, err := keepset.Build(&testutil.FakeKeepSource{
		Products: []string{`C:\Windows\Installer\a.msi`},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if ks.Len() != 1 {
		t.Errorf("Len = %d, want 1", ks.Len())
	}
}

func TestBuildSourceErrorIsFatal(t *testing.T) {
	tests := []struct {
		name string
		src  *testutil.FakeKeepSource
	}{
		{"product enumeration fails", &testutil.FakeKeepSource{ProductsErr: errors.New("access denied")}},
		{"patch enumeration fails", &testutil.FakeKeepSource{PatchesErr: errors.New("service unavailable")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := keepset.Build(tt.src)
			if !errors.Is(err, keepset.ErrUnavailable) {
				t.Errorf("Build error = %v, want ErrUnavailable", err)
			}
		})
	}
}

func TestBuildSkipsBlankEntries(t *testing.T) {
	ks, err := keepset.Build(&testutil.FakeKeepSource{
		Products: []string{"", "  ", `C:\Windows\Installer\a.msi`},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if ks.Len() != 1 {
		t.Errorf("Len = %d, want 1", ks.Len())
	}
}
