package d2xx

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestStatusNames(t *testing.T) {
	tests := []struct {
		status   Status
		expected string
	}{
		{StatusOK, "ok"},
		{StatusInvalidHandle, "invalid handle"},
		{StatusDeviceNotFound, "device not found"},
		{StatusDeviceNotOpened, "device not opened"},
		{StatusIOError, "io error"},
		{StatusInvalidBaudRate, "invalid baud rate"},
		{StatusNotSupported, "not supported"},
		{StatusDeviceListNotReady, "device list not ready"},
		{Status(99), "unknown status 99"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.expected {
			t.Errorf("Status(%d).String() = %q, expected %q", tt.status, got, tt.expected)
		}
	}
}

// Every nonzero native code must map onto a distinct named status.
func TestStatusMappingIsComplete(t *testing.T) {
	seen := map[string]Status{}
	for code := Status(0); code <= StatusDeviceListNotReady; code++ {
		name := code.String()
		if prev, dup := seen[name]; dup {
			t.Errorf("Status %d and %d share the name %q", prev, code, name)
		}
		seen[name] = code
	}
	if len(seen) != 20 {
		t.Errorf("Expected 20 named statuses, got %d", len(seen))
	}
}

func TestStatusErr(t *testing.T) {
	if err := statusErr("FT_Read", StatusOK); err != nil {
		t.Errorf("StatusOK should not produce an error, got %v", err)
	}

	err := statusErr("FT_Read", StatusIOError)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("Expected *StatusError, got %T", err)
	}
	if se.Op != "FT_Read" || se.Status != StatusIOError {
		t.Errorf("Unexpected StatusError contents: %+v", se)
	}
	if se.Error() != "d2xx: FT_Read: io error" {
		t.Errorf("Unexpected error text: %q", se.Error())
	}
}

func TestWalkCandidates(t *testing.T) {
	tmpDir := t.TempDir()

	nested := filepath.Join(tmpDir, "drivers", "ftdi")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	for _, name := range []string{
		filepath.Join(nested, "libftd2xx.so"),
		filepath.Join(tmpDir, "libftd2xx.so.1"),
		filepath.Join(tmpDir, "unrelated.so"),
	} {
		if err := os.WriteFile(name, nil, 0644); err != nil {
			t.Fatalf("Setup failed: %v", err)
		}
	}

	candidates := walkCandidates(tmpDir, libNames)
	if len(candidates) != 2 {
		t.Fatalf("Expected 2 candidates, got %d: %v", len(candidates), candidates)
	}
	for _, c := range candidates {
		base := filepath.Base(c)
		if base != "libftd2xx.so" && base != "libftd2xx.so.1" {
			t.Errorf("Unexpected candidate %s", c)
		}
	}
}

func TestWalkCandidatesEmptyRoot(t *testing.T) {
	if got := walkCandidates(t.TempDir(), libNames); len(got) != 0 {
		t.Errorf("Expected no candidates in empty directory, got %v", got)
	}
}

func TestCString(t *testing.T) {
	tests := []struct {
		buf      []byte
		expected string
	}{
		{[]byte{'D', 'A', 'E', 0, 0, 0}, "DAE"},
		{[]byte{0}, ""},
		{[]byte{'A', 'B'}, "AB"}, // no terminator, whole buffer
	}

	for _, tt := range tests {
		if got := cString(tt.buf); got != tt.expected {
			t.Errorf("cString(%v) = %q, expected %q", tt.buf, got, tt.expected)
		}
	}
}
