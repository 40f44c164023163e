package ports

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadSysfsFile(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name     string
		content  string
		expected string
		create   bool
	}{
		{"normal file", "FT123ABC\n", "FT123ABC", true},
		{"file with spaces", "  0403  \n", "0403", true},
		{"empty file", "", "", true},
		{"nonexistent file", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, tt.name)
			if tt.create {
				if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
					t.Fatalf("Setup failed: %v", err)
				}
			}

			if got := readSysfsFile(path); got != tt.expected {
				t.Errorf("readSysfsFile() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

// TestEnrichUSBInfo builds a mock sysfs tree the way the kernel lays it out:
// class/tty/ttyUSB0/device symlinks into the interface directory whose
// parent USB device directory carries the idVendor/idProduct/serial files.
func TestEnrichUSBInfo(t *testing.T) {
	tmpDir := t.TempDir()

	devicePath := filepath.Join(tmpDir, "devices", "usb5", "5-2.3.1")
	interfacePath := filepath.Join(devicePath, "5-2.3.1:1.0")
	ttyPath := filepath.Join(interfacePath, "ttyUSB0")
	classTtyDir := filepath.Join(tmpDir, "class", "tty", "ttyUSB0")

	if err := os.MkdirAll(ttyPath, 0755); err != nil {
		t.Fatalf("Failed to create device tree: %v", err)
	}
	if err := os.MkdirAll(classTtyDir, 0755); err != nil {
		t.Fatalf("Failed to create class/tty tree: %v", err)
	}

	deviceFiles := map[string]string{
		"idVendor":  "0403\n",
		"idProduct": "6001\n",
		"serial":    "DAE06LpX\n",
	}
	for name, content := range deviceFiles {
		if err := os.WriteFile(filepath.Join(devicePath, name), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}

	if err := os.Symlink(ttyPath, filepath.Join(classTtyDir, "device")); err != nil {
		t.Fatalf("Failed to create device symlink: %v", err)
	}

	info := Info{Name: "ttyUSB0", Path: "/dev/ttyUSB0"}
	enrichUSBInfo(&info, tmpDir)

	checks := []struct {
		field, got, expected string
	}{
		{"VendorID", info.VendorID, "0403"},
		{"ProductID", info.ProductID, "6001"},
		{"SerialNumber", info.SerialNumber, "DAE06LpX"},
	}
	for _, c := range checks {
		if c.got != c.expected {
			t.Errorf("%s = %q, expected %q", c.field, c.got, c.expected)
		}
	}
}

func TestEnrichUSBInfoMissingSysfs(t *testing.T) {
	info := Info{Name: "ttyUSB9", Path: "/dev/ttyUSB9"}
	enrichUSBInfo(&info, t.TempDir())

	if info.SerialNumber != "" || info.VendorID != "" {
		t.Errorf("Expected empty metadata for missing sysfs entry, got %+v", info)
	}
}

func TestListFiltersDevices(t *testing.T) {
	tests := []struct {
		name        string
		shouldMatch bool
	}{
		{"ttyUSB0", true},
		{"ttyACM2", true},
		{"ttyS0", true},
		{"ttyAMA0", true},
		{"tty1", false},
		{"console", false},
		{"ptmx", false},
		{"random", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matched := matchesAny(patterns, tt.name) && !matchesAny(excludePatterns, tt.name)
			if matched != tt.shouldMatch {
				t.Errorf("filter(%s) = %v, expected %v", tt.name, matched, tt.shouldMatch)
			}
		})
	}
}

func TestListMissingDevDir(t *testing.T) {
	if _, err := list(filepath.Join(t.TempDir(), "nope"), "/sys"); err == nil {
		t.Error("Expected error for missing device directory")
	}
}
