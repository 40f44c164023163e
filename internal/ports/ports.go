// Package ports enumerates serial ports known to the operating system and
// pairs each device path with the USB serial number reported by sysfs. The
// discovery layer uses these records to resolve a caller-supplied address
// into a serial number and vice versa.
package ports

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Info describes a single enumerated serial port. SerialNumber is empty when
// the port has no USB metadata (on-board UARTs, non-USB adapters).
type Info struct {
	Name         string
	Path         string
	SerialNumber string
	VendorID     string
	ProductID    string
}

// Regular expressions for USB-backed serial devices
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`^ttyUSB\d+$`), // USB serial adapters
	regexp.MustCompile(`^ttyACM\d+$`), // USB CDC/ACM devices
	regexp.MustCompile(`^ttyS\d+$`),   // Standard serial ports
	regexp.MustCompile(`^ttyAMA\d+$`), // ARM/Raspberry Pi serial
}

// Exclude patterns for virtual terminals and other non-serial devices
var excludePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^tty\d+$`),
	regexp.MustCompile(`^console$`),
	regexp.MustCompile(`^ptmx$`),
	regexp.MustCompile(`^pty.*$`),
}

// List returns the serial ports available on the system, sorted by path,
// each enriched with USB metadata where sysfs provides it.
func List() ([]Info, error) {
	return list("/dev", "/sys")
}

func list(devDir, sysDir string) ([]Info, error) {
	entries, err := os.ReadDir(devDir)
	if err != nil {
		return nil, err
	}

	var infos []Info
	for _, entry := range entries {
		name := entry.Name()

		if matchesAny(excludePatterns, name) || !matchesAny(patterns, name) {
			continue
		}

		fullPath := filepath.Join(devDir, name)
		if !isCharacterDevice(fullPath) {
			continue
		}

		info := Info{Name: name, Path: fullPath}
		enrichUSBInfo(&info, sysDir)
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Path < infos[j].Path })
	return infos, nil
}

func matchesAny(patterns []*regexp.Regexp, name string) bool {
	for _, pattern := range patterns {
		if pattern.MatchString(name) {
			return true
		}
	}
	return false
}

// isCharacterDevice checks if the given path is a character device
func isCharacterDevice(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// enrichUSBInfo fills USB metadata by following the sysfs device link and
// walking up to the USB device directory (the first ancestor carrying an
// idVendor attribute).
func enrichUSBInfo(info *Info, sysDir string) {
	deviceLink := filepath.Join(sysDir, "class", "tty", info.Name, "device")
	devicePath, err := filepath.EvalSymlinks(deviceLink)
	if err != nil {
		return
	}

	for dir := devicePath; dir != "/" && dir != "."; dir = filepath.Dir(dir) {
		if _, err := os.Stat(filepath.Join(dir, "idVendor")); err != nil {
			continue
		}
		info.VendorID = readSysfsFile(filepath.Join(dir, "idVendor"))
		info.ProductID = readSysfsFile(filepath.Join(dir, "idProduct"))
		info.SerialNumber = readSysfsFile(filepath.Join(dir, "serial"))
		return
	}
}

// readSysfsFile reads a single-value sysfs attribute, empty on any failure
func readSysfsFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
