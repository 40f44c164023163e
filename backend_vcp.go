package denkovi

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Morishima-Yoru/denkovi-relayboard/internal/ports"
	"github.com/Morishima-Yoru/denkovi-relayboard/internal/serial"
)

// listPorts enumerates the serial ports known to the OS. A variable so
// tests can substitute a fixed port set.
var listPorts = ports.List

// VCPBackend talks to a board through the virtual COM port its USB-serial
// bridge registers with the OS. It is the only backend that needs no
// vendor library or direct USB access.
type VCPBackend struct {
	port         serial.Port
	serialNumber string
	logger       *slog.Logger
}

// NewVCPBackend returns an unopened VCP backend. A nil logger falls back
// to slog.Default.
func NewVCPBackend(logger *slog.Logger) *VCPBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &VCPBackend{logger: logger}
}

func (b *VCPBackend) Open(deviceAddress, serialNumber string, timeout time.Duration) error {
	if err := validateOpenArgs(deviceAddress, serialNumber); err != nil {
		return err
	}
	timeout = normalizeTimeout(timeout)

	if deviceAddress == "" {
		path, err := portBySerialNumber(serialNumber)
		if err != nil {
			return err
		}
		deviceAddress = path
	} else {
		// Best effort. A port without a known serial number still opens,
		// the serial number just stays unavailable.
		serialNumber = serialNumberByPort(deviceAddress)
	}

	port, err := serial.Open(deviceAddress,
		serial.WithBaudRate(9600),
		serial.WithReadTimeout(timeout),
	)
	if err != nil {
		return fmt.Errorf("open %s: %w", deviceAddress, err)
	}
	b.port = port
	b.serialNumber = serialNumber
	b.logger.Debug("vcp backend opened", "port", deviceAddress, "serial_number", serialNumber)
	return nil
}

func (b *VCPBackend) Close() error {
	if b.port == nil {
		return nil
	}
	err := b.port.Close()
	b.port = nil
	return err
}

func (b *VCPBackend) Write(data []byte) error {
	if b.port == nil {
		return ErrNotOpen
	}
	if _, err := b.port.Write(data); err != nil {
		return err
	}
	b.logger.Debug("vcp write", "bytes", len(data))
	return nil
}

func (b *VCPBackend) Read(size int) ([]byte, error) {
	if b.port == nil {
		return nil, ErrNotOpen
	}
	data, err := b.port.ReadFull(size)
	if err != nil {
		return nil, err
	}
	b.logger.Debug("vcp read", "bytes", len(data))
	return data, nil
}

func (b *VCPBackend) ReadAll() ([]byte, error) {
	if b.port == nil {
		return nil, ErrNotOpen
	}
	return b.port.ReadAvailable()
}

func (b *VCPBackend) IsOpen() bool { return b.port != nil }

func (b *VCPBackend) SerialNumber() (string, error) {
	if b.serialNumber == "" {
		return "", ErrSerialNumberUnknown
	}
	return b.serialNumber, nil
}

func (b *VCPBackend) ListPotentialDevices() []DiscoveredDevice {
	infos, err := listPorts()
	if err != nil {
		b.logger.Warn("serial port enumeration failed", "error", err)
		return nil
	}
	var devices []DiscoveredDevice
	for _, info := range infos {
		if info.SerialNumber == "" {
			continue
		}
		devices = append(devices, DiscoveredDevice{
			Backend:       BackendVCP,
			DeviceAddress: info.Path,
			SerialNumber:  info.SerialNumber,
		})
	}
	return devices
}

// portBySerialNumber resolves a serial number to a device path. The match
// is a case-insensitive substring test because the OS-reported serial may
// carry an interface suffix the caller does not know about.
func portBySerialNumber(serialNumber string) (string, error) {
	infos, err := listPorts()
	if err != nil {
		return "", err
	}
	needle := strings.ToLower(serialNumber)
	for _, info := range infos {
		if info.SerialNumber == "" {
			continue
		}
		if strings.Contains(strings.ToLower(info.SerialNumber), needle) {
			return info.Path, nil
		}
	}
	return "", fmt.Errorf("%w: no port found for serial number %q", ErrDeviceNotFound, serialNumber)
}

// serialNumberByPort reverse-resolves a device path to its serial number.
// Unlike the forward direction the path has to match exactly.
func serialNumberByPort(deviceAddress string) string {
	infos, err := listPorts()
	if err != nil {
		return ""
	}
	for _, info := range infos {
		if info.Path == deviceAddress {
			return info.SerialNumber
		}
	}
	return ""
}
