package denkovi

import (
	"fmt"
	"log/slog"
	"time"

	hid "github.com/sstallion/go-hid"
)

// MCP2200 USB identifiers.
const (
	mcpVendorID   = 0x04D8
	mcp2200ProdID = 0x00DF
)

// MCP2200Backend talks to a board through the HID interface of its
// MCP2200 bridge. The bridge also registers a COM port, but relay control
// goes through HID reports only.
type MCP2200Backend struct {
	device       *hid.Device
	serialNumber string
	timeout      time.Duration
	logger       *slog.Logger
	hidActive    bool
}

// NewMCP2200Backend initializes the HID subsystem and returns an unopened
// backend. If HID support is unavailable on this host the constructor
// fails and the backend is treated as unavailable.
func NewMCP2200Backend(logger *slog.Logger) (*MCP2200Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := hid.Init(); err != nil {
		return nil, err
	}
	return &MCP2200Backend{logger: logger, hidActive: true}, nil
}

func (b *MCP2200Backend) Open(deviceAddress, serialNumber string, timeout time.Duration) error {
	if err := validateOpenArgs(deviceAddress, serialNumber); err != nil {
		return err
	}
	timeout = normalizeTimeout(timeout)

	if serialNumber == "" {
		found, err := b.serialNumberByPort(deviceAddress)
		if err != nil {
			return err
		}
		serialNumber = found
	}

	dev, err := hid.Open(mcpVendorID, mcp2200ProdID, serialNumber)
	if err != nil {
		return fmt.Errorf("open MCP2200 %q: %w", serialNumber, err)
	}
	b.device = dev
	b.serialNumber = serialNumber
	b.timeout = timeout
	b.logger.Debug("mcp2200 backend opened", "serial_number", serialNumber)
	return nil
}

// Close releases the device and balances the hid.Init call made by the
// constructor.
func (b *MCP2200Backend) Close() error {
	var err error
	if b.device != nil {
		err = b.device.Close()
		b.device = nil
	}
	if b.hidActive {
		if eerr := hid.Exit(); err == nil {
			err = eerr
		}
		b.hidActive = false
	}
	return err
}

func (b *MCP2200Backend) Write(data []byte) error {
	if b.device == nil {
		return ErrNotOpen
	}
	// HID output reports carry the report ID in the first byte.
	buf := make([]byte, 0, len(data)+1)
	buf = append(buf, 0x00)
	buf = append(buf, data...)
	if _, err := b.device.Write(buf); err != nil {
		return err
	}
	b.logger.Debug("mcp2200 write", "bytes", len(data))
	return nil
}

func (b *MCP2200Backend) Read(size int) ([]byte, error) {
	if b.device == nil {
		return nil, ErrNotOpen
	}
	buf := make([]byte, size)
	n, err := b.device.ReadWithTimeout(buf, b.timeout)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func (b *MCP2200Backend) ReadAll() ([]byte, error) {
	if b.device == nil {
		return nil, ErrNotOpen
	}
	buf := make([]byte, hidReportSize)
	n, err := b.device.ReadWithTimeout(buf, 0)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func (b *MCP2200Backend) IsOpen() bool { return b.device != nil }

func (b *MCP2200Backend) SerialNumber() (string, error) {
	if b.serialNumber == "" {
		return "", ErrSerialNumberUnknown
	}
	return b.serialNumber, nil
}

func (b *MCP2200Backend) ListPotentialDevices() []DiscoveredDevice {
	// COM ports first, keyed by serial, to enrich HID records with the
	// port address when the bridge registered one.
	comPorts := make(map[string]string)
	if infos, err := listPorts(); err != nil {
		b.logger.Warn("serial port enumeration failed", "error", err)
	} else {
		for _, info := range infos {
			if info.SerialNumber != "" {
				comPorts[info.SerialNumber] = info.Path
			}
		}
	}

	var devices []DiscoveredDevice
	err := hid.Enumerate(mcpVendorID, mcp2200ProdID, func(info *hid.DeviceInfo) error {
		devices = append(devices, DiscoveredDevice{
			Backend:       BackendMCP2200,
			DeviceAddress: comPorts[info.SerialNbr],
			SerialNumber:  info.SerialNbr,
		})
		return nil
	})
	if err != nil {
		b.logger.Warn("hid enumeration failed", "error", err)
		return nil
	}
	return devices
}

func (b *MCP2200Backend) serialNumberByPort(deviceAddress string) (string, error) {
	for _, dev := range b.ListPotentialDevices() {
		if dev.DeviceAddress == deviceAddress {
			return dev.SerialNumber, nil
		}
	}
	return "", fmt.Errorf("%w: no MCP2200 device on port %q", ErrDeviceNotFound, deviceAddress)
}
