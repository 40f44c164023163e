package denkovi

import "time"

// BackendType identifies a transport backend.
type BackendType string

const (
	// BackendD2XX drives FTDI chips through the vendor D2XX library.
	BackendD2XX BackendType = "d2xx"
	// BackendVCP drives boards through a kernel virtual COM port.
	BackendVCP BackendType = "vcp"
	// BackendMCP2200 drives the MCP2200-based boards over USB-HID.
	BackendMCP2200 BackendType = "mcp2200"
	// BackendFTDI drives FTDI chips with the pure-userspace USB driver.
	BackendFTDI BackendType = "ftdi"
)

// DefaultTimeout bounds transport reads when the caller passes no timeout.
const DefaultTimeout = 5 * time.Second

// DiscoveredDevice is one record produced by backend enumeration. At least
// one of DeviceAddress and SerialNumber is normally present, but either may
// be empty when the underlying enumeration could not supply it.
type DiscoveredDevice struct {
	Backend       BackendType
	DeviceAddress string
	SerialNumber  string
}

// Backend is the transport contract shared by all board codecs.
//
// Open binds the backend to exactly one physical device: exactly one of
// deviceAddress and serialNumber must be non-empty (ErrInvalidArgument
// otherwise), the missing identifier is resolved through the backend's own
// discovery (ErrDeviceNotFound on no match), and the line is configured
// 8N1 at the transport's fixed baud rate with the given read timeout.
// A backend is created closed, and may not be used after Close without a
// fresh Open.
type Backend interface {
	Open(deviceAddress, serialNumber string, timeout time.Duration) error

	// Close releases native resources. Closing an already-closed or
	// never-opened backend is a no-op, not an error.
	Close() error

	// Write sends raw bytes. ErrNotOpen before Open or after Close.
	Write(data []byte) error

	// Read blocks until size bytes are collected or the configured timeout
	// elapses, returning the collected prefix. A short read is not an error.
	Read(size int) ([]byte, error)

	// ReadAll returns whatever input is immediately available, possibly
	// nothing.
	ReadAll() ([]byte, error)

	IsOpen() bool

	// SerialNumber returns the serial number resolved at open time.
	// ErrSerialNumberUnknown when enumeration could not supply one.
	SerialNumber() (string, error)

	// ListPotentialDevices enumerates devices reachable through this
	// backend. Enumeration failures degrade to an empty result; they are
	// logged, never propagated.
	ListPotentialDevices() []DiscoveredDevice
}

// BitBangBackend is implemented by transports exposing the chip's raw GPIO
// register, the basis of bit-bang relay control.
type BitBangBackend interface {
	Backend

	// SetBitMode programs the 8-bit pin direction mask and operating mode.
	SetBitMode(mask, mode byte) error

	// GetBitMode reads the live 8-bit pin state register.
	GetBitMode() (byte, error)
}

// normalizeTimeout substitutes the default for unset timeouts.
func normalizeTimeout(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return DefaultTimeout
	}
	return timeout
}

// validateOpenArgs enforces the exactly-one rule shared by every backend.
func validateOpenArgs(deviceAddress, serialNumber string) error {
	if (deviceAddress == "") == (serialNumber == "") {
		return ErrInvalidArgument
	}
	return nil
}
