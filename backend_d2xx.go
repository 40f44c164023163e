package denkovi

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Morishima-Yoru/denkovi-relayboard/internal/d2xx"
)

// LibraryPathEnv names the environment variable that, when set, points
// directly at the vendor FTD2XX shared library instead of searching.
const LibraryPathEnv = "FTD2XX_LIBRARY"

// D2XXBackend talks to an FTDI chip through the vendor D2XX library. The
// library is loaded once per backend; if it cannot be found the
// constructor fails and the backend is treated as unavailable.
type D2XXBackend struct {
	lib          *d2xx.Lib
	device       *d2xx.Device
	serialNumber string
	logger       *slog.Logger

	// listChips enumerates attached FTDI chips. Defaults to the loaded
	// library's device list; tests substitute a fixed set.
	listChips func() ([]d2xx.DeviceInfo, error)
}

// NewD2XXBackend loads the vendor library and returns an unopened
// backend. The library is resolved from LibraryPathEnv when set,
// otherwise from the dynamic-linker search path and, as a last resort, a
// filesystem walk below the executable.
func NewD2XXBackend(logger *slog.Logger) (*D2XXBackend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	lib, err := d2xx.Load(os.Getenv(LibraryPathEnv))
	if err != nil {
		return nil, err
	}
	return &D2XXBackend{lib: lib, logger: logger, listChips: lib.ListDevices}, nil
}

func (b *D2XXBackend) Open(deviceAddress, serialNumber string, timeout time.Duration) error {
	if err := validateOpenArgs(deviceAddress, serialNumber); err != nil {
		return err
	}
	timeout = normalizeTimeout(timeout)

	var err error
	if deviceAddress == "" {
		serialNumber, err = b.actualSerialNumber(serialNumber)
		if err != nil {
			return err
		}
	} else {
		serialNumber, err = b.serialNumberByPort(deviceAddress)
		if err != nil {
			return err
		}
	}

	dev, err := b.lib.OpenBySerial(serialNumber)
	if err != nil {
		return err
	}
	if err := dev.SetBaudRate(9600); err != nil {
		_ = dev.Close()
		return err
	}
	if err := dev.SetDataCharacteristics(d2xx.Bits8, d2xx.StopBits1, d2xx.ParityNone); err != nil {
		_ = dev.Close()
		return err
	}
	if err := dev.SetTimeouts(timeout, timeout); err != nil {
		_ = dev.Close()
		return err
	}
	b.device = dev
	b.serialNumber = serialNumber
	b.logger.Debug("d2xx backend opened", "serial_number", serialNumber)
	return nil
}

func (b *D2XXBackend) Close() error {
	if b.device == nil {
		return nil
	}
	err := b.device.Close()
	b.device = nil
	return err
}

func (b *D2XXBackend) Write(data []byte) error {
	if b.device == nil {
		return ErrNotOpen
	}
	if err := b.device.Write(data); err != nil {
		return err
	}
	b.logger.Debug("d2xx write", "bytes", len(data))
	return nil
}

func (b *D2XXBackend) Read(size int) ([]byte, error) {
	if b.device == nil {
		return nil, ErrNotOpen
	}
	return b.device.Read(size)
}

func (b *D2XXBackend) ReadAll() ([]byte, error) {
	if b.device == nil {
		return nil, ErrNotOpen
	}
	return b.device.ReadAvailable()
}

func (b *D2XXBackend) IsOpen() bool { return b.device != nil }

func (b *D2XXBackend) SerialNumber() (string, error) {
	if b.serialNumber == "" {
		return "", ErrSerialNumberUnknown
	}
	return b.serialNumber, nil
}

func (b *D2XXBackend) SetBitMode(mask, mode byte) error {
	if b.device == nil {
		return ErrNotOpen
	}
	return b.device.SetBitMode(mask, mode)
}

func (b *D2XXBackend) GetBitMode() (byte, error) {
	if b.device == nil {
		return 0, ErrNotOpen
	}
	return b.device.GetBitMode()
}

func (b *D2XXBackend) ListPotentialDevices() []DiscoveredDevice {
	infos, err := b.listChips()
	if err != nil {
		b.logger.Warn("d2xx enumeration failed", "error", err)
		return nil
	}
	var devices []DiscoveredDevice
	for _, info := range infos {
		// Phantom entries left behind by the in-kernel sio driver.
		if info.ID == 0 && info.LocID == 0 {
			continue
		}
		addr, _ := portBySerialNumberD2XX(info.SerialNumber)
		devices = append(devices, DiscoveredDevice{
			Backend:       BackendD2XX,
			DeviceAddress: addr,
			SerialNumber:  info.SerialNumber,
		})
	}
	return devices
}

// actualSerialNumber resolves a possibly wrongly-cased serial number to
// the case-sensitive string the chip actually reports. OS layers hand out
// case-folded serials while the D2XX open call matches case-sensitively.
func (b *D2XXBackend) actualSerialNumber(serialNumber string) (string, error) {
	infos, err := b.listChips()
	if err != nil {
		return "", err
	}
	for _, info := range infos {
		if strings.EqualFold(info.SerialNumber, serialNumber) {
			return info.SerialNumber, nil
		}
	}
	return "", fmt.Errorf("%w: no FTDI device with serial number %q", ErrDeviceNotFound, serialNumber)
}

// serialNumberByPort resolves a COM-port path to the chip serial number.
// The OS appends one synthetic character to the chip serial when it names
// the port, so the comparison strips the last character first.
func (b *D2XXBackend) serialNumberByPort(deviceAddress string) (string, error) {
	infos, err := listPorts()
	if err != nil {
		return "", err
	}
	for _, info := range infos {
		if !strings.EqualFold(info.Path, deviceAddress) {
			continue
		}
		if info.SerialNumber == "" {
			break
		}
		return b.actualSerialNumber(trimInterfaceSuffix(info.SerialNumber))
	}
	return "", fmt.Errorf("%w: no FTDI device on port %q", ErrDeviceNotFound, deviceAddress)
}

// portBySerialNumberD2XX finds the COM port the OS created for a chip
// serial number, accounting for the synthetic trailing character.
func portBySerialNumberD2XX(serialNumber string) (string, error) {
	infos, err := listPorts()
	if err != nil {
		return "", err
	}
	for _, info := range infos {
		if info.SerialNumber == "" {
			continue
		}
		if strings.EqualFold(trimInterfaceSuffix(info.SerialNumber), serialNumber) {
			return info.Path, nil
		}
	}
	return "", fmt.Errorf("%w: no port for serial number %q", ErrDeviceNotFound, serialNumber)
}

// trimInterfaceSuffix drops the final character the OS appends to a chip
// serial number when registering the port.
func trimInterfaceSuffix(osSerial string) string {
	if osSerial == "" {
		return osSerial
	}
	return osSerial[:len(osSerial)-1]
}
