package denkovi

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/gousb"

	"github.com/Morishima-Yoru/denkovi-relayboard/internal/ftdi"
)

// FTDIBackend talks to an FTDI chip directly over USB in userspace. It
// needs no vendor library and no kernel serial driver; if ftdi_sio holds
// the interface it is detached on open.
type FTDIBackend struct {
	ctx          *gousb.Context
	device       *ftdi.Device
	serialNumber string
	logger       *slog.Logger
}

// NewFTDIBackend creates a USB context and returns an unopened backend.
// If no usable libusb is present the constructor fails and the backend is
// treated as unavailable.
func NewFTDIBackend(logger *slog.Logger) (backend *FTDIBackend, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	defer func() {
		// gousb panics instead of returning an error when libusb is
		// missing from the host.
		if r := recover(); r != nil {
			backend = nil
			err = fmt.Errorf("usb context unavailable: %v", r)
		}
	}()
	return &FTDIBackend{ctx: gousb.NewContext(), logger: logger}, nil
}

func (b *FTDIBackend) Open(deviceAddress, serialNumber string, timeout time.Duration) error {
	if err := validateOpenArgs(deviceAddress, serialNumber); err != nil {
		return err
	}
	if b.ctx == nil {
		return fmt.Errorf("usb context released: %w", ErrNotOpen)
	}
	timeout = normalizeTimeout(timeout)

	if serialNumber == "" {
		found, err := ftdiSerialNumberByPort(deviceAddress)
		if err != nil {
			return err
		}
		serialNumber = found
	}

	dev, err := ftdi.OpenBySerial(b.ctx, serialNumber, timeout)
	if err != nil {
		return err
	}
	if err := b.configure(dev); err != nil {
		_ = dev.Close()
		return err
	}
	b.device = dev
	b.serialNumber = serialNumber
	b.logger.Debug("ftdi backend opened", "serial_number", serialNumber)
	return nil
}

// configure brings a freshly claimed chip into the known UART state the
// boards expect, then nudges it awake. Without the dummy write the board
// ignores the first real command after power-up.
func (b *FTDIBackend) configure(dev *ftdi.Device) error {
	if err := dev.Reset(); err != nil {
		return err
	}
	if err := dev.SetBitMode(0, ftdi.BitModeReset); err != nil {
		return err
	}
	if err := dev.SetBaudRate(9600); err != nil {
		return err
	}
	if err := dev.SetLineProperties(8, ftdi.StopBits1, ftdi.ParityNone); err != nil {
		return err
	}
	if err := dev.SetLatencyTimer(16); err != nil {
		return err
	}
	if err := dev.Write([]byte{0x00}); err != nil {
		return err
	}
	return dev.PurgeBuffers()
}

// Close releases the claimed device and the USB context. The context
// owns an event-handling goroutine, so a backend that is never closed
// leaks it even when no device was opened.
func (b *FTDIBackend) Close() error {
	var err error
	if b.device != nil {
		err = b.device.Close()
		b.device = nil
	}
	if b.ctx != nil {
		if cerr := b.ctx.Close(); err == nil {
			err = cerr
		}
		b.ctx = nil
	}
	return err
}

func (b *FTDIBackend) Write(data []byte) error {
	if b.device == nil {
		return ErrNotOpen
	}
	if err := b.device.Write(data); err != nil {
		return err
	}
	b.logger.Debug("ftdi write", "bytes", len(data))
	return nil
}

func (b *FTDIBackend) Read(size int) ([]byte, error) {
	if b.device == nil {
		return nil, ErrNotOpen
	}
	return b.device.Read(size)
}

func (b *FTDIBackend) ReadAll() ([]byte, error) {
	if b.device == nil {
		return nil, ErrNotOpen
	}
	return b.device.ReadAvailable()
}

func (b *FTDIBackend) IsOpen() bool { return b.device != nil }

func (b *FTDIBackend) SerialNumber() (string, error) {
	if b.serialNumber == "" {
		return "", ErrSerialNumberUnknown
	}
	return b.serialNumber, nil
}

func (b *FTDIBackend) SetBitMode(mask, mode byte) error {
	if b.device == nil {
		return ErrNotOpen
	}
	return b.device.SetBitMode(mask, mode)
}

func (b *FTDIBackend) GetBitMode() (byte, error) {
	if b.device == nil {
		return 0, ErrNotOpen
	}
	return b.device.ReadPins()
}

func (b *FTDIBackend) ListPotentialDevices() []DiscoveredDevice {
	if b.ctx == nil {
		return nil
	}
	infos, err := ftdi.List(b.ctx)
	if err != nil {
		b.logger.Warn("ftdi enumeration failed", "error", err)
		return nil
	}

	snToPort := make(map[string]string)
	if portInfos, err := listPorts(); err != nil {
		b.logger.Warn("serial port enumeration failed", "error", err)
	} else {
		for _, info := range portInfos {
			if info.SerialNumber != "" {
				snToPort[info.SerialNumber] = info.Path
			}
		}
	}

	var devices []DiscoveredDevice
	for _, info := range infos {
		if info.SerialNumber == "" {
			continue
		}
		devices = append(devices, DiscoveredDevice{
			Backend:       BackendFTDI,
			DeviceAddress: snToPort[info.SerialNumber],
			SerialNumber:  info.SerialNumber,
		})
	}
	return devices
}

func ftdiSerialNumberByPort(deviceAddress string) (string, error) {
	infos, err := listPorts()
	if err != nil {
		return "", err
	}
	for _, info := range infos {
		if info.Path == deviceAddress {
			if info.SerialNumber == "" {
				break
			}
			return info.SerialNumber, nil
		}
	}
	return "", fmt.Errorf("%w: no FTDI device on port %q", ErrDeviceNotFound, deviceAddress)
}
