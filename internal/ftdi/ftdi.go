// Package ftdi drives FT232R/FT232H converters directly over USB, without
// the vendor library or the kernel serial driver. It issues the chip's
// vendor control requests for line setup and bit-bang control and moves
// data over the bulk endpoints.
package ftdi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/gousb"
)

// FTDI vendor and the product IDs of the chips found on the relay boards.
const (
	VendorID       = 0x0403
	ProductFT232R  = 0x6001
	ProductFT232H  = 0x6014
)

// Vendor request codes, SIO protocol.
const (
	reqReset         = 0x00
	reqSetBaudRate   = 0x03
	reqSetData       = 0x04
	reqSetLatency    = 0x09
	reqSetBitMode    = 0x0B
	reqReadPins      = 0x0C
)

// Reset request values.
const (
	resetSIO     = 0
	resetPurgeRX = 1
	resetPurgeTX = 2
)

// Bit modes.
const (
	BitModeReset       byte = 0x00
	BitModeSyncBitBang byte = 0x04
)

// Line format fields for SetLineProperties.
const (
	ParityNone uint16 = 0
	ParityOdd  uint16 = 1
	ParityEven uint16 = 2
	StopBits1  uint16 = 0
	StopBits2  uint16 = 2
)

const (
	ctrlOut = uint8(gousb.ControlOut | gousb.ControlVendor | gousb.ControlDevice)
	ctrlIn  = uint8(gousb.ControlIn | gousb.ControlVendor | gousb.ControlDevice)

	// Bulk IN packets carry two modem-status bytes ahead of the payload.
	statusBytes = 2

	pollInterval = 5 * time.Millisecond
	pollChunk    = 50 * time.Millisecond
)

// ErrInvalidBaudRate reports a rate the divisor logic cannot represent.
var ErrInvalidBaudRate = errors.New("ftdi: invalid baud rate")

// Info identifies one FTDI device on the bus.
type Info struct {
	VendorID     uint16
	ProductID    uint16
	SerialNumber string
}

// supportedProduct reports whether the descriptor matches a chip we drive.
func supportedProduct(desc *gousb.DeviceDesc) bool {
	if uint16(desc.Vendor) != VendorID {
		return false
	}
	p := uint16(desc.Product)
	return p == ProductFT232R || p == ProductFT232H
}

// List enumerates the FTDI devices on the bus. Devices are opened briefly
// to read their serial-number descriptors.
func List(ctx *gousb.Context) ([]Info, error) {
	devs, err := ctx.OpenDevices(supportedProduct)
	for _, dev := range devs {
		defer dev.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("ftdi: enumeration failed: %w", err)
	}

	infos := make([]Info, 0, len(devs))
	for _, dev := range devs {
		serial, err := dev.SerialNumber()
		if err != nil {
			serial = ""
		}
		infos = append(infos, Info{
			VendorID:     uint16(dev.Desc.Vendor),
			ProductID:    uint16(dev.Desc.Product),
			SerialNumber: serial,
		})
	}
	return infos, nil
}

// Device is one claimed FTDI chip.
type Device struct {
	dev         *gousb.Device
	intf        *gousb.Interface
	intfDone    func()
	in          *gousb.InEndpoint
	out         *gousb.OutEndpoint
	readTimeout time.Duration
	maxPacket   int
}

// OpenBySerial claims the FTDI device carrying the given serial number.
// The comparison is exact; callers resolve case upstream.
func OpenBySerial(ctx *gousb.Context, serial string, readTimeout time.Duration) (*Device, error) {
	devs, err := ctx.OpenDevices(supportedProduct)
	if err != nil {
		for _, dev := range devs {
			dev.Close()
		}
		return nil, fmt.Errorf("ftdi: enumeration failed: %w", err)
	}

	var target *gousb.Device
	for _, dev := range devs {
		if target == nil {
			sn, snErr := dev.SerialNumber()
			if snErr == nil && sn == serial {
				target = dev
				continue
			}
		}
		dev.Close()
	}
	if target == nil {
		return nil, fmt.Errorf("ftdi: no device with serial number %s", serial)
	}

	d, err := claim(target, readTimeout)
	if err != nil {
		target.Close()
		return nil, err
	}
	return d, nil
}

func claim(dev *gousb.Device, readTimeout time.Duration) (*Device, error) {
	// ftdi_sio may hold the interface
	if err := dev.SetAutoDetach(true); err != nil {
		return nil, fmt.Errorf("ftdi: auto-detach failed: %w", err)
	}

	intf, done, err := dev.DefaultInterface()
	if err != nil {
		return nil, fmt.Errorf("ftdi: claiming interface failed: %w", err)
	}

	in, err := intf.InEndpoint(1)
	if err != nil {
		done()
		return nil, fmt.Errorf("ftdi: IN endpoint: %w", err)
	}
	out, err := intf.OutEndpoint(2)
	if err != nil {
		done()
		return nil, fmt.Errorf("ftdi: OUT endpoint: %w", err)
	}

	maxPacket := in.Desc.MaxPacketSize
	if maxPacket <= statusBytes {
		maxPacket = 64
	}

	return &Device{
		dev:         dev,
		intf:        intf,
		intfDone:    done,
		in:          in,
		out:         out,
		readTimeout: readTimeout,
		maxPacket:   maxPacket,
	}, nil
}

// Close releases the interface and the device.
func (d *Device) Close() error {
	if d.intfDone != nil {
		d.intfDone()
		d.intfDone = nil
	}
	return d.dev.Close()
}

// SerialNumber reads the serial-number string descriptor.
func (d *Device) SerialNumber() (string, error) {
	return d.dev.SerialNumber()
}

func (d *Device) control(request uint8, value, index uint16) error {
	if _, err := d.dev.Control(ctrlOut, request, value, index, nil); err != nil {
		return fmt.Errorf("ftdi: control request 0x%02x failed: %w", request, err)
	}
	return nil
}

// Reset returns the chip to its default state.
func (d *Device) Reset() error {
	return d.control(reqReset, resetSIO, 0)
}

// PurgeBuffers discards both the receive and transmit FIFOs.
func (d *Device) PurgeBuffers() error {
	if err := d.control(reqReset, resetPurgeRX, 0); err != nil {
		return err
	}
	return d.control(reqReset, resetPurgeTX, 0)
}

// SetBaudRate programs the clock divisor for the requested rate.
func (d *Device) SetBaudRate(baud int) error {
	value, index, err := baudDivisor(baud)
	if err != nil {
		return err
	}
	return d.control(reqSetBaudRate, value, index)
}

// baudDivisor encodes a rate into the chip's fractional divisor format:
// a 14-bit integer divisor of the 3 MHz reference with a 3-bit sub-divisor
// in eighths, split across the value and index words.
func baudDivisor(baud int) (value, index uint16, err error) {
	if baud <= 0 {
		return 0, 0, ErrInvalidBaudRate
	}

	// divisor in eighths of the 3 MHz reference clock
	div8 := (3000000*8 + baud/2) / baud
	if div8 < 8 || div8 > 8*0x3FFF {
		return 0, 0, ErrInvalidBaudRate
	}

	fracCode := [8]uint16{0, 3, 2, 4, 1, 5, 6, 7}
	value = uint16(div8>>3) | fracCode[div8&7]<<14
	index = 0
	return value, index, nil
}

// SetLineProperties configures word length, stop bits and parity.
func (d *Device) SetLineProperties(dataBits int, stopBits, parity uint16) error {
	value := uint16(dataBits) | parity<<8 | stopBits<<11
	return d.control(reqSetData, value, 0)
}

// SetLatencyTimer sets the receive buffer flush interval in milliseconds.
func (d *Device) SetLatencyTimer(ms int) error {
	return d.control(reqSetLatency, uint16(ms), 0)
}

// SetBitMode programs the pin direction mask and operating mode.
func (d *Device) SetBitMode(mask, mode byte) error {
	return d.control(reqSetBitMode, uint16(mask)|uint16(mode)<<8, 0)
}

// ReadPins reads the instantaneous pin states, bypassing the FIFOs.
func (d *Device) ReadPins() (byte, error) {
	buf := make([]byte, 1)
	n, err := d.dev.Control(ctrlIn, reqReadPins, 0, 0, buf)
	if err != nil {
		return 0, fmt.Errorf("ftdi: read pins failed: %w", err)
	}
	if n != 1 {
		return 0, fmt.Errorf("ftdi: read pins returned %d bytes", n)
	}
	return buf[0], nil
}

// Write sends data over the bulk OUT endpoint.
func (d *Device) Write(data []byte) error {
	if _, err := d.out.Write(data); err != nil {
		return fmt.Errorf("ftdi: bulk write failed: %w", err)
	}
	return nil
}

// readPacket performs one bounded bulk IN transfer and strips the two
// modem-status bytes. A transfer timeout yields an empty payload.
func (d *Device) readPacket() ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), pollChunk)
	defer cancel()

	buf := make([]byte, d.maxPacket)
	n, err := d.in.ReadContext(ctx, buf)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("ftdi: bulk read failed: %w", err)
	}
	if n <= statusBytes {
		return nil, nil
	}
	return buf[statusBytes:n], nil
}

// Read collects up to size payload bytes, polling the bulk endpoint until
// the read timeout elapses. The collected prefix is returned on timeout.
func (d *Device) Read(size int) ([]byte, error) {
	data := make([]byte, 0, size)
	deadline := time.Now().Add(d.readTimeout)

	for len(data) < size {
		payload, err := d.readPacket()
		if err != nil {
			return data, err
		}
		data = append(data, payload...)

		if len(data) >= size || time.Now().After(deadline) {
			break
		}
		if len(payload) == 0 {
			time.Sleep(pollInterval)
		}
	}

	if len(data) > size {
		data = data[:size]
	}
	return data, nil
}

// ReadAvailable returns whatever a single poll yields, possibly nothing.
func (d *Device) ReadAvailable() ([]byte, error) {
	return d.readPacket()
}
