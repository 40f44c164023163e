package denkovi

import "time"

// fakeBackend is an in-memory byte-stream backend. Writes are recorded
// verbatim; reads pop queued responses, falling back to zero-filled
// buffers of the requested size so ack drains always succeed.
type fakeBackend struct {
	opened    bool
	closed    int
	openErr   error
	serial    string
	writes    [][]byte
	readQueue [][]byte
	drains    int
	devices   []DiscoveredDevice
}

func (f *fakeBackend) Open(deviceAddress, serialNumber string, timeout time.Duration) error {
	if err := validateOpenArgs(deviceAddress, serialNumber); err != nil {
		return err
	}
	if f.openErr != nil {
		return f.openErr
	}
	f.opened = true
	if f.serial == "" {
		f.serial = serialNumber
	}
	return nil
}

func (f *fakeBackend) Close() error {
	f.opened = false
	f.closed++
	return nil
}

func (f *fakeBackend) Write(data []byte) error {
	if !f.opened {
		return ErrNotOpen
	}
	f.writes = append(f.writes, append([]byte{}, data...))
	return nil
}

func (f *fakeBackend) Read(size int) ([]byte, error) {
	if !f.opened {
		return nil, ErrNotOpen
	}
	if len(f.readQueue) > 0 {
		resp := f.readQueue[0]
		f.readQueue = f.readQueue[1:]
		return resp, nil
	}
	return make([]byte, size), nil
}

func (f *fakeBackend) ReadAll() ([]byte, error) {
	if !f.opened {
		return nil, ErrNotOpen
	}
	f.drains++
	return nil, nil
}

func (f *fakeBackend) IsOpen() bool { return f.opened }

func (f *fakeBackend) SerialNumber() (string, error) {
	if f.serial == "" {
		return "", ErrSerialNumberUnknown
	}
	return f.serial, nil
}

func (f *fakeBackend) ListPotentialDevices() []DiscoveredDevice { return f.devices }

// fakeBitBangBackend adds a GPIO pin register on top of fakeBackend.
// Writes of a single byte latch the register the way the chip does in
// synchronous bit-bang mode.
type fakeBitBangBackend struct {
	fakeBackend
	pins          byte
	bitModeMask   byte
	bitModeMode   byte
	setBitModeErr error
}

func (f *fakeBitBangBackend) Write(data []byte) error {
	if err := f.fakeBackend.Write(data); err != nil {
		return err
	}
	if len(data) == 1 {
		f.pins = data[0]
	}
	return nil
}

func (f *fakeBitBangBackend) SetBitMode(mask, mode byte) error {
	if f.setBitModeErr != nil {
		return f.setBitModeErr
	}
	f.bitModeMask = mask
	f.bitModeMode = mode
	return nil
}

func (f *fakeBitBangBackend) GetBitMode() (byte, error) {
	if !f.opened {
		return 0, ErrNotOpen
	}
	return f.pins, nil
}
