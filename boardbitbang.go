package denkovi

import "time"

const (
	syncBitBangMode = 0x04
	allPinsMask     = 0xFF
)

// BoardBitBang drives the relay boards whose channels map directly onto
// the 8-bit GPIO register of an FTDI chip: the 8-channel board and the
// 4-channel FT-based board, which uses only the low 4 pins.
//
// Pin state is always read live from the chip. Nothing is cached, so a
// relay toggled by another process is still reported correctly.
type BoardBitBang struct {
	backend  BitBangBackend
	channels int
}

// NewBoard8CH opens backend in synchronous bit-bang mode and returns the
// 8-channel board bound to it.
func NewBoard8CH(backend BitBangBackend, deviceAddress, serialNumber string, timeout time.Duration) (*BoardBitBang, error) {
	return newBitBangBoard(backend, deviceAddress, serialNumber, timeout, 8)
}

// NewBoard4CHFT opens backend in synchronous bit-bang mode and returns the
// 4-channel FT-based board bound to it.
func NewBoard4CHFT(backend BitBangBackend, deviceAddress, serialNumber string, timeout time.Duration) (*BoardBitBang, error) {
	return newBitBangBoard(backend, deviceAddress, serialNumber, timeout, 4)
}

func newBitBangBoard(backend BitBangBackend, deviceAddress, serialNumber string, timeout time.Duration, channels int) (*BoardBitBang, error) {
	if err := backend.Open(deviceAddress, serialNumber, timeout); err != nil {
		return nil, err
	}
	if err := backend.SetBitMode(allPinsMask, syncBitBangMode); err != nil {
		// The native handle is already held; release it before failing.
		_ = backend.Close()
		return nil, err
	}
	return &BoardBitBang{backend: backend, channels: channels}, nil
}

func (b *BoardBitBang) MaxChannel() int { return b.channels }

func (b *BoardBitBang) SerialNumber() (string, error) {
	if b.backend == nil {
		return "", ErrNotOpen
	}
	return b.backend.SerialNumber()
}

func (b *BoardBitBang) SetAllStatesOn() error {
	if b.backend == nil {
		return ErrNotOpen
	}
	return b.backend.Write([]byte{0xFF})
}

func (b *BoardBitBang) SetAllStatesOff() error {
	if b.backend == nil {
		return ErrNotOpen
	}
	return b.backend.Write([]byte{0x00})
}

func (b *BoardBitBang) SetState(logic bool, addrs ...int) error {
	if b.backend == nil {
		return ErrNotOpen
	}
	addrs = dedupeAddrs(addrs)
	if err := checkAddrs(b.channels, addrs); err != nil {
		return err
	}
	pins, err := b.backend.GetBitMode()
	if err != nil {
		return err
	}
	for _, addr := range addrs {
		if logic {
			pins |= 1 << (addr - 1)
		} else {
			pins &^= 1 << (addr - 1)
		}
	}
	return b.backend.Write([]byte{pins})
}

func (b *BoardBitBang) SetClearState(logic bool, addrs ...int) error {
	if b.backend == nil {
		return ErrNotOpen
	}
	addrs = dedupeAddrs(addrs)
	if err := checkAddrs(b.channels, addrs); err != nil {
		return err
	}
	if !logic {
		return b.SetAllStatesOff()
	}
	var pins byte
	for _, addr := range addrs {
		pins |= 1 << (addr - 1)
	}
	return b.backend.Write([]byte{pins})
}

func (b *BoardBitBang) GetState(addr int) (bool, error) {
	if b.backend == nil {
		return false, ErrNotOpen
	}
	if err := checkAddrs(b.channels, []int{addr}); err != nil {
		return false, err
	}
	pins, err := b.backend.GetBitMode()
	if err != nil {
		return false, err
	}
	return pins&(1<<(addr-1)) != 0, nil
}

func (b *BoardBitBang) GetAllStates() ([]bool, error) {
	if b.backend == nil {
		return nil, ErrNotOpen
	}
	pins, err := b.backend.GetBitMode()
	if err != nil {
		return nil, err
	}
	states := make([]bool, b.channels)
	for i := range states {
		states[i] = pins&(1<<i) != 0
	}
	return states, nil
}

func (b *BoardBitBang) Close() error {
	if b.backend == nil {
		return nil
	}
	err := b.backend.Close()
	b.backend = nil
	return err
}
