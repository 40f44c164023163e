package denkovi

import (
	"fmt"
	"time"
)

// Command vocabulary of the 16-channel board. Every command ends with the
// end-of-command marker and the board echoes a short acknowledgement that
// has to be drained before the next command.
var (
	eocPattern      = []byte("//")
	askCommand      = []byte("ask")
	onCommand       = []byte("on")
	offCommand      = []byte("off")
	multipleCommand = []byte("x")
	positiveLogic   = []byte("+")
	negativeLogic   = []byte("-")
)

const board16Channels = 16

// Board16CH drives the 16-channel board over any byte-stream backend.
type Board16CH struct {
	backend Backend
}

// NewBoard16CH opens backend and returns a board bound to it. Exactly one
// of deviceAddress and serialNumber must be non-empty.
func NewBoard16CH(backend Backend, deviceAddress, serialNumber string, timeout time.Duration) (*Board16CH, error) {
	if err := backend.Open(deviceAddress, serialNumber, timeout); err != nil {
		return nil, err
	}
	return &Board16CH{backend: backend}, nil
}

func (b *Board16CH) MaxChannel() int { return board16Channels }

func (b *Board16CH) SerialNumber() (string, error) {
	if b.backend == nil {
		return "", ErrNotOpen
	}
	return b.backend.SerialNumber()
}

func (b *Board16CH) SetAllStatesOn() error {
	if b.backend == nil {
		return ErrNotOpen
	}
	if err := b.backend.Write(append(append([]byte{}, onCommand...), eocPattern...)); err != nil {
		return err
	}
	// Drain the echoed acknowledgement.
	_, err := b.backend.Read(4)
	return err
}

func (b *Board16CH) SetAllStatesOff() error {
	if b.backend == nil {
		return ErrNotOpen
	}
	if err := b.backend.Write(append(append([]byte{}, offCommand...), eocPattern...)); err != nil {
		return err
	}
	_, err := b.backend.Read(5)
	return err
}

func (b *Board16CH) SetState(logic bool, addrs ...int) error {
	if b.backend == nil {
		return ErrNotOpen
	}
	addrs = dedupeAddrs(addrs)
	if err := checkAddrs(board16Channels, addrs); err != nil {
		return err
	}
	if len(addrs) == 1 {
		return b.setSingleState(logic, addrs[0])
	}
	states, err := b.GetAllStates()
	if err != nil {
		return err
	}
	for _, addr := range addrs {
		states[addr-1] = logic
	}
	return b.setMultipleStates(states)
}

func (b *Board16CH) SetClearState(logic bool, addrs ...int) error {
	if b.backend == nil {
		return ErrNotOpen
	}
	addrs = dedupeAddrs(addrs)
	if err := checkAddrs(board16Channels, addrs); err != nil {
		return err
	}
	if !logic {
		return b.SetAllStatesOff()
	}
	states := make([]bool, board16Channels)
	for _, addr := range addrs {
		states[addr-1] = true
	}
	return b.setMultipleStates(states)
}

// SetStates drives all 16 channels to the given vector, index 0 holding
// channel 1.
func (b *Board16CH) SetStates(states []bool) error {
	if b.backend == nil {
		return ErrNotOpen
	}
	return b.setMultipleStates(states)
}

func (b *Board16CH) GetState(addr int) (bool, error) {
	if b.backend == nil {
		return false, ErrNotOpen
	}
	if err := checkAddrs(board16Channels, []int{addr}); err != nil {
		return false, err
	}
	states, err := b.GetAllStates()
	if err != nil {
		return false, err
	}
	return states[addr-1], nil
}

func (b *Board16CH) GetAllStates() ([]bool, error) {
	if b.backend == nil {
		return nil, ErrNotOpen
	}
	// Clear out any stale echo bytes before asking.
	if _, err := b.backend.ReadAll(); err != nil {
		return nil, err
	}
	if err := b.backend.Write(append(append([]byte{}, askCommand...), eocPattern...)); err != nil {
		return nil, err
	}
	dat, err := b.backend.Read(2)
	if err != nil {
		return nil, err
	}
	if len(dat) != 2 {
		return nil, &ResponseLengthError{Expected: 2, Got: len(dat)}
	}
	states := make([]bool, 0, board16Channels)
	for bit := 7; bit >= 0; bit-- {
		states = append(states, dat[0]&(1<<bit) != 0)
	}
	for bit := 7; bit >= 0; bit-- {
		states = append(states, dat[1]&(1<<bit) != 0)
	}
	return states, nil
}

func (b *Board16CH) setMultipleStates(states []bool) error {
	if len(states) != board16Channels {
		return fmt.Errorf("%w: state vector must hold %d channels, got %d",
			ErrInvalidArgument, board16Channels, len(states))
	}
	var byte1, byte2 byte
	for i := 0; i < 8; i++ {
		if states[7-i] {
			byte1 |= 1 << i
		}
		if states[15-i] {
			byte2 |= 1 << i
		}
	}
	cmd := append(append([]byte{}, multipleCommand...), byte1, byte2)
	cmd = append(cmd, eocPattern...)
	if err := b.backend.Write(cmd); err != nil {
		return err
	}
	_, err := b.backend.Read(5)
	return err
}

func (b *Board16CH) setSingleState(logic bool, addr int) error {
	pattern := negativeLogic
	if logic {
		pattern = positiveLogic
	}
	cmd := []byte(fmt.Sprintf("%02d", addr))
	cmd = append(cmd, pattern...)
	cmd = append(cmd, eocPattern...)
	if err := b.backend.Write(cmd); err != nil {
		return err
	}
	_, err := b.backend.Read(5)
	return err
}

func (b *Board16CH) Close() error {
	if b.backend == nil {
		return nil
	}
	err := b.backend.Close()
	b.backend = nil
	return err
}

// dedupeAddrs drops duplicate addresses while keeping first-seen order.
func dedupeAddrs(addrs []int) []int {
	seen := make(map[int]struct{}, len(addrs))
	out := addrs[:0:0]
	for _, addr := range addrs {
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}
	return out
}
