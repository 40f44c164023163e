package denkovi

import "time"

// MCP2200 report format. Every exchange is a fixed 16-byte buffer with an
// opcode in byte 0. Set/clear commands carry the channel bitmap in byte 11
// and its complement in byte 12, a redundancy the firmware verifies before
// acting. Read-all responses carry the live bitmap in byte 10.
const (
	hidReportSize     = 16
	readAllOpcode     = 0x80
	setClearOpcode    = 0x08
	ioPortBitmapIdx   = 10
	board4HIDChannels = 4
)

// Board4CHMCP drives the 4-channel board whose relays hang off an MCP2200
// USB-to-UART bridge, controlled via HID reports rather than the UART.
type Board4CHMCP struct {
	backend Backend
}

// NewBoard4CHMCP opens backend and returns the board bound to it.
func NewBoard4CHMCP(backend Backend, deviceAddress, serialNumber string, timeout time.Duration) (*Board4CHMCP, error) {
	if err := backend.Open(deviceAddress, serialNumber, timeout); err != nil {
		return nil, err
	}
	return &Board4CHMCP{backend: backend}, nil
}

func (b *Board4CHMCP) MaxChannel() int { return board4HIDChannels }

func (b *Board4CHMCP) SerialNumber() (string, error) {
	if b.backend == nil {
		return "", ErrNotOpen
	}
	return b.backend.SerialNumber()
}

func (b *Board4CHMCP) SetAllStatesOn() error {
	if b.backend == nil {
		return ErrNotOpen
	}
	return b.backend.Write(controlReport([]bool{true, true, true, true}))
}

func (b *Board4CHMCP) SetAllStatesOff() error {
	if b.backend == nil {
		return ErrNotOpen
	}
	return b.backend.Write(controlReport(make([]bool, board4HIDChannels)))
}

func (b *Board4CHMCP) SetState(logic bool, addrs ...int) error {
	if b.backend == nil {
		return ErrNotOpen
	}
	addrs = dedupeAddrs(addrs)
	if err := checkAddrs(board4HIDChannels, addrs); err != nil {
		return err
	}
	states, err := b.GetAllStates()
	if err != nil {
		return err
	}
	for _, addr := range addrs {
		states[addr-1] = logic
	}
	return b.backend.Write(controlReport(states))
}

func (b *Board4CHMCP) SetClearState(logic bool, addrs ...int) error {
	if b.backend == nil {
		return ErrNotOpen
	}
	addrs = dedupeAddrs(addrs)
	if err := checkAddrs(board4HIDChannels, addrs); err != nil {
		return err
	}
	if !logic {
		return b.SetAllStatesOff()
	}
	states := make([]bool, board4HIDChannels)
	for _, addr := range addrs {
		states[addr-1] = true
	}
	return b.backend.Write(controlReport(states))
}

func (b *Board4CHMCP) GetState(addr int) (bool, error) {
	if b.backend == nil {
		return false, ErrNotOpen
	}
	if err := checkAddrs(board4HIDChannels, []int{addr}); err != nil {
		return false, err
	}
	states, err := b.GetAllStates()
	if err != nil {
		return false, err
	}
	return states[addr-1], nil
}

func (b *Board4CHMCP) GetAllStates() ([]bool, error) {
	if b.backend == nil {
		return nil, ErrNotOpen
	}
	req := make([]byte, hidReportSize)
	req[0] = readAllOpcode
	if err := b.backend.Write(req); err != nil {
		return nil, err
	}
	resp, err := b.backend.Read(hidReportSize)
	if err != nil {
		return nil, err
	}
	if len(resp) != hidReportSize {
		return nil, &ResponseLengthError{Expected: hidReportSize, Got: len(resp)}
	}
	states := make([]bool, board4HIDChannels)
	for i := range states {
		states[i] = resp[ioPortBitmapIdx]&(1<<i) != 0
	}
	return states, nil
}

func (b *Board4CHMCP) Close() error {
	if b.backend == nil {
		return nil
	}
	err := b.backend.Close()
	b.backend = nil
	return err
}

// controlReport builds a set/clear report for the given 4-channel state
// vector.
func controlReport(states []bool) []byte {
	report := make([]byte, hidReportSize)
	report[0] = setClearOpcode
	for i, on := range states {
		if on {
			report[11] |= 1 << i
		}
	}
	report[12] = report[11] ^ 0xFF
	return report
}
