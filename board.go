package denkovi

// BoardType identifies a relay board family.
type BoardType string

const (
	// BoardType16CH is the 16-channel board driven by an ASCII command
	// protocol over a serial link.
	BoardType16CH BoardType = "16ch"

	// BoardType8CH is the 8-channel board driven through FTDI bit-bang
	// pins.
	BoardType8CH BoardType = "8ch"

	// BoardType4CHFT is the 4-channel board with an FT232 chip, driven
	// through bit-bang pins like the 8-channel board.
	BoardType4CHFT BoardType = "4ch-ftd2xx"

	// BoardType4CHMCP is the 4-channel board with an MCP2200 chip,
	// driven through 16-byte HID reports.
	BoardType4CHMCP BoardType = "4ch-mcp2200"
)

// Board is a connected relay board. Implementations own exactly one backend
// which they open at construction and close exactly once; a board is not
// usable after Close.
//
// Relay addresses are 1-based. Any address outside [1, MaxChannel] fails
// with *StateOverflowError before any I/O is issued.
type Board interface {
	// SerialNumber returns the serial number of the underlying backend.
	SerialNumber() (string, error)

	// SetAllStatesOn turns every relay on.
	SetAllStatesOn() error

	// SetAllStatesOff turns every relay off.
	SetAllStatesOff() error

	// SetState drives the given relays to logic, leaving all others as
	// they are.
	SetState(logic bool, addrs ...int) error

	// SetClearState drives exactly the given relays to logic and every
	// other relay off. With logic false it is equivalent to
	// SetAllStatesOff regardless of the address list.
	SetClearState(logic bool, addrs ...int) error

	// GetState reports the state of one relay.
	GetState(addr int) (bool, error)

	// GetAllStates reports all relay states, index 0 holding channel 1.
	GetAllStates() ([]bool, error)

	// Close releases the backend. A second Close is a no-op.
	Close() error

	// MaxChannel is the channel count of this board type.
	MaxChannel() int
}

// checkAddrs validates relay addresses against the channel count.
func checkAddrs(maxChannel int, addrs []int) error {
	for _, addr := range addrs {
		if addr < 1 || addr > maxChannel {
			return &StateOverflowError{MaxChannel: maxChannel}
		}
	}
	return nil
}
