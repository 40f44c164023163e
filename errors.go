package denkovi

import (
	"errors"
	"fmt"
	"strings"
)

// Predefined error types for robust error handling
var (
	// ErrInvalidArgument reports conflicting or missing open parameters:
	// exactly one of device address and serial number must be provided.
	ErrInvalidArgument = errors.New("exactly one of device address or serial number must be provided")

	// ErrDeviceNotFound reports that discovery could not resolve the
	// requested device.
	ErrDeviceNotFound = errors.New("device not found")

	// ErrNotOpen reports an operation on an unopened or closed backend.
	ErrNotOpen = errors.New("backend is not open")

	// ErrSerialNumberUnknown reports that the open succeeded but the OS
	// enumeration supplied no serial number for the device.
	ErrSerialNumberUnknown = errors.New("serial number is not known for this device")
)

// StateOverflowError reports a relay address outside [1, MaxChannel]. It is
// raised before any I/O, so a failed call never leaves the board partially
// updated.
type StateOverflowError struct {
	MaxChannel int
}

func (e *StateOverflowError) Error() string {
	return fmt.Sprintf("state overflow: max channel is %d", e.MaxChannel)
}

// ResponseLengthError reports a device response shorter than the protocol
// requires.
type ResponseLengthError struct {
	Expected int
	Got      int
}

func (e *ResponseLengthError) Error() string {
	return fmt.Sprintf("invalid response length: expected %d bytes, got %d bytes", e.Expected, e.Got)
}

// UnsupportedTypeError reports an unknown board or backend token, or a
// backend whose native prerequisites are unavailable on this system.
type UnsupportedTypeError struct {
	Kind      string // "board" or "backend"
	Token     string
	Supported []string

	// Cause carries the native initialization failure when a recognized
	// backend is unavailable on this system.
	Cause error
}

func (e *UnsupportedTypeError) Error() string {
	msg := fmt.Sprintf("unsupported %s type: %s (supported: %s)",
		e.Kind, e.Token, strings.Join(e.Supported, ", "))
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *UnsupportedTypeError) Unwrap() error { return e.Cause }

// UnsupportedCombinationError reports a recognized but incompatible pairing
// of board and backend types.
type UnsupportedCombinationError struct {
	Board     BoardType
	Backend   BackendType
	Supported []BackendType
}

func (e *UnsupportedCombinationError) Error() string {
	names := make([]string, len(e.Supported))
	for i, b := range e.Supported {
		names[i] = string(b)
	}
	return fmt.Sprintf("unsupported backend type %s for board type %s (supported: %s)",
		e.Backend, e.Board, strings.Join(names, ", "))
}
