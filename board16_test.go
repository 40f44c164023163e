package denkovi

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func newTestBoard16(t *testing.T) (*Board16CH, *fakeBackend) {
	t.Helper()
	backend := &fakeBackend{}
	board, err := NewBoard16CH(backend, "", "DAE001", time.Second)
	if err != nil {
		t.Fatalf("NewBoard16CH() error = %v", err)
	}
	return board, backend
}

func TestBoard16CHOpenArgs(t *testing.T) {
	tests := []struct {
		name          string
		deviceAddress string
		serialNumber  string
		wantErr       bool
	}{
		{"serial number only", "", "DAE001", false},
		{"device address only", "/dev/ttyUSB0", "", false},
		{"both provided", "/dev/ttyUSB0", "DAE001", true},
		{"neither provided", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{serial: "DAE001"}
			_, err := NewBoard16CH(backend, tt.deviceAddress, tt.serialNumber, time.Second)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewBoard16CH() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestBoard16CHAllOnOff(t *testing.T) {
	board, backend := newTestBoard16(t)

	if err := board.SetAllStatesOn(); err != nil {
		t.Fatalf("SetAllStatesOn() error = %v", err)
	}
	if err := board.SetAllStatesOff(); err != nil {
		t.Fatalf("SetAllStatesOff() error = %v", err)
	}

	want := [][]byte{[]byte("on//"), []byte("off//")}
	if len(backend.writes) != len(want) {
		t.Fatalf("writes = %d, want %d", len(backend.writes), len(want))
	}
	for i, w := range want {
		if !bytes.Equal(backend.writes[i], w) {
			t.Errorf("write[%d] = %q, want %q", i, backend.writes[i], w)
		}
	}
}

func TestBoard16CHSetSingleState(t *testing.T) {
	tests := []struct {
		name  string
		logic bool
		addr  int
		want  string
	}{
		{"channel 4 on", true, 4, "04+//"},
		{"channel 4 off", false, 4, "04-//"},
		{"channel 16 on", true, 16, "16+//"},
		{"channel 1 off", false, 1, "01-//"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board, backend := newTestBoard16(t)
			if err := board.SetState(tt.logic, tt.addr); err != nil {
				t.Fatalf("SetState() error = %v", err)
			}
			if len(backend.writes) != 1 {
				t.Fatalf("writes = %d, want 1", len(backend.writes))
			}
			if got := string(backend.writes[0]); got != tt.want {
				t.Errorf("write = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBoard16CHSetMultipleStates(t *testing.T) {
	board, backend := newTestBoard16(t)

	// Current state reads back as all-off, so the update asserts only
	// the requested channels.
	backend.readQueue = [][]byte{{0x00, 0x00}}
	if err := board.SetState(true, 1, 16); err != nil {
		t.Fatalf("SetState() error = %v", err)
	}

	// First write is the state query, second the multi-set command.
	if len(backend.writes) != 2 {
		t.Fatalf("writes = %d, want 2", len(backend.writes))
	}
	want := []byte{'x', 0x80, 0x01, '/', '/'}
	if !bytes.Equal(backend.writes[1], want) {
		t.Errorf("multi-set write = %#v, want %#v", backend.writes[1], want)
	}
}

func TestBoard16CHSetClearState(t *testing.T) {
	board, backend := newTestBoard16(t)

	if err := board.SetClearState(true, 2, 9); err != nil {
		t.Fatalf("SetClearState() error = %v", err)
	}
	if len(backend.writes) != 1 {
		t.Fatalf("writes = %d, want 1", len(backend.writes))
	}
	// Channel 2 is bit 6 of the first byte, channel 9 bit 7 of the
	// second.
	want := []byte{'x', 0x40, 0x80, '/', '/'}
	if !bytes.Equal(backend.writes[0], want) {
		t.Errorf("write = %#v, want %#v", backend.writes[0], want)
	}
}

func TestBoard16CHSetClearStateFalseIsAllOff(t *testing.T) {
	board, backend := newTestBoard16(t)

	if err := board.SetClearState(false, 3, 7, 12); err != nil {
		t.Fatalf("SetClearState() error = %v", err)
	}
	if len(backend.writes) != 1 || !bytes.Equal(backend.writes[0], []byte("off//")) {
		t.Errorf("writes = %v, want single off command", backend.writes)
	}
}

func TestBoard16CHGetAllStates(t *testing.T) {
	board, backend := newTestBoard16(t)

	backend.readQueue = [][]byte{{0b10000000, 0b00000001}}
	states, err := board.GetAllStates()
	if err != nil {
		t.Fatalf("GetAllStates() error = %v", err)
	}
	if len(states) != 16 {
		t.Fatalf("len(states) = %d, want 16", len(states))
	}
	for i, state := range states {
		want := i == 0 || i == 15
		if state != want {
			t.Errorf("states[%d] = %v, want %v", i, state, want)
		}
	}
	if backend.drains != 1 {
		t.Errorf("stale input drains = %d, want 1", backend.drains)
	}
	if len(backend.writes) != 1 || !bytes.Equal(backend.writes[0], []byte("ask//")) {
		t.Errorf("writes = %v, want single ask command", backend.writes)
	}
}

func TestBoard16CHGetAllStatesShortResponse(t *testing.T) {
	board, backend := newTestBoard16(t)

	backend.readQueue = [][]byte{{0x01}}
	_, err := board.GetAllStates()
	var lengthErr *ResponseLengthError
	if !errors.As(err, &lengthErr) {
		t.Fatalf("error = %v, want *ResponseLengthError", err)
	}
	if lengthErr.Expected != 2 || lengthErr.Got != 1 {
		t.Errorf("ResponseLengthError = %+v, want Expected=2 Got=1", lengthErr)
	}
}

func TestBoard16CHStateOverflow(t *testing.T) {
	board, backend := newTestBoard16(t)

	for _, addr := range []int{0, -1, 17} {
		var overflowErr *StateOverflowError
		if err := board.SetState(true, addr); !errors.As(err, &overflowErr) {
			t.Fatalf("SetState(%d) error = %v, want *StateOverflowError", addr, err)
		} else if overflowErr.MaxChannel != 16 {
			t.Errorf("MaxChannel = %d, want 16", overflowErr.MaxChannel)
		}
		if _, err := board.GetState(addr); err == nil {
			t.Errorf("GetState(%d) error = nil, want overflow", addr)
		}
	}
	// Validation happens before any I/O.
	if len(backend.writes) != 0 {
		t.Errorf("writes = %d, want 0", len(backend.writes))
	}
}

func TestBoard16CHCloseIdempotent(t *testing.T) {
	board, backend := newTestBoard16(t)

	if err := board.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := board.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if backend.closed != 1 {
		t.Errorf("backend closed %d times, want 1", backend.closed)
	}

	if err := board.SetAllStatesOn(); !errors.Is(err, ErrNotOpen) {
		t.Errorf("SetAllStatesOn() after close error = %v, want ErrNotOpen", err)
	}
	if _, err := board.GetAllStates(); !errors.Is(err, ErrNotOpen) {
		t.Errorf("GetAllStates() after close error = %v, want ErrNotOpen", err)
	}
}

func TestBoard16CHSerialNumber(t *testing.T) {
	board, _ := newTestBoard16(t)

	sn, err := board.SerialNumber()
	if err != nil {
		t.Fatalf("SerialNumber() error = %v", err)
	}
	if sn != "DAE001" {
		t.Errorf("SerialNumber() = %q, want %q", sn, "DAE001")
	}
}
