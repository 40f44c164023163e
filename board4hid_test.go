package denkovi

import (
	"errors"
	"testing"
	"time"
)

func newTestBoard4HID(t *testing.T) (*Board4CHMCP, *fakeBackend) {
	t.Helper()
	backend := &fakeBackend{}
	board, err := NewBoard4CHMCP(backend, "", "0001112223", time.Second)
	if err != nil {
		t.Fatalf("NewBoard4CHMCP() error = %v", err)
	}
	return board, backend
}

// queueReadAll primes the fake with a read-all response carrying the
// given channel bitmap.
func queueReadAll(backend *fakeBackend, bitmap byte) {
	resp := make([]byte, 16)
	resp[10] = bitmap
	backend.readQueue = append(backend.readQueue, resp)
}

func TestBoard4HIDControlReportEncoding(t *testing.T) {
	tests := []struct {
		name       string
		addrs      []int
		wantBitmap byte
	}{
		{"channels 1 and 3", []int{1, 3}, 0b00000101},
		{"channel 1 only", []int{1}, 0b00000001},
		{"all channels", []int{1, 2, 3, 4}, 0b00001111},
		{"no channels", nil, 0b00000000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board, backend := newTestBoard4HID(t)
			if err := board.SetClearState(true, tt.addrs...); err != nil {
				t.Fatalf("SetClearState() error = %v", err)
			}
			if len(backend.writes) != 1 {
				t.Fatalf("writes = %d, want 1", len(backend.writes))
			}
			report := backend.writes[0]
			if len(report) != 16 {
				t.Fatalf("report length = %d, want 16", len(report))
			}
			if report[0] != 0x08 {
				t.Errorf("opcode = %#x, want 0x08", report[0])
			}
			if report[11] != tt.wantBitmap {
				t.Errorf("bitmap byte = %#08b, want %#08b", report[11], tt.wantBitmap)
			}
			if report[12] != tt.wantBitmap^0xFF {
				t.Errorf("check byte = %#08b, want %#08b", report[12], tt.wantBitmap^0xFF)
			}
		})
	}
}

func TestBoard4HIDSetStatePreservesOthers(t *testing.T) {
	board, backend := newTestBoard4HID(t)

	// Channel 2 reported on; asserting channel 4 must keep it.
	queueReadAll(backend, 0b00000010)
	if err := board.SetState(true, 4); err != nil {
		t.Fatalf("SetState() error = %v", err)
	}

	// writes[0] is the read-all request, writes[1] the set command.
	if len(backend.writes) != 2 {
		t.Fatalf("writes = %d, want 2", len(backend.writes))
	}
	if backend.writes[0][0] != 0x80 {
		t.Errorf("read-all opcode = %#x, want 0x80", backend.writes[0][0])
	}
	if got := backend.writes[1][11]; got != 0b00001010 {
		t.Errorf("bitmap = %#08b, want 0b00001010", got)
	}
}

func TestBoard4HIDGetAllStates(t *testing.T) {
	board, backend := newTestBoard4HID(t)

	queueReadAll(backend, 0b00001001)
	states, err := board.GetAllStates()
	if err != nil {
		t.Fatalf("GetAllStates() error = %v", err)
	}
	want := []bool{true, false, false, true}
	for i, state := range states {
		if state != want[i] {
			t.Errorf("states[%d] = %v, want %v", i, state, want[i])
		}
	}
}

func TestBoard4HIDShortResponse(t *testing.T) {
	board, backend := newTestBoard4HID(t)

	backend.readQueue = [][]byte{make([]byte, 3)}
	_, err := board.GetAllStates()
	var lengthErr *ResponseLengthError
	if !errors.As(err, &lengthErr) {
		t.Fatalf("error = %v, want *ResponseLengthError", err)
	}
	if lengthErr.Expected != 16 || lengthErr.Got != 3 {
		t.Errorf("ResponseLengthError = %+v, want Expected=16 Got=3", lengthErr)
	}
}

func TestBoard4HIDSetClearStateFalseIsAllOff(t *testing.T) {
	board, backend := newTestBoard4HID(t)

	if err := board.SetClearState(false, 1, 2); err != nil {
		t.Fatalf("SetClearState(false) error = %v", err)
	}
	if len(backend.writes) != 1 {
		t.Fatalf("writes = %d, want 1", len(backend.writes))
	}
	report := backend.writes[0]
	if report[11] != 0x00 || report[12] != 0xFF {
		t.Errorf("report bytes 11/12 = %#x/%#x, want 0x00/0xFF", report[11], report[12])
	}
}

func TestBoard4HIDStateOverflow(t *testing.T) {
	board, backend := newTestBoard4HID(t)

	var overflowErr *StateOverflowError
	if err := board.SetState(true, 5); !errors.As(err, &overflowErr) {
		t.Fatalf("SetState(5) error = %v, want *StateOverflowError", err)
	}
	if overflowErr.MaxChannel != 4 {
		t.Errorf("MaxChannel = %d, want 4", overflowErr.MaxChannel)
	}
	if len(backend.writes) != 0 {
		t.Errorf("writes = %d, want 0", len(backend.writes))
	}
}

func TestBoard4HIDCloseIdempotent(t *testing.T) {
	board, backend := newTestBoard4HID(t)

	if err := board.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := board.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if backend.closed != 1 {
		t.Errorf("backend closed %d times, want 1", backend.closed)
	}
}
