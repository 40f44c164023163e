package ftdi

import (
	"errors"
	"testing"

	"github.com/google/gousb"
)

func TestBaudDivisor(t *testing.T) {
	tests := []struct {
		baud          int
		expectedValue uint16
		expectedIndex uint16
	}{
		// 3 MHz / 9600 = 312.5 -> integer 312 (0x138), half-step code 1
		{9600, 0x4138, 0},
		// 3 MHz / 1200 = 2500, no fraction
		{1200, 2500, 0},
		// 3 MHz / 19200 = 156.25 -> integer 156 (0x9C), quarter-step code 2
		{19200, 0x809C, 0},
	}

	for _, tt := range tests {
		value, index, err := baudDivisor(tt.baud)
		if err != nil {
			t.Errorf("baudDivisor(%d) failed: %v", tt.baud, err)
			continue
		}
		if value != tt.expectedValue || index != tt.expectedIndex {
			t.Errorf("baudDivisor(%d) = (0x%04X, %d), expected (0x%04X, %d)",
				tt.baud, value, index, tt.expectedValue, tt.expectedIndex)
		}
	}
}

func TestBaudDivisorRejectsInvalidRates(t *testing.T) {
	for _, baud := range []int{0, -9600, 4000000} {
		if _, _, err := baudDivisor(baud); !errors.Is(err, ErrInvalidBaudRate) {
			t.Errorf("baudDivisor(%d) = %v, expected ErrInvalidBaudRate", baud, err)
		}
	}
}

func TestLineFormatEncoding(t *testing.T) {
	// 8N1 is dataBits | parity<<8 | stopBits<<11 = 8
	value := uint16(8) | ParityNone<<8 | StopBits1<<11
	if value != 8 {
		t.Errorf("8N1 encoding = 0x%04X, expected 0x0008", value)
	}

	// 7E2
	value = uint16(7) | ParityEven<<8 | StopBits2<<11
	if value != 0x1207 {
		t.Errorf("7E2 encoding = 0x%04X, expected 0x1207", value)
	}
}

func TestSupportedProductFilter(t *testing.T) {
	tests := []struct {
		vid, pid uint16
		expected bool
	}{
		{VendorID, ProductFT232R, true},
		{VendorID, ProductFT232H, true},
		{VendorID, 0x6010, false}, // FT2232 not on any board
		{0x04D8, ProductFT232R, false},
	}

	for _, tt := range tests {
		desc := &gousb.DeviceDesc{Vendor: gousb.ID(tt.vid), Product: gousb.ID(tt.pid)}
		if got := supportedProduct(desc); got != tt.expected {
			t.Errorf("supportedProduct(%04x:%04x) = %v, expected %v", tt.vid, tt.pid, got, tt.expected)
		}
	}
}
