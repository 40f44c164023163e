// Package denkovi controls Denkovi USB relay boards over several
// interchangeable transports.
//
// Four board families are supported: the 16-channel board (ASCII command
// protocol over a serial link), the 8-channel and 4-channel FT-based
// boards (FTDI bit-bang GPIO), and the 4-channel MCP2200 board (USB-HID
// reports). Each family accepts a fixed set of transport backends; the
// factory validates the pairing and hands back a connected board.
//
// # Basic Usage
//
// Create a board through the factory and drive its relays:
//
//	board, err := denkovi.Create(denkovi.BoardType16CH, denkovi.BackendVCP,
//	    "", "DAE002fGA", 5*time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer board.Close()
//
//	err = board.SetState(true, 1, 4)
//	states, err := board.GetAllStates()
//
// Boards may be addressed either by the OS device path of their serial
// port or by their chip serial number, never both at once.
//
// # Discovery
//
// List every device reachable through any available backend:
//
//	for _, dev := range denkovi.ListPotentialBoards() {
//	    fmt.Println(dev.Backend, dev.SerialNumber, dev.DeviceAddress)
//	}
//
// Backends whose native prerequisites are missing (the vendor D2XX
// library, HID support, libusb) are skipped during discovery and
// rejected at creation time.
//
// # Concurrency
//
// A board and its backend form a single-owner pair. No method is safe
// for concurrent use on the same board without external serialization.
package denkovi
