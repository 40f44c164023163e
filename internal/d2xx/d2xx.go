// Package d2xx wraps the FTDI D2XX vendor library through dlopen. The
// library is resolved at runtime: an explicit path wins, then the dynamic
// linker's search path, then a recursive walk below the executable as a
// last resort. Every native call returns an FT_STATUS which is mapped onto
// a named Status value.
package d2xx

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/ebitengine/purego"
)

// Shared-library names tried on the linker search path and during the
// filesystem walk.
var libNames = []string{
	"libftd2xx.so",
	"libftd2xx.so.1",
	"libftd2xx.dylib",
}

// ErrLibraryNotFound reports that no loadable D2XX library was located.
var ErrLibraryNotFound = errors.New("d2xx: FTD2XX library not found")

// Bit modes accepted by SetBitMode.
const (
	BitModeReset        byte = 0x00
	BitModeAsyncBitBang byte = 0x01
	BitModeSyncBitBang  byte = 0x04
)

// Line format constants for SetDataCharacteristics.
const (
	Bits8      byte = 8
	Bits7      byte = 7
	StopBits1  byte = 0
	StopBits2  byte = 2
	ParityNone byte = 0
	ParityOdd  byte = 1
	ParityEven byte = 2
)

const ftOpenBySerialNumber uint32 = 1

// Lib is a loaded D2XX library. A single Lib may open several devices.
type Lib struct {
	ftCreateDeviceInfoList func(count *uint32) uint32
	ftGetDeviceInfoDetail  func(index uint32, flags, typ, id, locID *uint32, serial, desc *byte, handle *uintptr) uint32
	ftOpenEx               func(arg *byte, flags uint32, handle *uintptr) uint32
	ftClose                func(handle uintptr) uint32
	ftRead                 func(handle uintptr, buf *byte, count uint32, read *uint32) uint32
	ftWrite                func(handle uintptr, buf *byte, count uint32, written *uint32) uint32
	ftSetBaudRate          func(handle uintptr, baud uint32) uint32
	ftSetDataChars         func(handle uintptr, wordLength, stopBits, parity byte) uint32
	ftSetTimeouts          func(handle uintptr, readMS, writeMS uint32) uint32
	ftSetBitMode           func(handle uintptr, mask, mode byte) uint32
	ftGetBitMode           func(handle uintptr, mode *byte) uint32
	ftGetQueueStatus       func(handle uintptr, rxBytes *uint32) uint32
}

// DeviceInfo is one row of the native device-info list.
type DeviceInfo struct {
	Flags        uint32
	Type         uint32
	ID           uint32
	LocID        uint32
	SerialNumber string
	Description  string
}

// Load resolves and loads the D2XX shared library. An empty path enables
// the search chain.
func Load(path string) (*Lib, error) {
	handle, err := resolveLibrary(path)
	if err != nil {
		return nil, err
	}

	lib := &Lib{}
	purego.RegisterLibFunc(&lib.ftCreateDeviceInfoList, handle, "FT_CreateDeviceInfoList")
	purego.RegisterLibFunc(&lib.ftGetDeviceInfoDetail, handle, "FT_GetDeviceInfoDetail")
	purego.RegisterLibFunc(&lib.ftOpenEx, handle, "FT_OpenEx")
	purego.RegisterLibFunc(&lib.ftClose, handle, "FT_Close")
	purego.RegisterLibFunc(&lib.ftRead, handle, "FT_Read")
	purego.RegisterLibFunc(&lib.ftWrite, handle, "FT_Write")
	purego.RegisterLibFunc(&lib.ftSetBaudRate, handle, "FT_SetBaudRate")
	purego.RegisterLibFunc(&lib.ftSetDataChars, handle, "FT_SetDataCharacteristics")
	purego.RegisterLibFunc(&lib.ftSetTimeouts, handle, "FT_SetTimeouts")
	purego.RegisterLibFunc(&lib.ftSetBitMode, handle, "FT_SetBitMode")
	purego.RegisterLibFunc(&lib.ftGetBitMode, handle, "FT_GetBitMode")
	purego.RegisterLibFunc(&lib.ftGetQueueStatus, handle, "FT_GetQueueStatus")
	return lib, nil
}

func resolveLibrary(path string) (uintptr, error) {
	if path != "" {
		handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			return 0, fmt.Errorf("d2xx: failed to load %s: %w", path, err)
		}
		return handle, nil
	}

	// Plain names defer to the dynamic linker (LD_LIBRARY_PATH, ldconfig)
	for _, name := range libNames {
		if handle, err := purego.Dlopen(name, purego.RTLD_NOW|purego.RTLD_GLOBAL); err == nil {
			return handle, nil
		}
	}

	for _, candidate := range walkCandidates(searchRoot(), libNames) {
		if handle, err := purego.Dlopen(candidate, purego.RTLD_NOW|purego.RTLD_GLOBAL); err == nil {
			return handle, nil
		}
	}

	return 0, ErrLibraryNotFound
}

// searchRoot is the directory walked as a last resort: the directory the
// running executable lives in.
func searchRoot() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// walkCandidates collects paths below root whose base name matches one of
// the wanted library names.
func walkCandidates(root string, names []string) []string {
	var candidates []string
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		base := filepath.Base(path)
		for _, name := range names {
			if base == name {
				candidates = append(candidates, path)
				break
			}
		}
		return nil
	})
	return candidates
}

// ListDevices returns the native device-info list.
func (l *Lib) ListDevices() ([]DeviceInfo, error) {
	var count uint32
	if err := statusErr("FT_CreateDeviceInfoList", Status(l.ftCreateDeviceInfoList(&count))); err != nil {
		return nil, err
	}

	infos := make([]DeviceInfo, 0, count)
	for i := uint32(0); i < count; i++ {
		var (
			flags, typ, id, locID uint32
			handle                uintptr
		)
		serial := make([]byte, 16)
		desc := make([]byte, 64)
		st := l.ftGetDeviceInfoDetail(i, &flags, &typ, &id, &locID, &serial[0], &desc[0], &handle)
		if err := statusErr("FT_GetDeviceInfoDetail", Status(st)); err != nil {
			return nil, err
		}
		infos = append(infos, DeviceInfo{
			Flags:        flags,
			Type:         typ,
			ID:           id,
			LocID:        locID,
			SerialNumber: cString(serial),
			Description:  cString(desc),
		})
	}
	return infos, nil
}

// OpenBySerial opens the device with the given chip serial number. The
// comparison inside the native library is case sensitive.
func (l *Lib) OpenBySerial(serial string) (*Device, error) {
	arg := append([]byte(serial), 0)
	var handle uintptr
	if err := statusErr("FT_OpenEx", Status(l.ftOpenEx(&arg[0], ftOpenBySerialNumber, &handle))); err != nil {
		return nil, err
	}
	return &Device{lib: l, handle: handle}, nil
}

// Device is an open D2XX device handle.
type Device struct {
	lib    *Lib
	handle uintptr
}

// Close releases the native handle.
func (d *Device) Close() error {
	return statusErr("FT_Close", Status(d.lib.ftClose(d.handle)))
}

// Read blocks until size bytes arrive or the native read timeout elapses,
// returning the collected prefix.
func (d *Device) Read(size int) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}
	buf := make([]byte, size)
	var n uint32
	if err := statusErr("FT_Read", Status(d.lib.ftRead(d.handle, &buf[0], uint32(size), &n))); err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// ReadAvailable drains the receive queue without blocking.
func (d *Device) ReadAvailable() ([]byte, error) {
	pending, err := d.QueueStatus()
	if err != nil {
		return nil, err
	}
	if pending == 0 {
		return nil, nil
	}
	return d.Read(pending)
}

// Write sends the full buffer.
func (d *Device) Write(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	var written uint32
	return statusErr("FT_Write", Status(d.lib.ftWrite(d.handle, &data[0], uint32(len(data)), &written)))
}

// QueueStatus returns the number of bytes pending in the receive queue.
func (d *Device) QueueStatus() (int, error) {
	var rx uint32
	if err := statusErr("FT_GetQueueStatus", Status(d.lib.ftGetQueueStatus(d.handle, &rx))); err != nil {
		return 0, err
	}
	return int(rx), nil
}

// SetBaudRate configures the line speed.
func (d *Device) SetBaudRate(baud int) error {
	return statusErr("FT_SetBaudRate", Status(d.lib.ftSetBaudRate(d.handle, uint32(baud))))
}

// SetDataCharacteristics configures word length, stop bits and parity.
func (d *Device) SetDataCharacteristics(wordLength, stopBits, parity byte) error {
	return statusErr("FT_SetDataCharacteristics", Status(d.lib.ftSetDataChars(d.handle, wordLength, stopBits, parity)))
}

// SetTimeouts arms the native read and write timeouts.
func (d *Device) SetTimeouts(read, write time.Duration) error {
	return statusErr("FT_SetTimeouts", Status(d.lib.ftSetTimeouts(d.handle, uint32(read.Milliseconds()), uint32(write.Milliseconds()))))
}

// SetBitMode programs the pin direction mask and operating mode.
func (d *Device) SetBitMode(mask, mode byte) error {
	return statusErr("FT_SetBitMode", Status(d.lib.ftSetBitMode(d.handle, mask, mode)))
}

// GetBitMode reads the instantaneous pin state register.
func (d *Device) GetBitMode() (byte, error) {
	var mode byte
	if err := statusErr("FT_GetBitMode", Status(d.lib.ftGetBitMode(d.handle, &mode))); err != nil {
		return 0, err
	}
	return mode, nil
}

// cString trims a NUL-terminated byte buffer.
func cString(buf []byte) string {
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i])
		}
	}
	return string(buf)
}
