package d2xx

import "fmt"

// Status is the native FT_STATUS code returned by every D2XX call.
type Status uint32

const (
	StatusOK Status = iota
	StatusInvalidHandle
	StatusDeviceNotFound
	StatusDeviceNotOpened
	StatusIOError
	StatusInsufficientResources
	StatusInvalidParameter
	StatusInvalidBaudRate
	StatusDeviceNotOpenedForErase
	StatusDeviceNotOpenedForWrite
	StatusFailedToWriteDevice
	StatusEEPROMReadFailed
	StatusEEPROMWriteFailed
	StatusEEPROMEraseFailed
	StatusEEPROMNotPresent
	StatusEEPROMNotProgrammed
	StatusInvalidArgs
	StatusNotSupported
	StatusOtherError
	StatusDeviceListNotReady
)

var statusNames = map[Status]string{
	StatusOK:                      "ok",
	StatusInvalidHandle:           "invalid handle",
	StatusDeviceNotFound:          "device not found",
	StatusDeviceNotOpened:         "device not opened",
	StatusIOError:                 "io error",
	StatusInsufficientResources:   "insufficient resources",
	StatusInvalidParameter:        "invalid parameter",
	StatusInvalidBaudRate:         "invalid baud rate",
	StatusDeviceNotOpenedForErase: "device not opened for erase",
	StatusDeviceNotOpenedForWrite: "device not opened for write",
	StatusFailedToWriteDevice:     "failed to write device",
	StatusEEPROMReadFailed:        "eeprom read failed",
	StatusEEPROMWriteFailed:       "eeprom write failed",
	StatusEEPROMEraseFailed:       "eeprom erase failed",
	StatusEEPROMNotPresent:        "eeprom not present",
	StatusEEPROMNotProgrammed:     "eeprom not programmed",
	StatusInvalidArgs:             "invalid args",
	StatusNotSupported:            "not supported",
	StatusOtherError:              "other error",
	StatusDeviceListNotReady:      "device list not ready",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("unknown status %d", uint32(s))
}

// StatusError carries the native status of a failed D2XX call together with
// the call that produced it.
type StatusError struct {
	Op     string
	Status Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("d2xx: %s: %s", e.Op, e.Status)
}

// statusErr converts a native return code into an error, nil on StatusOK
func statusErr(op string, s Status) error {
	if s == StatusOK {
		return nil
	}
	return &StatusError{Op: op, Status: s}
}
