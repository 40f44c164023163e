package serial

import "errors"

// Predefined error types for robust error handling
var (
	ErrPortClosed      = errors.New("serial port is closed")
	ErrInvalidBaudRate = errors.New("invalid baud rate")
	ErrInvalidConfig   = errors.New("invalid serial configuration")
)
