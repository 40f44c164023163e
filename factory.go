package denkovi

import (
	"log/slog"
	"time"
)

// backendConstructors builds a fresh backend per board. Constructors that
// need native prerequisites (vendor library, HID subsystem, libusb) fail
// here when the host lacks them, which marks the backend unavailable.
var backendConstructors = map[BackendType]func(*slog.Logger) (Backend, error){
	BackendVCP: func(logger *slog.Logger) (Backend, error) {
		return NewVCPBackend(logger), nil
	},
	BackendD2XX: func(logger *slog.Logger) (Backend, error) {
		return NewD2XXBackend(logger)
	},
	BackendMCP2200: func(logger *slog.Logger) (Backend, error) {
		return NewMCP2200Backend(logger)
	},
	BackendFTDI: func(logger *slog.Logger) (Backend, error) {
		return NewFTDIBackend(logger)
	},
}

// compatibleBackends is the fixed pairing of board families and the
// transports their hardware actually exposes.
var compatibleBackends = map[BoardType][]BackendType{
	BoardType16CH:   {BackendD2XX, BackendVCP, BackendFTDI},
	BoardType8CH:    {BackendD2XX, BackendFTDI},
	BoardType4CHFT:  {BackendD2XX},
	BoardType4CHMCP: {BackendMCP2200},
}

// Factory validates board/backend pairings and constructs connected
// boards. The zero value is not usable; use NewFactory.
type Factory struct {
	logger *slog.Logger
}

// NewFactory returns a factory. A nil logger falls back to slog.Default.
func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// Create validates the requested pairing, constructs the backend, and
// opens a board on it. A successfully returned board is already
// connected. Exactly one of deviceAddress and serialNumber must be
// non-empty; a non-positive timeout falls back to DefaultTimeout.
func (f *Factory) Create(boardType BoardType, backendType BackendType, deviceAddress, serialNumber string, timeout time.Duration) (Board, error) {
	construct, ok := backendConstructors[backendType]
	if !ok {
		return nil, &UnsupportedTypeError{
			Kind:      "backend",
			Token:     string(backendType),
			Supported: supportedBackendTokens(),
		}
	}
	supported, ok := compatibleBackends[boardType]
	if !ok {
		return nil, &UnsupportedTypeError{
			Kind:      "board",
			Token:     string(boardType),
			Supported: supportedBoardTokens(),
		}
	}
	if !containsBackend(supported, backendType) {
		return nil, &UnsupportedCombinationError{
			Board:     boardType,
			Backend:   backendType,
			Supported: supported,
		}
	}

	backend, err := construct(f.logger)
	if err != nil {
		return nil, &UnsupportedTypeError{
			Kind:      "backend",
			Token:     string(backendType),
			Supported: supportedBackendTokens(),
			Cause:     err,
		}
	}

	var board Board
	switch boardType {
	case BoardType16CH:
		board, err = NewBoard16CH(backend, deviceAddress, serialNumber, timeout)
	case BoardType8CH, BoardType4CHFT:
		bitBang, ok := backend.(BitBangBackend)
		if !ok {
			_ = backend.Close()
			return nil, &UnsupportedCombinationError{
				Board:     boardType,
				Backend:   backendType,
				Supported: supported,
			}
		}
		if boardType == BoardType8CH {
			board, err = NewBoard8CH(bitBang, deviceAddress, serialNumber, timeout)
		} else {
			board, err = NewBoard4CHFT(bitBang, deviceAddress, serialNumber, timeout)
		}
	case BoardType4CHMCP:
		board, err = NewBoard4CHMCP(backend, deviceAddress, serialNumber, timeout)
	default:
		panic("unreachable")
	}
	if err != nil {
		// The backend may hold native resources (a USB context, the HID
		// subsystem) even before a device is opened.
		_ = backend.Close()
		return nil, err
	}
	return board, nil
}

// ListPotentialBoards aggregates discovery across every backend type. A
// backend that fails to initialize or enumerate contributes nothing; it
// is logged and skipped, never aborting the aggregate.
func (f *Factory) ListPotentialBoards() []DiscoveredDevice {
	var result []DiscoveredDevice
	for _, backendType := range []BackendType{BackendD2XX, BackendVCP, BackendMCP2200, BackendFTDI} {
		backend, err := backendConstructors[backendType](f.logger)
		if err != nil {
			f.logger.Warn("backend unavailable, skipping discovery",
				"backend", backendType, "error", err)
			continue
		}
		result = append(result, backend.ListPotentialDevices()...)
		if err := backend.Close(); err != nil {
			f.logger.Warn("backend release failed", "backend", backendType, "error", err)
		}
	}
	return result
}

func supportedBackendTokens() []string {
	return []string{
		string(BackendD2XX),
		string(BackendVCP),
		string(BackendMCP2200),
		string(BackendFTDI),
	}
}

func supportedBoardTokens() []string {
	return []string{
		string(BoardType16CH),
		string(BoardType8CH),
		string(BoardType4CHFT),
		string(BoardType4CHMCP),
	}
}

func containsBackend(list []BackendType, backend BackendType) bool {
	for _, b := range list {
		if b == backend {
			return true
		}
	}
	return false
}

var defaultFactory = NewFactory(nil)

// Create constructs a connected board using the default factory.
func Create(boardType BoardType, backendType BackendType, deviceAddress, serialNumber string, timeout time.Duration) (Board, error) {
	return defaultFactory.Create(boardType, backendType, deviceAddress, serialNumber, timeout)
}

// ListPotentialBoards lists discoverable devices using the default
// factory.
func ListPotentialBoards() []DiscoveredDevice {
	return defaultFactory.ListPotentialBoards()
}
