package serial

import "errors"

// Domain errors for the serial package.
var (
	// ErrOpen is returned when the device node cannot be opened.
	ErrOpen = errors.New("serial: open failed")

	// ErrConfigure is returned when line settings cannot be applied.
	ErrConfigure = errors.New("serial: configure failed")

	// ErrUnsupportedBaud is returned for a baud rate with no termios constant.
	ErrUnsupportedBaud = errors.New("serial: unsupported baud rate")

	// ErrUnsupportedPlatform is returned when terminal configuration is not
	// implemented for the running OS.
	ErrUnsupportedPlatform = errors.New("serial: terminal configuration not supported on this platform")
)
