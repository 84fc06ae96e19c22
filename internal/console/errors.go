package console

import "errors"

// Domain errors for the console package.
var (
	// ErrNotTerminal is returned when stdin is not a terminal.
	ErrNotTerminal = errors.New("console: not a terminal")

	// ErrTerminalMode is returned when the terminal mode cannot be changed.
	ErrTerminalMode = errors.New("console: cannot set terminal mode")

	// ErrUnsupportedPlatform is returned where key mode is not implemented.
	ErrUnsupportedPlatform = errors.New("console: not supported on this platform")
)
