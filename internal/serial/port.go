package serial

import (
	"fmt"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Port is a non-blocking serial device descriptor.
//
// It is driven by the relay's poll loop, so it never blocks and exposes its
// raw descriptor.
type Port struct {
	fd       int
	path     string
	terminal bool
}

// Open opens path read-write without becoming its controlling terminal.
//
// When path is a terminal it is switched to raw 8N1 at baud with no flow
// control. Anything else (a plain file, a pipe) is used as-is, which is
// handy for testing without hardware.
func Open(path string, baud int) (*Port, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrOpen, path, err)
	}

	p := &Port{fd: fd, path: path, terminal: term.IsTerminal(fd)}
	if p.terminal {
		if err := configureRaw(fd, baud); err != nil {
			unix.Close(fd)
			return nil, fmt.Errorf("%w: %s: %w", ErrConfigure, path, err)
		}
	}
	return p, nil
}

// Write writes without blocking. A would-block error comes back as
// unix.EAGAIN with n == 0.
func (p *Port) Write(b []byte) (int, error) {
	n, err := unix.Write(p.fd, b)
	if n < 0 {
		n = 0
	}
	return n, err
}

// Read reads whatever is available without blocking.
func (p *Port) Read(b []byte) (int, error) {
	n, err := unix.Read(p.fd, b)
	if n < 0 {
		n = 0
	}
	return n, err
}

// FD returns the descriptor.
func (p *Port) FD() int { return p.fd }

// IsTerminal reports whether the device is a tty.
func (p *Port) IsTerminal() bool { return p.terminal }

// Path returns the device path.
func (p *Port) Path() string { return p.path }

// Close closes the descriptor.
func (p *Port) Close() error {
	return unix.Close(p.fd)
}
