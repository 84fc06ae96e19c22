package relay

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// WakePipe lets other goroutines (signal forwarding) stop the event loop.
type WakePipe struct {
	r, w int
}

// NewWakePipe creates a non-blocking pipe.
func NewWakePipe() (*WakePipe, error) {
	var p [2]int
	if err := unix.Pipe(p[:]); err != nil {
		return nil, fmt.Errorf("%w: pipe: %w", ErrSocket, err)
	}
	for _, fd := range p {
		unix.CloseOnExec(fd)
		if err := unix.SetNonblock(fd, true); err != nil {
			unix.Close(p[0])
			unix.Close(p[1])
			return nil, fmt.Errorf("%w: nonblock: %w", ErrSocket, err)
		}
	}
	return &WakePipe{r: p[0], w: p[1]}, nil
}

// Notify wakes the loop. It is safe to call from any goroutine and never blocks.
func (p *WakePipe) Notify() {
	_, _ = unix.Write(p.w, []byte{1})
}

// Handler returns a handler that ends the loop with ErrShutdown.
func (p *WakePipe) Handler() *Handler {
	return &Handler{
		Name: "shutdown",
		FD:   p.r,
		OnRead: func() error {
			var buf [16]byte
			_, _ = unix.Read(p.r, buf[:])
			return ErrShutdown
		},
	}
}

// Close closes both ends.
func (p *WakePipe) Close() error {
	unix.Close(p.w)
	return unix.Close(p.r)
}
