package relay

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

const failureEvents = unix.POLLERR | unix.POLLHUP | unix.POLLNVAL

// Handler describes one watched descriptor.
//
// WantRead defaults to always when nil; WantWrite defaults to never.
// Both are evaluated before every wait. OnRead and OnWrite run to completion
// on the loop; returning ErrDetach stops watching the descriptor, any other
// error ends the loop.
type Handler struct {
	Name      string
	FD        int
	WantRead  func() bool
	WantWrite func() bool
	OnRead    func() error
	OnWrite   func() error

	detached bool
}

func (h *Handler) events() int16 {
	var ev int16
	if h.OnRead != nil && (h.WantRead == nil || h.WantRead()) {
		ev |= unix.POLLIN
	}
	if h.OnWrite != nil && h.WantWrite != nil && h.WantWrite() {
		ev |= unix.POLLOUT
	}
	return ev
}

// Multiplexer is a single-threaded readiness loop over a small fixed set of
// descriptors. The wait is the only place the loop suspends.
type Multiplexer struct {
	handlers []*Handler
	poll     func(fds []unix.PollFd, timeout int) (int, error)

	fds    []unix.PollFd
	active []*Handler
}

// NewMultiplexer returns an empty multiplexer using poll(2).
func NewMultiplexer() *Multiplexer {
	return &Multiplexer{poll: unix.Poll}
}

// Add registers h. Handlers are serviced in registration order.
func (m *Multiplexer) Add(h *Handler) {
	m.handlers = append(m.handlers, h)
}

// Run services descriptors until a handler or the wait fails.
// It only returns with a non-nil error.
func (m *Multiplexer) Run() error {
	for {
		if err := m.Step(); err != nil {
			return err
		}
	}
}

// Step performs one blocking wait and dispatches the ready descriptors.
func (m *Multiplexer) Step() error {
	m.fds = m.fds[:0]
	m.active = m.active[:0]
	for _, h := range m.handlers {
		if h.detached {
			continue
		}
		// Descriptors with no interest stay in the set so hangups are seen.
		m.fds = append(m.fds, unix.PollFd{Fd: int32(h.FD), Events: h.events()})
		m.active = append(m.active, h)
	}
	if len(m.fds) == 0 {
		return fmt.Errorf("%w: no descriptors to watch", ErrPollFailed)
	}

	if _, err := m.poll(m.fds, -1); err != nil {
		if errors.Is(err, unix.EINTR) {
			return nil
		}
		return fmt.Errorf("%w: %w", ErrPollFailed, err)
	}

	for i, pfd := range m.fds {
		h := m.active[i]
		re := pfd.Revents
		if re == 0 {
			continue
		}
		if re&failureEvents != 0 {
			return fmt.Errorf("%w: %s (revents %#x)", ErrDescriptorFailed, h.Name, re)
		}
		if re&unix.POLLIN != 0 && h.OnRead != nil {
			if err := m.dispatch(h, h.OnRead); err != nil {
				return err
			}
			if h.detached {
				continue
			}
		}
		if re&unix.POLLOUT != 0 && h.OnWrite != nil {
			if err := m.dispatch(h, h.OnWrite); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Multiplexer) dispatch(h *Handler, fn func() error) error {
	err := fn()
	if errors.Is(err, ErrDetach) {
		h.detached = true
		return nil
	}
	return err
}
