package console

import (
	"fmt"
	"io"

	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/nerrad567/moodpd/internal/infrastructure/logging"
	"github.com/nerrad567/moodpd/internal/relay"
)

// Console reads single keystrokes from a terminal and flips runtime toggles.
type Console struct {
	fd      int
	out     io.Writer
	toggles *relay.Toggles
	saved   *term.State
	buf     [32]byte
}

// New returns a console reading fd and writing messages to out.
// The terminal mode is left alone until MakeInteractive is called.
func New(fd int, out io.Writer, toggles *relay.Toggles) *Console {
	return &Console{fd: fd, out: out, toggles: toggles}
}

// MakeInteractive saves the terminal state and switches to unbuffered,
// no-echo input. Signals keep working.
func (c *Console) MakeInteractive() error {
	if !term.IsTerminal(c.fd) {
		return ErrNotTerminal
	}
	saved, err := term.GetState(c.fd)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTerminalMode, err)
	}
	if err := setKeyMode(c.fd); err != nil {
		return fmt.Errorf("%w: %w", ErrTerminalMode, err)
	}
	c.saved = saved
	return nil
}

// Restore puts the terminal back the way MakeInteractive found it.
// It is a no-op if the mode was never changed.
func (c *Console) Restore() error {
	if c.saved == nil {
		return nil
	}
	err := term.Restore(c.fd, c.saved)
	c.saved = nil
	return err
}

// Handler returns the multiplexer handler for the console. End of input
// detaches the console; the relay keeps running.
func (c *Console) Handler() *relay.Handler {
	return &relay.Handler{
		Name: "console",
		FD:   c.fd,
		OnRead: func() error {
			n, err := unix.Read(c.fd, c.buf[:])
			if err != nil {
				if relay.WouldBlock(err) {
					return nil
				}
				return fmt.Errorf("console: read: %w", err)
			}
			if n == 0 {
				return relay.ErrDetach
			}
			c.HandleKeys(c.buf[:n])
			return nil
		},
	}
}

// HandleKeys acts on each byte of p.
func (c *Console) HandleKeys(p []byte) {
	for _, k := range p {
		switch k {
		case '?':
			c.help()
		case 'v':
			next := logging.NextVerbosity(logging.VerbosityFor(c.toggles.Level()))
			c.toggles.SetLevel(next.Level())
			fmt.Fprintf(c.out, "log level: %s\n", next)
		case 'r':
			fmt.Fprintf(c.out, "raw mode: %s\n", onOff(c.toggles.ToggleRaw()))
		}
	}
}

func (c *Console) help() {
	fmt.Fprintf(c.out, "keys:\n"+
		"  ?  this help\n"+
		"  v  cycle log level quiet/error/info (now %s)\n"+
		"  r  toggle raw mode (now %s)\n",
		logging.VerbosityFor(c.toggles.Level()),
		onOff(c.toggles.RawAllowed()))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
