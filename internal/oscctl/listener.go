package oscctl

import (
	"fmt"

	"github.com/nerrad567/moodpd/internal/relay"
)

// maxPacket is the largest OSC datagram read in one go.
const maxPacket = 4096

// Logger is the logging interface used by the OSC listener.
type Logger interface {
	Debug(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Error(string, ...any) {}

// Submitter accepts decoded commands. *relay.Relay implements it.
type Submitter interface {
	Submit(cmd relay.Command, source string) error
}

// Listener feeds colors received on an OSC socket into the relay.
type Listener struct {
	sock   *relay.DatagramSocket
	sink   Submitter
	logger Logger
	buf    []byte
}

// NewListener returns a listener on sock. logger may be nil.
func NewListener(sock *relay.DatagramSocket, sink Submitter, logger Logger) *Listener {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Listener{
		sock:   sock,
		sink:   sink,
		logger: logger,
		buf:    make([]byte, maxPacket),
	}
}

// Handler returns the multiplexer handler for the OSC socket.
func (l *Listener) Handler() *relay.Handler {
	return &relay.Handler{
		Name:   "osc socket",
		FD:     l.sock.FD(),
		OnRead: l.onRead,
	}
}

func (l *Listener) onRead() error {
	n, peer, err := l.sock.ReadFrom(l.buf)
	if err != nil {
		if relay.WouldBlock(err) {
			return nil
		}
		return fmt.Errorf("%w: receive: %w", relay.ErrSocket, err)
	}
	return l.HandlePacket(l.buf[:n], peer)
}

// HandlePacket decodes one datagram and submits every color it carries.
// Parse failures are logged and dropped; only relay failures are returned.
func (l *Listener) HandlePacket(packet []byte, peer string) error {
	colors, err := Decode(packet)
	if err != nil {
		l.logger.Error("osc packet dropped", "peer", peer, "error", err)
		return nil
	}
	if len(colors) == 0 {
		l.logger.Debug("osc packet ignored", "peer", peer)
		return nil
	}
	for _, c := range colors {
		if err := l.sink.Submit(c, "osc "+peer); err != nil {
			return err
		}
	}
	return nil
}
