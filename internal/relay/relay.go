package relay

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Logger is the logging interface used by the relay.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Device is the serial side of the relay.
type Device interface {
	Sink
	Read(p []byte) (int, error)
	FD() int
	// IsTerminal reports whether the device is a tty. Only terminals are
	// watched for incoming bytes.
	IsTerminal() bool
}

// Outcome describes one command handed to the device queue.
type Outcome struct {
	Command  Command
	Source   string
	Dialect  string
	Wire     int
	Buffered int
}

// Observer receives copies of relay outcomes. Implementations are called on
// the event loop and must not block.
type Observer interface {
	CommandSent(o Outcome)
	CommandRejected(reason, source string)
}

type nopObserver struct{}

func (nopObserver) CommandSent(Outcome)            {}
func (nopObserver) CommandRejected(string, string) {}

// Stats are cumulative counters since start.
type Stats struct {
	Received     uint64
	Rejected     uint64
	Sent         uint64
	OSC          uint64
	BytesWritten uint64
	Buffered     int
}

// Options configures a Relay.
type Options struct {
	// Encoder selects the device dialect. Required.
	Encoder Encoder

	// Toggles carries the raw-mode switch. Nil means raw disabled.
	Toggles *Toggles

	// MaxPacketSize bounds accepted datagrams. Zero selects DefaultMaxPacketSize.
	MaxPacketSize int

	Logger   Logger
	Observer Observer
}

// Relay validates network commands, encodes them and queues them for the device.
// All methods must be called from the event loop goroutine.
type Relay struct {
	device    Device
	encoder   Encoder
	toggles   *Toggles
	validator *Validator
	queue     *OutboundQueue
	logger    Logger
	observer  Observer
	maxPacket int

	recvBuf []byte
	devBuf  []byte
	stats   Stats
	fatal   error
}

// New creates a relay writing to device.
func New(device Device, opts Options) (*Relay, error) {
	if device == nil {
		return nil, errors.New("relay: device is required")
	}
	if opts.Encoder == nil {
		return nil, errors.New("relay: encoder is required")
	}
	if opts.Toggles == nil {
		opts.Toggles = NewToggles(false, nil)
	}
	if opts.MaxPacketSize <= 0 {
		opts.MaxPacketSize = DefaultMaxPacketSize
	}
	if opts.Logger == nil {
		opts.Logger = noopLogger{}
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}

	r := &Relay{
		device:    device,
		encoder:   opts.Encoder,
		toggles:   opts.Toggles,
		validator: NewValidator(opts.Toggles),
		logger:    opts.Logger,
		observer:  opts.Observer,
		maxPacket: opts.MaxPacketSize,
		// One spare byte so oversize datagrams are seen as oversize, not truncated.
		recvBuf: make([]byte, opts.MaxPacketSize+1),
		devBuf:  make([]byte, 256),
	}
	r.queue = NewOutboundQueue(device, r.fail)
	return r, nil
}

func (r *Relay) fail(err error) {
	if r.fatal == nil {
		r.fatal = fmt.Errorf("%w: %w", ErrDeviceWrite, err)
	}
}

// Err returns the fatal device error, if one occurred.
func (r *Relay) Err() error {
	return r.fatal
}

// Queue exposes the device queue.
func (r *Relay) Queue() *OutboundQueue {
	return r.queue
}

// Stats returns a snapshot of the counters.
func (r *Relay) Stats() Stats {
	s := r.stats
	s.BytesWritten = r.queue.Written()
	s.Buffered = r.queue.Buffered()
	return s
}

// Handshake queues the encoder's startup frames.
func (r *Relay) Handshake() error {
	for _, frame := range r.encoder.Handshake() {
		if err := r.queue.Enqueue(frame); err != nil {
			return err
		}
		r.logger.Info("handshake written", "bytes", printable(frame), "buffered", r.queue.Buffered())
	}
	return r.fatal
}

// HandleDatagram validates one received datagram and queues the resulting
// command. Invalid input is logged and dropped; only device failure is
// returned as an error.
func (r *Relay) HandleDatagram(data []byte, peer string) error {
	r.stats.Received++

	env, err := ParseEnvelope(data, r.maxPacket)
	if err != nil {
		r.reject(err, peer)
		return nil
	}
	cmd, err := r.validator.Decode(env)
	if err != nil {
		r.reject(err, peer)
		return nil
	}
	return r.submit(cmd, peer)
}

// Submit encodes a command from a trusted local source (OSC) and queues it.
func (r *Relay) Submit(cmd Command, source string) error {
	r.stats.OSC++
	return r.submit(cmd, source)
}

func (r *Relay) submit(cmd Command, source string) error {
	wire, err := r.encoder.Encode(cmd)
	if err != nil {
		r.reject(err, source)
		return nil
	}
	if err := r.queue.Enqueue(wire); err != nil {
		return fmt.Errorf("%w: %w", ErrDeviceWrite, err)
	}
	if r.fatal != nil {
		return r.fatal
	}
	r.stats.Sent++

	rendered := printable(wire)
	if raw, ok := cmd.(Raw); ok {
		rendered = hex.EncodeToString(raw.Bytes)
	}
	r.logger.Info("command written",
		"command", cmd.Kind(),
		"source", source,
		"bytes", rendered,
		"buffered", r.queue.Buffered(),
	)
	r.observer.CommandSent(Outcome{
		Command:  cmd,
		Source:   source,
		Dialect:  r.encoder.Name(),
		Wire:     len(wire),
		Buffered: r.queue.Buffered(),
	})
	return nil
}

func (r *Relay) reject(err error, source string) {
	r.stats.Rejected++
	reason := RejectReason(err)
	if errors.Is(err, ErrRawDisabled) {
		r.logger.Info("raw packet dropped, raw mode is off", "peer", source)
	} else {
		r.logger.Error("packet rejected", "peer", source, "reason", reason, "error", err)
	}
	r.observer.CommandRejected(reason, source)
}

// RejectReason maps a validation error to a short label.
func RejectReason(err error) string {
	switch {
	case errors.Is(err, ErrPacketTooLarge):
		return "too_large"
	case errors.Is(err, ErrMalformedPacket):
		return "malformed"
	case errors.Is(err, ErrBadPayload):
		return "bad_payload"
	case errors.Is(err, ErrUnknownType):
		return "unknown_type"
	case errors.Is(err, ErrRawDisabled):
		return "raw_disabled"
	case errors.Is(err, ErrUnsupportedCommand):
		return "unsupported"
	default:
		return "other"
	}
}

// CommandHandler returns the handler for the m00d command socket.
func (r *Relay) CommandHandler(sock *DatagramSocket) *Handler {
	return &Handler{
		Name: "command socket",
		FD:   sock.FD(),
		OnRead: func() error {
			n, peer, err := sock.ReadFrom(r.recvBuf)
			if err != nil {
				if WouldBlock(err) {
					return nil
				}
				return fmt.Errorf("%w: receive: %w", ErrSocket, err)
			}
			return r.HandleDatagram(r.recvBuf[:n], peer)
		},
	}
}

// DeviceHandler returns the handler for the serial device. The device is
// watched for writability only while the queue holds data.
func (r *Relay) DeviceHandler() *Handler {
	return &Handler{
		Name:      "serial device",
		FD:        r.device.FD(),
		WantRead:  r.device.IsTerminal,
		WantWrite: func() bool { return !r.queue.Empty() },
		OnRead: func() error {
			n, err := r.device.Read(r.devBuf)
			if err != nil {
				if WouldBlock(err) {
					return nil
				}
				return fmt.Errorf("%w: %w", ErrDeviceRead, err)
			}
			if n > 0 {
				r.logger.Info("the mood lamp says", "text", string(r.devBuf[:n]))
			}
			return nil
		},
		OnWrite: func() error {
			r.queue.TryFlush()
			return r.fatal
		},
	}
}

// Serve runs the event loop over the command socket, the device and any
// extra handlers (OSC, console, wake pipe) until one of them fails.
func (r *Relay) Serve(sock *DatagramSocket, extra ...*Handler) error {
	mux := NewMultiplexer()
	mux.Add(r.CommandHandler(sock))
	mux.Add(r.DeviceHandler())
	for _, h := range extra {
		mux.Add(h)
	}
	return mux.Run()
}

// printable renders letters and digits as-is and everything else as \xNN.
func printable(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		if ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') {
			sb.WriteByte(c)
			continue
		}
		fmt.Fprintf(&sb, "\\x%02x", c)
	}
	return sb.String()
}
