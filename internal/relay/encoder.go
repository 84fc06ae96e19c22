package relay

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/nerrad567/moodpd/internal/infrastructure/config"
)

// Encoder maps commands to the bytes a particular lamp firmware understands.
type Encoder interface {
	// Name is the dialect name, as used in configuration.
	Name() string

	// Encode returns the serial bytes for cmd.
	Encode(cmd Command) ([]byte, error)

	// Handshake returns frames written once before the first command.
	Handshake() [][]byte
}

// FramedOpcodes are the single-byte opcodes of the legacy framed protocol.
type FramedOpcodes struct {
	Color      byte
	Brightness byte
	Fade       byte
	Pause      byte
	Power      byte
}

// FramedOptions parameterise FramedEncoder.
type FramedOptions struct {
	Preamble  []byte
	Postamble []byte
	Handshake [][]byte
	Opcodes   FramedOpcodes
}

// DefaultFramedOptions returns the muccc mood lamp framing.
func DefaultFramedOptions() FramedOptions {
	return FramedOptions{
		Preamble:  []byte("acP\x02"),
		Postamble: []byte("ab"),
		Handshake: [][]byte{
			[]byte("acI\x01\x02\x02ab"),
			[]byte("acW\x00ab"),
		},
		Opcodes: FramedOpcodes{
			Color:      'C',
			Brightness: 'B',
			Fade:       'M',
			Pause:      'P',
			Power:      'X',
		},
	}
}

// FramedEncoder produces preamble + opcode + body + postamble frames.
type FramedEncoder struct {
	opts FramedOptions
}

// NewFramedEncoder returns a framed encoder.
func NewFramedEncoder(opts FramedOptions) *FramedEncoder {
	return &FramedEncoder{opts: opts}
}

// Name implements Encoder.
func (e *FramedEncoder) Name() string { return config.DialectFramed }

// Handshake implements Encoder.
func (e *FramedEncoder) Handshake() [][]byte { return e.opts.Handshake }

// Encode implements Encoder.
func (e *FramedEncoder) Encode(cmd Command) ([]byte, error) {
	ops := e.opts.Opcodes
	switch c := cmd.(type) {
	case SetColor:
		return e.frame(ops.Color, c.R, c.G, c.B), nil
	case SetBrightness:
		return e.frame(ops.Brightness, c.Level), nil
	case FadeTo:
		return e.frame(ops.Fade, c.R, c.G, c.B, byte(c.Duration>>8), byte(c.Duration)), nil
	case Pause:
		return e.frame(ops.Pause), nil
	case PowerToggle:
		return e.frame(ops.Power), nil
	case Raw:
		return bytes.Clone(c.Bytes), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedCommand, cmd)
	}
}

func (e *FramedEncoder) frame(op byte, body ...byte) []byte {
	out := make([]byte, 0, len(e.opts.Preamble)+1+len(body)+len(e.opts.Postamble))
	out = append(out, e.opts.Preamble...)
	out = append(out, op)
	out = append(out, body...)
	return append(out, e.opts.Postamble...)
}

// TextEncoder speaks the streaming text protocol of newer firmware,
// which only understands colors.
type TextEncoder struct {
	tag byte
}

// NewTextEncoder returns a text encoder prefixing colors with tag.
func NewTextEncoder(tag byte) *TextEncoder {
	return &TextEncoder{tag: tag}
}

// Name implements Encoder.
func (e *TextEncoder) Name() string { return config.DialectText }

// Handshake implements Encoder. The text protocol has none.
func (e *TextEncoder) Handshake() [][]byte { return nil }

// Encode implements Encoder.
func (e *TextEncoder) Encode(cmd Command) ([]byte, error) {
	switch c := cmd.(type) {
	case SetColor:
		out := make([]byte, 0, 8)
		out = append(out, e.tag)
		out = hex.AppendEncode(out, []byte{c.R, c.G, c.B})
		return append(out, '\n'), nil
	case Raw:
		return bytes.Clone(c.Bytes), nil
	default:
		return nil, fmt.Errorf("%w: %s in %s dialect", ErrUnsupportedCommand, cmd.Kind(), config.DialectText)
	}
}

// NewEncoder builds the encoder selected by cfg. The configuration is
// expected to have passed config.Validate.
func NewEncoder(cfg config.DialectConfig) (Encoder, error) {
	switch cfg.Name {
	case config.DialectFramed:
		f := cfg.Framed
		opts := FramedOptions{
			Preamble:  []byte(f.Preamble),
			Postamble: []byte(f.Postamble),
			Opcodes: FramedOpcodes{
				Color:      firstByte(f.Opcodes.Color),
				Brightness: firstByte(f.Opcodes.Brightness),
				Fade:       firstByte(f.Opcodes.Fade),
				Pause:      firstByte(f.Opcodes.Pause),
				Power:      firstByte(f.Opcodes.Power),
			},
		}
		for _, h := range f.Handshake {
			opts.Handshake = append(opts.Handshake, []byte(h))
		}
		return NewFramedEncoder(opts), nil
	case config.DialectText:
		return NewTextEncoder(firstByte(cfg.Text.ColorTag)), nil
	default:
		return nil, fmt.Errorf("relay: unknown dialect %q", cfg.Name)
	}
}

func firstByte(s string) byte {
	if s == "" {
		return 0
	}
	return s[0]
}
