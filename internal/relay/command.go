package relay

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

// Command is a validated lamp instruction. The set of implementations is closed.
type Command interface {
	// Kind is a short stable name used in logs and telemetry.
	Kind() string
	command()
}

// SetColor sets the lamp to an RGB color.
type SetColor struct {
	R, G, B uint8
}

// SetBrightness sets the global brightness.
type SetBrightness struct {
	Level uint8
}

// FadeTo fades to an RGB color over Duration milliseconds.
type FadeTo struct {
	R, G, B  uint8
	Duration uint16
}

// Pause holds the current animation.
type Pause struct{}

// PowerToggle switches the lamp on or off.
type PowerToggle struct{}

// Raw is forwarded to the device unmodified.
type Raw struct {
	Bytes []byte
}

func (SetColor) Kind() string      { return "color" }
func (SetBrightness) Kind() string { return "brightness" }
func (FadeTo) Kind() string        { return "fade" }
func (Pause) Kind() string         { return "pause" }
func (PowerToggle) Kind() string   { return "power" }
func (Raw) Kind() string           { return "raw" }

func (SetColor) command()      {}
func (SetBrightness) command() {}
func (FadeTo) command()        {}
func (Pause) command()         {}
func (PowerToggle) command()   {}
func (Raw) command()           {}

// DecodePayload turns an envelope payload into a Command.
//
// Trailing CR and LF are stripped before hex fields are parsed. Hex fields
// must have exactly the expected number of digits; nothing is truncated or
// padded. Pause and power ignore their payload. Raw payloads are copied
// as received, line endings included.
func DecodePayload(tag byte, payload []byte) (Command, error) {
	switch tag {
	case TypeRaw:
		return Raw{Bytes: bytes.Clone(payload)}, nil
	case TypePause:
		return Pause{}, nil
	case TypePower:
		return PowerToggle{}, nil
	}

	field := trimLineEnd(payload)
	switch tag {
	case TypeColor:
		b, err := decodeHex(field, 3, "color")
		if err != nil {
			return nil, err
		}
		return SetColor{R: b[0], G: b[1], B: b[2]}, nil
	case TypeBrightness:
		b, err := decodeHex(field, 1, "brightness")
		if err != nil {
			return nil, err
		}
		return SetBrightness{Level: b[0]}, nil
	case TypeFade:
		b, err := decodeHex(field, 5, "fade")
		if err != nil {
			return nil, err
		}
		return FadeTo{
			R:        b[0],
			G:        b[1],
			B:        b[2],
			Duration: uint16(b[3])<<8 | uint16(b[4]),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, tag)
	}
}

func trimLineEnd(p []byte) []byte {
	for len(p) > 0 && (p[len(p)-1] == '\n' || p[len(p)-1] == '\r') {
		p = p[:len(p)-1]
	}
	return p
}

// decodeHex parses exactly n bytes written as 2n hex digits.
func decodeHex(field []byte, n int, what string) ([]byte, error) {
	if len(field) != 2*n {
		return nil, fmt.Errorf("%w: %s wants %d hex digits, got %q", ErrBadPayload, what, 2*n, field)
	}
	out := make([]byte, n)
	if _, err := hex.Decode(out, field); err != nil {
		return nil, fmt.Errorf("%w: %s %q is not hex", ErrBadPayload, what, field)
	}
	return out, nil
}

// Validator decodes envelopes and applies the raw-mode gate.
type Validator struct {
	toggles *Toggles
}

// NewValidator returns a validator reading the raw switch from toggles.
func NewValidator(toggles *Toggles) *Validator {
	return &Validator{toggles: toggles}
}

// Decode returns the command carried by env.
func (v *Validator) Decode(env Envelope) (Command, error) {
	if env.Type == TypeRaw && !v.toggles.RawAllowed() {
		return nil, ErrRawDisabled
	}
	return DecodePayload(env.Type, env.Payload)
}
