package relay

import "fmt"

// Envelope framing constants.
const (
	Signature            = "m00d"
	HeaderSize           = len(Signature) + 1
	DefaultMaxPacketSize = 1024
)

// Envelope type tags.
const (
	TypeColor      byte = '#'
	TypeRaw        byte = '!'
	TypeBrightness byte = 'B'
	TypeFade       byte = 'F'
	TypePause      byte = 'P'
	TypePower      byte = 'X'
)

// Envelope is a datagram that passed framing checks.
// Payload aliases the receive buffer and is only valid until the next read.
type Envelope struct {
	Type    byte
	Payload []byte
}

// ParseEnvelope checks size and signature. A datagram must carry at least
// one payload byte; limit <= 0 selects DefaultMaxPacketSize.
func ParseEnvelope(datagram []byte, limit int) (Envelope, error) {
	if limit <= 0 {
		limit = DefaultMaxPacketSize
	}
	if len(datagram) > limit {
		return Envelope{}, fmt.Errorf("%w: %d bytes, limit %d", ErrPacketTooLarge, len(datagram), limit)
	}
	if len(datagram) <= HeaderSize {
		return Envelope{}, fmt.Errorf("%w: %d bytes is too short", ErrMalformedPacket, len(datagram))
	}
	if string(datagram[:len(Signature)]) != Signature {
		return Envelope{}, fmt.Errorf("%w: bad signature %q", ErrMalformedPacket, datagram[:len(Signature)])
	}
	return Envelope{
		Type:    datagram[len(Signature)],
		Payload: datagram[HeaderSize:],
	}, nil
}
