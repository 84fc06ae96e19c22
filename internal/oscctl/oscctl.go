package oscctl

import (
	"fmt"

	"github.com/hypebeast/go-osc/osc"

	"github.com/nerrad567/moodpd/internal/relay"
)

// Recognised OSC addresses.
const (
	// AddressLampRGB takes three int32 channel values, clamped to 0..255.
	AddressLampRGB = "/moodpd/lamps/00/rgb"

	// AddressOrientation takes three int32 angles in degrees, as sent by
	// phone orientation apps, and maps each onto 0..255.
	AddressOrientation = "/ori"
)

// Decode parses one OSC packet and returns the colors it requests, in
// order. Bundles are walked depth-first. Messages with other addresses or
// argument shapes are skipped.
func Decode(packet []byte) ([]relay.SetColor, error) {
	p, err := osc.ParsePacket(string(packet))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	// go-osc returns no packet and no error for data not starting with '/' or '#'.
	if p == nil {
		return nil, fmt.Errorf("%w: not an OSC message or bundle", ErrParse)
	}
	var out []relay.SetColor
	walk(p, &out)
	return out, nil
}

func walk(p osc.Packet, out *[]relay.SetColor) {
	switch v := p.(type) {
	case *osc.Message:
		if c, ok := ColorFromMessage(v); ok {
			*out = append(*out, c)
		}
	case *osc.Bundle:
		for _, m := range v.Messages {
			walk(m, out)
		}
		for _, b := range v.Bundles {
			walk(b, out)
		}
	}
}

// ColorFromMessage converts a single message. ok is false when the address
// is unknown or the arguments are not exactly three int32 values.
func ColorFromMessage(msg *osc.Message) (relay.SetColor, bool) {
	if msg == nil {
		return relay.SetColor{}, false
	}
	var conv func(int32) uint8
	switch msg.Address {
	case AddressLampRGB:
		conv = clampChannel
	case AddressOrientation:
		conv = angleToChannel
	default:
		return relay.SetColor{}, false
	}

	if len(msg.Arguments) != 3 {
		return relay.SetColor{}, false
	}
	var ch [3]uint8
	for i, arg := range msg.Arguments {
		v, ok := arg.(int32)
		if !ok {
			return relay.SetColor{}, false
		}
		ch[i] = conv(v)
	}
	return relay.SetColor{R: ch[0], G: ch[1], B: ch[2]}, true
}

func clampChannel(v int32) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}

// angleToChannel maps degrees onto 0..255 with -180 at the bottom.
func angleToChannel(v int32) uint8 {
	a := (int64(v) + 180) % 360
	if a < 0 {
		a += 360
	}
	return uint8(a * 255 / 360)
}
