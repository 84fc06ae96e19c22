package oscctl

import "errors"

// ErrParse is returned when a datagram is not a valid OSC packet.
var ErrParse = errors.New("oscctl: invalid osc packet")
