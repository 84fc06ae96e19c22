package relay

import "errors"

// Domain errors for the relay package.
var (
	// ErrMalformedPacket is returned when a datagram is too short or does
	// not start with the m00d signature.
	ErrMalformedPacket = errors.New("relay: malformed packet")

	// ErrPacketTooLarge is returned when a datagram exceeds the configured maximum.
	ErrPacketTooLarge = errors.New("relay: packet too large")

	// ErrBadPayload is returned when a payload has the wrong length or
	// contains non-hex characters.
	ErrBadPayload = errors.New("relay: bad payload")

	// ErrUnknownType is returned for an unrecognised envelope type tag.
	ErrUnknownType = errors.New("relay: unknown packet type")

	// ErrRawDisabled is returned for raw packets while raw mode is off.
	ErrRawDisabled = errors.New("relay: raw mode disabled")

	// ErrUnsupportedCommand is returned when the active dialect cannot
	// express a command.
	ErrUnsupportedCommand = errors.New("relay: command not supported by dialect")

	// ErrQueueBroken is returned by Enqueue after the device has failed.
	ErrQueueBroken = errors.New("relay: outbound queue broken")

	// ErrDeviceWrite wraps a fatal write error on the device.
	ErrDeviceWrite = errors.New("relay: device write failed")

	// ErrDeviceRead wraps a fatal read error on the device.
	ErrDeviceRead = errors.New("relay: device read failed")

	// ErrSocket wraps socket creation and receive failures.
	ErrSocket = errors.New("relay: socket error")

	// ErrDescriptorFailed is returned by the multiplexer when a descriptor
	// reports an error, hangup or invalid state.
	ErrDescriptorFailed = errors.New("relay: descriptor failed")

	// ErrPollFailed is returned when the readiness wait itself fails.
	ErrPollFailed = errors.New("relay: poll failed")

	// ErrDetach may be returned by a handler to stop watching its descriptor.
	ErrDetach = errors.New("relay: detach descriptor")

	// ErrShutdown is returned by the wake pipe handler after a termination signal.
	ErrShutdown = errors.New("relay: shutdown requested")
)
