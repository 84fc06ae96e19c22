// Package relay turns m00d network datagrams into serial commands for an
// RGB mood lamp.
//
// # Architecture
//
// Everything runs on one goroutine around a poll(2) loop:
//
//	UDP :4242 ──► ParseEnvelope ──► Validator ──► Encoder ──► OutboundQueue ──► serial
//	                                                               ▲
//	OSC :4243 ──► oscctl ──────────────────────────────────────────┘
//
// The Multiplexer waits for readiness on every descriptor, runs the ready
// handlers to completion and waits again. The device is watched for
// writability only while the OutboundQueue holds bytes, so bursts of
// commands never block the process and reach the lamp in arrival order.
//
// # Wire Envelope
//
//	bytes 0..3   "m00d"
//	byte  4      '#' color | '!' raw | 'B' brightness | 'F' fade | 'P' pause | 'X' power
//	bytes 5..N   ASCII hex payload, optionally CR/LF terminated
//
// Example:
//
//	m00d#104080     SetColor{0x10, 0x40, 0x80}
//	m00dF1040800400 FadeTo{0x10, 0x40, 0x80, 1024ms}
//
// # Dialects
//
// FramedEncoder speaks the legacy muccc framed protocol and writes a
// handshake at startup. TextEncoder speaks the newer streaming protocol,
// which only knows colors. Raw packets pass through either unchanged, but
// only while raw mode is enabled in Toggles.
//
// # Failure Model
//
// Bad input is logged and dropped. Would-block and partial writes are
// absorbed by the queue. Any other device or descriptor failure ends the
// loop with an error; there is no reconnection.
package relay
