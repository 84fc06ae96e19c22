// Package serial opens the mood lamp's serial device for non-blocking use
// from a poll loop.
//
// Terminal devices are configured raw 8N1 at the requested baud rate (230400
// by default) with VMIN=0/VTIME=0. Non-terminal paths skip line
// configuration, so a regular file can stand in for the lamp:
//
//	port, err := serial.Open("/tmp/lamp.out", 230400)
//
// Line configuration is implemented for Linux only.
package serial
