// Package oscctl accepts Open Sound Control messages as a second way to set
// the lamp color.
//
// Two addresses are understood:
//
//	/moodpd/lamps/00/rgb  i i i   red, green, blue; clamped to 0..255
//	/ori                  i i i   orientation angles in degrees; each mapped
//	                              ((v+180) mod 360) * 255 / 360
//
// Everything else is ignored. Colors are submitted to the relay like network
// commands but are not subject to the raw-mode gate, since OSC cannot carry
// raw bytes.
package oscctl
