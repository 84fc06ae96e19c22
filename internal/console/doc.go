// Package console implements the single-key controls available when moodpd
// runs in the foreground on a terminal.
//
//	?  print help
//	v  cycle log verbosity: quiet, errors, info
//	r  toggle raw mode
//
// Key presses change the shared relay.Toggles, so the next packet already
// sees the new setting.
package console
