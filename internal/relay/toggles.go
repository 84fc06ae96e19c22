package relay

import (
	"log/slog"
	"sync/atomic"
)

// Toggles holds the runtime switches read on every packet and keystroke.
//
// The level variable is the one owned by the process logger, so changing
// it here changes what gets logged everywhere.
type Toggles struct {
	raw   atomic.Bool
	level *slog.LevelVar
}

// NewToggles returns toggles with raw mode set to allowRaw. A nil level
// gets a private variable at slog.LevelError.
func NewToggles(allowRaw bool, level *slog.LevelVar) *Toggles {
	if level == nil {
		level = new(slog.LevelVar)
		level.Set(slog.LevelError)
	}
	t := &Toggles{level: level}
	t.raw.Store(allowRaw)
	return t
}

// RawAllowed reports whether raw packets may reach the device.
func (t *Toggles) RawAllowed() bool {
	return t.raw.Load()
}

// SetRawAllowed sets the raw-mode switch.
func (t *Toggles) SetRawAllowed(v bool) {
	t.raw.Store(v)
}

// ToggleRaw flips the raw-mode switch and returns the new value.
func (t *Toggles) ToggleRaw() bool {
	for {
		old := t.raw.Load()
		if t.raw.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// Level returns the current logging level.
func (t *Toggles) Level() slog.Level {
	return t.level.Level()
}

// SetLevel changes the logging level.
func (t *Toggles) SetLevel(l slog.Level) {
	t.level.Set(l)
}
