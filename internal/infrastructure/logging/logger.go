package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nerrad567/moodpd/internal/infrastructure/config"
)

// LevelCritical sits above slog.LevelError and is never filtered out.
const LevelCritical = slog.LevelError + 4

// Verbosity is a coarse logging preset that can be switched at runtime.
type Verbosity int

const (
	// VerbosityQuiet emits only critical messages.
	VerbosityQuiet Verbosity = iota
	// VerbosityErrors adds errors.
	VerbosityErrors
	// VerbosityInfo adds warnings and informational messages.
	VerbosityInfo
	// VerbosityDebug emits everything.
	VerbosityDebug
)

// String returns the preset name used in configuration and console messages.
func (v Verbosity) String() string {
	switch v {
	case VerbosityQuiet:
		return "quiet"
	case VerbosityErrors:
		return "error"
	case VerbosityInfo:
		return "info"
	case VerbosityDebug:
		return "debug"
	default:
		return fmt.Sprintf("Verbosity(%d)", int(v))
	}
}

// Level returns the minimum slog level for the preset.
func (v Verbosity) Level() slog.Level {
	switch v {
	case VerbosityQuiet:
		return LevelCritical
	case VerbosityErrors:
		return slog.LevelError
	case VerbosityDebug:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// NextVerbosity returns the preset that follows v in the console cycle:
// quiet, errors, info, then back to quiet. Debug also returns to quiet.
func NextVerbosity(v Verbosity) Verbosity {
	switch v {
	case VerbosityQuiet:
		return VerbosityErrors
	case VerbosityErrors:
		return VerbosityInfo
	default:
		return VerbosityQuiet
	}
}

// ParseFlags interprets the letters of the -l command-line option.
//
// 'e' enables errors, 'i' enables informational messages, 'd' enables debug
// and 'q' clears everything seen so far. Critical messages are always shown.
func ParseFlags(flags string) (Verbosity, error) {
	var errs, info, debug bool
	for _, c := range flags {
		switch c {
		case 'e':
			errs = true
		case 'i':
			info = true
		case 'd':
			debug = true
		case 'q':
			errs, info, debug = false, false, false
		default:
			return VerbosityQuiet, fmt.Errorf("unknown log flag %q", c)
		}
	}
	switch {
	case debug:
		return VerbosityDebug, nil
	case info:
		return VerbosityInfo, nil
	case errs:
		return VerbosityErrors, nil
	default:
		return VerbosityQuiet, nil
	}
}

// Logger wraps slog.Logger with moodpd-specific functionality.
//
// The level is held in a shared slog.LevelVar so it can be changed while
// the relay is running, for example from the interactive console.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Logger struct {
	*slog.Logger
	level *slog.LevelVar
}

// New creates a new Logger with the specified configuration.
//
// It configures:
//   - Output format (text by default, JSON when requested)
//   - A runtime-adjustable level seeded from cfg.Level
//   - Default fields (service name, version)
//   - Output destination
func New(cfg config.LoggingConfig, version string) *Logger {
	var output io.Writer
	switch strings.ToLower(cfg.Output) {
	case "stdout":
		output = os.Stdout
	default:
		output = os.Stderr
	}
	return NewWithWriter(cfg, version, output)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(cfg config.LoggingConfig, version string, output io.Writer) *Logger {
	level := new(slog.LevelVar)
	level.Set(parseLevel(cfg.Level))

	opts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevelName,
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", "moodpd"),
		slog.String("version", version),
	})

	return &Logger{
		Logger: slog.New(handler),
		level:  level,
	}
}

// replaceLevelName renders LevelCritical as "CRITICAL" instead of "ERROR+4".
func replaceLevelName(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if lvl, ok := a.Value.Any().(slog.Level); ok && lvl >= LevelCritical {
		a.Value = slog.StringValue("CRITICAL")
	}
	return a
}

// parseLevel converts a configured level name to slog.Level.
//
// Supported levels: quiet, error, warn, info, debug.
// Defaults to error if unrecognised.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "quiet", "critical":
		return LevelCritical
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// Level exposes the shared level variable.
func (l *Logger) Level() *slog.LevelVar {
	return l.level
}

// Verbosity reports the preset that matches the current level.
func (l *Logger) Verbosity() Verbosity {
	return VerbosityFor(l.level.Level())
}

// VerbosityFor maps an slog level to the closest preset.
func VerbosityFor(lvl slog.Level) Verbosity {
	switch {
	case lvl >= LevelCritical:
		return VerbosityQuiet
	case lvl >= slog.LevelError:
		return VerbosityErrors
	case lvl >= slog.LevelInfo:
		return VerbosityInfo
	default:
		return VerbosityDebug
	}
}

// SetVerbosity switches the level to the given preset.
func (l *Logger) SetVerbosity(v Verbosity) {
	l.level.Set(v.Level())
}

// Critical logs at LevelCritical.
func (l *Logger) Critical(msg string, args ...any) {
	l.Log(context.Background(), LevelCritical, msg, args...)
}

// With returns a new Logger with additional default attributes.
// The child shares the parent's level.
//
// Example:
//
//	serialLogger := logger.With("component", "serial")
//	serialLogger.Info("opened") // Includes component=serial
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger: l.Logger.With(args...),
		level:  l.level,
	}
}

// Default creates a default logger for use before configuration is loaded.
//
// This logger writes text to stderr at error level.
func Default() *Logger {
	return New(config.LoggingConfig{
		Level:  "error",
		Format: "text",
		Output: "stderr",
	}, "dev")
}
