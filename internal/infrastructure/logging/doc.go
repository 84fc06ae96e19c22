// Package logging provides structured logging for moodpd.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the daemon.
//
// # Features
//
//   - Text output by default, JSON when configured
//   - Default fields (service, version) on all log entries
//   - A CRITICAL level above ERROR that is always emitted
//   - Runtime verbosity changes through a shared slog.LevelVar
//
// # Verbosity
//
// Four presets map onto slog levels: quiet (critical only), error, info and
// debug. The -l command-line flag selects one from letters (see ParseFlags)
// and the console 'v' key cycles through them (see NextVerbosity).
//
// # Configuration
//
//	logging:
//	  level: "error"     # quiet, error, info, debug
//	  format: "text"     # text, json
//	  output: "stderr"   # stderr, stdout
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("serial port opened", "device", "/dev/ttyUSB0")
//	logger.Critical("device write failed", "error", err)
//
// # Security
//
// Never log secrets, tokens or passwords.
package logging
