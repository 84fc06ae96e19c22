package influxdb

import "errors"

// Sentinel errors for the telemetry client. Check them with errors.Is.
var (
	// ErrConnectionFailed means the startup ping failed or reported unhealthy.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrWriteFailed wraps errors from the background writer. They reach the
	// caller only through the SetOnError callback.
	ErrWriteFailed = errors.New("influxdb: write failed")

	// ErrDisabled is returned by Connect when telemetry is switched off.
	ErrDisabled = errors.New("influxdb: disabled in configuration")
)
