package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	MeasurementCommands = "moodpd_commands"
	MeasurementRejects  = "moodpd_rejects"
	MeasurementStats    = "moodpd_stats"
)

// CommandSample describes one command handed to the lamp.
type CommandSample struct {
	Command  string // color, brightness, fade, pause, power, raw
	Dialect  string
	Channel  string // udp or osc
	Wire     int
	Buffered int
	R, G, B  uint8
	HasColor bool
}

// StatsSample is a snapshot of relay counters.
type StatsSample struct {
	Received     uint64
	Rejected     uint64
	Sent         uint64
	OSC          uint64
	BytesWritten uint64
	Buffered     int
}

// WriteCommand records a command sent to the lamp. Non-blocking.
func (c *Client) WriteCommand(s CommandSample, runID string) {
	c.writePoint(commandPoint(s, runID, time.Now()))
}

// WriteReject records a rejected packet. Non-blocking.
func (c *Client) WriteReject(reason, channel, runID string) {
	c.writePoint(rejectPoint(reason, channel, runID, time.Now()))
}

// WriteStats records a counter snapshot. Non-blocking.
func (c *Client) WriteStats(s StatsSample, runID string) {
	c.writePoint(statsPoint(s, runID, time.Now()))
}

func commandPoint(s CommandSample, runID string, ts time.Time) *write.Point {
	fields := map[string]interface{}{
		"wire_bytes":   s.Wire,
		"queued_bytes": s.Buffered,
		"run_id":       runID,
	}
	if s.HasColor {
		fields["r"] = int(s.R)
		fields["g"] = int(s.G)
		fields["b"] = int(s.B)
	}
	return write.NewPoint(
		MeasurementCommands,
		map[string]string{
			"command": s.Command,
			"dialect": s.Dialect,
			"channel": s.Channel,
		},
		fields,
		ts,
	)
}

func rejectPoint(reason, channel, runID string, ts time.Time) *write.Point {
	return write.NewPoint(
		MeasurementRejects,
		map[string]string{
			"reason":  reason,
			"channel": channel,
		},
		map[string]interface{}{
			"count":  1,
			"run_id": runID,
		},
		ts,
	)
}

func statsPoint(s StatsSample, runID string, ts time.Time) *write.Point {
	return write.NewPoint(
		MeasurementStats,
		nil,
		map[string]interface{}{
			"received":      int64(s.Received),
			"rejected":      int64(s.Rejected),
			"sent":          int64(s.Sent),
			"osc":           int64(s.OSC),
			"bytes_written": int64(s.BytesWritten),
			"buffered":      s.Buffered,
			"run_id":        runID,
		},
		ts,
	)
}
