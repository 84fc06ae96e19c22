package telemetry

import (
	"github.com/nerrad567/moodpd/internal/infrastructure/influxdb"
	"github.com/nerrad567/moodpd/internal/relay"
)

// PointWriter is the non-blocking write side of the InfluxDB client.
type PointWriter interface {
	WriteCommand(s influxdb.CommandSample, runID string)
	WriteReject(reason, channel, runID string)
}

// InfluxRecorder turns relay outcomes into InfluxDB points.
type InfluxRecorder struct {
	w     PointWriter
	runID string
}

// NewInfluxRecorder returns a recorder tagging points with runID.
func NewInfluxRecorder(w PointWriter, runID string) *InfluxRecorder {
	return &InfluxRecorder{w: w, runID: runID}
}

// CommandSent implements relay.Observer.
func (r *InfluxRecorder) CommandSent(o relay.Outcome) {
	s := influxdb.CommandSample{
		Command:  o.Command.Kind(),
		Dialect:  o.Dialect,
		Channel:  Channel(o.Source),
		Wire:     o.Wire,
		Buffered: o.Buffered,
	}
	switch c := o.Command.(type) {
	case relay.SetColor:
		s.R, s.G, s.B, s.HasColor = c.R, c.G, c.B, true
	case relay.FadeTo:
		s.R, s.G, s.B, s.HasColor = c.R, c.G, c.B, true
	}
	r.w.WriteCommand(s, r.runID)
}

// CommandRejected implements relay.Observer.
func (r *InfluxRecorder) CommandRejected(reason, source string) {
	r.w.WriteReject(reason, Channel(source), r.runID)
}
