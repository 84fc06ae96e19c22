package telemetry

import (
	"strings"

	"github.com/nerrad567/moodpd/internal/relay"
)

// Logger is the logging interface used by telemetry sinks.
type Logger interface {
	Debug(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Error(string, ...any) {}

// Fanout forwards outcomes to every observer in order.
type Fanout []relay.Observer

// CommandSent implements relay.Observer.
func (f Fanout) CommandSent(o relay.Outcome) {
	for _, obs := range f {
		obs.CommandSent(o)
	}
}

// CommandRejected implements relay.Observer.
func (f Fanout) CommandRejected(reason, source string) {
	for _, obs := range f {
		obs.CommandRejected(reason, source)
	}
}

// Channel classifies a command source as "osc" or "udp". Peer addresses
// are dropped to keep tag cardinality low.
func Channel(source string) string {
	if strings.HasPrefix(source, "osc") {
		return "osc"
	}
	return "udp"
}
