package telemetry

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/nerrad567/moodpd/internal/infrastructure/mqtt"
	"github.com/nerrad567/moodpd/internal/relay"
)

// Publisher is the non-blocking publish side of an MQTT client.
type Publisher interface {
	PublishAsync(topic string, payload []byte, qos byte, retained bool) error
}

// LampState is the retained document mirrored to moodpd/state/{lamp_id}.
//
// It reflects what was last sent to the lamp, not what the lamp reports.
type LampState struct {
	R           uint8  `json:"r"`
	G           uint8  `json:"g"`
	B           uint8  `json:"b"`
	Brightness  *uint8 `json:"brightness,omitempty"`
	FadeMS      uint16 `json:"fade_ms,omitempty"`
	Power       bool   `json:"power"`
	Paused      bool   `json:"paused"`
	LastCommand string `json:"last_command"`
	Dialect     string `json:"dialect"`
	RunID       string `json:"run_id,omitempty"`
	UpdatedAt   string `json:"updated_at"`
}

type rejectEvent struct {
	Reason    string `json:"reason"`
	Channel   string `json:"channel"`
	Timestamp string `json:"timestamp"`
}

// MQTTMirror publishes lamp state and reject events.
type MQTTMirror struct {
	pub    Publisher
	lampID string
	qos    byte
	runID  string
	logger Logger

	mu    sync.Mutex
	state LampState
	now   func() time.Time
}

// NewMQTTMirror returns a mirror publishing under lampID. The lamp is
// assumed powered on at start.
func NewMQTTMirror(pub Publisher, lampID string, qos byte, runID string, logger Logger) *MQTTMirror {
	if logger == nil {
		logger = noopLogger{}
	}
	return &MQTTMirror{
		pub:    pub,
		lampID: lampID,
		qos:    qos,
		runID:  runID,
		logger: logger,
		state:  LampState{Power: true, RunID: runID},
		now:    time.Now,
	}
}

// CommandSent implements relay.Observer.
func (m *MQTTMirror) CommandSent(o relay.Outcome) {
	m.mu.Lock()
	applyCommand(&m.state, o.Command)
	m.state.LastCommand = o.Command.Kind()
	m.state.Dialect = o.Dialect
	m.state.UpdatedAt = m.now().UTC().Format(time.RFC3339)
	payload, err := json.Marshal(m.state)
	m.mu.Unlock()
	if err != nil {
		m.logger.Error("encoding lamp state", "error", err)
		return
	}

	if err := m.pub.PublishAsync(mqtt.Topics{}.LampState(m.lampID), payload, m.qos, true); err != nil {
		m.logger.Debug("lamp state not mirrored", "error", err)
	}
}

// CommandRejected implements relay.Observer.
func (m *MQTTMirror) CommandRejected(reason, source string) {
	payload, err := json.Marshal(rejectEvent{
		Reason:    reason,
		Channel:   Channel(source),
		Timestamp: m.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}
	if err := m.pub.PublishAsync(mqtt.Topics{}.LampEvent(m.lampID, "rejected"), payload, 0, false); err != nil {
		m.logger.Debug("reject event not mirrored", "error", err)
	}
}

// State returns a copy of the mirrored state.
func (m *MQTTMirror) State() LampState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func applyCommand(s *LampState, cmd relay.Command) {
	switch c := cmd.(type) {
	case relay.SetColor:
		s.R, s.G, s.B = c.R, c.G, c.B
		s.FadeMS = 0
	case relay.FadeTo:
		s.R, s.G, s.B = c.R, c.G, c.B
		s.FadeMS = c.Duration
	case relay.SetBrightness:
		level := c.Level
		s.Brightness = &level
	case relay.Pause:
		s.Paused = !s.Paused
	case relay.PowerToggle:
		s.Power = !s.Power
	}
}
