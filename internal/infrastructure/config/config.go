package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Dialect names accepted in dialect.name.
const (
	DialectFramed = "framed"
	DialectText   = "text"
)

// Config is the root configuration structure for moodpd.
// Values come from defaults, then an optional YAML file, then environment variables.
type Config struct {
	Relay    RelayConfig    `yaml:"relay"`
	Serial   SerialConfig   `yaml:"serial"`
	Dialect  DialectConfig  `yaml:"dialect"`
	OSC      OSCConfig      `yaml:"osc"`
	Console  ConsoleConfig  `yaml:"console"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// RelayConfig contains the command socket settings.
type RelayConfig struct {
	// Listen is the UDP address for m00d command datagrams.
	Listen string `yaml:"listen"`

	// MaxPacketSize bounds the accepted datagram size in bytes.
	MaxPacketSize int `yaml:"max_packet_size"`

	// AllowRaw is the initial state of the raw-mode toggle.
	// Raw mode lets network peers write arbitrary bytes to the lamp.
	AllowRaw bool `yaml:"allow_raw"`
}

// SerialConfig contains the lamp's serial port settings.
type SerialConfig struct {
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
}

// DialectConfig selects and parameterises the serial command dialect.
type DialectConfig struct {
	// Name is "framed" (legacy muccc protocol) or "text" (newer firmware).
	Name   string              `yaml:"name"`
	Framed FramedDialectConfig `yaml:"framed"`
	Text   TextDialectConfig   `yaml:"text"`
}

// FramedDialectConfig describes the legacy framed protocol.
type FramedDialectConfig struct {
	Preamble  string        `yaml:"preamble"`
	Postamble string        `yaml:"postamble"`
	Handshake []string      `yaml:"handshake"`
	Opcodes   OpcodesConfig `yaml:"opcodes"`
}

// OpcodesConfig holds one-character opcodes for the framed dialect.
type OpcodesConfig struct {
	Color      string `yaml:"color"`
	Brightness string `yaml:"brightness"`
	Fade       string `yaml:"fade"`
	Pause      string `yaml:"pause"`
	Power      string `yaml:"power"`
}

// TextDialectConfig describes the streaming text protocol.
type TextDialectConfig struct {
	ColorTag string `yaml:"color_tag"`
}

// OSCConfig contains the auxiliary Open Sound Control channel settings.
type OSCConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// ConsoleConfig controls the interactive key handler on stdin.
type ConsoleConfig struct {
	Enabled bool `yaml:"enabled"`
}

// MQTTConfig contains MQTT broker settings for the lamp state mirror.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`

	// LampID names this lamp in state topics (moodpd/state/{lamp_id}).
	LampID string `yaml:"lamp_id"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings (seconds).
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// InfluxDBConfig contains InfluxDB settings for command telemetry.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is quiet, error, info or debug.
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load builds the configuration from defaults, an optional YAML file and
// environment variable overrides.
//
// An empty path skips the file; moodpd runs with defaults when no file is given.
// Environment variables follow the pattern MOODPD_SECTION_KEY, for example
// MOODPD_SERIAL_DEVICE or MOODPD_MQTT_PASSWORD.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaultConfig()
}

// defaultConfig mirrors the behaviour of the original daemon: UDP 4242,
// /dev/ttyUSB0 at 230400 baud, text dialect, OSC on 4243, raw mode off.
func defaultConfig() *Config {
	return &Config{
		Relay: RelayConfig{
			Listen:        "0.0.0.0:4242",
			MaxPacketSize: 1024,
		},
		Serial: SerialConfig{
			Device: "/dev/ttyUSB0",
			Baud:   230400,
		},
		Dialect: DialectConfig{
			Name: DialectText,
			Framed: FramedDialectConfig{
				Preamble:  "acP\x02",
				Postamble: "ab",
				Handshake: []string{"acI\x01\x02\x02ab", "acW\x00ab"},
				Opcodes: OpcodesConfig{
					Color:      "C",
					Brightness: "B",
					Fade:       "M",
					Pause:      "P",
					Power:      "X",
				},
			},
			Text: TextDialectConfig{
				ColorTag: "i",
			},
		},
		OSC: OSCConfig{
			Enabled: true,
			Listen:  "0.0.0.0:4243",
		},
		Console: ConsoleConfig{
			Enabled: true,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "moodpd",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
			LampID: "00",
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "error",
			Format: "text",
			Output: "stderr",
		},
	}
}

// applyEnvOverrides applies MOODPD_* environment variables to the configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MOODPD_RELAY_LISTEN"); v != "" {
		cfg.Relay.Listen = v
	}
	if v, ok := envBool("MOODPD_RELAY_ALLOW_RAW"); ok {
		cfg.Relay.AllowRaw = v
	}

	if v := os.Getenv("MOODPD_SERIAL_DEVICE"); v != "" {
		cfg.Serial.Device = v
	}
	if v := os.Getenv("MOODPD_SERIAL_BAUD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Serial.Baud = n
		}
	}

	if v := os.Getenv("MOODPD_DIALECT"); v != "" {
		cfg.Dialect.Name = v
	}

	if v := os.Getenv("MOODPD_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("MOODPD_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("MOODPD_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	if v := os.Getenv("MOODPD_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	if v := os.Getenv("MOODPD_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func envBool(key string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

// Validate checks the configuration for errors.
//
// All problems are collected and reported together.
func (c *Config) Validate() error {
	var errs []string

	if err := validateUDPAddr(c.Relay.Listen); err != nil {
		errs = append(errs, fmt.Sprintf("relay.listen: %v", err))
	}
	// The envelope header alone is 5 bytes; a datagram must carry at least one payload byte.
	if c.Relay.MaxPacketSize < 6 || c.Relay.MaxPacketSize > 65507 {
		errs = append(errs, "relay.max_packet_size must be between 6 and 65507")
	}

	if strings.TrimSpace(c.Serial.Device) == "" {
		errs = append(errs, "serial.device is required")
	}
	if c.Serial.Baud <= 0 {
		errs = append(errs, "serial.baud must be positive")
	}

	switch c.Dialect.Name {
	case DialectFramed:
		f := c.Dialect.Framed
		if len(f.Preamble) != 4 {
			errs = append(errs, "dialect.framed.preamble must be exactly 4 bytes")
		}
		if len(f.Postamble) != 2 {
			errs = append(errs, "dialect.framed.postamble must be exactly 2 bytes")
		}
		for _, op := range []struct{ name, value string }{
			{"color", f.Opcodes.Color},
			{"brightness", f.Opcodes.Brightness},
			{"fade", f.Opcodes.Fade},
			{"pause", f.Opcodes.Pause},
			{"power", f.Opcodes.Power},
		} {
			if len(op.value) != 1 {
				errs = append(errs, fmt.Sprintf("dialect.framed.opcodes.%s must be exactly 1 byte", op.name))
			}
		}
	case DialectText:
		if len(c.Dialect.Text.ColorTag) != 1 {
			errs = append(errs, "dialect.text.color_tag must be exactly 1 byte")
		}
	default:
		errs = append(errs, fmt.Sprintf("dialect.name must be %q or %q", DialectFramed, DialectText))
	}

	if c.OSC.Enabled {
		if err := validateUDPAddr(c.OSC.Listen); err != nil {
			errs = append(errs, fmt.Sprintf("osc.listen: %v", err))
		}
	}

	if c.MQTT.Enabled {
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			errs = append(errs, "mqtt.qos must be 0, 1, or 2")
		}
		if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
			errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
		}
		if strings.TrimSpace(c.MQTT.LampID) == "" {
			errs = append(errs, "mqtt.lamp_id is required")
		}
	}

	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.bucket is required when influxdb is enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

func validateUDPAddr(addr string) error {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	if host != "" && net.ParseIP(host) == nil {
		return fmt.Errorf("host %q is not an IP address", host)
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 0 || n > 65535 {
		return fmt.Errorf("invalid port %q", port)
	}
	return nil
}
