package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
relay:
  listen: "127.0.0.1:5000"
  max_packet_size: 512
serial:
  device: "/dev/ttyACM1"
  baud: 115200
dialect:
  name: "framed"
mqtt:
  enabled: true
  broker:
    host: "broker.local"
    port: 1883
  qos: 1
  lamp_id: "kitchen"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "moodpd.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Relay.Listen != "127.0.0.1:5000" {
		t.Errorf("Relay.Listen = %q, want %q", cfg.Relay.Listen, "127.0.0.1:5000")
	}
	if cfg.Serial.Device != "/dev/ttyACM1" {
		t.Errorf("Serial.Device = %q, want %q", cfg.Serial.Device, "/dev/ttyACM1")
	}
	if cfg.Dialect.Name != DialectFramed {
		t.Errorf("Dialect.Name = %q, want %q", cfg.Dialect.Name, DialectFramed)
	}
	// Unset fields keep their defaults.
	if cfg.Dialect.Framed.Preamble != "acP\x02" {
		t.Errorf("Dialect.Framed.Preamble = %q, want default", cfg.Dialect.Framed.Preamble)
	}
	if cfg.MQTT.LampID != "kitchen" {
		t.Errorf("MQTT.LampID = %q, want %q", cfg.MQTT.LampID, "kitchen")
	}
}

func TestLoad_NoPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}

	if cfg.Relay.Listen != "0.0.0.0:4242" {
		t.Errorf("Relay.Listen = %q, want 0.0.0.0:4242", cfg.Relay.Listen)
	}
	if cfg.Relay.AllowRaw {
		t.Error("Relay.AllowRaw should default to false")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/moodpd.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "moodpd.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
dialect:
  name: "morse"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "moodpd.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error for unknown dialect, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "framed dialect",
			mutate:  func(c *Config) { c.Dialect.Name = DialectFramed },
			wantErr: false,
		},
		{
			name:    "unparseable listen address",
			mutate:  func(c *Config) { c.Relay.Listen = "4242" },
			wantErr: true,
		},
		{
			name:    "hostname listen address",
			mutate:  func(c *Config) { c.Relay.Listen = "lamp.local:4242" },
			wantErr: true,
		},
		{
			name:    "packet size below header",
			mutate:  func(c *Config) { c.Relay.MaxPacketSize = 5 },
			wantErr: true,
		},
		{
			name:    "missing serial device",
			mutate:  func(c *Config) { c.Serial.Device = " " },
			wantErr: true,
		},
		{
			name:    "zero baud",
			mutate:  func(c *Config) { c.Serial.Baud = 0 },
			wantErr: true,
		},
		{
			name: "framed preamble wrong length",
			mutate: func(c *Config) {
				c.Dialect.Name = DialectFramed
				c.Dialect.Framed.Preamble = "ac"
			},
			wantErr: true,
		},
		{
			name: "framed opcode too long",
			mutate: func(c *Config) {
				c.Dialect.Name = DialectFramed
				c.Dialect.Framed.Opcodes.Fade = "MM"
			},
			wantErr: true,
		},
		{
			name:    "text color tag empty",
			mutate:  func(c *Config) { c.Dialect.Text.ColorTag = "" },
			wantErr: true,
		},
		{
			name:    "osc disabled ignores bad address",
			mutate:  func(c *Config) { c.OSC.Enabled = false; c.OSC.Listen = "nope" },
			wantErr: false,
		},
		{
			name: "invalid QoS",
			mutate: func(c *Config) {
				c.MQTT.Enabled = true
				c.MQTT.QoS = 3
			},
			wantErr: true,
		},
		{
			name: "influx enabled without url",
			mutate: func(c *Config) {
				c.InfluxDB.Enabled = true
				c.InfluxDB.Bucket = "moodpd"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateReportsAllErrors(t *testing.T) {
	cfg := defaultConfig()
	cfg.Serial.Device = ""
	cfg.Serial.Baud = -1

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error, got nil")
	}
	for _, want := range []string{"serial.device", "serial.baud"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error %q does not mention %s", err, want)
		}
	}
}

func TestConfig_ValidateOpcodeErrorsAreOrdered(t *testing.T) {
	cfg := defaultConfig()
	cfg.Dialect.Name = DialectFramed
	cfg.Dialect.Framed.Opcodes = OpcodesConfig{}

	want := "dialect.framed.opcodes.color must be exactly 1 byte; " +
		"dialect.framed.opcodes.brightness must be exactly 1 byte; " +
		"dialect.framed.opcodes.fade must be exactly 1 byte; " +
		"dialect.framed.opcodes.pause must be exactly 1 byte; " +
		"dialect.framed.opcodes.power must be exactly 1 byte"

	for i := 0; i < 20; i++ {
		err := cfg.Validate()
		if err == nil {
			t.Fatal("Validate() expected error, got nil")
		}
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("Validate() error = %q, want opcodes in order %q", err, want)
		}
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("MOODPD_RELAY_LISTEN", "127.0.0.1:9000")
	t.Setenv("MOODPD_RELAY_ALLOW_RAW", "true")
	t.Setenv("MOODPD_SERIAL_DEVICE", "/dev/ttyS3")
	t.Setenv("MOODPD_SERIAL_BAUD", "9600")
	t.Setenv("MOODPD_DIALECT", "framed")
	t.Setenv("MOODPD_MQTT_HOST", "mqtt.example.com")
	t.Setenv("MOODPD_MQTT_PASSWORD", "testpass")
	t.Setenv("MOODPD_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("MOODPD_LOG_LEVEL", "debug")

	applyEnvOverrides(cfg)

	if cfg.Relay.Listen != "127.0.0.1:9000" {
		t.Errorf("Relay.Listen = %q, want %q", cfg.Relay.Listen, "127.0.0.1:9000")
	}
	if !cfg.Relay.AllowRaw {
		t.Error("Relay.AllowRaw = false, want true")
	}
	if cfg.Serial.Device != "/dev/ttyS3" {
		t.Errorf("Serial.Device = %q, want %q", cfg.Serial.Device, "/dev/ttyS3")
	}
	if cfg.Serial.Baud != 9600 {
		t.Errorf("Serial.Baud = %d, want 9600", cfg.Serial.Baud)
	}
	if cfg.Dialect.Name != DialectFramed {
		t.Errorf("Dialect.Name = %q, want %q", cfg.Dialect.Name, DialectFramed)
	}
	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}
	if cfg.MQTT.Auth.Password != "testpass" {
		t.Errorf("MQTT.Auth.Password = %q, want %q", cfg.MQTT.Auth.Password, "testpass")
	}
	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestApplyEnvOverrides_BadValuesIgnored(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("MOODPD_SERIAL_BAUD", "fast")
	t.Setenv("MOODPD_RELAY_ALLOW_RAW", "sometimes")

	applyEnvOverrides(cfg)

	if cfg.Serial.Baud != 230400 {
		t.Errorf("Serial.Baud = %d, want 230400", cfg.Serial.Baud)
	}
	if cfg.Relay.AllowRaw {
		t.Error("Relay.AllowRaw = true, want false")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Serial.Device != "/dev/ttyUSB0" {
		t.Errorf("defaultConfig Serial.Device = %q, want /dev/ttyUSB0", cfg.Serial.Device)
	}
	if cfg.Serial.Baud != 230400 {
		t.Errorf("defaultConfig Serial.Baud = %d, want 230400", cfg.Serial.Baud)
	}
	if cfg.Relay.MaxPacketSize != 1024 {
		t.Errorf("defaultConfig Relay.MaxPacketSize = %d, want 1024", cfg.Relay.MaxPacketSize)
	}
	if cfg.Dialect.Name != DialectText {
		t.Errorf("defaultConfig Dialect.Name = %q, want %q", cfg.Dialect.Name, DialectText)
	}
	if len(cfg.Dialect.Framed.Handshake) != 2 {
		t.Errorf("defaultConfig handshake has %d frames, want 2", len(cfg.Dialect.Framed.Handshake))
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("defaultConfig MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
}
