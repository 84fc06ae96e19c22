package relay

import (
	"bytes"
	"errors"
	"testing"

	"github.com/nerrad567/moodpd/internal/infrastructure/config"
)

func TestFramedEncoder_Encode(t *testing.T) {
	enc := NewFramedEncoder(DefaultFramedOptions())

	tests := []struct {
		name string
		cmd  Command
		want []byte
	}{
		{name: "color", cmd: SetColor{R: 0x10, G: 0x40, B: 0x80}, want: []byte("acP\x02C\x10\x40\x80ab")},
		{name: "brightness", cmd: SetBrightness{Level: 0x7f}, want: []byte("acP\x02B\x7fab")},
		{
			name: "fade",
			cmd:  FadeTo{R: 1, G: 2, B: 3, Duration: 0x0400},
			want: []byte("acP\x02M\x01\x02\x03\x04\x00ab"),
		},
		{name: "pause", cmd: Pause{}, want: []byte("acP\x02Pab")},
		{name: "power", cmd: PowerToggle{}, want: []byte("acP\x02Xab")},
		{name: "raw", cmd: Raw{Bytes: []byte("anything\n")}, want: []byte("anything\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := enc.Encode(tt.cmd)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFramedEncoder_Handshake(t *testing.T) {
	enc := NewFramedEncoder(DefaultFramedOptions())
	hs := enc.Handshake()

	if len(hs) != 2 {
		t.Fatalf("Handshake() has %d frames, want 2", len(hs))
	}
	if string(hs[0]) != "acI\x01\x02\x02ab" || string(hs[1]) != "acW\x00ab" {
		t.Errorf("Handshake() = %q", hs)
	}
}

func TestTextEncoder_Encode(t *testing.T) {
	enc := NewTextEncoder('i')

	got, err := enc.Encode(SetColor{R: 0x10, G: 0x40, B: 0x80})
	if err != nil {
		t.Fatalf("Encode(color) error = %v", err)
	}
	if string(got) != "i104080\n" {
		t.Errorf("Encode(color) = %q, want %q", got, "i104080\n")
	}

	got, err = enc.Encode(SetColor{R: 0xF0, G: 0xAB, B: 0x0C})
	if err != nil {
		t.Fatalf("Encode(color) error = %v", err)
	}
	if string(got) != "if0ab0c\n" {
		t.Errorf("Encode(color) = %q, want lower-case hex", got)
	}

	got, err = enc.Encode(Raw{Bytes: []byte{0x00, 0xff}})
	if err != nil || !bytes.Equal(got, []byte{0x00, 0xff}) {
		t.Errorf("Encode(raw) = %q, %v", got, err)
	}

	if enc.Handshake() != nil {
		t.Error("text dialect should have no handshake")
	}
}

func TestTextEncoder_Unsupported(t *testing.T) {
	enc := NewTextEncoder('i')

	for _, cmd := range []Command{SetBrightness{Level: 1}, FadeTo{}, Pause{}, PowerToggle{}} {
		if _, err := enc.Encode(cmd); !errors.Is(err, ErrUnsupportedCommand) {
			t.Errorf("Encode(%s) error = %v, want ErrUnsupportedCommand", cmd.Kind(), err)
		}
	}
}

func TestNewEncoder_FromConfig(t *testing.T) {
	cfg := config.Default().Dialect

	enc, err := NewEncoder(cfg)
	if err != nil {
		t.Fatalf("NewEncoder(text) error = %v", err)
	}
	if enc.Name() != config.DialectText {
		t.Errorf("Name() = %q, want %q", enc.Name(), config.DialectText)
	}

	cfg.Name = config.DialectFramed
	cfg.Framed.Opcodes.Color = "c"
	enc, err = NewEncoder(cfg)
	if err != nil {
		t.Fatalf("NewEncoder(framed) error = %v", err)
	}
	got, _ := enc.Encode(SetColor{R: 1, G: 2, B: 3})
	if string(got) != "acP\x02c\x01\x02\x03ab" {
		t.Errorf("custom opcode not applied: %q", got)
	}
	if len(enc.Handshake()) != 2 {
		t.Errorf("Handshake() has %d frames, want 2", len(enc.Handshake()))
	}

	cfg.Name = "morse"
	if _, err := NewEncoder(cfg); err == nil {
		t.Error("NewEncoder(morse) expected error")
	}
}
