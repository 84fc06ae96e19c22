package relay

import (
	"bytes"
	"errors"
	"testing"
)

func TestParseEnvelope(t *testing.T) {
	tests := []struct {
		name        string
		datagram    []byte
		max         int
		wantErr     error
		wantType    byte
		wantPayload string
	}{
		{
			name:        "color",
			datagram:    []byte("m00d#104080"),
			wantType:    TypeColor,
			wantPayload: "104080",
		},
		{
			name:        "single payload byte",
			datagram:    []byte("m00dP\n"),
			wantType:    TypePause,
			wantPayload: "\n",
		},
		{
			name:     "header only",
			datagram: []byte("m00dP"),
			wantErr:  ErrMalformedPacket,
		},
		{
			name:     "empty",
			datagram: nil,
			wantErr:  ErrMalformedPacket,
		},
		{
			name:     "bad signature",
			datagram: []byte("mood#104080"),
			wantErr:  ErrMalformedPacket,
		},
		{
			name:     "over limit",
			datagram: bytes.Repeat([]byte("m"), 1025),
			wantErr:  ErrPacketTooLarge,
		},
		{
			name:        "at limit",
			datagram:    append([]byte("m00d!"), bytes.Repeat([]byte("x"), 1019)...),
			wantType:    TypeRaw,
			wantPayload: string(bytes.Repeat([]byte("x"), 1019)),
		},
		{
			name:     "custom limit",
			datagram: []byte("m00d#104080"),
			max:      8,
			wantErr:  ErrPacketTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := ParseEnvelope(tt.datagram, tt.max)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseEnvelope() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseEnvelope() unexpected error = %v", err)
			}
			if env.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", env.Type, tt.wantType)
			}
			if string(env.Payload) != tt.wantPayload {
				t.Errorf("Payload = %q, want %q", env.Payload, tt.wantPayload)
			}
		})
	}
}
