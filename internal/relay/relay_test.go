package relay

import (
	"bytes"
	"errors"
	"io"
	"net"
	"os"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

// mockDevice records writes and accepts at most limit bytes per call.
type mockDevice struct {
	limit    int
	writeErr error
	got      bytes.Buffer
}

func (d *mockDevice) Write(p []byte) (int, error) {
	if d.writeErr != nil {
		return -1, d.writeErr
	}
	n := len(p)
	if d.limit > 0 && n > d.limit {
		n = d.limit
	}
	d.got.Write(p[:n])
	return n, nil
}

func (d *mockDevice) Read([]byte) (int, error) { return 0, unix.EAGAIN }
func (d *mockDevice) FD() int                  { return -1 }
func (d *mockDevice) IsTerminal() bool         { return false }

// recordingObserver keeps every outcome.
type recordingObserver struct {
	sent     []Outcome
	rejected []string
}

func (o *recordingObserver) CommandSent(out Outcome)          { o.sent = append(o.sent, out) }
func (o *recordingObserver) CommandRejected(reason, _ string) { o.rejected = append(o.rejected, reason) }

func newTestRelay(t *testing.T, dev Device, enc Encoder, toggles *Toggles) (*Relay, *recordingObserver) {
	t.Helper()
	obs := &recordingObserver{}
	r, err := New(dev, Options{Encoder: enc, Toggles: toggles, Observer: obs})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r, obs
}

func TestRelay_ColorScenario(t *testing.T) {
	tests := []struct {
		name string
		enc  Encoder
		want string
	}{
		{name: "framed", enc: NewFramedEncoder(DefaultFramedOptions()), want: "acP\x02C\x10\x40\x80ab"},
		{name: "text", enc: NewTextEncoder('i'), want: "i104080\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := &mockDevice{}
			r, obs := newTestRelay(t, dev, tt.enc, nil)

			if err := r.HandleDatagram([]byte("m00d#104080"), "192.0.2.1:5000"); err != nil {
				t.Fatalf("HandleDatagram() error = %v", err)
			}

			if dev.got.String() != tt.want {
				t.Errorf("device got %q, want %q", dev.got.String(), tt.want)
			}
			if len(obs.sent) != 1 || obs.sent[0].Dialect != tt.enc.Name() {
				t.Errorf("observer outcomes = %+v", obs.sent)
			}
		})
	}
}

func TestRelay_RejectionsLeaveQueueUntouched(t *testing.T) {
	tests := []struct {
		name       string
		datagram   string
		wantReason string
	}{
		{name: "bad signature", datagram: "mood#104080", wantReason: "malformed"},
		{name: "short color", datagram: "m00d#10408", wantReason: "bad_payload"},
		{name: "long color", datagram: "m00d#1040800", wantReason: "bad_payload"},
		{name: "unknown type", datagram: "m00dZ00", wantReason: "unknown_type"},
		{name: "raw disabled", datagram: "m00d!hello", wantReason: "raw_disabled"},
		{name: "unsupported in text", datagram: "m00dB7f", wantReason: "unsupported"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := &mockDevice{}
			r, obs := newTestRelay(t, dev, NewTextEncoder('i'), nil)

			if err := r.HandleDatagram([]byte(tt.datagram), "peer"); err != nil {
				t.Fatalf("HandleDatagram() error = %v", err)
			}

			if dev.got.Len() != 0 || !r.Queue().Empty() {
				t.Errorf("rejected packet reached the device: %q", dev.got.String())
			}
			if len(obs.rejected) != 1 || obs.rejected[0] != tt.wantReason {
				t.Errorf("rejections = %v, want [%s]", obs.rejected, tt.wantReason)
			}
			if s := r.Stats(); s.Received != 1 || s.Rejected != 1 || s.Sent != 0 {
				t.Errorf("Stats() = %+v", s)
			}
		})
	}
}

func TestRelay_RawPassThroughWhenAllowed(t *testing.T) {
	dev := &mockDevice{}
	toggles := NewToggles(true, nil)
	r, _ := newTestRelay(t, dev, NewFramedEncoder(DefaultFramedOptions()), toggles)

	if err := r.HandleDatagram([]byte("m00d!i00ff00\n"), "peer"); err != nil {
		t.Fatalf("HandleDatagram() error = %v", err)
	}
	if dev.got.String() != "i00ff00\n" {
		t.Errorf("device got %q, want raw bytes verbatim", dev.got.String())
	}

	toggles.SetRawAllowed(false)
	_ = r.HandleDatagram([]byte("m00d!again"), "peer")
	if dev.got.String() != "i00ff00\n" {
		t.Errorf("raw packet written after raw mode was disabled: %q", dev.got.String())
	}
}

func TestRelay_PartialWritesPreserveOrder(t *testing.T) {
	dev := &mockDevice{limit: 2}
	r, _ := newTestRelay(t, dev, NewTextEncoder('i'), nil)

	_ = r.HandleDatagram([]byte("m00d#010203"), "peer")
	_ = r.HandleDatagram([]byte("m00d#a0b0c0\r\n"), "peer")
	for i := 0; i < 100 && !r.Queue().Empty(); i++ {
		r.Queue().TryFlush()
	}

	if dev.got.String() != "i010203\nia0b0c0\n" {
		t.Errorf("device got %q", dev.got.String())
	}
	if s := r.Stats(); s.Sent != 2 || s.BytesWritten != 16 || s.Buffered != 0 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestRelay_Handshake(t *testing.T) {
	dev := &mockDevice{}
	r, _ := newTestRelay(t, dev, NewFramedEncoder(DefaultFramedOptions()), nil)

	if err := r.Handshake(); err != nil {
		t.Fatalf("Handshake() error = %v", err)
	}
	if dev.got.String() != "acI\x01\x02\x02abacW\x00ab" {
		t.Errorf("device got %q", dev.got.String())
	}
}

func TestRelay_DeviceFailureIsFatal(t *testing.T) {
	dev := &mockDevice{writeErr: unix.EIO}
	r, obs := newTestRelay(t, dev, NewTextEncoder('i'), nil)

	err := r.HandleDatagram([]byte("m00d#104080"), "peer")
	if !errors.Is(err, ErrDeviceWrite) || !errors.Is(err, unix.EIO) {
		t.Fatalf("HandleDatagram() error = %v, want ErrDeviceWrite wrapping EIO", err)
	}
	if len(obs.sent) != 0 {
		t.Error("failed command reported as sent")
	}

	err = r.HandleDatagram([]byte("m00d#104080"), "peer")
	if !errors.Is(err, ErrDeviceWrite) {
		t.Errorf("second HandleDatagram() error = %v, want ErrDeviceWrite", err)
	}
}

func TestRelay_SubmitCountsOSC(t *testing.T) {
	dev := &mockDevice{}
	r, _ := newTestRelay(t, dev, NewTextEncoder('i'), nil)

	if err := r.Submit(SetColor{R: 255}, "osc"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if dev.got.String() != "iff0000\n" {
		t.Errorf("device got %q", dev.got.String())
	}
	if s := r.Stats(); s.OSC != 1 || s.Sent != 1 || s.Received != 0 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestPrintable(t *testing.T) {
	if got := printable([]byte("acP\x02C\x10ab")); got != `acP\x02C\x10ab` {
		t.Errorf("printable() = %q", got)
	}
	if got := printable([]byte("i104080\n")); got != `i104080\x0a` {
		t.Errorf("printable() = %q", got)
	}
}

// pipeDevice writes to the write end of a pipe.
type pipeDevice struct{ fd int }

func (d pipeDevice) Write(p []byte) (int, error) { return unix.Write(d.fd, p) }
func (d pipeDevice) Read(p []byte) (int, error)  { return unix.Read(d.fd, p) }
func (d pipeDevice) FD() int                     { return d.fd }
func (d pipeDevice) IsTerminal() bool            { return false }

func TestRelay_ServeOverUDP(t *testing.T) {
	var p [2]int
	if err := unix.Pipe(p[:]); err != nil {
		t.Fatalf("pipe: %v", err)
	}
	if err := unix.SetNonblock(p[1], true); err != nil {
		t.Fatalf("nonblock: %v", err)
	}
	devOut := os.NewFile(uintptr(p[0]), "device-out")
	defer devOut.Close()
	defer unix.Close(p[1])

	sock, err := ListenUDP("127.0.0.1:0")
	if err != nil {
		t.Fatalf("ListenUDP() error = %v", err)
	}
	defer sock.Close()
	addr, err := sock.LocalAddr()
	if err != nil {
		t.Fatalf("LocalAddr() error = %v", err)
	}

	wake, err := NewWakePipe()
	if err != nil {
		t.Fatalf("NewWakePipe() error = %v", err)
	}
	defer wake.Close()

	r, _ := newTestRelay(t, pipeDevice{fd: p[1]}, NewFramedEncoder(DefaultFramedOptions()), nil)

	done := make(chan error, 1)
	go func() { done <- r.Serve(sock, wake.Handler()) }()

	conn, err := net.Dial("udp", addr.String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if _, err := conn.Write([]byte("m00d#104080")); err != nil {
		t.Fatalf("send: %v", err)
	}

	want := []byte("acP\x02C\x10\x40\x80ab")
	got := make([]byte, len(want))
	readDone := make(chan error, 1)
	go func() {
		_, err := io.ReadFull(devOut, got)
		readDone <- err
	}()

	select {
	case err := <-readDone:
		if err != nil {
			t.Fatalf("reading device: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for device bytes")
	}
	if !bytes.Equal(got, want) {
		t.Errorf("device got %q, want %q", got, want)
	}

	wake.Notify()
	select {
	case err := <-done:
		if !errors.Is(err, ErrShutdown) {
			t.Errorf("Serve() error = %v, want ErrShutdown", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not stop after wake")
	}

	if s := r.Stats(); s.Received != 1 || s.Sent != 1 {
		t.Errorf("Stats() = %+v", s)
	}
}
