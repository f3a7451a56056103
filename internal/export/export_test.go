package export

import (
	"errors"
	"net"
	"testing"
	"time"

	"fbwsim/internal/bus"
)

type fakeConn struct {
	writes   [][]byte
	writeErr error
	closed   bool
}

func (c *fakeConn) Write(p []byte) (int, error) {
	if c.writeErr != nil {
		return 0, c.writeErr
	}
	c.writes = append(c.writes, append([]byte(nil), p...))
	return len(p), nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func testSnapshot(timeS float64) Snapshot {
	return Collect(7, timeS,
		SourceFunc(func(emit bus.Emitter) {
			emit("elac.1.status_word", bus.NewValue(3))
			emit("fac.2.v_ls_kn", bus.NCD())
		}),
		nil,
		SourceFunc(func(emit bus.Emitter) {
			emit("ra.1.height_ft", bus.Failed())
		}),
	)
}

func TestCollect_NamesAndStatus(t *testing.T) {
	s := testSnapshot(1)
	names := s.Names()
	want := []string{"elac.1.status_word", "fac.2.v_ls_kn", "ra.1.height_ft"}
	if len(names) != len(want) {
		t.Fatalf("names=%v want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names=%v want %v", names, want)
		}
	}
	if s.Words["fac.2.v_ls_kn"].Status != bus.NoComputedData {
		t.Fatalf("status=%v want NCD", s.Words["fac.2.v_ls_kn"].Status)
	}
}

func TestEncodeDecode_PreservesStatus(t *testing.T) {
	s := testSnapshot(2.5)
	b, err := Encode(&s)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	got, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if got.Tick != 7 || got.TimeS != 2.5 {
		t.Fatalf("header=%d/%v", got.Tick, got.TimeS)
	}
	for name, v := range s.Words {
		if got.Words[name] != v {
			t.Fatalf("%s=%v want %v", name, got.Words[name], v)
		}
	}

	again, err := Encode(&s)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if string(again) != string(b) {
		t.Fatalf("encoding is not deterministic")
	}
}

func TestDecode_Garbage(t *testing.T) {
	if _, err := Decode([]byte{0xc1}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestNewUDPSink_ResolveFailure(t *testing.T) {
	resolveErr := errors.New("nope")
	resolve := func(network, address string) (*net.UDPAddr, error) {
		return nil, resolveErr
	}
	dial := func(network string, laddr, raddr *net.UDPAddr) (udpConn, error) {
		return &fakeConn{}, nil
	}
	_, err := newUDPSink("bad:addr", time.Second, resolve, dial)
	if !errors.Is(err, resolveErr) {
		t.Fatalf("err=%v want %v", err, resolveErr)
	}
}

func TestUDPSink_ThrottlesOnSimTime(t *testing.T) {
	fc := &fakeConn{}
	u := &UDPSink{dest: "x", interval: 100 * time.Millisecond, conn: fc}

	for _, ts := range []float64{0, 0.05, 0.1, 0.15, 0.2, 0} {
		s := testSnapshot(ts)
		if err := u.Send(&s); err != nil {
			t.Fatalf("Send(%v) error: %v", ts, err)
		}
	}
	// 0, 0.1, 0.2 and the restart at 0.
	if len(fc.writes) != 4 {
		t.Fatalf("writes=%d want 4", len(fc.writes))
	}
	got, err := Decode(fc.writes[0])
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if len(got.Words) != 3 {
		t.Fatalf("words=%d want 3", len(got.Words))
	}
}

func TestUDPSink_PropagatesWriteError(t *testing.T) {
	wantErr := errors.New("boom")
	u := &UDPSink{dest: "x", conn: &fakeConn{writeErr: wantErr}}
	s := testSnapshot(0)
	if err := u.Send(&s); !errors.Is(err, wantErr) {
		t.Fatalf("err=%v want %v", err, wantErr)
	}
}

func TestUDPSink_CloseNilConn(t *testing.T) {
	if err := (&UDPSink{}).Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
}

func TestUDPSink_Loopback(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("no loopback udp: %v", err)
	}
	defer pc.Close()

	u, err := NewUDPSink(pc.LocalAddr().String(), 0)
	if err != nil {
		t.Fatalf("NewUDPSink() error: %v", err)
	}
	defer u.Close()

	s := testSnapshot(1)
	if err := u.Send(&s); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	_ = pc.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, maxDatagram)
	n, _, err := pc.ReadFrom(buf)
	if err != nil {
		t.Fatalf("ReadFrom() error: %v", err)
	}
	got, err := Decode(buf[:n])
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if got.Words["ra.1.height_ft"].Status != bus.FailureWarning {
		t.Fatalf("ra status=%v", got.Words["ra.1.height_ft"].Status)
	}
}
