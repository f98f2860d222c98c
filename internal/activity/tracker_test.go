package activity

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakePinger struct {
	pings int32
	err   error
}

func (f *fakePinger) Ping(ctx context.Context) error {
	atomic.AddInt32(&f.pings, 1)
	return f.err
}

func (f *fakePinger) count() int32 { return atomic.LoadInt32(&f.pings) }

func newTestTracker(p Pinger) *Tracker {
	// A long interval keeps the background loop quiet; ticks are driven
	// by hand through tick().
	return NewTracker(p, time.Hour, 5*time.Minute, nil)
}

func TestHandshake_PingsAndRegisters(t *testing.T) {
	p := &fakePinger{}
	tr := newTestTracker(p)
	defer tr.Close()

	id, err := tr.Handshake(context.Background())
	if err != nil {
		t.Fatalf("handshake: %v", err)
	}
	if id == "" {
		t.Fatalf("expected a session ID")
	}
	if p.count() != 1 {
		t.Fatalf("expected 1 wake-up ping, got %d", p.count())
	}
	st := tr.Snapshot()
	if st.ActiveSessions != 1 || !st.KeepAliveActive {
		t.Fatalf("snapshot = %+v, want 1 active session with keep-alive running", st)
	}
}

func TestHandshake_DatabaseDown(t *testing.T) {
	p := &fakePinger{err: errors.New("connection refused")}
	tr := newTestTracker(p)
	defer tr.Close()

	if _, err := tr.Handshake(context.Background()); err == nil {
		t.Fatalf("expected handshake to surface the ping error")
	}
	if st := tr.Snapshot(); st.ActiveSessions != 0 || st.KeepAliveActive {
		t.Fatalf("failed handshake must not register a session: %+v", st)
	}
}

func TestTouch(t *testing.T) {
	tr := newTestTracker(&fakePinger{})
	defer tr.Close()

	tr.Register("abc")
	if !tr.Touch("abc") {
		t.Fatalf("known session not refreshed")
	}
	if tr.Touch("nope") {
		t.Fatalf("unknown session refreshed")
	}
}

func TestRemove(t *testing.T) {
	tr := newTestTracker(&fakePinger{})
	defer tr.Close()

	tr.Register("a")
	tr.Register("b")
	tr.Remove("a")
	if st := tr.Snapshot(); st.ActiveSessions != 1 {
		t.Fatalf("active = %d, want 1", st.ActiveSessions)
	}
	if tr.Touch("a") {
		t.Fatalf("removed session still refreshable")
	}
}

func TestTick_PingsWhileSessionsActive(t *testing.T) {
	p := &fakePinger{}
	tr := newTestTracker(p)
	defer tr.Close()

	tr.Register("abc")
	before := p.count()
	if !tr.tick() {
		t.Fatalf("tick stopped with an active session")
	}
	if p.count() != before+1 {
		t.Fatalf("expected a keep-alive ping, pings = %d", p.count())
	}
}

func TestTick_StopsAfterIdleTimeout(t *testing.T) {
	p := &fakePinger{}
	tr := newTestTracker(p)

	base := time.Now()
	tr.now = func() time.Time { return base }
	tr.Register("abc")
	tr.Remove("abc")

	// Still inside the grace period: the loop keeps going without pinging.
	tr.now = func() time.Time { return base.Add(4 * time.Minute) }
	before := p.count()
	if !tr.tick() {
		t.Fatalf("tick stopped before the idle timeout")
	}
	if p.count() != before {
		t.Fatalf("expected no ping with zero sessions, pings = %d", p.count())
	}

	// Past the timeout the loop shuts itself down.
	tr.now = func() time.Time { return base.Add(6 * time.Minute) }
	if tr.tick() {
		t.Fatalf("tick kept going past the idle timeout")
	}
	if st := tr.Snapshot(); st.KeepAliveActive {
		t.Fatalf("keep-alive still marked running after shutdown")
	}
}

func TestRegister_RestartsAfterIdleStop(t *testing.T) {
	p := &fakePinger{}
	tr := newTestTracker(p)
	defer tr.Close()

	base := time.Now()
	tr.now = func() time.Time { return base }
	tr.Register("a")
	tr.Remove("a")
	tr.now = func() time.Time { return base.Add(10 * time.Minute) }
	if tr.tick() {
		t.Fatalf("expected idle shutdown")
	}

	tr.Register("b")
	if st := tr.Snapshot(); !st.KeepAliveActive {
		t.Fatalf("new session did not restart the keep-alive loop")
	}
}
