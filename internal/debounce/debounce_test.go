package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestSchedule_BurstCollapsesToOne(t *testing.T) {
	d := New(30 * time.Millisecond)
	var calls int32

	for i := 0; i < 5; i++ {
		d.Schedule(func() { atomic.AddInt32(&calls, 1) })
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(100 * time.Millisecond)

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected 1 execution for the burst, got %d", got)
	}
	if d.Pending() {
		t.Fatalf("expected nothing pending after fire")
	}
}

func TestSchedule_LatestWins(t *testing.T) {
	d := New(20 * time.Millisecond)
	var got atomic.Value

	d.Schedule(func() { got.Store("first") })
	d.Schedule(func() { got.Store("second") })
	time.Sleep(80 * time.Millisecond)

	if v := got.Load(); v != "second" {
		t.Fatalf("expected superseding fn to run, got %v", v)
	}
}

func TestFlush_RunsImmediately(t *testing.T) {
	d := New(time.Hour)
	var calls int32

	d.Schedule(func() { atomic.AddInt32(&calls, 1) })
	d.Flush()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected flush to run the pending fn, got %d calls", got)
	}
	// A second flush with nothing pending is a no-op.
	d.Flush()
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("flush reran a consumed fn, got %d calls", got)
	}
}

func TestStop_CancelsWithoutRunning(t *testing.T) {
	d := New(20 * time.Millisecond)
	var calls int32

	d.Schedule(func() { atomic.AddInt32(&calls, 1) })
	d.Stop()
	time.Sleep(60 * time.Millisecond)

	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Fatalf("expected stop to cancel, got %d calls", got)
	}
	if d.Pending() {
		t.Fatalf("expected nothing pending after stop")
	}
}
