// Package activity tracks which browser sessions are alive and keeps the
// serverless database awake while any of them is. The tracker owns an
// explicit session set and clock; nothing here is process-global.
package activity

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/amitacademy/testseries/internal/metrics"
)

// Pinger is the database slice the keep-alive loop needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Status struct {
	ActiveSessions  int       `json:"activeSessions"`
	LastActivity    time.Time `json:"lastActivity"`
	KeepAliveActive bool      `json:"keepAliveActive"`
}

type Tracker struct {
	mu           sync.Mutex
	sessions     map[string]struct{}
	lastActivity time.Time
	running      bool
	stopCh       chan struct{}

	pinger      Pinger
	interval    time.Duration
	idleTimeout time.Duration
	now         func() time.Time
	log         *zap.Logger
}

func NewTracker(p Pinger, interval, idleTimeout time.Duration, log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{
		sessions:    map[string]struct{}{},
		pinger:      p,
		interval:    interval,
		idleTimeout: idleTimeout,
		now:         time.Now,
		log:         log,
	}
}

// Handshake wakes the database with a ping and registers a new session ID
// for the client to carry on subsequent requests.
func (t *Tracker) Handshake(ctx context.Context) (string, error) {
	if err := t.pinger.Ping(ctx); err != nil {
		return "", err
	}
	id := uuid.NewString()
	t.Register(id)
	return id, nil
}

// Register marks a session active and starts the keep-alive loop if it is
// not already running.
func (t *Tracker) Register(id string) {
	t.mu.Lock()
	t.sessions[id] = struct{}{}
	t.lastActivity = t.now()
	metrics.ActiveSessions.Set(float64(len(t.sessions)))
	start := !t.running
	if start {
		t.running = true
		t.stopCh = make(chan struct{})
	}
	stopCh := t.stopCh
	t.mu.Unlock()

	if start {
		t.log.Info("starting database keep-alive")
		go t.loop(stopCh)
	}
}

// Touch refreshes a known session; false when the ID is unknown.
func (t *Tracker) Touch(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.sessions[id]; !ok {
		return false
	}
	t.lastActivity = t.now()
	return true
}

// Remove drops a session. The keep-alive loop stops on its own once the
// set stays empty past the idle timeout.
func (t *Tracker) Remove(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sessions, id)
	metrics.ActiveSessions.Set(float64(len(t.sessions)))
}

// Close stops the keep-alive loop; used on server shutdown.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *Tracker) Snapshot() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Status{
		ActiveSessions:  len(t.sessions),
		LastActivity:    t.lastActivity,
		KeepAliveActive: t.running,
	}
}

func (t *Tracker) stopLocked() {
	if t.running {
		close(t.stopCh)
		t.running = false
	}
}

func (t *Tracker) loop(stopCh chan struct{}) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !t.tick() {
				return
			}
		}
	}
}

// tick sends one keep-alive ping, or shuts the loop down when the session
// set has stayed empty past the idle timeout. Returns false to stop.
func (t *Tracker) tick() bool {
	t.mu.Lock()
	n := len(t.sessions)
	idle := t.now().Sub(t.lastActivity)
	if n == 0 && idle > t.idleTimeout {
		t.log.Info("no active sessions, letting database sleep")
		t.stopLocked()
		t.mu.Unlock()
		return false
	}
	t.mu.Unlock()

	if n > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		metrics.KeepAlivePings.Inc()
		if err := t.pinger.Ping(ctx); err != nil {
			t.log.Warn("keep-alive ping failed", zap.Error(err))
		} else {
			t.log.Debug("keep-alive ping", zap.Int("active_sessions", n))
		}
	}
	return true
}
