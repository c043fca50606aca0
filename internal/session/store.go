package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kjannette/spimex-view/internal/metrics"
	"github.com/kjannette/spimex-view/internal/view"
)

// Factory builds the controller for a new visitor.
type Factory func() *view.Controller

type Config struct {
	IdleTimeout   time.Duration
	SweepInterval time.Duration
}

type entry struct {
	ctrl     *view.Controller
	lastSeen time.Time
}

// Store keeps one page per visitor in memory. Sessions idle for longer than
// IdleTimeout are dropped by the sweeper; nothing survives a restart.
type Store struct {
	factory Factory
	cfg     Config
	metrics *metrics.Metrics
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
	running  bool
	stopCh   chan struct{}
	done     chan struct{}
}

func NewStore(factory Factory, cfg Config, m *metrics.Metrics) *Store {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 30 * time.Minute
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	return &Store{
		factory:  factory,
		cfg:      cfg,
		metrics:  m,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// Get returns the controller for id and marks the session as used.
func (s *Store) Get(id string) (*view.Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = s.now()
	return e.ctrl, true
}

// Create starts a new session and returns its id.
func (s *Store) Create() (string, *view.Controller) {
	id := uuid.NewString()
	ctrl := s.factory()

	s.mu.Lock()
	s.sessions[id] = &entry{ctrl: ctrl, lastSeen: s.now()}
	n := len(s.sessions)
	s.mu.Unlock()

	s.metrics.SetSessions(n)
	slog.Debug("session created", "session", id, "active", n)
	return id, ctrl
}

// Resolve returns the session for id, creating a fresh one when id is
// unknown or expired. created reports whether the caller must hand out the
// new id.
func (s *Store) Resolve(id string) (string, *view.Controller, bool) {
	if id != "" {
		if ctrl, ok := s.Get(id); ok {
			return id, ctrl, false
		}
	}
	sid, ctrl := s.Create()
	return sid, ctrl, true
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops sessions idle since before now minus IdleTimeout and returns
// how many were removed.
func (s *Store) Sweep(now time.Time) int {
	cutoff := now.Add(-s.cfg.IdleTimeout)

	s.mu.Lock()
	removed := 0
	for id, e := range s.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()

	s.metrics.SetSessions(n)
	if removed > 0 {
		slog.Info("sessions evicted", "removed", removed, "active", n)
	}
	return removed
}

// Start runs the idle sweeper until Stop is called.
func (s *Store) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		slog.Warn("session sweeper already running")
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})
	stopCh, done := s.stopCh, s.done
	s.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(s.cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				s.Sweep(s.now())
			}
		}
	}()

	slog.Info("session sweeper started", "interval", s.cfg.SweepInterval, "idle_timeout", s.cfg.IdleTimeout)
}

// Stop halts the sweeper and waits for it to exit.
func (s *Store) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	close(s.stopCh)
	s.running = false
	done := s.done
	s.mu.Unlock()

	<-done
	slog.Info("session sweeper stopped")
}

func (s *Store) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
