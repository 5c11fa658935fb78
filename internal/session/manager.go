// Package session manages per-viewer dashboard sessions. Each session owns
// a dashboard state, a telemetry feed and optionally a ticker driving that
// feed. Sessions live in memory only and are torn down on close or after
// an idle timeout.
package session

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/larsks/dronevision/internal/dashboard"
	"github.com/larsks/dronevision/internal/fleet"
	"github.com/larsks/dronevision/internal/telemetry"
)

const (
	DefaultMaxSessions   = 100
	DefaultIdleTimeout   = 10 * time.Minute
	DefaultSweepInterval = time.Minute
)

// Config controls session limits and the behaviour of each session's
// dashboard and feed.
type Config struct {
	MaxSessions     int
	IdleTimeout     time.Duration // 0 disables idle expiry
	SweepInterval   time.Duration
	ActionTTL       time.Duration
	TelemetryPeriod time.Duration
	AutoTick        bool
	UploadRatio     float64
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		MaxSessions:     DefaultMaxSessions,
		IdleTimeout:     DefaultIdleTimeout,
		SweepInterval:   DefaultSweepInterval,
		ActionTTL:       dashboard.DefaultActionTTL,
		TelemetryPeriod: telemetry.DefaultPeriod,
		AutoTick:        true,
		UploadRatio:     telemetry.DefaultUploadRatio,
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.MaxSessions <= 0 {
		return ErrInvalidMaxSessions
	}
	if c.IdleTimeout < 0 {
		return ErrInvalidIdleTimeout
	}
	if c.SweepInterval <= 0 {
		return ErrInvalidSweepPeriod
	}
	if c.ActionTTL <= 0 {
		return dashboard.ErrInvalidTTL
	}
	if c.AutoTick && c.TelemetryPeriod <= 0 {
		return telemetry.ErrInvalidPeriod
	}
	if c.UploadRatio < 0 || c.UploadRatio > 1 {
		return telemetry.ErrInvalidUploadRatio
	}
	return nil
}

func (c Config) feedOptions() []telemetry.Option {
	return []telemetry.Option{telemetry.WithUploadRatio(c.UploadRatio)}
}

// Manager owns every open session.
type Manager struct {
	catalog  *fleet.Catalog
	config   Config
	observer observers
	now      func() time.Time
	newID    func() string

	mutex    sync.RWMutex
	sessions map[string]*Session

	janitorMutex   sync.Mutex
	janitorRunning bool
	stopCh         chan struct{}
	doneCh         chan struct{}
}

// NewManager creates a manager for sessions over catalog. Every observer
// receives lifecycle and activity events for all sessions.
func NewManager(catalog *fleet.Catalog, config Config, obs ...Observer) (*Manager, error) {
	if catalog == nil {
		return nil, dashboard.ErrCatalogRequired
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session configuration: %w", err)
	}

	return &Manager{
		catalog:  catalog,
		config:   config,
		observer: observers(obs),
		now:      time.Now,
		newID:    uuid.NewString,
		sessions: make(map[string]*Session),
	}, nil
}

// Config returns the manager configuration.
func (m *Manager) Config() Config {
	return m.config
}

// Catalog returns the asset catalog shared by all sessions.
func (m *Manager) Catalog() *fleet.Catalog {
	return m.catalog
}

// Open creates a new session.
func (m *Manager) Open() (*Session, error) {
	m.mutex.Lock()
	if len(m.sessions) >= m.config.MaxSessions {
		m.mutex.Unlock()
		return nil, fmt.Errorf("%w (limit %d)", ErrTooManySessions, m.config.MaxSessions)
	}

	s, err := newSession(m.newID(), m.catalog, m.config, m.observer, m.now)
	if err != nil {
		m.mutex.Unlock()
		return nil, err
	}
	m.sessions[s.id] = s
	m.mutex.Unlock()

	log.Printf("opened session %s", s.id)
	m.observer.SessionOpened(s.id)
	return s, nil
}

// Get returns the session with the given id and marks it as active.
func (m *Manager) Get(id string) (*Session, error) {
	m.mutex.RLock()
	s, ok := m.sessions[id]
	m.mutex.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	s.Touch()
	return s, nil
}

// Close tears down the session with the given id.
func (m *Manager) Close(id string) error {
	m.mutex.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mutex.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	return m.closeSession(s, "closed")
}

func (m *Manager) closeSession(s *Session, reason string) error {
	closed, err := s.close()
	if !closed {
		return nil
	}

	log.Printf("%s session %s", reason, s.id)
	m.observer.SessionClosed(s.id)
	if err != nil {
		return fmt.Errorf("failed to tear down session %s: %w", s.id, err)
	}
	return nil
}

// CloseAll tears down every session. It keeps going when a teardown fails
// and returns the collected errors.
func (m *Manager) CloseAll() error {
	m.mutex.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mutex.Unlock()

	ec := NewErrorCollector()
	for id, s := range sessions {
		ec.Add(id, m.closeSession(s, "closed"))
	}

	return ec.Result("failed to close sessions")
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}

// IDs returns the ids of all open sessions, sorted.
func (m *Manager) IDs() []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Sweep closes every session that has been idle for longer than the idle
// timeout, as of now. It returns the number of sessions closed.
func (m *Manager) Sweep(now time.Time) int {
	if m.config.IdleTimeout == 0 {
		return 0
	}

	var expired []*Session
	m.mutex.Lock()
	for id, s := range m.sessions {
		if now.Sub(s.LastSeen()) > m.config.IdleTimeout {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mutex.Unlock()

	for _, s := range expired {
		if err := m.closeSession(s, "expired"); err != nil {
			log.Printf("%v", err)
		}
	}

	return len(expired)
}

// StartJanitor starts a goroutine that sweeps idle sessions every sweep
// interval.
func (m *Manager) StartJanitor() error {
	m.janitorMutex.Lock()
	defer m.janitorMutex.Unlock()

	if m.janitorRunning {
		return ErrJanitorRunning
	}

	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	m.janitorRunning = true
	go m.janitorLoop(m.stopCh, m.doneCh)

	return nil
}

// StopJanitor stops the sweeping goroutine and waits for it to exit.
func (m *Manager) StopJanitor() error {
	m.janitorMutex.Lock()
	defer m.janitorMutex.Unlock()

	if !m.janitorRunning {
		return ErrJanitorNotRunning
	}

	close(m.stopCh)
	<-m.doneCh
	m.janitorRunning = false

	return nil
}

func (m *Manager) janitorLoop(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(m.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if n := m.Sweep(m.now()); n > 0 {
				log.Printf("expired %d idle sessions", n)
			}
		}
	}
}

// Shutdown stops the janitor, if running, and closes every session.
func (m *Manager) Shutdown() error {
	if err := m.StopJanitor(); err != nil && !errors.Is(err, ErrJanitorNotRunning) {
		return err
	}
	return m.CloseAll()
}
