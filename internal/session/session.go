package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/larsks/dronevision/internal/dashboard"
	"github.com/larsks/dronevision/internal/fleet"
	"github.com/larsks/dronevision/internal/telemetry"
)

// View is everything a viewer needs to render the dashboard.
type View struct {
	ID        string             `json:"id"`
	Dashboard dashboard.Snapshot `json:"dashboard"`
	Telemetry []telemetry.Entry  `json:"telemetry"`
	Assets    []fleet.Asset      `json:"assets"`
}

// Session is one viewer's private dashboard and telemetry feed. Sessions
// never share state.
type Session struct {
	id       string
	created  time.Time
	catalog  *fleet.Catalog
	state    *dashboard.State
	feed     *telemetry.Feed
	ticker   *telemetry.Ticker
	observer Observer
	now      func() time.Time

	mutex        sync.Mutex
	lastSeen     time.Time
	closed       bool
	done         chan struct{}
	viewers      map[uint64]func(View)
	nextViewer   uint64
	unsubscribes []func()

	// notifyMutex keeps View delivery in order. A View is built while
	// holding it, so a later delivery never carries older state. The
	// dashboard and the feed call publish without holding their own
	// locks, so reading them from here is safe.
	notifyMutex sync.Mutex
}

func newSession(id string, catalog *fleet.Catalog, cfg Config, observer Observer, now func() time.Time) (*Session, error) {
	state, err := dashboard.New(catalog, cfg.ActionTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create dashboard: %w", err)
	}

	feed, err := telemetry.NewFeed(cfg.feedOptions()...)
	if err != nil {
		state.Close()
		return nil, fmt.Errorf("failed to create telemetry feed: %w", err)
	}

	s := &Session{
		id:       id,
		created:  now(),
		lastSeen: now(),
		catalog:  catalog,
		state:    state,
		feed:     feed,
		observer: observer,
		now:      now,
		viewers:  make(map[uint64]func(View)),
		done:     make(chan struct{}),
	}

	s.unsubscribes = append(s.unsubscribes,
		state.Subscribe(func(dashboard.Snapshot) { s.publish() }),
		feed.Subscribe(func(entry telemetry.Entry) {
			s.observer.TelemetryAppended(s.id, entry)
			s.publish()
		}),
	)

	if cfg.AutoTick {
		ticker, err := telemetry.NewTicker(feed, cfg.TelemetryPeriod)
		if err != nil {
			s.teardown()
			return nil, fmt.Errorf("failed to create telemetry ticker: %w", err)
		}
		if err := ticker.Start(); err != nil {
			s.teardown()
			return nil, fmt.Errorf("failed to start telemetry ticker: %w", err)
		}
		s.ticker = ticker
	}

	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Created returns when the session was opened.
func (s *Session) Created() time.Time {
	return s.created
}

// LastSeen returns the time of the last viewer interaction.
func (s *Session) LastSeen() time.Time {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.lastSeen
}

// Touch records viewer activity and postpones idle expiry.
func (s *Session) Touch() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.lastSeen = s.now()
}

// IsClosed reports whether the session was torn down.
func (s *Session) IsClosed() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.closed
}

// Done returns a channel that is closed when the session is torn down.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// AutoTick reports whether the feed advances on its own.
func (s *Session) AutoTick() bool {
	return s.ticker != nil
}

// View returns the current combined state.
func (s *Session) View() View {
	return View{
		ID:        s.id,
		Dashboard: s.state.Snapshot(),
		Telemetry: s.feed.Entries(),
		Assets:    s.catalog.Assets(),
	}
}

// Entries returns the telemetry log, oldest first.
func (s *Session) Entries() []telemetry.Entry {
	return s.feed.Entries()
}

func (s *Session) SelectTab(tab dashboard.Tab) error {
	return s.wrap(s.state.SelectTab(tab))
}

func (s *Session) SelectAsset(id int) error {
	return s.wrap(s.state.SelectAsset(id))
}

func (s *Session) ToggleThermalMode() error {
	return s.wrap(s.state.ToggleThermalMode())
}

func (s *Session) TriggerAction(kind dashboard.ActionKind) error {
	if err := s.wrap(s.state.TriggerAction(kind)); err != nil {
		return err
	}
	s.observer.ActionTriggered(s.id, kind)
	return nil
}

// Tick advances the telemetry feed by one entry.
func (s *Session) Tick() (telemetry.Entry, error) {
	if s.IsClosed() {
		return telemetry.Entry{}, ErrSessionClosed
	}
	return s.feed.Tick(), nil
}

// Subscribe registers fn to receive a View after every change to the
// dashboard or the feed. The returned function removes the subscription.
func (s *Session) Subscribe(fn func(View)) func() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	id := s.nextViewer
	s.nextViewer++
	s.viewers[id] = fn

	return func() {
		s.mutex.Lock()
		defer s.mutex.Unlock()
		delete(s.viewers, id)
	}
}

func (s *Session) publish() {
	s.notifyMutex.Lock()
	defer s.notifyMutex.Unlock()

	s.mutex.Lock()
	if s.closed || len(s.viewers) == 0 {
		s.mutex.Unlock()
		return
	}
	viewers := make([]func(View), 0, len(s.viewers))
	for _, v := range s.viewers {
		viewers = append(viewers, v)
	}
	s.mutex.Unlock()

	view := s.View()
	for _, viewer := range viewers {
		viewer(view)
	}
}

// wrap translates dashboard.ErrClosed into ErrSessionClosed.
func (s *Session) wrap(err error) error {
	if err == nil {
		s.Touch()
		return nil
	}
	if s.IsClosed() {
		return fmt.Errorf("%w: %v", ErrSessionClosed, err)
	}
	return err
}

// close tears the session down. It reports false when the session was
// already closed.
func (s *Session) close() (bool, error) {
	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		return false, nil
	}
	s.closed = true
	s.viewers = make(map[uint64]func(View))
	close(s.done)
	s.mutex.Unlock()

	return true, s.teardown()
}

// teardown stops the ticker, cancels the action timer and detaches from
// the dashboard and the feed. The session lock must not be held, since a
// tick in flight may be publishing.
func (s *Session) teardown() error {
	var err error
	if s.ticker != nil {
		err = s.ticker.Stop()
	}
	s.state.Close()
	for _, unsubscribe := range s.unsubscribes {
		unsubscribe()
	}
	return err
}
