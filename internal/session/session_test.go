package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larsks/dronevision/internal/dashboard"
	"github.com/larsks/dronevision/internal/fleet"
	"github.com/larsks/dronevision/internal/telemetry"
)

// recordingObserver captures observer calls for assertions.
type recordingObserver struct {
	mutex   sync.Mutex
	opened  []string
	closed  []string
	actions []dashboard.ActionKind
	entries []telemetry.Entry
}

func (r *recordingObserver) SessionOpened(id string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.opened = append(r.opened, id)
}

func (r *recordingObserver) SessionClosed(id string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.closed = append(r.closed, id)
}

func (r *recordingObserver) ActionTriggered(_ string, kind dashboard.ActionKind) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.actions = append(r.actions, kind)
}

func (r *recordingObserver) TelemetryAppended(_ string, entry telemetry.Entry) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *recordingObserver) counts() (opened, closed, actions, entries int) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.opened), len(r.closed), len(r.actions), len(r.entries)
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.AutoTick = false
	cfg.ActionTTL = 50 * time.Millisecond
	return cfg
}

func newTestManager(t *testing.T, cfg Config, obs ...Observer) *Manager {
	t.Helper()
	m, err := NewManager(fleet.Default(), cfg, obs...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Shutdown() })
	return m
}

func TestNewManager_Errors(t *testing.T) {
	tests := []struct {
		name    string
		catalog *fleet.Catalog
		modify  func(*Config)
		wantErr error
	}{
		{"nil catalog", nil, func(*Config) {}, dashboard.ErrCatalogRequired},
		{"max sessions", fleet.Default(), func(c *Config) { c.MaxSessions = 0 }, ErrInvalidMaxSessions},
		{"idle timeout", fleet.Default(), func(c *Config) { c.IdleTimeout = -time.Second }, ErrInvalidIdleTimeout},
		{"sweep interval", fleet.Default(), func(c *Config) { c.SweepInterval = 0 }, ErrInvalidSweepPeriod},
		{"action ttl", fleet.Default(), func(c *Config) { c.ActionTTL = 0 }, dashboard.ErrInvalidTTL},
		{"period", fleet.Default(), func(c *Config) { c.AutoTick = true; c.TelemetryPeriod = 0 }, telemetry.ErrInvalidPeriod},
		{"upload ratio", fleet.Default(), func(c *Config) { c.UploadRatio = 1.5 }, telemetry.ErrInvalidUploadRatio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			_, err := NewManager(tt.catalog, cfg)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestManager_OpenGetClose(t *testing.T) {
	obs := &recordingObserver{}
	m := newTestManager(t, testConfig(), obs)

	s, err := m.Open()
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID())
	assert.Equal(t, 1, m.Len())

	got, err := m.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)

	view := s.View()
	assert.Equal(t, s.ID(), view.ID)
	assert.Equal(t, dashboard.TabMap, view.Dashboard.ActiveTab)
	assert.True(t, view.Dashboard.TutorialVisible)
	assert.Equal(t, telemetry.SeedEntries(), view.Telemetry)
	assert.Equal(t, fleet.Default().Assets(), view.Assets)

	require.NoError(t, m.Close(s.ID()))
	assert.Equal(t, 0, m.Len())
	assert.True(t, s.IsClosed())

	_, err = m.Get(s.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.Close(s.ID()), ErrSessionNotFound)

	opened, closed, _, _ := obs.counts()
	assert.Equal(t, 1, opened)
	assert.Equal(t, 1, closed)
}

func TestManager_UniqueIDs(t *testing.T) {
	m := newTestManager(t, testConfig())

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		s, err := m.Open()
		require.NoError(t, err)
		assert.False(t, seen[s.ID()], "duplicate id %s", s.ID())
		seen[s.ID()] = true
	}
	assert.Len(t, m.IDs(), 10)
}

func TestManager_MaxSessions(t *testing.T) {
	cfg := testConfig()
	cfg.MaxSessions = 2
	m := newTestManager(t, cfg)

	_, err := m.Open()
	require.NoError(t, err)
	s2, err := m.Open()
	require.NoError(t, err)

	_, err = m.Open()
	assert.ErrorIs(t, err, ErrTooManySessions)

	require.NoError(t, m.Close(s2.ID()))
	_, err = m.Open()
	assert.NoError(t, err)
}

func TestManager_SessionsAreIsolated(t *testing.T) {
	m := newTestManager(t, testConfig())

	a, err := m.Open()
	require.NoError(t, err)
	b, err := m.Open()
	require.NoError(t, err)

	require.NoError(t, a.SelectTab(dashboard.TabCamera))
	require.NoError(t, a.ToggleThermalMode())
	_, err = a.Tick()
	require.NoError(t, err)

	assert.Equal(t, dashboard.TabMap, b.View().Dashboard.ActiveTab)
	assert.False(t, b.View().Dashboard.ThermalMode)
	assert.Len(t, b.Entries(), 3)
	assert.Len(t, a.Entries(), 4)
}

func TestSession_Operations(t *testing.T) {
	obs := &recordingObserver{}
	m := newTestManager(t, testConfig(), obs)

	s, err := m.Open()
	require.NoError(t, err)

	require.NoError(t, s.SelectTab(dashboard.TabAnalytics))
	require.NoError(t, s.SelectAsset(2))
	require.NoError(t, s.ToggleThermalMode())
	require.NoError(t, s.TriggerAction(dashboard.ActionScan))

	snap := s.View().Dashboard
	assert.Equal(t, dashboard.TabAnalytics, snap.ActiveTab)
	require.NotNil(t, snap.SelectedAsset)
	assert.Equal(t, "Éolienne", snap.SelectedAsset.Type)
	assert.False(t, snap.TutorialVisible)
	assert.True(t, snap.ThermalMode)
	assert.Equal(t, dashboard.ActionScan, snap.ActionStatus)

	assert.ErrorIs(t, s.SelectAsset(99), dashboard.ErrUnknownAsset)
	assert.ErrorIs(t, s.TriggerAction("launch"), dashboard.ErrUnknownAction)

	entry, err := s.Tick()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), entry.Seq)

	_, _, actions, entries := obs.counts()
	assert.Equal(t, 1, actions)
	assert.Equal(t, 1, entries)
}

func TestSession_SubscribeReceivesViews(t *testing.T) {
	m := newTestManager(t, testConfig())

	s, err := m.Open()
	require.NoError(t, err)

	var mutex sync.Mutex
	var views []View
	cancel := s.Subscribe(func(v View) {
		mutex.Lock()
		defer mutex.Unlock()
		views = append(views, v)
	})

	require.NoError(t, s.SelectTab(dashboard.TabCamera))
	_, err = s.Tick()
	require.NoError(t, err)
	require.NoError(t, s.TriggerAction(dashboard.ActionReport))

	// The action clears itself and that change is published too
	require.Eventually(t, func() bool {
		mutex.Lock()
		defer mutex.Unlock()
		return len(views) == 4
	}, time.Second, 5*time.Millisecond)

	mutex.Lock()
	assert.Equal(t, dashboard.TabCamera, views[0].Dashboard.ActiveTab)
	assert.Len(t, views[1].Telemetry, 4)
	assert.Equal(t, dashboard.ActionReport, views[2].Dashboard.ActionStatus)
	assert.Equal(t, dashboard.ActionNone, views[3].Dashboard.ActionStatus)
	for i := 1; i < len(views); i++ {
		assert.GreaterOrEqual(t, views[i].Dashboard.Version, views[i-1].Dashboard.Version)
	}
	mutex.Unlock()

	cancel()
	require.NoError(t, s.ToggleThermalMode())

	mutex.Lock()
	assert.Len(t, views, 4)
	mutex.Unlock()
}

// waitFor fails the test if done is not closed within timeout.
func waitFor(t *testing.T, done <-chan struct{}, timeout time.Duration, what string) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(timeout):
		t.Fatalf("%s did not finish within %s", what, timeout)
	}
}

func TestSession_ConcurrentUpdatesWithViewer(t *testing.T) {
	cfg := testConfig()
	cfg.AutoTick = true
	cfg.TelemetryPeriod = time.Millisecond
	cfg.ActionTTL = time.Millisecond
	m, err := NewManager(fleet.Default(), cfg, &recordingObserver{})
	require.NoError(t, err)

	s, err := m.Open()
	require.NoError(t, err)

	// The viewer reads the session back, as the WebSocket stream does.
	var mutex sync.Mutex
	var views []View
	s.Subscribe(func(v View) {
		_ = s.Entries()
		mutex.Lock()
		defer mutex.Unlock()
		views = append(views, v)
	})

	workersDone := make(chan struct{})
	go func() {
		defer close(workersDone)
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				for j := 0; j < 200; j++ {
					_ = s.SelectTab(dashboard.Tabs()[(i+j)%3])
					_ = s.ToggleThermalMode()
					_ = s.TriggerAction(dashboard.ActionScan)
					_, _ = s.Tick()
				}
			}(i)
		}
		wg.Wait()
	}()
	waitFor(t, workersDone, 10*time.Second, "concurrent updates")

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		assert.NoError(t, m.Shutdown())
	}()
	waitFor(t, shutdownDone, 5*time.Second, "shutdown")

	mutex.Lock()
	defer mutex.Unlock()
	require.NotEmpty(t, views)
	for i := 1; i < len(views); i++ {
		assert.GreaterOrEqual(t, views[i].Dashboard.Version, views[i-1].Dashboard.Version)
		prev, cur := views[i-1].Telemetry, views[i].Telemetry
		assert.GreaterOrEqual(t, cur[len(cur)-1].Seq, prev[len(prev)-1].Seq)
	}
}

func TestSession_ClosedOperations(t *testing.T) {
	m := newTestManager(t, testConfig())

	s, err := m.Open()
	require.NoError(t, err)
	require.NoError(t, s.TriggerAction(dashboard.ActionScan))
	require.NoError(t, m.Close(s.ID()))

	select {
	case <-s.Done():
	default:
		t.Fatal("done channel should be closed")
	}

	assert.ErrorIs(t, s.SelectTab(dashboard.TabCamera), ErrSessionClosed)
	assert.ErrorIs(t, s.SelectAsset(1), ErrSessionClosed)
	assert.ErrorIs(t, s.ToggleThermalMode(), ErrSessionClosed)
	assert.ErrorIs(t, s.TriggerAction(dashboard.ActionReport), ErrSessionClosed)
	_, err = s.Tick()
	assert.ErrorIs(t, err, ErrSessionClosed)

	// The pending action timer was cancelled, so the status never clears
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, dashboard.ActionScan, s.View().Dashboard.ActionStatus)
}

func TestSession_AutoTick(t *testing.T) {
	cfg := testConfig()
	cfg.AutoTick = true
	cfg.TelemetryPeriod = 10 * time.Millisecond
	obs := &recordingObserver{}
	m := newTestManager(t, cfg, obs)

	s, err := m.Open()
	require.NoError(t, err)
	assert.True(t, s.AutoTick())

	require.Eventually(t, func() bool {
		return len(s.Entries()) == telemetry.DefaultCapacity
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, m.Close(s.ID()))

	_, _, _, before := obs.counts()
	time.Sleep(50 * time.Millisecond)
	_, _, _, after := obs.counts()
	assert.Equal(t, before, after, "no tick after teardown")
}

func TestManager_Sweep(t *testing.T) {
	cfg := testConfig()
	cfg.IdleTimeout = time.Minute
	obs := &recordingObserver{}
	m := newTestManager(t, cfg, obs)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	idle, err := m.Open()
	require.NoError(t, err)
	active, err := m.Open()
	require.NoError(t, err)

	now = now.Add(45 * time.Second)
	_, err = m.Get(active.ID())
	require.NoError(t, err)

	now = now.Add(30 * time.Second)
	assert.Equal(t, 1, m.Sweep(now))
	assert.True(t, idle.IsClosed())
	assert.False(t, active.IsClosed())

	_, err = m.Get(idle.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, closed, _, _ := obs.counts()
	assert.Equal(t, 1, closed)
}

func TestManager_SweepDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.IdleTimeout = 0
	m := newTestManager(t, cfg)

	_, err := m.Open()
	require.NoError(t, err)
	assert.Equal(t, 0, m.Sweep(time.Now().Add(24*time.Hour)))
	assert.Equal(t, 1, m.Len())
}

func TestManager_Janitor(t *testing.T) {
	cfg := testConfig()
	cfg.IdleTimeout = 20 * time.Millisecond
	cfg.SweepInterval = 10 * time.Millisecond
	m := newTestManager(t, cfg)

	_, err := m.Open()
	require.NoError(t, err)

	require.NoError(t, m.StartJanitor())
	assert.ErrorIs(t, m.StartJanitor(), ErrJanitorRunning)

	require.Eventually(t, func() bool { return m.Len() == 0 }, time.Second, 5*time.Millisecond)

	require.NoError(t, m.StopJanitor())
	assert.ErrorIs(t, m.StopJanitor(), ErrJanitorNotRunning)
}

func TestManager_CloseAll(t *testing.T) {
	obs := &recordingObserver{}
	m := newTestManager(t, testConfig(), obs)

	var sessions []*Session
	for i := 0; i < 3; i++ {
		s, err := m.Open()
		require.NoError(t, err)
		sessions = append(sessions, s)
	}

	require.NoError(t, m.CloseAll())
	assert.Equal(t, 0, m.Len())
	for _, s := range sessions {
		assert.True(t, s.IsClosed())
	}

	_, closed, _, _ := obs.counts()
	assert.Equal(t, 3, closed)
}

func TestErrorCollector(t *testing.T) {
	ec := NewErrorCollector()
	ec.Add("ignored", nil)
	assert.False(t, ec.HasErrors())
	assert.NoError(t, ec.Result("context"))

	errA := errors.New("a failed")
	errB := errors.New("b failed")

	ec.Add("a", errA)
	assert.Equal(t, 1, ec.Count())
	err := ec.Result("teardown")
	assert.ErrorIs(t, err, errA)
	assert.Equal(t, "teardown: a: a failed", err.Error())

	ec.Add("", errB)
	err = ec.Result("")
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Equal(t, 2, ec.Count())
	assert.Equal(t, "a: a failed\nb failed", err.Error())
}
