// Package dashboard implements the interactive mission control demo: the
// active viewport, the selected asset, the thermal camera mode, the
// self-expiring action toast and the first visit tutorial hint.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/looplab/fsm"

	"github.com/larsks/dronevision/internal/fleet"
)

// DefaultActionTTL is how long an action toast stays visible.
const DefaultActionTTL = 2500 * time.Millisecond

const (
	tutorialVisible   = "visible"
	tutorialDismissed = "dismissed"
	eventDismiss      = "dismiss"
)

var tabEvents = map[Tab]string{
	TabMap:       "show_map",
	TabCamera:    "show_camera",
	TabAnalytics: "show_analytics",
}

// State holds the dashboard state for one viewer. Every operation runs to
// completion under the state lock, so transitions never interleave.
type State struct {
	catalog   *fleet.Catalog
	actionTTL time.Duration

	mutex    sync.Mutex
	tabs     *fsm.FSM
	tutorial *fsm.FSM
	selected int // 0 when nothing is selected
	thermal  bool

	action        ActionKind
	actionExpires time.Time
	actionTimer   *time.Timer
	actionGen     uint64

	version uint64
	closed  bool

	// pending holds snapshots not yet handed to observers, oldest first.
	pending []Snapshot

	// notifyMutex keeps observer delivery in version order. It is never
	// acquired while mutex is held.
	notifyMutex  sync.Mutex
	observers    map[uint64]func(Snapshot)
	nextObserver uint64
}

// New creates a dashboard over the given catalog. Asset id 0 is reserved.
func New(catalog *fleet.Catalog, actionTTL time.Duration) (*State, error) {
	if catalog == nil {
		return nil, ErrCatalogRequired
	}
	if actionTTL <= 0 {
		return nil, ErrInvalidTTL
	}
	if catalog.Contains(0) {
		return nil, fmt.Errorf("%w: id 0 is reserved", ErrUnknownAsset)
	}

	return &State{
		catalog:   catalog,
		actionTTL: actionTTL,
		tabs:      newTabMachine(),
		tutorial:  newTutorialMachine(),
		observers: make(map[uint64]func(Snapshot)),
	}, nil
}

func newTabMachine() *fsm.FSM {
	var events fsm.Events
	for _, tab := range allTabs {
		// Every tab is reachable from every other tab.
		events = append(events, fsm.EventDesc{
			Name: tabEvents[tab],
			Src:  []string{string(TabMap), string(TabCamera), string(TabAnalytics)},
			Dst:  string(tab),
		})
	}
	return fsm.NewFSM(string(TabMap), events, fsm.Callbacks{})
}

func newTutorialMachine() *fsm.FSM {
	return fsm.NewFSM(
		tutorialVisible,
		fsm.Events{
			{Name: eventDismiss, Src: []string{tutorialVisible}, Dst: tutorialDismissed},
		},
		fsm.Callbacks{},
	)
}

// SelectTab switches the active viewport. Selecting the active tab again
// succeeds without changing anything.
func (s *State) SelectTab(tab Tab) error {
	event, ok := tabEvents[tab]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTab, tab)
	}

	return s.update(func() error {
		return fireEvent(s.tabs, event)
	})
}

// SelectAsset focuses the asset with the given id and dismisses the
// tutorial hint. Re-selecting the current asset is allowed.
func (s *State) SelectAsset(id int) error {
	if !s.catalog.Contains(id) {
		return fmt.Errorf("%w: %d", ErrUnknownAsset, id)
	}

	return s.update(func() error {
		s.selected = id
		if s.tutorial.Can(eventDismiss) {
			return fireEvent(s.tutorial, eventDismiss)
		}
		return nil
	})
}

// ToggleThermalMode flips the camera between optical and thermal rendering.
// The flag flips regardless of the active tab.
func (s *State) ToggleThermalMode() error {
	return s.update(func() error {
		s.thermal = !s.thermal
		return nil
	})
}

// TriggerAction shows the acknowledgement for a simulated operation and
// arms a one-shot timer that clears it. A newer trigger replaces both the
// status and the timer.
func (s *State) TriggerAction(kind ActionKind) error {
	if kind != ActionScan && kind != ActionReport {
		return fmt.Errorf("%w: %q", ErrUnknownAction, kind)
	}

	return s.update(func() error {
		if s.actionTimer != nil {
			s.actionTimer.Stop()
		}

		s.actionGen++
		gen := s.actionGen
		s.action = kind
		s.actionExpires = time.Now().Add(s.actionTTL)
		s.actionTimer = time.AfterFunc(s.actionTTL, func() {
			s.expireAction(gen)
		})
		return nil
	})
}

// expireAction clears the action armed with generation gen. It does nothing
// when the action was superseded or the dashboard was closed meanwhile.
func (s *State) expireAction(gen uint64) {
	_ = s.update(func() error {
		if gen != s.actionGen || s.action == ActionNone {
			return errStale
		}
		s.action = ActionNone
		s.actionExpires = time.Time{}
		s.actionTimer = nil
		return nil
	})
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.snapshotLocked()
}

// ActionTTL returns the lifetime of an action toast.
func (s *State) ActionTTL() time.Duration {
	return s.actionTTL
}

// Subscribe registers fn to receive a snapshot after every change. fn runs
// on the goroutine that made the change, or on a concurrent one delivering
// its snapshot, and must not call back into mutating methods of s. The returned function removes the subscription.
func (s *State) Subscribe(fn func(Snapshot)) func() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	id := s.nextObserver
	s.nextObserver++
	s.observers[id] = fn

	return func() {
		s.mutex.Lock()
		defer s.mutex.Unlock()
		delete(s.observers, id)
	}
}

// Close cancels the pending action timer and detaches all observers. Any
// later operation returns ErrClosed. Close may be called more than once.
func (s *State) Close() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return
	}

	s.closed = true
	if s.actionTimer != nil {
		s.actionTimer.Stop()
		s.actionTimer = nil
	}
	s.observers = make(map[uint64]func(Snapshot))
	s.pending = nil
}

// IsClosed reports whether Close has been called.
func (s *State) IsClosed() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.closed
}

// update applies fn under the state lock and, on success, delivers the new
// snapshot to observers in version order.
func (s *State) update(fn func() error) error {
	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		return ErrClosed
	}

	if err := fn(); err != nil {
		s.mutex.Unlock()
		return err
	}

	s.version++
	s.pending = append(s.pending, s.snapshotLocked())
	s.mutex.Unlock()

	s.deliver()
	return nil
}

// deliver hands every pending snapshot to the observers. Whichever caller
// gets notifyMutex first delivers the snapshots queued by the others, so
// observers see each version exactly once and in order. Observers run
// without the state lock held and may read the state.
func (s *State) deliver() {
	s.notifyMutex.Lock()
	defer s.notifyMutex.Unlock()

	s.mutex.Lock()
	pending := s.pending
	s.pending = nil
	observers := make([]func(Snapshot), 0, len(s.observers))
	for _, o := range s.observers {
		observers = append(observers, o)
	}
	s.mutex.Unlock()

	for _, snap := range pending {
		for _, observer := range observers {
			observer(snap)
		}
	}
}

func (s *State) snapshotLocked() Snapshot {
	snap := Snapshot{
		Version:         s.version,
		ActiveTab:       Tab(s.tabs.Current()),
		ThermalMode:     s.thermal,
		ActionStatus:    s.action,
		ActionMessage:   s.action.Message(),
		TutorialVisible: s.tutorial.Is(tutorialVisible),
	}

	if s.selected != 0 {
		if asset, ok := s.catalog.Lookup(s.selected); ok {
			snap.SelectedAsset = &asset
		}
	}

	if s.action != ActionNone {
		expires := s.actionExpires
		snap.ActionExpiresAt = &expires
	}

	return snap
}

func fireEvent(machine *fsm.FSM, event string) error {
	err := machine.Event(context.Background(), event)
	if err == nil {
		return nil
	}

	var noTransition fsm.NoTransitionError
	if errors.As(err, &noTransition) {
		return nil
	}

	return fmt.Errorf("%w: %v", ErrTransition, err)
}
