package telemetry

import (
	"sync"
	"time"
)

// Tickable is anything that advances one step per tick.
type Tickable interface {
	Tick() Entry
}

// Ticker calls Tick on a feed at a fixed period until stopped.
type Ticker struct {
	feed    Tickable
	period  time.Duration
	stopCh  chan struct{}
	doneCh  chan struct{}
	mutex   sync.RWMutex
	running bool
}

// NewTicker creates a stopped Ticker for feed.
func NewTicker(feed Tickable, period time.Duration) (*Ticker, error) {
	if feed == nil {
		return nil, ErrFeedRequired
	}
	if period <= 0 {
		return nil, ErrInvalidPeriod
	}

	return &Ticker{
		feed:   feed,
		period: period,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}, nil
}

// Start begins ticking
func (t *Ticker) Start() error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.running {
		return ErrAlreadyRunning
	}

	t.running = true
	go t.tickLoop(t.stopCh, t.doneCh)

	return nil
}

// Stop stops ticking. When Stop returns no further tick will happen.
func (t *Ticker) Stop() error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if !t.running {
		return ErrNotRunning
	}

	close(t.stopCh)
	<-t.doneCh // Wait for goroutine to finish

	t.running = false

	// Reset channels for potential restart
	t.stopCh = make(chan struct{})
	t.doneCh = make(chan struct{})

	return nil
}

// IsRunning returns true if the ticker is currently running
func (t *Ticker) IsRunning() bool {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return t.running
}

// GetPeriod returns the tick period
func (t *Ticker) GetPeriod() time.Duration {
	return t.period
}

func (t *Ticker) tickLoop(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	clock := time.NewTicker(t.period)
	defer clock.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-clock.C:
			// A stop request that arrives together with a tick wins.
			select {
			case <-stopCh:
				return
			default:
			}
			t.feed.Tick()
		}
	}
}
