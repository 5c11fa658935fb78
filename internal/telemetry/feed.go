// Package telemetry produces the simulated operations log shown next to the
// mission control dashboard.
package telemetry

import (
	"math/rand/v2"
	"sync"
	"time"
)

const (
	// DefaultCapacity is the number of entries a feed retains.
	DefaultCapacity = 5
	// DefaultUploadRatio is the share of ticks reporting an upload.
	DefaultUploadRatio = 0.3
	// DefaultPeriod is the interval between ticks.
	DefaultPeriod = 3 * time.Second
)

// Random is the source of the message choice. *rand.Rand satisfies it.
type Random interface {
	Float64() float64
}

type globalRandom struct{}

func (globalRandom) Float64() float64 { return rand.Float64() }

// Option configures a Feed.
type Option func(*Feed)

// WithRandom replaces the random source.
func WithRandom(r Random) Option {
	return func(f *Feed) { f.random = r }
}

// WithClock replaces the wall clock used to stamp entries.
func WithClock(now func() time.Time) Option {
	return func(f *Feed) { f.now = now }
}

// WithUploadRatio sets the probability that a tick reports an upload.
func WithUploadRatio(ratio float64) Option {
	return func(f *Feed) { f.uploadRatio = ratio }
}

// WithCapacity sets how many entries the feed retains.
func WithCapacity(capacity int) Option {
	return func(f *Feed) { f.capacity = capacity }
}

// Feed is a bounded, append-only log. The oldest entry is evicted once the
// feed holds more than its capacity.
type Feed struct {
	capacity    int
	uploadRatio float64
	random      Random
	now         func() time.Time

	mutex   sync.Mutex
	entries []Entry
	lastSeq uint64
	pending []Entry

	// notifyMutex keeps observer delivery in Seq order. It is never
	// acquired while mutex is held.
	notifyMutex  sync.Mutex
	observers    map[uint64]func(Entry)
	nextObserver uint64
}

// NewFeed creates a feed holding the seed entries.
func NewFeed(opts ...Option) (*Feed, error) {
	f := &Feed{
		capacity:    DefaultCapacity,
		uploadRatio: DefaultUploadRatio,
		random:      globalRandom{},
		now:         time.Now,
		observers:   make(map[uint64]func(Entry)),
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	if f.uploadRatio < 0 || f.uploadRatio > 1 {
		return nil, ErrInvalidUploadRatio
	}

	for _, e := range SeedEntries() {
		f.append(e)
	}

	return f, nil
}

// Tick appends one generated entry and returns it.
func (f *Feed) Tick() Entry {
	f.mutex.Lock()

	message := MessageSync
	if f.random.Float64() < f.uploadRatio {
		message = MessageUpload
	}

	entry := f.append(Entry{
		Seq:       f.lastSeq + 1,
		Timestamp: f.now().Format(TimestampFormat),
		Message:   message,
		Severity:  SeveritySuccess,
	})

	f.pending = append(f.pending, entry)
	f.mutex.Unlock()

	f.deliver()
	return entry
}

// deliver hands every pending entry to the observers in Seq order.
// Observers run without the feed lock held and may read the feed.
func (f *Feed) deliver() {
	f.notifyMutex.Lock()
	defer f.notifyMutex.Unlock()

	f.mutex.Lock()
	pending := f.pending
	f.pending = nil
	observers := make([]func(Entry), 0, len(f.observers))
	for _, o := range f.observers {
		observers = append(observers, o)
	}
	f.mutex.Unlock()

	for _, entry := range pending {
		for _, observer := range observers {
			observer(entry)
		}
	}
}

// append adds e and evicts from the front. Callers hold f.mutex, except
// during construction.
func (f *Feed) append(e Entry) Entry {
	f.lastSeq = e.Seq
	f.entries = append(f.entries, e)
	if excess := len(f.entries) - f.capacity; excess > 0 {
		f.entries = append(f.entries[:0:0], f.entries[excess:]...)
	}
	return e
}

// Entries returns the retained entries, oldest first.
func (f *Feed) Entries() []Entry {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	out := make([]Entry, len(f.entries))
	copy(out, f.entries)
	return out
}

// Len returns the number of retained entries.
func (f *Feed) Len() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return len(f.entries)
}

// Capacity returns the maximum number of retained entries.
func (f *Feed) Capacity() int {
	return f.capacity
}

// Subscribe registers fn to receive every appended entry. The returned
// function removes the subscription.
func (f *Feed) Subscribe(fn func(Entry)) func() {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	id := f.nextObserver
	f.nextObserver++
	f.observers[id] = fn

	return func() {
		f.mutex.Lock()
		defer f.mutex.Unlock()
		delete(f.observers, id)
	}
}
